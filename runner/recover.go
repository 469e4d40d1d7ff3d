package runner

import (
	"context"
	"fmt"

	"github.com/jonwraymond/watchtower/health"
)

// panicError carries a recovered panic value.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprint(e.value)
}

func (e *panicError) Unwrap() error {
	return health.ErrCheckPanicked
}

// recoverCheck converts a panic in c.Run into an error.
func recoverCheck(c health.Check) health.Check {
	return health.NewCheck(c.ID(), c.Name(), func(ctx context.Context) (node health.StatusNode, err error) {
		defer func() {
			if v := recover(); v != nil {
				node = health.StatusNode{}
				err = &panicError{value: v}
			}
		}()
		return c.Run(ctx)
	})
}

// Package health defines the report model and the status aggregation rules
// shared by every part of watchtower.
//
// # Core Concepts
//
// A Check is any probe that can produce a StatusNode. Nodes form a tree: a
// probe may return a group node whose Services are its own sub-checks. The
// Status type is a closed set of four values (Up, Down, Partial, Unknown)
// with no built-in ordering; ordering is supplied as a precedence list when
// statuses are aggregated.
//
// # Basic Usage
//
//	check := health.NewCheck("db", "Database", func(ctx context.Context) (health.StatusNode, error) {
//	    if err := db.PingContext(ctx); err != nil {
//	        return health.NewStatusNode("db", "Database", health.StatusDown, err.Error(), nil, nil), nil
//	    }
//	    return health.NewStatusNode("db", "Database", health.StatusUp, "reachable", nil, nil), nil
//	})
//
// # Aggregating Statuses
//
// AggregateStatus reduces a list of nodes to one status. The first status in
// the precedence list that is present among the nodes wins:
//
//	overall := health.AggregateStatus(nodes)                    // Down > Partial > Unknown > Up
//	cautious := health.AggregateStatus(nodes, health.StatusDown, health.StatusUnknown,
//	    health.StatusPartial, health.StatusUp)
//
// An empty list aggregates to Unknown: no information is not the same as
// healthy.
package health

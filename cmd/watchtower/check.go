package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/health"
)

// errUnhealthy signals a Down report; main exits with status 2.
var errUnhealthy = errors.New("health check reported Down")

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		site   string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the configured checks once and print the report",
		Long:  "Run the configured checks once and print the report. Exits 2 when the overall status is Down.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

			// Local runs are trusted; the gate protects the HTTP endpoint.
			runCfg := a.runCfg
			runCfg.Auth = &auth.Config{RequireAuth: auth.Bool(false)}

			req := auth.NewRequest()
			if site != "" {
				req.Query.Set("site", site)
			}

			resp, err := a.runner.Run(ctx, runCfg, req)
			if err != nil {
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), resp, output); err != nil {
				return err
			}
			if resp.Status == health.StatusDown {
				return errUnhealthy
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml")
	cmd.Flags().StringVar(&site, "site", "", "site name for the report")
	return cmd
}

func writeReport(w io.Writer, resp *health.Response, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		fmt.Fprintf(w, "%s  %s: %s (%dms)\n", resp.Status, resp.Name, resp.Message, resp.Performance.TotalCheckTime)
		writeNodes(w, resp.Services, 1)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeNodes(w io.Writer, nodes []health.StatusNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%-8s %s: %s\n", indent, n.Status, n.Name, n.Message)
		writeNodes(w, n.Services, depth+1)
	}
}

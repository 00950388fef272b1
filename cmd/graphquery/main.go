package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisgraph "github.com/jvanmalder/redis-graph"
	"github.com/jvanmalder/redis-graph/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger

	url            string
	maxOutstanding int
	timeout        time.Duration

	connect func() (redisgraph.Client, error)
}

func newRootCommand() *cobra.Command {
	a := &app{}
	a.connect = a.dial
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "graphquery",
		Short:         "Run graph commands against a RedisGraph compatible server",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.url, "url", "", "server url, overrides REDISGRAPH_URL")
	flags.IntVar(&a.maxOutstanding, "max-outstanding", 0, "maximum queued commands per connection, overrides REDISGRAPH_MAX_OUTSTANDING")
	flags.DurationVar(&a.timeout, "timeout", 0, "per command timeout, overrides REDISGRAPH_TIMEOUT")

	root.AddCommand(a.queryCommand(), a.deleteCommand(), a.listCommand())
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = a.url
	}
	if flags.Changed("max-outstanding") {
		cfg.MaxOutstandingRequests = a.maxOutstanding
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	return nil
}

func (a *app) dial() (redisgraph.Client, error) {
	return redisgraph.SingleTargetClient(a.cfg.Target(), redisgraph.WithLogger(a.logger))
}

func (a *app) queryCommand() *cobra.Command {
	var readOnly bool
	cmd := &cobra.Command{
		Use:   "query <graph> <query>",
		Short: "Run a graph query and print the result set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			graph, query := args[0], args[1]
			var rs *redisgraph.ResultSet
			if readOnly {
				rs, err = c.ReadOnlyQuery(cmd.Context(), graph, query)
			} else {
				rs, err = c.Query(cmd.Context(), graph, query)
			}
			if err != nil {
				return err
			}
			return printResultSet(cmd.OutOrStdout(), rs)
		},
	}
	cmd.Flags().BoolVar(&readOnly, "readonly", false, "run as GRAPH.RO_QUERY")
	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <graph>",
		Short: "Delete a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info("graph deleted", "graph", args[0])
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			names, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

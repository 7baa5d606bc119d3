package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query ...]",
	Short: "Run one search pass and store the results, without processing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		queries := args
		if len(queries) == 0 {
			queries = cfg.Search.Queries()
		}
		stats, err := a.ingestor.RunSearches(ctx, queries)
		if err != nil {
			return err
		}
		fmt.Printf("queries: %d, fetched: %d, stored: %d\n", stats.Queries, stats.Fetched, stats.Stored)
		return nil
	},
}

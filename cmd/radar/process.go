package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var processLimit int

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Drain the unprocessed search result queue once",
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

		limit := processLimit
		if limit <= 0 {
			limit = cfg.Processing.BatchLimit
		}
		res, err := a.resolver.ProcessUnprocessed(ctx, limit)
		if err != nil {
			return err
		}
		if err := a.graph.Rebuild(ctx, a.store); err != nil {
			log.Warn("graph rebuild after processing failed", zap.Error(err))
		}
		fmt.Printf("processed: %d, quarantined: %d, failed: %d, companies: %d, opportunities: %d, signals: %d\n",
			res.Processed, res.Quarantined, res.Failed, res.Companies, res.Opportunities, res.Signals)
		return nil
	},
}

func init() {
	processCmd.Flags().IntVar(&processLimit, "limit", 0, "max records to process (default is processing.batch_limit)")
}

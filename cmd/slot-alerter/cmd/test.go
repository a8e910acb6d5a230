package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/globalentry/slot-alerter/internal/engine"
	"github.com/globalentry/slot-alerter/internal/store"
	"github.com/globalentry/slot-alerter/pkg/logger"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification to verify delivery",
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	client := newSchedulerClient(cfg)
	locations := engine.ResolveLocations(ctx, client, cfg.Locations, log)

	eng := engine.NewEngine(store.NewMemoryStore(), client, notifier, locations,
		engine.WithLogger(log),
	)

	return eng.SendStartupTest(ctx)
}

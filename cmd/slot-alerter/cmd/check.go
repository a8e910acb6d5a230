package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/globalentry/slot-alerter/internal/engine"
	"github.com/globalentry/slot-alerter/internal/notify"
	"github.com/globalentry/slot-alerter/pkg/logger"
)

var checkDryRun bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single availability check cycle and exit",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().
		BoolVar(&checkDryRun, "dry-run", false, "log new slots instead of sending notifications")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	client := newSchedulerClient(cfg)

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}
	if checkDryRun {
		notifier = notify.NewNoOpNotifier(log)
	}

	locations := engine.ResolveLocations(ctx, client, cfg.Locations, log)

	eng := engine.NewEngine(st, client, notifier, locations,
		engine.WithLogger(log),
		engine.WithStaggerOffset(cfg.Schedule.StaggerOffset),
		engine.WithBatchThreshold(cfg.Alerts.BatchThreshold),
	)

	return eng.RunCheck(ctx)
}

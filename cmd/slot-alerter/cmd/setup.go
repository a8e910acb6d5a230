package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/globalentry/slot-alerter/internal/config"
	"github.com/globalentry/slot-alerter/internal/notify"
	"github.com/globalentry/slot-alerter/internal/store"
	"github.com/globalentry/slot-alerter/internal/ttp"
)

// newStore builds the seen-slot store for the configured backend. The
// postgres backend runs migrations before returning so callers never see an
// unmigrated schema.
func newStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "postgres":
		st, err := store.NewPostgresStore(ctx, cfg.Store.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("using postgres seen-slot store", "host", cfg.Store.Database.Host)
		return st, nil
	default:
		log.Info("using in-memory seen-slot store")
		return store.NewMemoryStore(), nil
	}
}

// newNotifier builds the notifier for the configured backend.
func newNotifier(cfg *config.Config, log *slog.Logger) (notify.Notifier, error) {
	switch cfg.Notifications.Backend {
	case "ntfy":
		return notify.NewNtfyNotifier(
			cfg.Notifications.Ntfy.Topic,
			notify.WithNtfyServer(cfg.Notifications.Ntfy.Server),
		), nil
	case "discord":
		return notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL), nil
	case "noop":
		return notify.NewNoOpNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", cfg.Notifications.Backend)
	}
}

// newSchedulerClient builds the TTP scheduler API client with its rate
// limiter.
func newSchedulerClient(cfg *config.Config) *ttp.Client {
	limiter := ttp.NewRateLimiter(
		cfg.SchedulerAPI.RateLimit.PerSecond,
		cfg.SchedulerAPI.RateLimit.Burst,
		cfg.SchedulerAPI.RateLimit.DailyLimit,
	)

	return ttp.NewClient(
		ttp.WithSlotsURL(cfg.SchedulerAPI.SlotsURL),
		ttp.WithLocationsURL(cfg.SchedulerAPI.LocationsURL),
		ttp.WithUserAgent(cfg.SchedulerAPI.UserAgent),
		ttp.WithSlotLimit(cfg.SchedulerAPI.SlotLimit),
		ttp.WithWindowDays(cfg.SchedulerAPI.WindowDays),
		ttp.WithHTTPClient(&http.Client{Timeout: cfg.SchedulerAPI.Timeout}),
		ttp.WithRateLimiter(limiter),
	)
}

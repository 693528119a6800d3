package calendars

import (
	"fmt"

	"cal-sync/core/calendar"
	"cal-sync/core/config"
	"cal-sync/core/storage"
	"cal-sync/feature/calendars/icsstore"
	"cal-sync/feature/calendars/sqlstore"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// OpenBackend builds the calendar backend selected by cfg.Backend.Kind.
func OpenBackend(cfg *config.Config, logger *zap.Logger) (calendar.Backend, error) {
	if !cfg.Backend.IsValidKind() {
		return nil, fmt.Errorf("unsupported backend kind %q", cfg.Backend.Kind)
	}

	switch cfg.Backend.Kind {
	case config.BackendICS:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		return icsstore.New(client, icsstore.Config{
			Bucket:       cfg.Storage.Bucket,
			Prefix:       cfg.Storage.Prefix,
			Region:       cfg.Storage.Region,
			CreateBucket: cfg.Storage.CreateBucket,
		}, logger, clockwork.NewRealClock()), nil
	default:
		store, err := sqlstore.Open(cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open calendar database: %w", err)
		}
		return store, nil
	}
}

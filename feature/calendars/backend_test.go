package calendars

import (
	"context"
	"testing"

	"cal-sync/core/calendar"
	"cal-sync/core/config"
	"cal-sync/core/database"
	"cal-sync/core/storage"
	"cal-sync/feature/calendars/icsstore"
	"cal-sync/feature/calendars/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend(t *testing.T) {
	t.Run("sql", func(t *testing.T) {
		cfg := &config.Config{
			Backend:  config.BackendConfig{Kind: config.BackendSQL},
			Database: database.Config{Driver: database.DriverSQLite, Name: ":memory:", CommitMode: "per_item"},
		}
		b, err := OpenBackend(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &sqlstore.Store{}, b)
		assert.Equal(t, calendar.CommitPerItem, b.CommitMode())

		collections, err := b.ListCollections(context.Background())
		require.NoError(t, err)
		assert.Empty(t, collections)
	})

	t.Run("ics", func(t *testing.T) {
		cfg := &config.Config{
			Backend: config.BackendConfig{Kind: config.BackendICS},
			Storage: storage.Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "calendars"},
		}
		b, err := OpenBackend(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &icsstore.Store{}, b)
		assert.Equal(t, calendar.CommitAtomic, b.CommitMode())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := OpenBackend(&config.Config{Backend: config.BackendConfig{Kind: "caldav"}}, nil)
		assert.ErrorContains(t, err, "caldav")
	})

	t.Run("bad commit mode", func(t *testing.T) {
		cfg := &config.Config{
			Backend:  config.BackendConfig{Kind: config.BackendSQL},
			Database: database.Config{Driver: database.DriverSQLite, Name: ":memory:", CommitMode: "sometimes"},
		}
		_, err := OpenBackend(cfg, nil)
		assert.Error(t, err)
	})
}

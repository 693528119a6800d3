package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverMySQL,
			Host:           "127.0.0.1",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "calendars",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "postgres"})
		assert.ErrorContains(t, err, "unsupported database driver")
		assert.Nil(t, db)
	})

	t.Run("SQLite Memory", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
		assert.NoError(t, err)
		assert.NotNil(t, db)
	})
}

func TestConfig_IsValidDriver(t *testing.T) {
	assert.True(t, Config{Driver: DriverSQLite}.IsValidDriver())
	assert.True(t, Config{Driver: DriverMySQL}.IsValidDriver())
	assert.False(t, Config{Driver: "oracle"}.IsValidDriver())
}

// Package config provides configuration management for cal-sync.
//
// It utilizes Viper for loading configuration from struct tag defaults, an
// optional YAML file (~/.cal-sync/config.yaml unless --config is given), a .env
// file and environment variables. Environment keys replace dots with
// underscores, so SYNC_DRY_RUN sets sync.dry_run.
//
// # Configuration Structure
//
//   - Sync: source and destination calendars, prefix, windows, synced fields
//   - Backend: which calendar store to use (sql, ics)
//   - Database: SQL store connection and commit mode
//   - Storage: S3/MinIO bucket holding ICS calendars
//   - Server: HTTP port, API key and cron schedule
//   - Log: logging level and format
//
//	cfg, err := config.LoadConfig(".", "")
//	if err != nil {
//	    return err
//	}
package config

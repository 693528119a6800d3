package server

import "github.com/robfig/cron/v3"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Schedule is an optional cron expression that triggers sync runs.
	Schedule string `mapstructure:"schedule" default:""`
}

// ScheduleParser accepts standard five-field expressions and descriptors
// such as @every 15m.
var ScheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// IsValidSchedule checks if the configured schedule parses. An empty schedule
// is valid and disables scheduled runs.
func (c Config) IsValidSchedule() bool {
	if c.Schedule == "" {
		return true
	}
	_, err := ScheduleParser.Parse(c.Schedule)
	return err == nil
}

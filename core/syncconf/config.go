package syncconf

import (
	"fmt"
	"strings"
	"time"

	"cal-sync/core/fingerprint"
	"cal-sync/core/marker"
	"cal-sync/core/reconcile"
)

// DefaultPrefix is the marker prefix used when none is configured.
const DefaultPrefix = "cal-sync"

// Config holds the options of one sync relationship.
type Config struct {
	// SourceCalendar is the ID of the collection that is mirrored.
	SourceCalendar string `mapstructure:"source_calendar" default:""`
	// DestinationCalendar is the ID of the collection that receives copies.
	DestinationCalendar string `mapstructure:"destination_calendar" default:""`
	// Prefix names the sync relationship inside markers.
	Prefix string `mapstructure:"prefix" default:"cal-sync"`

	// HistoryDays is how far back source entries are mirrored.
	HistoryDays int `mapstructure:"history_days" default:"7"`
	// FutureDays is how far ahead source entries are mirrored.
	FutureDays int `mapstructure:"future_days" default:"14"`
	// DestinationWindowDays is how far around now owned copies are inspected.
	DestinationWindowDays int `mapstructure:"destination_window_days" default:"200"`

	SyncTitle        bool `mapstructure:"sync_title" default:"true"`
	SyncLocation     bool `mapstructure:"sync_location" default:"true"`
	SyncNotes        bool `mapstructure:"sync_notes" default:"true"`
	SyncAvailability bool `mapstructure:"sync_availability" default:"true"`

	DryRun  bool `mapstructure:"dry_run" default:"false"`
	Verbose bool `mapstructure:"verbose" default:"false"`
	// Force is accepted for compatibility and has no effect.
	Force bool `mapstructure:"force" default:"false"`

	// MaxAuthWait bounds the backend access check.
	MaxAuthWait time.Duration `mapstructure:"max_auth_wait" default:"20s"`
}

// Default returns the configuration with every default applied.
func Default() Config {
	return Config{
		Prefix:                DefaultPrefix,
		HistoryDays:           7,
		FutureDays:            14,
		DestinationWindowDays: 200,
		SyncTitle:             true,
		SyncLocation:          true,
		SyncNotes:             true,
		SyncAvailability:      true,
		MaxAuthWait:           20 * time.Second,
	}
}

// Fields returns the optional fields selected for syncing.
func (c Config) Fields() fingerprint.Fields {
	return fingerprint.Fields{
		Title:        c.SyncTitle,
		Location:     c.SyncLocation,
		Notes:        c.SyncNotes,
		Availability: c.SyncAvailability,
	}
}

// Options returns the reconcile options derived from c.
func (c Config) Options() reconcile.Options {
	return reconcile.Options{
		Prefix:  c.Prefix,
		Fields:  c.Fields(),
		DryRun:  c.DryRun,
		Verbose: c.Verbose,
	}
}

// Windows returns the source and destination windows anchored at now.
func (c Config) Windows(now time.Time) (reconcile.Window, reconcile.Window) {
	return reconcile.Windows(now, c.HistoryDays, c.FutureDays, c.DestinationWindowDays)
}

// Validate reports the first configuration problem found. It does not talk to
// any backend.
func (c Config) Validate() error {
	if c.SourceCalendar == "" {
		return ErrNoSource
	}
	if c.DestinationCalendar == "" {
		return ErrNoDestination
	}
	if err := c.ValidatePrefix(); err != nil {
		return err
	}
	return c.ValidateWindow()
}

// ValidatePrefix checks the prefix alone.
func (c Config) ValidatePrefix() error {
	if c.Prefix == "" {
		return ErrNoPrefix
	}
	if strings.Contains(c.Prefix, marker.Sep) {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidPrefix, c.Prefix, marker.Sep)
	}
	return nil
}

// ValidateWindow checks the window sizes alone.
func (c Config) ValidateWindow() error {
	if c.HistoryDays < 0 || c.FutureDays < 0 || c.DestinationWindowDays < 0 {
		return fmt.Errorf("%w: window sizes must not be negative", ErrInvalidWindow)
	}
	if c.HistoryDays+c.FutureDays == 0 {
		return fmt.Errorf("%w: source window is empty", ErrInvalidWindow)
	}
	if c.MaxAuthWait < 0 {
		return fmt.Errorf("%w: max_auth_wait must not be negative", ErrInvalidWindow)
	}
	return nil
}

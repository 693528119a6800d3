package cmd

import (
	"fmt"

	"cal-sync/core/calendar"
	"cal-sync/core/config"
	"cal-sync/core/logger"
	"cal-sync/core/syncconf"
	"cal-sync/feature/calendars"
	"cal-sync/feature/sync"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// syncFlags are the command line overrides of the sync section.
type syncFlags struct {
	source      string
	destination string
	prefix      string
	test        bool
	dryRun      bool
	noTitle     bool
	noLocation  bool
	noNotes     bool
	noAvail     bool
	verbose     bool
	force       bool
	historyDays int
	futureDays  int
}

func (f *syncFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.source, "src", "", "source calendar ID")
	fs.StringVar(&f.destination, "dst", "", "destination calendar ID")
	fs.StringVar(&f.prefix, "prefix", syncconf.DefaultPrefix, "marker prefix naming this sync relationship")
	fs.BoolVar(&f.test, "test", false, "test mode: report changes without applying them")
	fs.BoolVar(&f.dryRun, "dry-run", false, "alias for --test")
	fs.BoolVar(&f.noTitle, "no-title", false, "do not copy titles")
	fs.BoolVar(&f.noLocation, "no-location", false, "do not copy locations")
	fs.BoolVar(&f.noNotes, "no-notes", false, "do not copy notes")
	fs.BoolVar(&f.noAvail, "no-avail", false, "do not copy availability")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every action")
	fs.BoolVar(&f.force, "force", false, "accepted for compatibility, has no effect")
	fs.IntVar(&f.historyDays, "history-days", 7, "days before now to sync")
	fs.IntVar(&f.futureDays, "future-days", 14, "days after now to sync")
}

// apply overrides cfg with every flag given on the command line.
func (f *syncFlags) apply(fs *pflag.FlagSet, cfg *syncconf.Config) {
	if fs.Changed("src") {
		cfg.SourceCalendar = f.source
	}
	if fs.Changed("dst") {
		cfg.DestinationCalendar = f.destination
	}
	if fs.Changed("prefix") {
		cfg.Prefix = f.prefix
	}
	if fs.Changed("test") || fs.Changed("dry-run") {
		cfg.DryRun = f.test || f.dryRun
	}
	if fs.Changed("no-title") {
		cfg.SyncTitle = !f.noTitle
	}
	if fs.Changed("no-location") {
		cfg.SyncLocation = !f.noLocation
	}
	if fs.Changed("no-notes") {
		cfg.SyncNotes = !f.noNotes
	}
	if fs.Changed("no-avail") {
		cfg.SyncAvailability = !f.noAvail
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fs.Changed("force") {
		cfg.Force = f.force
	}
	if fs.Changed("history-days") {
		cfg.HistoryDays = f.historyDays
	}
	if fs.Changed("future-days") {
		cfg.FutureDays = f.futureDays
	}
}

// setup loads the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".", configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// newService opens the configured backend and wraps it in a sync service.
func newService(cfg *config.Config, l *zap.Logger) (*sync.Service, calendar.Backend, error) {
	backend, err := calendars.OpenBackend(cfg, l)
	if err != nil {
		return nil, nil, err
	}
	return sync.NewService(backend, cfg.Sync, l, clockwork.NewRealClock()), backend, nil
}

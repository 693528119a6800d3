package cmd

import (
	"fmt"

	"cal-sync/core/calendar"
	"cal-sync/feature/calendars"
	"cal-sync/feature/calendars/sqlstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	calendarTitle   string
	calendarAccount string
)

// calendarsCmd groups calendar management commands.
var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "Manage calendars of the SQL backend",
}

// addCalendarCmd registers a calendar in the SQL backend.
var addCalendarCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Create or rename a calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := setup()
		if err != nil {
			return err
		}
		defer l.Sync()

		backend, err := calendars.OpenBackend(cfg, l)
		if err != nil {
			return err
		}
		store, ok := backend.(*sqlstore.Store)
		if !ok {
			return fmt.Errorf("calendars can only be added to the sql backend, configured %q", cfg.Backend.Kind)
		}

		c := calendar.Collection{ID: args[0], Title: calendarTitle, Account: calendarAccount}
		if c.Title == "" {
			c.Title = c.ID
		}
		if err := store.PutCollection(cmd.Context(), c); err != nil {
			return err
		}
		l.Info("Calendar saved", zap.String("calendar", c.DisplayName()))
		return nil
	},
}

func init() {
	addCalendarCmd.Flags().StringVar(&calendarTitle, "title", "", "calendar title (defaults to the ID)")
	addCalendarCmd.Flags().StringVar(&calendarAccount, "account", "local", "account the calendar belongs to")
	calendarsCmd.AddCommand(addCalendarCmd)
	RootCmd.AddCommand(calendarsCmd)
}

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	runFlags   syncFlags
	syncOutput string
)

// syncCmd performs one sync pass.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the source calendar into the destination calendar",
	Long: `Copies new source entries into the destination, updates copies whose source
changed and deletes copies whose source is gone. Entries in the destination that
were not created by this relationship are left alone.

Examples:
  # Preview the changes
  cal-sync sync --src work --dst personal --test

  # Sync without copying titles or notes
  cal-sync sync --src work --dst personal --no-title --no-notes`,
	RunE: runSync,
}

func init() {
	runFlags.bind(syncCmd.Flags())
	syncCmd.Flags().StringVarP(&syncOutput, "output", "o", outputText, "report format (text, json, yaml)")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := validOutput(syncOutput); err != nil {
		return err
	}

	cfg, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()
	runFlags.apply(cmd.Flags(), &cfg.Sync)

	svc, _, err := newService(cfg, l)
	if err != nil {
		return err
	}

	report, err := svc.Run(cmd.Context())
	if report != nil {
		if printErr := printReport(cmd.OutOrStdout(), syncOutput, report); printErr != nil && err == nil {
			err = printErr
		}
	}
	return err
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	purgeFlags  syncFlags
	purgeOutput string
	yesConfirm  bool
)

// purgeCmd deletes every copy this relationship created.
var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every synced copy from the destination calendar",
	Long: `Deletes every destination entry carrying this relationship's marker inside the
destination window. Entries created by hand or by other relationships are kept.

Examples:
  # Preview what would be deleted
  cal-sync purge --dst personal --test

  # Purge without the confirmation prompt
  cal-sync purge --dst personal --yes`,
	RunE: runPurge,
}

func init() {
	purgeFlags.bind(purgeCmd.Flags())
	purgeCmd.Flags().StringVarP(&purgeOutput, "output", "o", outputText, "report format (text, json, yaml)")
	purgeCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the purge (non-interactive)")
	RootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	if err := validOutput(purgeOutput); err != nil {
		return err
	}

	cfg, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()
	purgeFlags.apply(cmd.Flags(), &cfg.Sync)

	if !cfg.Sync.DryRun && !confirmDestructiveAction(cmd.InOrStdin(), cmd.OutOrStdout(), yesConfirm) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	svc, _, err := newService(cfg, l)
	if err != nil {
		return err
	}

	report, err := svc.Purge(cmd.Context())
	if report != nil {
		if printErr := printReport(cmd.OutOrStdout(), purgeOutput, report); printErr != nil && err == nil {
			err = printErr
		}
	}
	return err
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes.
func confirmDestructiveAction(in io.Reader, out io.Writer, yes bool) bool {
	if yes {
		fmt.Fprintln(out, "Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "Type 'yes' to delete every synced copy: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

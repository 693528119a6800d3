package cmd

import (
	"fmt"
	"io"
	"strings"

	"cal-sync/feature/integrity"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var (
	checkFlags  syncFlags
	checkOutput string
)

// checkCmd reports the state of the sync relationship without changing it.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check backend access and the markers of synced copies",
	Long: `Checks that the backend is reachable and lists destination copies a sync run
would repair: stale copies, orphaned copies, malformed markers and duplicates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validOutput(checkOutput); err != nil {
			return err
		}

		cfg, l, err := setup()
		if err != nil {
			return err
		}
		defer l.Sync()
		checkFlags.apply(cmd.Flags(), &cfg.Sync)

		_, backend, err := newService(cfg, l)
		if err != nil {
			return err
		}

		report := integrity.NewService(backend, cfg.Sync, l, clockwork.NewRealClock()).CheckAll(cmd.Context())
		return printIntegrity(cmd.OutOrStdout(), checkOutput, report)
	},
}

func init() {
	checkFlags.bind(checkCmd.Flags())
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", outputText, "report format (text, json, yaml)")
	RootCmd.AddCommand(checkCmd)
}

// printIntegrity renders an integrity report in format.
func printIntegrity(w io.Writer, format string, report *integrity.Report) error {
	if done, err := encode(w, format, report); done {
		return err
	}

	b := report.Backend
	if b.Status != "ok" {
		deleteColor.Fprintf(w, "Backend: %s\n", b.Error)
		return nil
	}
	fmt.Fprintf(w, "Backend: %s (%d calendars, %s commits)\n", createColor.Sprint("ok"), b.Calendars, b.CommitMode)

	if report.Error != "" {
		deleteColor.Fprintf(w, "Markers: %s\n", report.Error)
		return nil
	}

	m := report.Markers
	status := createColor.Sprint(m.Status)
	if !m.Healthy() {
		status = bannerColor.Sprint(m.Status)
	}
	fmt.Fprintf(w, "Markers: %s (%d owned, %d current, %d foreign)\n", status, m.Owned, m.Current, m.Foreign)
	for _, group := range []struct {
		name string
		ids  []string
	}{
		{"stale", m.Stale},
		{"orphaned", m.Orphaned},
		{"malformed", m.Malformed},
		{"duplicates", m.Duplicates},
	} {
		if len(group.ids) > 0 {
			fmt.Fprintf(w, "  %s: %s\n", group.name, strings.Join(group.ids, ", "))
		}
	}
	return nil
}

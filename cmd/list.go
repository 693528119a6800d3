package cmd

import (
	"github.com/spf13/cobra"
)

var listOutput string

// listCmd prints the visible calendars.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the calendars of every account",
	Long:  `Lists the calendars visible to the configured backend, grouped by account.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validOutput(listOutput); err != nil {
			return err
		}

		cfg, l, err := setup()
		if err != nil {
			return err
		}
		defer l.Sync()

		svc, _, err := newService(cfg, l)
		if err != nil {
			return err
		}

		accounts, err := svc.ListCalendars(cmd.Context())
		if err != nil {
			return err
		}
		return printAccounts(cmd.OutOrStdout(), listOutput, accounts)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", outputText, "output format (text, json, yaml)")
	RootCmd.AddCommand(listCmd)
}

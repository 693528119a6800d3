package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"cal-sync/core/reconcile"
	"cal-sync/feature/sync"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	bannerColor = color.New(color.FgYellow, color.Bold)
	createColor = color.New(color.FgGreen)
	updateColor = color.New(color.FgCyan)
	deleteColor = color.New(color.FgRed)
	accentColor = color.New(color.Bold)
)

func validOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (text, json, yaml)", format)
	}
}

// encode writes v as JSON or YAML. It reports false for the text format.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// printReport renders a run report in format.
func printReport(w io.Writer, format string, report *sync.Report) error {
	if done, err := encode(w, format, report); done {
		return err
	}

	if report.DryRun {
		bannerColor.Fprintln(w, "TEST MODE!!")
	}
	if report.Source != nil {
		fmt.Fprintf(w, "Sync from calendar %s\n", accentColor.Sprint(report.Source.DisplayName()))
	}
	fmt.Fprintf(w, "to calendar %s\n", accentColor.Sprint(report.Destination.DisplayName()))

	if report.UpToDate() {
		fmt.Fprintln(w, "All events are up to date")
		return nil
	}

	for _, action := range report.Plan.Actions {
		printAction(w, action)
	}

	s := report.Plan.Summary
	fmt.Fprintf(w, "%d created, %d updated, %d deleted, %d unchanged\n", s.Creates, s.Updates, s.Deletes, s.Unchanged)
	if report.Result != nil && report.Result.Failed > 0 {
		deleteColor.Fprintf(w, "%d actions failed\n", report.Result.Failed)
	}
	return nil
}

func printAction(w io.Writer, action reconcile.Action) {
	subject := action.Subject()
	if subject == nil {
		return
	}

	c, verb := createColor, "Create"
	switch action.Type {
	case reconcile.ActionUpdate:
		c, verb = updateColor, "Update"
	case reconcile.ActionDelete:
		c, verb = deleteColor, "Delete"
	}
	fmt.Fprintf(w, "%s event %q at %s (%s)\n",
		c.Sprint(verb), subject.Title, subject.Start.Format("2006-01-02 15:04"), action.Reason)
}

// printAccounts renders the calendars of every account in format.
func printAccounts(w io.Writer, format string, accounts []sync.Account) error {
	if accounts == nil {
		accounts = []sync.Account{}
	}
	if done, err := encode(w, format, accounts); done {
		return err
	}

	if len(accounts) == 0 {
		fmt.Fprintln(w, "No calendars found")
		return nil
	}
	for _, account := range accounts {
		accentColor.Fprintln(w, account.Name)
		for _, c := range account.Calendars {
			fmt.Fprintf(w, "  %q (%s)\n", c.Title, c.ID)
		}
	}
	return nil
}

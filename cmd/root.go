package cmd

import (
	"fmt"
	"os"

	"cal-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configFile is the YAML config file given with --config.
var configFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cal-sync",
	Short: "One-way calendar sync",
	Long: `cal-sync mirrors the entries of a source calendar into a destination calendar.
Copies are tagged with a marker so they can be updated or removed on later runs,
while entries created by hand in the destination are never touched.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development preset for readable CLI errors
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.cal-sync/config.yaml)")
}

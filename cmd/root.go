package cmd

import (
	"os"

	"github.com/dnsweep/dnsweep/config"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var (
	version   = "undefined"
	buildTime = "undefined"

	configPath string
	cfg        config.Config
)

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "dnsweep",
	Short: "dnsweep is a bulk DNSSEC-aware domain scanner",
	Long: `A bulk scanner resolving selected resource record types with DNSSEC
validation for a large list of domains and persisting the decoded
records in a database.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yml", "path to config file")
}

// Execute runs the root command and exits non-zero on malformed arguments
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

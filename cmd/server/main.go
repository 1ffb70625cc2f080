package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vinodismyname/mcprealty/config"
	"github.com/vinodismyname/mcprealty/pkg/version"
)

var (
	cfgFile  string
	logLevel string

	// Loaded configuration, set before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "mcprealty",
	Short:         "Real-estate locality insights over MCP",
	Long:          `mcprealty answers questions such as "Compare Aundh and Wakad" against a spreadsheet or database of yearly locality prices and sales, over MCP stdio or from the command line.`,
	Version:       version.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = logLevel
		}
		cfg = c
		return nil
	},
}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (env: REALTY_*, .env also read)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(serveCmd, queryCmd, areasCmd, profileCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

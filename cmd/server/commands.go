package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vinodismyname/mcprealty/internal/insights"
	"github.com/vinodismyname/mcprealty/pkg/validation"
)

var (
	flagDataset string
	flagLimit   int
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Answer one question and print the JSON payload",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cliApp()
		if err != nil {
			return err
		}
		ctx, cancel := a.opContext(cmd.Context())
		defer cancel()
		in := insights.AnalyzeInput{Query: strings.Join(args, " "), SourceInput: insights.SourceInput{Dataset: flagDataset}}
		if msg := validation.ValidateStruct(in); msg != "" {
			return errors.New(msg)
		}
		out, err := a.analyst.Analyze(ctx, in)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List distinct localities in the dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cliApp()
		if err != nil {
			return err
		}
		ctx, cancel := a.opContext(cmd.Context())
		defer cancel()
		out, err := a.analyst.Areas(ctx, insights.AreasInput{SourceInput: insights.SourceInput{Dataset: flagDataset}, Limit: flagLimit})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, area := range out.Areas {
			fmt.Fprintln(w, area)
		}
		if out.Truncated {
			fmt.Fprintf(os.Stderr, "(truncated at %d; use --limit)\n", out.Count)
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show how the dataset is interpreted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cliApp()
		if err != nil {
			return err
		}
		ctx, cancel := a.opContext(cmd.Context())
		defer cancel()
		out, err := a.analyst.Profile(ctx, insights.SourceInput{Dataset: flagDataset})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{queryCmd, areasCmd, profileCmd} {
		c.Flags().StringVar(&flagDataset, "dataset", "", "dataset path or postgres:// URL (default: configured dataset)")
	}
	areasCmd.Flags().IntVar(&flagLimit, "limit", 0, "maximum localities to list (default from config)")
	configCmd.AddCommand(configShowCmd)
}

func cliApp() (*app, error) {
	return newApp(cfg, newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

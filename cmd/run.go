package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/showlens/internal/insights"
	"github.com/KaramelBytes/showlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	runFormat string
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run <analysis...>",
	Short: "Run one or more analyses and print the result tables",
	Long: `Run named analyses (see 'showlens list') over the configured dataset.
Use 'all' to run every analysis whose parameters are available.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(runFormat)
		if err != nil {
			return err
		}
		p, err := buildParams()
		if err != nil {
			return err
		}
		// Validate names before touching the dataset.
		var names []string
		all := false
		for _, a := range args {
			if strings.EqualFold(a, "all") {
				all = true
				continue
			}
			an, ok := insights.Lookup(a)
			if !ok {
				return fmt.Errorf("unknown analysis: %s (see 'showlens list')", a)
			}
			names = append(names, an.Name)
		}

		c, _, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		var tables []*insights.Table
		if all {
			ts, skipped, err := insights.RunAll(c, p)
			if err != nil {
				return err
			}
			tables = ts
			for _, s := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipped %s (missing parameter)\n", s)
			}
		} else {
			for _, n := range names {
				t, err := insights.Run(c, n, p)
				if err != nil {
					return err
				}
				tables = append(tables, t)
			}
		}

		var buf bytes.Buffer
		for i, t := range tables {
			if i > 0 && format == insights.FormatMarkdown {
				buf.WriteString("\n")
			}
			if err := insights.Write(&buf, t, format); err != nil {
				return err
			}
		}
		if runOutput != "" {
			if err := utils.SafeWriteFile(runOutput, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d analysis table(s) to %s\n", len(tables), runOutput)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addDatasetFlags(runCmd)
	addParamFlags(runCmd)
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "output format: markdown|csv|json|yaml (overrides config)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "optional path to write the output instead of stdout")
}

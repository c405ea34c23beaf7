package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/showlens/internal/insights"
	"github.com/KaramelBytes/showlens/internal/report"
	"github.com/KaramelBytes/showlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	repOut    string
	repName   string
	repFormat string
	repQuiet  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run every analysis and write the tables into a report directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(repFormat)
		if err != nil {
			return err
		}
		p, err := buildParams()
		if err != nil {
			return err
		}
		c, label, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}

		name := repName
		if name == "" {
			name = "showlens-" + time.Now().Format("20060102-150405")
		}
		dir := repOut
		if dir == "" {
			root := ""
			if cfg != nil {
				root = cfg.ReportsDir
			}
			dir = filepath.Join(root, name)
		}
		b, err := report.New(name, label, format, dir)
		if err != nil {
			return err
		}
		b.Params = paramsSummary(p)

		out := cmd.OutOrStdout()
		all := insights.Analyses()
		for i, a := range all {
			if !repQuiet {
				fmt.Fprintf(out, "[%d/%d] %s...\n", i+1, len(all), a.Name)
			}
			t, err := a.Run(c, p)
			if err != nil {
				if errors.Is(err, insights.ErrMissingParam) {
					b.Skipped = append(b.Skipped, a.Name)
					continue
				}
				return err
			}
			if err := b.Add(t); err != nil {
				return err
			}
		}
		if err := b.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Wrote %d analyses to %s\n", len(b.Entries), b.RootDir())
		if len(b.Skipped) > 0 {
			fmt.Fprintf(out, "  Skipped (missing parameters): %v\n", b.Skipped)
		}
		return nil
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show [dir]",
	Short: "Print the index of a report directory",
	Long: `Print the index of a report bundle. The bundle is found by walking up from
dir (default: the current directory) to the nearest report.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := ""
		if len(args) == 1 {
			start = args[0]
		}
		dir, err := utils.FindUp(start, "report.json")
		if err != nil {
			return fmt.Errorf("locate report: %w", err)
		}
		b, err := report.Load(dir)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), b.Index())
		return nil
	},
}

func paramsSummary(p insights.Params) map[string]any {
	m := map[string]any{"keyword_mode": p.Classifier.Mode.String()}
	set := func(k string, v any, zero bool) {
		if !zero {
			m[k] = v
		}
	}
	set("top_n", p.TopN, p.TopN == 0)
	set("year", p.Year, p.Year == 0)
	set("country", p.Country, p.Country == "")
	set("director", p.Director, p.Director == "")
	set("actor", p.Actor, p.Actor == "")
	set("genre", p.Genre, p.Genre == "")
	set("within_years", p.WithinYears, p.WithinYears == 0)
	set("min_seasons", p.MinSeasons, p.MinSeasons == 0)
	set("lag_years", p.LagYears, p.LagYears == 0)
	set("reference_date", p.Reference.Format(time.DateOnly), p.Reference.IsZero())
	return m
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportShowCmd)
	addDatasetFlags(reportCmd)
	addParamFlags(reportCmd)
	reportCmd.Flags().StringVar(&repOut, "out", "", "report directory (default: <reports_dir>/<name>)")
	reportCmd.Flags().StringVar(&repName, "name", "", "report name (default: timestamped)")
	reportCmd.Flags().StringVarP(&repFormat, "format", "f", "", "table format: markdown|csv|json|yaml (overrides config)")
	reportCmd.Flags().BoolVarP(&repQuiet, "quiet", "q", false, "suppress per-analysis progress output")
}

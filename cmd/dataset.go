package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
	"github.com/KaramelBytes/showlens/internal/insights"
	"github.com/KaramelBytes/showlens/internal/source"
	"github.com/spf13/cobra"
)

// Dataset flags shared by run and report.
var (
	dsData    string
	dsSource  string
	dsDB      string
	dsTable   string
	dsMaxRows int
)

// Analysis parameter flags shared by run and report.
var (
	prTop         int
	prYear        int
	prCountry     string
	prDirector    string
	prActor       string
	prGenre       string
	prWithinYears int
	prMinSeasons  int
	prLagYears    int
	prReference   string
	prKeywordMode string
)

func addDatasetFlags(c *cobra.Command) {
	c.Flags().StringVarP(&dsData, "data", "d", "", "catalog CSV/TSV file (overrides config data_path)")
	c.Flags().StringVar(&dsSource, "source", "", "dataset source: csv|duckdb (overrides config)")
	c.Flags().StringVar(&dsDB, "db", "", "DuckDB database file for --source duckdb (overrides config duckdb_path)")
	c.Flags().StringVar(&dsTable, "table", "", "DuckDB table for --source duckdb (overrides config duckdb_table)")
	c.Flags().IntVar(&dsMaxRows, "max-rows", 0, "maximum rows to load (0 = config or unlimited)")
}

func addParamFlags(c *cobra.Command) {
	f := c.Flags()
	f.IntVarP(&prTop, "top", "n", 0, "top-N limit for ranked analyses (ties at the cut are kept)")
	f.IntVar(&prYear, "year", 0, "release year for releases_in_year (default: reference year)")
	f.StringVar(&prCountry, "country", "", "country for country_yearly_share (default India) and top_actors")
	f.StringVar(&prDirector, "director", "", "director for director_titles")
	f.StringVar(&prActor, "actor", "", "actor for actor_appearances")
	f.StringVar(&prGenre, "genre", "", "genre for genre_titles (default Documentaries)")
	f.IntVar(&prWithinYears, "within-years", 0, "window in years for recent_additions (5) and actor_appearances (10)")
	f.IntVar(&prMinSeasons, "min-seasons", 0, "season threshold for long_running_shows (5)")
	f.IntVar(&prLagYears, "lag-years", 0, "release-to-add gap threshold for late_additions (5)")
	f.StringVar(&prReference, "reference", "", "reference date YYYY-MM-DD (default: latest date_added)")
	f.StringVar(&prKeywordMode, "keyword-mode", "", "content keyword matching: substring|wholeword (overrides config)")
}

// openCatalog loads the catalog selected by flags and config. The returned
// label names the dataset for report headers.
func openCatalog(ctx context.Context) (*catalog.Catalog, string, error) {
	src, data, db, table := "csv", dsData, dsDB, dsTable
	opt := source.DefaultOptions()
	if cfg != nil {
		src = cfg.Source
		if data == "" {
			data = cfg.DataPath
		}
		if db == "" {
			db = cfg.DuckDBPath
		}
		if table == "" {
			table = cfg.DuckDBTable
		}
		if cfg.MaxRows > 0 {
			opt.MaxRows = cfg.MaxRows
		}
	}
	if dsSource != "" {
		src = strings.ToLower(dsSource)
	}
	if dsMaxRows > 0 {
		opt.MaxRows = dsMaxRows
	}

	var (
		c     *catalog.Catalog
		rep   *source.LoadReport
		err   error
		label string
	)
	switch src {
	case "csv", "":
		if data == "" {
			return nil, "", fmt.Errorf("no dataset: pass --data or set data_path")
		}
		c, rep, err = source.LoadCSV(data, opt)
		label = data
	case "duckdb":
		if db == "" {
			return nil, "", fmt.Errorf("no database: pass --db or set duckdb_path")
		}
		if table == "" {
			table = "titles"
		}
		conn, oerr := source.OpenDuckDB(db, true)
		if oerr != nil {
			return nil, "", oerr
		}
		defer conn.Close()
		c, rep, err = source.LoadDuckDB(ctx, conn, table, opt)
		label = db + ":" + table
	default:
		return nil, "", fmt.Errorf("unsupported --source: %s (use csv|duckdb)", src)
	}
	if err != nil {
		return nil, "", err
	}
	if n := len(rep.Warnings); n > 0 {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %d row(s) skipped or truncated while loading %s (use --debug for details)\n", n, label)
	}
	return c, label, nil
}

// buildParams merges parameter flags with config defaults.
func buildParams() (insights.Params, error) {
	p := insights.Params{
		TopN:        prTop,
		Year:        prYear,
		Country:     prCountry,
		Director:    prDirector,
		Actor:       prActor,
		Genre:       prGenre,
		WithinYears: prWithinYears,
		MinSeasons:  prMinSeasons,
		LagYears:    prLagYears,
	}
	ref, mode := prReference, prKeywordMode
	if cfg != nil {
		if p.TopN == 0 {
			p.TopN = cfg.TopN
		}
		if ref == "" {
			ref = cfg.ReferenceDate
		}
		if mode == "" {
			mode = cfg.KeywordMode
		}
		p.Classifier.Keywords = cfg.Keywords
	}
	if ref != "" {
		t, err := time.Parse(time.DateOnly, ref)
		if err != nil {
			return p, fmt.Errorf("invalid --reference: %s (use YYYY-MM-DD)", ref)
		}
		p.Reference = t
	}
	m, ok := classify.ParseMatchMode(mode)
	if !ok {
		return p, fmt.Errorf("invalid --keyword-mode: %s (use substring|wholeword)", mode)
	}
	p.Classifier.Mode = m
	return p, nil
}

// outputFormat resolves --format against config.
func outputFormat(flag string) (insights.Format, error) {
	if flag == "" && cfg != nil {
		flag = cfg.Format
	}
	return insights.ParseFormat(flag)
}

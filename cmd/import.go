package cmd

import (
	"fmt"

	"github.com/KaramelBytes/showlens/internal/source"
	"github.com/spf13/cobra"
)

var (
	impDB    string
	impTable string
)

var importCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Load a catalog CSV into a DuckDB table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := impDB
		if db == "" && cfg != nil {
			db = cfg.DuckDBPath
		}
		if db == "" {
			return fmt.Errorf("--db is required (or set duckdb_path)")
		}
		table := impTable
		if table == "" && cfg != nil {
			table = cfg.DuckDBTable
		}
		if table == "" {
			table = "titles"
		}
		conn, err := source.OpenDuckDB(db, false)
		if err != nil {
			return err
		}
		defer conn.Close()
		n, err := source.ImportCSVToDuckDB(cmd.Context(), conn, args[0], table)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d rows into %s (table %s)\n", n, db, table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&impDB, "db", "", "DuckDB database file (overrides config duckdb_path)")
	importCmd.Flags().StringVar(&impTable, "table", "", "table name (overrides config duckdb_table, default titles)")
}

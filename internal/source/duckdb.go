package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/logging"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkTable(table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("%q: %w", table, ErrInvalidTable)
	}
	return nil
}

// quoteIdent quotes an identifier that has already passed checkTable or is a
// canonical column name.
func quoteIdent(s string) string { return `"` + s + `"` }

// OpenDuckDB opens a DuckDB database file, or an in-memory database when path
// is empty or ":memory:".
func OpenDuckDB(path string, readOnly bool) (*sql.DB, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" || dsn == ":memory:" {
		dsn = ":memory:"
	} else if readOnly {
		dsn += "?access_mode=read_only"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return db, nil
}

// ImportCSVToDuckDB replaces table with the contents of csvPath, every column
// read as text. It returns the number of rows imported.
func ImportCSVToDuckDB(ctx context.Context, db *sql.DB, csvPath, table string) (int, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	lit := "'" + strings.ReplaceAll(csvPath, "'", "''") + "'"
	stmt := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s, header=true, all_varchar=true)", quoteIdent(table), lit)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return 0, fmt.Errorf("import csv: %w", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT count(*) FROM "+quoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	logging.Info().Str("file", csvPath).Str("table", table).Int("rows", n).Msg("imported csv")
	return n, nil
}

// tableColumns lists the column names of table in declaration order.
func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position", table)
	if err != nil {
		return nil, fmt.Errorf("describe table: %w", err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("describe table: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe table: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return cols, nil
}

// LoadDuckDB reads a catalog from a DuckDB table with the same columns as the
// CSV export. NULLs load as empty strings.
func LoadDuckDB(ctx context.Context, db *sql.DB, table string, opt Options) (*catalog.Catalog, *LoadReport, error) {
	if err := checkTable(table); err != nil {
		return nil, nil, err
	}
	cols, err := tableColumns(ctx, db, table)
	if err != nil {
		return nil, nil, err
	}
	idx, err := mapColumns(cols)
	if err != nil {
		return nil, nil, fmt.Errorf("table %s: %w", table, err)
	}

	exprs := make([]string, numColumns)
	for c, i := range idx {
		if i < 0 {
			exprs[c] = "NULL"
			continue
		}
		exprs[c] = fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(strings.ReplaceAll(cols[i], `"`, `""`)))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), quoteIdent(table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	name := opt.Name
	if name == "" {
		name = table
	}
	b := newBuilder(name, opt)
	vals := make([]sql.NullString, numColumns)
	dest := make([]any, numColumns)
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, b.rep, fmt.Errorf("scan %s: %w", table, err)
		}
		var rec record
		for i, v := range vals {
			rec[i] = v.String
		}
		b.add(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, b.rep, fmt.Errorf("query %s: %w", table, err)
	}
	return b.finish()
}

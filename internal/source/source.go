// Package source materializes a catalog from a CSV export or a DuckDB table.
package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/logging"
)

var (
	// ErrMissingColumn is returned when a required column is absent from the input.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidTable is returned for a table name that is not a plain identifier.
	ErrInvalidTable = errors.New("invalid table name")
	// ErrInvalidYear marks a row whose release_year is not an integer.
	ErrInvalidYear = errors.New("release_year is not an integer")
	// ErrInvalidType marks a row whose type is neither Movie nor TV Show.
	ErrInvalidType = errors.New("type is not Movie or TV Show")
)

// Options controls loading.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Name overrides the catalog name (defaults to the file or table name).
	Name string
}

// DefaultOptions returns reasonable defaults for loading.
func DefaultOptions() Options {
	return Options{MaxRows: 1000000}
}

// RowError describes a skipped input row. Row is 1-based and counts data rows only.
type RowError struct {
	Row int
	ID  string
	Err error
}

func (e *RowError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("row %d (%s): %v", e.Row, e.ID, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// LoadReport summarizes a load.
type LoadReport struct {
	Name     string
	Rows     int
	Loaded   int
	Skipped  []*RowError
	Warnings []string
}

type column int

const (
	colShowID column = iota
	colType
	colTitle
	colDirector
	colCast
	colCountry
	colDateAdded
	colReleaseYear
	colRating
	colDuration
	colListedIn
	colDescription
	numColumns
)

var columnNames = [numColumns]string{
	"show_id", "type", "title", "director", "cast", "country",
	"date_added", "release_year", "rating", "duration", "listed_in", "description",
}

var required = []column{colShowID, colType, colTitle, colReleaseYear}

// aliases maps alternative header spellings to canonical names.
var aliases = map[string]string{
	"casts":  "cast",
	"id":     "show_id",
	"genres": "listed_in",
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.Join(strings.Fields(h), "_")
	if a, ok := aliases[h]; ok {
		return a
	}
	return h
}

// mapColumns returns, for each canonical column, its index in header or -1.
func mapColumns(header []string) ([numColumns]int, error) {
	var idx [numColumns]int
	for i := range idx {
		idx[i] = -1
	}
	for i, h := range header {
		n := normalizeHeader(h)
		for c, name := range columnNames {
			if n == name && idx[c] < 0 {
				idx[c] = i
			}
		}
	}
	var missing []string
	for _, c := range required {
		if idx[c] < 0 {
			missing = append(missing, columnNames[c])
		}
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrMissingColumn)
	}
	return idx, nil
}

type record [numColumns]string

// builder turns records into titles, skipping rows that cannot be keyed.
type builder struct {
	rep    *LoadReport
	max    int
	titles []catalog.Title
	seen   map[string]struct{}
}

func newBuilder(name string, opt Options) *builder {
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	return &builder{rep: &LoadReport{Name: name}, max: maxRows, seen: map[string]struct{}{}}
}

func (b *builder) add(rec record) {
	b.rep.Rows++
	if b.rep.Loaded >= b.max {
		return
	}
	id := strings.TrimSpace(rec[colShowID])
	if id == "" {
		b.skip(&RowError{Row: b.rep.Rows, Err: catalog.ErrEmptyID})
		return
	}
	if _, dup := b.seen[id]; dup {
		b.skip(&RowError{Row: b.rep.Rows, ID: id, Err: catalog.ErrDuplicateID})
		return
	}
	year, err := strconv.Atoi(strings.TrimSpace(rec[colReleaseYear]))
	if err != nil {
		b.skip(&RowError{Row: b.rep.Rows, ID: id, Err: ErrInvalidYear})
		return
	}
	kind := catalog.ParseKind(rec[colType])
	if kind == catalog.KindUnknown {
		b.skip(&RowError{Row: b.rep.Rows, ID: id, Err: ErrInvalidType})
		return
	}
	b.seen[id] = struct{}{}
	b.titles = append(b.titles, catalog.Title{
		ShowID:      id,
		Kind:        kind,
		Title:       strings.TrimSpace(rec[colTitle]),
		Director:    strings.TrimSpace(rec[colDirector]),
		Cast:        strings.TrimSpace(rec[colCast]),
		Country:     strings.TrimSpace(rec[colCountry]),
		DateAdded:   strings.TrimSpace(rec[colDateAdded]),
		ReleaseYear: year,
		Rating:      strings.TrimSpace(rec[colRating]),
		Duration:    strings.TrimSpace(rec[colDuration]),
		ListedIn:    strings.TrimSpace(rec[colListedIn]),
		Description: strings.TrimSpace(rec[colDescription]),
	})
	b.rep.Loaded++
}

func (b *builder) skip(e *RowError) {
	logging.Debug().Str("source", b.rep.Name).Int("row", e.Row).Str("id", e.ID).Err(e.Err).Msg("skipping row")
	b.rep.Skipped = append(b.rep.Skipped, e)
	b.rep.Warnings = append(b.rep.Warnings, e.Error())
}

func (b *builder) finish() (*catalog.Catalog, *LoadReport, error) {
	considered := b.rep.Loaded + len(b.rep.Skipped)
	if considered < b.rep.Rows {
		b.rep.Warnings = append(b.rep.Warnings, fmt.Sprintf("loaded only %d/%d rows due to MaxRows", b.rep.Loaded, b.rep.Rows))
	}
	if len(b.rep.Skipped) > 0 {
		logging.Warn().Str("source", b.rep.Name).Int("skipped", len(b.rep.Skipped)).Msg("skipped malformed rows")
	}
	c, err := catalog.New(b.rep.Name, b.titles)
	if err != nil {
		return nil, b.rep, fmt.Errorf("build catalog: %w", err)
	}
	logging.Info().Str("source", b.rep.Name).Int("titles", c.Len()).Msg("catalog loaded")
	return c, b.rep, nil
}

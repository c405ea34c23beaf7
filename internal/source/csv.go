package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/showlens/internal/catalog"
)

// LoadCSV reads a catalog export with a header row. Malformed rows are skipped
// and listed in the report; a missing required column is an error.
func LoadCSV(path string, opt Options) (*catalog.Catalog, *LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	name := opt.Name
	if name == "" {
		name = filepath.Base(path)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return ReadCSV(f, name, delim, opt)
}

// ReadCSV is LoadCSV over an open reader.
func ReadCSV(in io.Reader, name string, delim rune, opt Options) (*catalog.Catalog, *LoadReport, error) {
	r := csv.NewReader(in)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("read header: %s: empty file", name)
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := mapColumns(header)
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	b := newBuilder(name, opt)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				b.rep.Rows++
				b.skip(&RowError{Row: b.rep.Rows, Err: err})
				continue
			}
			return nil, b.rep, fmt.Errorf("read csv: %w", err)
		}
		var rec record
		for c, i := range idx {
			if i >= 0 && i < len(row) {
				rec[c] = row[i]
			}
		}
		b.add(rec)
	}
	return b.finish()
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

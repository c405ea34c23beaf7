package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/showlens/internal/catalog"
)

const sampleCSV = `show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description
s1,Movie,Dick Johnson Is Dead,Kirsten Johnson,,United States,"September 25, 2021",2020,PG-13,90 min,Documentaries,"As her father nears the end of his life, a filmmaker stages his death."
s2,TV Show,Blood & Water,,"Ama Qamata, Khosi Ngema",South Africa,"September 24, 2021",2021,TV-MA,2 Seasons,"International TV Shows, TV Dramas, TV Mysteries",After crossing paths at a party.
,Movie,No Id,,,,,2020,,,,
s3,Movie,Bad Year,,,,,unknown,,,,
s1,Movie,Duplicate,,,,,2020,,,,
s4,TV Show,Kota Factory,,Mayur More,India,"September 24, 2021",2021,TV-MA,2 Seasons,"International TV Shows, Romantic TV Shows",Students prep.
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "titles.csv", sampleCSV)
	c, rep, err := LoadCSV(path, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if c.Len() != 3 || rep.Loaded != 3 || rep.Rows != 6 {
		t.Fatalf("loaded %d titles, report %+v", c.Len(), rep)
	}
	if c.Name() != "titles.csv" {
		t.Fatalf("name = %q", c.Name())
	}
	if len(rep.Skipped) != 3 {
		t.Fatalf("expected 3 skipped rows, got %v", rep.Warnings)
	}
	if !errors.Is(rep.Skipped[0], catalog.ErrEmptyID) ||
		!errors.Is(rep.Skipped[1], ErrInvalidYear) ||
		!errors.Is(rep.Skipped[2], catalog.ErrDuplicateID) {
		t.Fatalf("unexpected skip reasons: %v", rep.Warnings)
	}
	if rep.Skipped[1].Row != 4 || !strings.Contains(rep.Warnings[1], "row 4 (s3)") {
		t.Fatalf("unexpected row numbering: %v", rep.Warnings)
	}

	s2, ok := c.Lookup("s2")
	if !ok {
		t.Fatalf("s2 missing")
	}
	if s2.Kind != catalog.KindTVShow || s2.ReleaseYear != 2021 || s2.Cast != "Ama Qamata, Khosi Ngema" {
		t.Fatalf("s2 = %+v", s2)
	}
	if got := catalog.Split(s2.ListedIn); len(got) != 3 || got[2] != "TV Mysteries" {
		t.Fatalf("listed_in = %v", got)
	}
	if s1, _ := c.Lookup("s1"); s1.Title != "Dick Johnson Is Dead" {
		t.Fatalf("first s1 should win, got %q", s1.Title)
	}
}

func TestLoadCSVHeaderAliasesAndTSV(t *testing.T) {
	content := "\ufeffShow ID\tType\tTitle\tCasts\tRelease Year\n" +
		"s9\tmovie\tAlias\tA, B\t1999\n"
	path := writeFile(t, "titles.tsv", content)
	c, _, err := LoadCSV(path, Options{})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	s9, ok := c.Lookup("s9")
	if !ok || s9.Kind != catalog.KindMovie || s9.Cast != "A, B" || s9.ReleaseYear != 1999 {
		t.Fatalf("s9 = %+v", s9)
	}
}

func TestLoadCSVSkipsUnknownType(t *testing.T) {
	content := "show_id,type,title,release_year\n" +
		"s1,Movie,A,2020\n" +
		"s2,TV Show,B,2021\n" +
		"s3,Film,C,2019\n" +
		"s4,,D,2018\n"
	c, rep, err := LoadCSV(writeFile(t, "types.csv", content), Options{})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if c.Len() != 2 || len(rep.Skipped) != 2 {
		t.Fatalf("loaded %d titles, skipped %v", c.Len(), rep.Warnings)
	}
	for _, e := range rep.Skipped {
		if !errors.Is(e, ErrInvalidType) {
			t.Fatalf("unexpected skip reason: %v", e)
		}
	}
	if rep.Skipped[0].ID != "s3" || rep.Skipped[0].Row != 3 {
		t.Fatalf("skipped = %+v", rep.Skipped[0])
	}
	movies, shows := 0, 0
	for title := range c.All() {
		switch title.Kind {
		case catalog.KindMovie:
			movies++
		case catalog.KindTVShow:
			shows++
		}
	}
	if movies+shows != c.Len() {
		t.Fatalf("types do not partition catalog: %d + %d != %d", movies, shows, c.Len())
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeFile(t, "bad.csv", "show_id,title\ns1,x\n")
	_, _, err := LoadCSV(path, Options{})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "type, release_year") {
		t.Fatalf("error should name missing columns: %v", err)
	}
}

func TestLoadCSVMaxRows(t *testing.T) {
	path := writeFile(t, "titles.csv", sampleCSV)
	c, rep, err := LoadCSV(path, Options{MaxRows: 1})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 title, got %d", c.Len())
	}
	last := rep.Warnings[len(rep.Warnings)-1]
	if last != "loaded only 1/6 rows due to MaxRows" {
		t.Fatalf("unexpected warning %q", last)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDuckDBRoundTrip(t *testing.T) {
	path := writeFile(t, "titles.csv", sampleCSV)
	db, err := OpenDuckDB(":memory:", false)
	if err != nil {
		t.Fatalf("OpenDuckDB: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	n, err := ImportCSVToDuckDB(ctx, db, path, "titles")
	if err != nil {
		t.Fatalf("ImportCSVToDuckDB: %v", err)
	}
	if n != 6 {
		t.Fatalf("imported %d rows, want 6", n)
	}

	c, rep, err := LoadDuckDB(ctx, db, "titles", Options{})
	if err != nil {
		t.Fatalf("LoadDuckDB: %v", err)
	}
	if c.Len() != 3 || len(rep.Skipped) != 3 {
		t.Fatalf("loaded %d titles, skipped %v", c.Len(), rep.Warnings)
	}
	s2, _ := c.Lookup("s2")
	if s2.Director != "" || s2.Country != "South Africa" || s2.DateAdded != "September 24, 2021" {
		t.Fatalf("s2 = %+v", s2)
	}
}

func TestDuckDBTableValidation(t *testing.T) {
	db, err := OpenDuckDB("", false)
	if err != nil {
		t.Fatalf("OpenDuckDB: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	if _, _, err := LoadDuckDB(ctx, db, "titles; DROP TABLE x", Options{}); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
	if _, err := ImportCSVToDuckDB(ctx, db, "x.csv", "1bad"); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
	if _, _, err := LoadDuckDB(ctx, db, "missing_table", Options{}); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

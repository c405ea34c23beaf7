// Package report persists the tables of one analysis run as a directory bundle
// with a report.json manifest.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/KaramelBytes/showlens/internal/insights"
	"github.com/KaramelBytes/showlens/internal/utils"
)

const (
	manifestName = "report.json"
	indexName    = "README.md"
)

// ErrNotBundle is returned when a directory holds files but no manifest.
var ErrNotBundle = errors.New("directory is not empty and has no report.json")

// Entry records one rendered analysis.
type Entry struct {
	Analysis string `json:"analysis"`
	Title    string `json:"title"`
	File     string `json:"file"`
	Rows     int    `json:"rows"`
}

// Bundle is a report directory.
type Bundle struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Source    string          `json:"source"`
	Format    insights.Format `json:"format"`
	Params    map[string]any  `json:"params,omitempty"`
	Skipped   []string        `json:"skipped,omitempty"`
	Entries   []Entry         `json:"entries"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Not serialized: on-disk location of the report.json
	rootDir string
}

// New constructs a bundle rooted at dir. Call Save() to persist. A directory
// that already holds report.json is reopened with its id, creation time and
// entries; any other non-empty directory is refused.
func New(name, source string, format insights.Format, dir string) (*Bundle, error) {
	_, err := os.Stat(filepath.Join(dir, manifestName))
	switch {
	case err == nil:
		b, lerr := Load(dir)
		if lerr != nil {
			return nil, lerr
		}
		b.Name = name
		b.Source = source
		b.Format = format
		b.Skipped = nil
		return b, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("inspect dir: %w", err)
	}
	empty, err := utils.IsEmptyDir(dir)
	if err != nil {
		return nil, fmt.Errorf("inspect dir: %w", err)
	}
	if !empty {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotBundle)
	}
	now := time.Now()
	return &Bundle{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   dir,
	}, nil
}

// Load reads report.json from the provided directory.
func Load(dir string) (*Bundle, error) {
	path := filepath.Join(dir, manifestName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("report not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Bundle
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	r.rootDir = dir
	return &r, nil
}

// RootDir returns the on-disk bundle directory path.
func (r *Bundle) RootDir() string { return r.rootDir }

// Add renders t into the bundle directory and records it. Re-adding an
// analysis replaces its entry.
func (r *Bundle) Add(t *insights.Table) error {
	if r.rootDir == "" {
		return errors.New("report root directory not set")
	}
	if err := utils.EnsureDir(r.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	var buf bytes.Buffer
	if err := insights.Write(&buf, t, r.Format); err != nil {
		return fmt.Errorf("render %s: %w", t.Name, err)
	}
	file := t.Name + "." + r.Format.Ext()
	if err := utils.SafeWriteFile(filepath.Join(r.rootDir, file), buf.Bytes()); err != nil {
		return err
	}
	e := Entry{Analysis: t.Name, Title: t.Title, File: file, Rows: len(t.Rows)}
	for i := range r.Entries {
		if r.Entries[i].Analysis == t.Name {
			if prev := r.Entries[i].File; prev != file {
				if err := os.Remove(filepath.Join(r.rootDir, prev)); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("remove %s: %w", prev, err)
				}
			}
			r.Entries[i] = e
			r.UpdatedAt = time.Now()
			return nil
		}
	}
	r.Entries = append(r.Entries, e)
	r.UpdatedAt = time.Now()
	return nil
}

// Save writes report.json and a README.md index using atomic writes.
func (r *Bundle) Save() error {
	if r.rootDir == "" {
		return errors.New("report root directory not set")
	}
	if err := utils.EnsureDir(r.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	r.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(filepath.Join(r.rootDir, manifestName), data); err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(r.rootDir, indexName), []byte(r.Index()))
}

// Index renders a markdown table of contents for the bundle.
func (r *Bundle) Index() string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(r.Name)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "- Source: %s\n- Created: %s\n- Report ID: %s\n\n", r.Source, r.CreatedAt.Format(time.RFC3339), r.ID)
	sb.WriteString("| Analysis | Rows | File |\n| --- | --- | --- |\n")
	for _, e := range r.Entries {
		fmt.Fprintf(&sb, "| %s | %d | [%s](%s) |\n", e.Title, e.Rows, e.File, e.File)
	}
	if len(r.Skipped) > 0 {
		sb.WriteString("\nSkipped (missing parameters): ")
		sb.WriteString(strings.Join(r.Skipped, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Package catalog holds the title record model and the immutable dataset
// handle every analysis reads from.
package catalog

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	// ErrEmptyID is returned when a title has no show_id.
	ErrEmptyID = errors.New("empty show_id")
	// ErrDuplicateID is returned when two titles share a show_id.
	ErrDuplicateID = errors.New("duplicate show_id")
)

// Catalog is a read-only collection of titles. The atomic values of every
// multi-value field are split once at construction.
type Catalog struct {
	name   string
	titles []Title
	byID   map[string]int
	values [numFields][][]string
}

// New validates ids and builds a catalog from a copy of titles.
func New(name string, titles []Title) (*Catalog, error) {
	c := &Catalog{
		name:   name,
		titles: make([]Title, len(titles)),
		byID:   make(map[string]int, len(titles)),
	}
	copy(c.titles, titles)
	for i, t := range c.titles {
		id := strings.TrimSpace(t.ShowID)
		if id == "" {
			return nil, fmt.Errorf("record %d: %w", i+1, ErrEmptyID)
		}
		if prev, ok := c.byID[id]; ok {
			return nil, fmt.Errorf("record %d repeats %q from record %d: %w", i+1, id, prev+1, ErrDuplicateID)
		}
		c.titles[i].ShowID = id
		c.byID[id] = i
	}
	for _, f := range Fields() {
		vals := make([][]string, len(c.titles))
		for i, t := range c.titles {
			vals[i] = Split(f.Raw(t))
		}
		c.values[f] = vals
	}
	return c, nil
}

// MustNew is New for fixtures; it panics on invalid input.
func MustNew(name string, titles []Title) *Catalog {
	c, err := New(name, titles)
	if err != nil {
		panic(err)
	}
	return c
}

// Name is the dataset label, usually the source file name.
func (c *Catalog) Name() string { return c.name }

// Len returns the number of titles.
func (c *Catalog) Len() int { return len(c.titles) }

// At returns the i-th title.
func (c *Catalog) At(i int) Title { return c.titles[i] }

// Lookup finds a title by show_id.
func (c *Catalog) Lookup(id string) (Title, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Title{}, false
	}
	return c.titles[i], true
}

// All yields every title in load order.
func (c *Catalog) All() iter.Seq[Title] {
	return func(yield func(Title) bool) {
		for _, t := range c.titles {
			if !yield(t) {
				return
			}
		}
	}
}

// Where yields the titles matching pred.
func (c *Catalog) Where(pred func(Title) bool) iter.Seq[Title] {
	return func(yield func(Title) bool) {
		for _, t := range c.titles {
			if pred(t) && !yield(t) {
				return
			}
		}
	}
}

// Values returns the cached atomic values of field f for the i-th title.
// The returned slice must not be modified.
func (c *Catalog) Values(f Field, i int) []string {
	if f < 0 || f >= numFields {
		return nil
	}
	return c.values[f][i]
}

// Expand yields (id, value) pairs of field f over the whole catalog using the
// cached split values.
func (c *Catalog) Expand(f Field) iter.Seq[Pair] {
	return c.ExpandWhere(f, func(Title) bool { return true })
}

// ExpandWhere is Expand restricted to titles matching pred.
func (c *Catalog) ExpandWhere(f Field, pred func(Title) bool) iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		if f < 0 || f >= numFields {
			return
		}
		for i, t := range c.titles {
			if !pred(t) {
				continue
			}
			for _, v := range c.values[f][i] {
				if !yield(Pair{ID: t.ShowID, Value: v, Title: t}) {
					return
				}
			}
		}
	}
}

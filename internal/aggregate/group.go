// Package aggregate groups items by key, counts distinct ids per group and
// ranks the results.
package aggregate

import (
	"cmp"
	"iter"
	"math"
	"slices"
)

// Bucket is one group of a Grouper run. Count and every Filtered value are
// the number of distinct ids in the group.
type Bucket[K comparable] struct {
	Key      K
	Count    int
	Filtered map[string]int
}

type filter[T any] struct {
	name string
	pred func(T) bool
}

// Grouper counts distinct ids per key. Items whose key function reports
// false are left out of every group.
type Grouper[T any, K comparable] struct {
	id      func(T) string
	key     func(T) (K, bool)
	filters []filter[T]
}

// NewGrouper builds a Grouper from an id extractor and a key extractor.
func NewGrouper[T any, K comparable](id func(T) string, key func(T) (K, bool)) *Grouper[T, K] {
	return &Grouper[T, K]{id: id, key: key}
}

// Where adds a named filtered count restricted to items matching pred.
func (g *Grouper[T, K]) Where(name string, pred func(T) bool) *Grouper[T, K] {
	g.filters = append(g.filters, filter[T]{name: name, pred: pred})
	return g
}

// Run consumes items and returns one bucket per key in first-seen order.
func (g *Grouper[T, K]) Run(items iter.Seq[T]) []Bucket[K] {
	type acc struct {
		ids      map[string]struct{}
		filtered []map[string]struct{}
	}
	var order []K
	groups := map[K]*acc{}
	for it := range items {
		k, ok := g.key(it)
		if !ok {
			continue
		}
		a := groups[k]
		if a == nil {
			a = &acc{ids: map[string]struct{}{}, filtered: make([]map[string]struct{}, len(g.filters))}
			for i := range a.filtered {
				a.filtered[i] = map[string]struct{}{}
			}
			groups[k] = a
			order = append(order, k)
		}
		id := g.id(it)
		a.ids[id] = struct{}{}
		for i, f := range g.filters {
			if f.pred(it) {
				a.filtered[i][id] = struct{}{}
			}
		}
	}
	out := make([]Bucket[K], 0, len(order))
	for _, k := range order {
		a := groups[k]
		b := Bucket[K]{Key: k, Count: len(a.ids)}
		if len(g.filters) > 0 {
			b.Filtered = make(map[string]int, len(g.filters))
			for i, f := range g.filters {
				b.Filtered[f.name] = len(a.filtered[i])
			}
		}
		out = append(out, b)
	}
	return out
}

// CountDistinct returns the number of distinct ids among items.
func CountDistinct[T any](items iter.Seq[T], id func(T) string) int {
	seen := map[string]struct{}{}
	for it := range items {
		seen[id(it)] = struct{}{}
	}
	return len(seen)
}

// SortByCount orders buckets by descending count, then by tie.
func SortByCount[K comparable](buckets []Bucket[K], tie func(a, b K) int) {
	slices.SortStableFunc(buckets, func(a, b Bucket[K]) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if tie == nil {
			return 0
		}
		return tie(a.Key, b.Key)
	})
}

// SortByKey orders buckets by key using less-is-first comparison.
func SortByKey[K comparable](buckets []Bucket[K], compare func(a, b K) int) {
	slices.SortStableFunc(buckets, func(a, b Bucket[K]) int { return compare(a.Key, b.Key) })
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Share is part as a percentage of total, rounded to two decimals.
// A zero total yields 0.
func Share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) * 100.0 / float64(total))
}

package insights

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
)

// Column names shared by several analyses.
const (
	colTotal      = "total"
	colMovies     = "movies"
	colTVShows    = "tv_shows"
	colPercentage = "percentage"
	colRank       = "rank"
	colShowID     = "show_id"
	colTitle      = "title"
	colType       = "type"
)

func titleID(t catalog.Title) string { return t.ShowID }

func pairID(p catalog.Pair) string { return p.ID }

func pairValue(p catalog.Pair) (string, bool) { return p.Value, true }

// byType adds the movies/tv_shows filtered counts to a title grouper.
func byType[K comparable](key func(catalog.Title) (K, bool)) *aggregate.Grouper[catalog.Title, K] {
	return aggregate.NewGrouper(titleID, key).
		Where(colMovies, catalog.Title.IsMovie).
		Where(colTVShows, catalog.Title.IsTVShow)
}

// atomsByType groups expanded atoms by value with movies/tv_shows counts.
func atomsByType() *aggregate.Grouper[catalog.Pair, string] {
	return aggregate.NewGrouper(pairID, pairValue).
		Where(colMovies, func(p catalog.Pair) bool { return p.Title.IsMovie() }).
		Where(colTVShows, func(p catalog.Pair) bool { return p.Title.IsTVShow() })
}

// idsWithAtom returns the ids whose field f holds an atom equal to value,
// ignoring case.
func idsWithAtom(c *catalog.Catalog, f catalog.Field, value string) map[string]struct{} {
	ids := map[string]struct{}{}
	for p := range c.Expand(f) {
		if strings.EqualFold(p.Value, value) {
			ids[p.ID] = struct{}{}
		}
	}
	return ids
}

// referenceDate is p.Reference, or the latest parseable date_added.
func referenceDate(c *catalog.Catalog, p Params) (time.Time, bool) {
	if !p.Reference.IsZero() {
		return p.Reference, true
	}
	var latest time.Time
	found := false
	for t := range c.All() {
		if d, ok := classify.ParseDate(t.DateAdded); ok && (!found || d.After(latest)) {
			latest, found = d, true
		}
	}
	return latest, found
}

// referenceYear falls back to the newest release year when no date_added parses.
func referenceYear(c *catalog.Catalog, p Params) int {
	if ref, ok := referenceDate(c, p); ok {
		return ref.Year()
	}
	year := 0
	for t := range c.All() {
		year = max(year, t.ReleaseYear)
	}
	return year
}

func byShowID(a, b catalog.Title) int { return cmp.Compare(a.ShowID, b.ShowID) }

// titlesWhere collects the matching titles ordered by id.
func titlesWhere(c *catalog.Catalog, pred func(catalog.Title) bool) []catalog.Title {
	var out []catalog.Title
	for t := range c.Where(pred) {
		out = append(out, t)
	}
	slices.SortFunc(out, byShowID)
	return out
}

func addTypeCounts(t *Table, buckets []aggregate.Bucket[string]) {
	for _, b := range buckets {
		t.add(b.Key, b.Count, b.Filtered[colMovies], b.Filtered[colTVShows])
	}
}

func addRanked(t *Table, ranked []aggregate.Ranked[aggregate.Bucket[string]]) {
	for _, r := range ranked {
		t.add(r.Row.Key, r.Row.Count, r.Rank)
	}
}

// topBuckets ranks string buckets by count with competition numbering and
// keeps rank <= n, ties at the cut included.
func topBuckets(buckets []aggregate.Bucket[string], n int) ([]aggregate.Ranked[aggregate.Bucket[string]], error) {
	return aggregate.TopN(aggregate.RankBuckets(buckets, aggregate.Competition, strings.Compare), n)
}

package insights

import (
	"cmp"
	"slices"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
)

type measured struct {
	title catalog.Title
	value int
}

func movieMinutes(c *catalog.Catalog) []measured {
	var out []measured
	for t := range c.All() {
		if m, ok := classify.Minutes(t.Duration, t.Kind); ok {
			out = append(out, measured{t, m})
		}
	}
	return out
}

func showSeasons(c *catalog.Catalog) []measured {
	var out []measured
	for t := range c.All() {
		if s, ok := classify.Seasons(t.Duration, t.Kind); ok {
			out = append(out, measured{t, s})
		}
	}
	return out
}

func byValueDesc(a, b measured) int {
	if c := cmp.Compare(b.value, a.value); c != 0 {
		return c
	}
	return byShowID(a.title, b.title)
}

func longestMovies(c *catalog.Catalog, p Params) (*Table, error) {
	t := newTable("longest_movies", "Longest movies", colShowID, colTitle, "minutes", colRank)
	ranked, err := aggregate.Rank(movieMinutes(c), aggregate.Spec[measured, struct{}]{
		Score:  func(m measured) int { return m.value },
		Tie:    func(a, b measured) int { return byShowID(a.title, b.title) },
		Policy: aggregate.Competition,
	})
	if err != nil {
		return nil, err
	}
	top, err := aggregate.TopN(ranked, p.topN(10))
	if err != nil {
		return nil, err
	}
	for _, r := range top {
		t.add(r.Row.title.ShowID, r.Row.title.Title, r.Row.value, r.Rank)
	}
	return t, nil
}

func durationBuckets(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("duration_buckets", "Movies by duration bucket", "bucket", colTotal, colPercentage)
	movies := movieMinutes(c)
	counts := map[classify.Bucket]int{}
	for _, m := range movies {
		counts[classify.DurationBucket(m.value)]++
	}
	for _, b := range classify.Buckets() {
		t.add(string(b), counts[b], aggregate.Share(counts[b], len(movies)))
	}
	return t, nil
}

func movieDurationStats(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("movie_duration_stats", "Movie running time", colMovies, "min_minutes", "max_minutes", "avg_minutes")
	movies := movieMinutes(c)
	if len(movies) == 0 {
		t.add(0, 0, 0, 0.0)
		return t, nil
	}
	lo, hi, sum := movies[0].value, movies[0].value, 0
	for _, m := range movies {
		lo, hi = min(lo, m.value), max(hi, m.value)
		sum += m.value
	}
	t.add(len(movies), lo, hi, aggregate.Round2(float64(sum)/float64(len(movies))))
	return t, nil
}

func longRunningShows(c *catalog.Catalog, p Params) (*Table, error) {
	t := newTable("long_running_shows", "Long running TV shows", colShowID, colTitle, "seasons")
	limit := orInt(p.MinSeasons, 5)
	var rows []measured
	for _, s := range showSeasons(c) {
		if s.value > limit {
			rows = append(rows, s)
		}
	}
	slices.SortFunc(rows, byValueDesc)
	for _, r := range rows {
		t.add(r.title.ShowID, r.title.Title, r.value)
	}
	return t, nil
}

func seasonDistribution(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("season_distribution", "TV shows by season count", "seasons", colTotal)
	g := aggregate.NewGrouper(func(m measured) string { return m.title.ShowID }, func(m measured) (int, bool) { return m.value, true })
	buckets := g.Run(slices.Values(showSeasons(c)))
	aggregate.SortByKey(buckets, cmp.Compare[int])
	for _, b := range buckets {
		t.add(b.Key, b.Count)
	}
	return t, nil
}

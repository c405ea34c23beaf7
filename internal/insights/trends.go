package insights

import (
	"cmp"
	"slices"
	"time"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
)

func titlesByReleaseYear(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("titles_by_release_year", "Titles by release year", "release_year", colTotal, colMovies, colTVShows)
	buckets := byType(func(t catalog.Title) (int, bool) { return t.ReleaseYear, t.ReleaseYear > 0 }).Run(c.All())
	aggregate.SortByKey(buckets, func(a, b int) int { return cmp.Compare(b, a) })
	for _, b := range buckets {
		t.add(b.Key, b.Count, b.Filtered[colMovies], b.Filtered[colTVShows])
	}
	return t, nil
}

func titlesByYearAdded(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("titles_by_year_added", "Titles by year added", "year_added", colTotal, colMovies, colTVShows)
	buckets := byType(func(t catalog.Title) (int, bool) { return classify.YearAdded(t.DateAdded) }).Run(c.All())
	aggregate.SortByKey(buckets, cmp.Compare[int])
	for _, b := range buckets {
		t.add(b.Key, b.Count, b.Filtered[colMovies], b.Filtered[colTVShows])
	}
	return t, nil
}

func titlesByMonthAdded(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("titles_by_month_added", "Titles by month added", "month", colTotal)
	g := aggregate.NewGrouper(titleID, func(t catalog.Title) (time.Month, bool) { return classify.MonthAdded(t.DateAdded) })
	counts := map[time.Month]int{}
	for _, b := range g.Run(c.All()) {
		counts[b.Key] = b.Count
	}
	for m := time.January; m <= time.December; m++ {
		t.add(m.String(), counts[m])
	}
	return t, nil
}

type dated struct {
	title catalog.Title
	added time.Time
}

func recentAdditions(c *catalog.Catalog, p Params) (*Table, error) {
	t := newTable("recent_additions", "Recent additions", colShowID, colTitle, colType, "date_added")
	ref, ok := referenceDate(c, p)
	if !ok {
		return t, nil
	}
	since := ref.AddDate(-orInt(p.WithinYears, 5), 0, 0)
	var rows []dated
	for title := range c.All() {
		d, ok := classify.ParseDate(title.DateAdded)
		if !ok || d.Before(since) || d.After(ref) {
			continue
		}
		rows = append(rows, dated{title, d})
	}
	slices.SortFunc(rows, func(a, b dated) int {
		if c := b.added.Compare(a.added); c != 0 {
			return c
		}
		return byShowID(a.title, b.title)
	})
	for _, r := range rows {
		t.add(r.title.ShowID, r.title.Title, r.title.Kind.String(), r.added.Format(time.DateOnly))
	}
	return t, nil
}

type lagged struct {
	title catalog.Title
	added int
	gap   int
}

func lateAdditions(c *catalog.Catalog, p Params) (*Table, error) {
	t := newTable("late_additions", "Titles added long after release", colShowID, colTitle, "release_year", "year_added", "years_gap")
	lag := orInt(p.LagYears, 5)
	var rows []lagged
	for title := range c.All() {
		if title.ReleaseYear <= 0 {
			continue
		}
		gap, ok := classify.YearsBetweenAddAndRelease(title.DateAdded, title.ReleaseYear)
		if !ok || gap <= lag {
			continue
		}
		rows = append(rows, lagged{title, title.ReleaseYear + gap, gap})
	}
	slices.SortFunc(rows, func(a, b lagged) int {
		if c := cmp.Compare(b.gap, a.gap); c != 0 {
			return c
		}
		return byShowID(a.title, b.title)
	})
	for _, r := range rows {
		t.add(r.title.ShowID, r.title.Title, r.title.ReleaseYear, r.added, r.gap)
	}
	return t, nil
}

func releasesInYear(c *catalog.Catalog, p Params) (*Table, error) {
	year := orInt(p.Year, referenceYear(c, p))
	t := newTable("releases_in_year", "Titles released in the year", colShowID, colTitle, colType)
	for _, title := range titlesWhere(c, func(t catalog.Title) bool { return t.ReleaseYear == year }) {
		t.add(title.ShowID, title.Title, title.Kind.String())
	}
	return t, nil
}

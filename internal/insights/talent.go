package insights

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
)

func topDirectors(c *catalog.Catalog, p Params) (*Table, error) {
	t := newTable("top_directors", "Top directors", "director", colTotal, colRank)
	buckets := aggregate.NewGrouper(pairID, pairValue).Run(c.Expand(catalog.FieldDirectors))
	top, err := topBuckets(buckets, p.topN(10))
	if err != nil {
		return nil, err
	}
	addRanked(t, top)
	return t, nil
}

// topActors counts movie appearances, restricted to one country when
// p.Country is set.
func topActors(c *catalog.Catalog, p Params) (*Table, error) {
	title := "Top movie actors"
	pred := catalog.Title.IsMovie
	if country := strings.TrimSpace(p.Country); country != "" {
		title += " in " + country
		ids := idsWithAtom(c, catalog.FieldCountries, country)
		pred = func(t catalog.Title) bool {
			_, ok := ids[t.ShowID]
			return ok && t.IsMovie()
		}
	}
	t := newTable("top_actors", title, "actor", colTotal, colRank)
	buckets := aggregate.NewGrouper(pairID, pairValue).Run(c.ExpandWhere(catalog.FieldCast, pred))
	top, err := topBuckets(buckets, p.topN(10))
	if err != nil {
		return nil, err
	}
	addRanked(t, top)
	return t, nil
}

func directorTitles(c *catalog.Catalog, p Params) (*Table, error) {
	director := strings.TrimSpace(p.Director)
	if director == "" {
		return nil, fmt.Errorf("director: %w", ErrMissingParam)
	}
	t := newTable("director_titles", "Titles directed by "+director, colShowID, colTitle, colType, "release_year")
	ids := idsWithAtom(c, catalog.FieldDirectors, director)
	for _, title := range titlesWhere(c, func(t catalog.Title) bool {
		_, ok := ids[t.ShowID]
		return ok
	}) {
		t.add(title.ShowID, title.Title, title.Kind.String(), title.ReleaseYear)
	}
	return t, nil
}

func actorAppearances(c *catalog.Catalog, p Params) (*Table, error) {
	actor := strings.TrimSpace(p.Actor)
	if actor == "" {
		return nil, fmt.Errorf("actor: %w", ErrMissingParam)
	}
	t := newTable("actor_appearances", "Movies with "+actor, colShowID, colTitle, "release_year")
	// Release years in (ref-N, ref], so N years including the reference year.
	since := referenceYear(c, p) - orInt(p.WithinYears, 10)
	ids := idsWithAtom(c, catalog.FieldCast, actor)
	rows := titlesWhere(c, func(t catalog.Title) bool {
		_, ok := ids[t.ShowID]
		return ok && t.IsMovie() && t.ReleaseYear > since
	})
	slices.SortStableFunc(rows, func(a, b catalog.Title) int { return cmp.Compare(b.ReleaseYear, a.ReleaseYear) })
	for _, r := range rows {
		t.add(r.ShowID, r.Title, r.ReleaseYear)
	}
	return t, nil
}

package insights

import (
	"cmp"
	"strings"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
)

func countryBreakdown(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("country_breakdown", "Titles by country", "country", colTotal, colMovies, colTVShows)
	buckets := atomsByType().Run(c.Expand(catalog.FieldCountries))
	aggregate.SortByCount(buckets, strings.Compare)
	addTypeCounts(t, buckets)
	return t, nil
}

func topCountries(c *catalog.Catalog, p Params) (*Table, error) {
	t := newTable("top_countries", "Top countries", "country", colTotal, colRank)
	buckets := aggregate.NewGrouper(pairID, pairValue).Run(c.Expand(catalog.FieldCountries))
	top, err := topBuckets(buckets, p.topN(5))
	if err != nil {
		return nil, err
	}
	addRanked(t, top)
	return t, nil
}

// countryYearlyShare ranks the years in which the country's titles were
// added by their share of all of that country's dated additions.
func countryYearlyShare(c *catalog.Catalog, p Params) (*Table, error) {
	country := orString(p.Country, "India")
	t := newTable("country_yearly_share", "Yearly share of "+country+" additions", "year_added", colTotal, colPercentage)
	ids := idsWithAtom(c, catalog.FieldCountries, country)
	inCountry := c.Where(func(t catalog.Title) bool {
		_, ok := ids[t.ShowID]
		return ok
	})
	buckets := aggregate.NewGrouper(titleID, func(t catalog.Title) (int, bool) {
		return classify.YearAdded(t.DateAdded)
	}).Run(inCountry)
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	ranked := aggregate.RankBuckets(buckets, aggregate.Competition, cmp.Compare[int])
	top, err := aggregate.TopN(ranked, p.topN(5))
	if err != nil {
		return nil, err
	}
	for _, r := range top {
		t.add(r.Row.Key, r.Row.Count, aggregate.Share(r.Row.Count, total))
	}
	return t, nil
}

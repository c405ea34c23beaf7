package insights

import (
	"strings"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
)

func contentCategories(c *catalog.Catalog, p Params) (*Table, error) {
	t := newTable("content_categories", "Content categories", "category", colTotal, colMovies, colTVShows)
	buckets := byType(func(t catalog.Title) (string, bool) {
		return string(p.Classifier.Category(t.Description)), true
	}).Run(c.All())
	aggregate.SortByKey(buckets, strings.Compare)
	addTypeCounts(t, buckets)
	return t, nil
}

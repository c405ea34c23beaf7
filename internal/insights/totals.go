package insights

import (
	"strings"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
)

func totalTitles(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("total_titles", "Total titles", "total_titles")
	t.add(aggregate.CountDistinct(c.All(), titleID))
	return t, nil
}

func typeBuckets(c *catalog.Catalog) []aggregate.Bucket[string] {
	g := aggregate.NewGrouper(titleID, func(t catalog.Title) (string, bool) { return t.Kind.String(), true })
	buckets := g.Run(c.All())
	aggregate.SortByCount(buckets, strings.Compare)
	return buckets
}

func countByType(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("count_by_type", "Titles by type", colType, colTotal)
	for _, b := range typeBuckets(c) {
		t.add(b.Key, b.Count)
	}
	return t, nil
}

func typeShare(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("type_share", "Type share", colType, colTotal, colPercentage)
	total := aggregate.CountDistinct(c.All(), titleID)
	for _, b := range typeBuckets(c) {
		t.add(b.Key, b.Count, aggregate.Share(b.Count, total))
	}
	return t, nil
}

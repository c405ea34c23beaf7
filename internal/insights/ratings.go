package insights

import (
	"cmp"
	"slices"
	"strings"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
)

func ratingKey(t catalog.Title) (string, bool) {
	r := strings.TrimSpace(t.Rating)
	return r, !classify.IsMissing(r)
}

func ratingDistribution(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("rating_distribution", "Titles by rating", "rating", colTotal, colPercentage)
	buckets := aggregate.NewGrouper(titleID, ratingKey).Run(c.All())
	aggregate.SortByCount(buckets, strings.Compare)
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	for _, b := range buckets {
		t.add(b.Key, b.Count, aggregate.Share(b.Count, total))
	}
	return t, nil
}

type kindRating struct {
	kind   catalog.Kind
	rating string
}

func topRatingByType(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("top_rating_by_type", "Most common rating by type", colType, "rating", colTotal)
	buckets := aggregate.NewGrouper(titleID, func(t catalog.Title) (kindRating, bool) {
		r, ok := ratingKey(t)
		return kindRating{t.Kind, r}, ok
	}).Run(c.All())
	ranked, err := aggregate.Rank(buckets, aggregate.Spec[aggregate.Bucket[kindRating], catalog.Kind]{
		Partition: func(b aggregate.Bucket[kindRating]) catalog.Kind { return b.Key.kind },
		Score:     func(b aggregate.Bucket[kindRating]) int { return b.Count },
		Policy:    aggregate.Dense,
	})
	if err != nil {
		return nil, err
	}
	top, err := aggregate.TopN(ranked, 1)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(top, func(a, b aggregate.Ranked[aggregate.Bucket[kindRating]]) int {
		if c := cmp.Compare(a.Row.Key.kind.String(), b.Row.Key.kind.String()); c != 0 {
			return c
		}
		return strings.Compare(a.Row.Key.rating, b.Row.Key.rating)
	})
	for _, r := range top {
		t.add(r.Row.Key.kind.String(), r.Row.Key.rating, r.Row.Count)
	}
	return t, nil
}

package insights

import (
	"cmp"
	"slices"
	"strings"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
)

func genreBuckets(c *catalog.Catalog) []aggregate.Bucket[string] {
	buckets := atomsByType().Run(c.Expand(catalog.FieldGenres))
	aggregate.SortByCount(buckets, strings.Compare)
	return buckets
}

func genreCounts(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("genre_counts", "Titles by genre", "genre", colTotal, colMovies, colTVShows)
	addTypeCounts(t, genreBuckets(c))
	return t, nil
}

// genreShare divides by the number of titles, so shares of multi-genre
// titles overlap and need not sum to 100.
func genreShare(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("genre_share", "Genre share of catalog", "genre", colTotal, colPercentage)
	total := aggregate.CountDistinct(c.All(), titleID)
	for _, b := range genreBuckets(c) {
		t.add(b.Key, b.Count, aggregate.Share(b.Count, total))
	}
	return t, nil
}

type yearGenre struct {
	year  int
	genre string
}

func topGenresByYear(c *catalog.Catalog, p Params) (*Table, error) {
	t := newTable("top_genres_by_year", "Top genres per release year", "release_year", "genre", colTotal, colRank)
	g := aggregate.NewGrouper(pairID, func(p catalog.Pair) (yearGenre, bool) {
		return yearGenre{p.Title.ReleaseYear, p.Value}, p.Title.ReleaseYear > 0
	})
	buckets := g.Run(c.Expand(catalog.FieldGenres))
	ranked, err := aggregate.Rank(buckets, aggregate.Spec[aggregate.Bucket[yearGenre], int]{
		Partition: func(b aggregate.Bucket[yearGenre]) int { return b.Key.year },
		Score:     func(b aggregate.Bucket[yearGenre]) int { return b.Count },
		Tie: func(a, b aggregate.Bucket[yearGenre]) int {
			return strings.Compare(a.Key.genre, b.Key.genre)
		},
		Policy: aggregate.Dense,
	})
	if err != nil {
		return nil, err
	}
	top, err := aggregate.TopN(ranked, p.topN(3))
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(top, func(a, b aggregate.Ranked[aggregate.Bucket[yearGenre]]) int {
		return cmp.Compare(b.Row.Key.year, a.Row.Key.year)
	})
	for _, r := range top {
		t.add(r.Row.Key.year, r.Row.Key.genre, r.Row.Count, r.Rank)
	}
	return t, nil
}

func genreTitles(c *catalog.Catalog, p Params) (*Table, error) {
	genre := orString(p.Genre, "Documentaries")
	t := newTable("genre_titles", "Movies in "+genre, colShowID, colTitle, "release_year")
	ids := idsWithAtom(c, catalog.FieldGenres, genre)
	for _, title := range titlesWhere(c, func(t catalog.Title) bool {
		_, ok := ids[t.ShowID]
		return ok && t.IsMovie()
	}) {
		t.add(title.ShowID, title.Title, title.ReleaseYear)
	}
	return t, nil
}

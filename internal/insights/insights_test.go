package insights

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
)

func sample(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New("sample", []catalog.Title{
		{ShowID: "s1", Kind: catalog.KindMovie, Title: "Dick Johnson Is Dead", Director: "Kirsten Johnson", Country: "United States",
			DateAdded: "September 25, 2021", ReleaseYear: 2020, Rating: "PG-13", Duration: "90 min", ListedIn: "Documentaries",
			Description: "A filmmaker stages her father's death."},
		{ShowID: "s2", Kind: catalog.KindTVShow, Title: "Blood & Water", Cast: "Ama Qamata, Khosi Ngema", Country: "South Africa",
			DateAdded: "September 24, 2021", ReleaseYear: 2021, Rating: "TV-MA", Duration: "2 Seasons",
			ListedIn: "International TV Shows, TV Dramas", Description: "A girl sets out to kill the truth."},
		{ShowID: "s3", Kind: catalog.KindTVShow, Title: "Ganglands", Director: "Julien Leclercq", Cast: "Sami Bouajila",
			DateAdded: "September 24, 2021", ReleaseYear: 2021, Rating: "TV-MA", Duration: "1 Season",
			ListedIn: "Crime TV Shows, International TV Shows", Description: "A skilled thief."},
		{ShowID: "s4", Kind: catalog.KindMovie, Title: "Sankofa", Director: "Haile Gerima", Cast: "Kofi Ghanaba, Oyafunmike Ogunlano",
			Country: "United States, Ghana, India", DateAdded: "September 24, 2021", ReleaseYear: 1993, Rating: "TV-MA",
			Duration: "125 min", ListedIn: "Dramas, International Movies", Description: "An arrogant model."},
		{ShowID: "s5", Kind: catalog.KindMovie, Title: "The Starling", Director: "Theodore Melfi", Cast: "Melissa McCarthy, Kevin Kline",
			Country: "United States", DateAdded: "September 24, 2021", ReleaseYear: 2021, Rating: "PG-13", Duration: "104 min",
			ListedIn: "Comedies, Dramas", Description: "A woman adjusts to life."},
		{ShowID: "s6", Kind: catalog.KindMovie, Title: "Sankofa", Director: "Haile Gerima", Cast: "Kofi Ghanaba",
			Country: "India", DateAdded: "not a date", ReleaseYear: 2010, Rating: "", Duration: "200 min",
			ListedIn: "Dramas", Description: "A remake."},
		{ShowID: "s7", Kind: catalog.KindTVShow, Title: "Kota Factory", Cast: "Mayur More", Country: "India",
			DateAdded: "September 24, 2014", ReleaseYear: 2005, Rating: "TV-MA", Duration: "7 Seasons",
			ListedIn: "International TV Shows, TV Dramas", Description: "Students prep."},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func mustRun(t *testing.T, c *catalog.Catalog, name string, p Params) *Table {
	t.Helper()
	tbl, err := Run(c, name, p)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return tbl
}

func rows(tbl *Table) [][]any {
	out := make([][]any, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		out = append(out, []any(r))
	}
	return out
}

func TestRegistryComplete(t *testing.T) {
	if got := len(Analyses()); got != 31 {
		t.Fatalf("expected 31 analyses, got %d", got)
	}
	seen := map[string]bool{}
	for _, a := range Analyses() {
		if seen[a.Name] {
			t.Fatalf("duplicate analysis %s", a.Name)
		}
		seen[a.Name] = true
		if a.run == nil || a.Description == "" || a.Group == "" {
			t.Fatalf("incomplete registration for %s", a.Name)
		}
	}
	if _, ok := Lookup("Top-Countries"); !ok {
		t.Fatalf("lookup should accept case and dashes")
	}
	if _, err := Run(sample(t), "nope", Params{}); !errors.Is(err, ErrUnknownAnalysis) {
		t.Fatalf("expected ErrUnknownAnalysis, got %v", err)
	}
}

func TestTypeCountsPartitionCatalog(t *testing.T) {
	c := sample(t)
	total := mustRun(t, c, "total_titles", Params{}).Rows[0][0].(int)
	byType := mustRun(t, c, "count_by_type", Params{})
	sum := 0
	for _, r := range byType.Rows {
		sum += r[1].(int)
	}
	if total != 7 || sum != total {
		t.Fatalf("type counts %d do not partition total %d", sum, total)
	}
	want := [][]any{{"Movie", 4}, {"TV Show", 3}}
	if got := rows(byType); !reflect.DeepEqual(got, want) {
		t.Fatalf("count_by_type = %v, want %v", got, want)
	}
}

func TestTypeShareSumsTo100(t *testing.T) {
	share := mustRun(t, sample(t), "type_share", Params{})
	sum := 0.0
	for _, r := range share.Rows {
		sum += r[2].(float64)
	}
	if sum < 99.99 || sum > 100.01 {
		t.Fatalf("shares sum to %.2f", sum)
	}
}

func TestMissingDirectorPercentage(t *testing.T) {
	var titles []catalog.Title
	for i := range 10 {
		tl := catalog.Title{ShowID: fmt.Sprintf("s%d", i), Kind: catalog.KindMovie, Director: "Someone"}
		if i < 2 {
			tl.Director = []string{"", "   "}[i]
		}
		titles = append(titles, tl)
	}
	tbl := mustRun(t, catalog.MustNew("ten", titles), "missing_metadata", Params{})
	if tbl.Rows[0][0] != "director" {
		t.Fatalf("first field = %v", tbl.Rows[0][0])
	}
	if got := tbl.Rows[0][3].(float64); got != 20.00 {
		t.Fatalf("missing director = %.2f, want 20.00", got)
	}
	if got := tbl.Rows[0][1].(int); got != 2 {
		t.Fatalf("missing count = %d", got)
	}
}

func TestCountryBreakdownEndToEnd(t *testing.T) {
	c := catalog.MustNew("three", []catalog.Title{
		{ShowID: "id1", Kind: catalog.KindMovie, Country: "India, USA"},
		{ShowID: "id2", Kind: catalog.KindTVShow, Country: "India"},
		{ShowID: "id3", Kind: catalog.KindMovie},
	})
	tbl := mustRun(t, c, "country_breakdown", Params{})
	want := [][]any{{"India", 2, 1, 1}, {"USA", 1, 1, 0}}
	if got := rows(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("country_breakdown = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"country", "total", "movies", "tv_shows"}) {
		t.Fatalf("columns = %v", tbl.Columns)
	}
}

func TestRepeatedAtomCountsTitleOnce(t *testing.T) {
	c := catalog.MustNew("repeat", []catalog.Title{
		{ShowID: "s1", Kind: catalog.KindMovie, ListedIn: "Dramas, Dramas", Country: "India, India"},
		{ShowID: "s2", Kind: catalog.KindTVShow, ListedIn: "Dramas", Country: "India"},
	})
	genres := mustRun(t, c, "genre_counts", Params{})
	if want := [][]any{{"Dramas", 2, 1, 1}}; !reflect.DeepEqual(rows(genres), want) {
		t.Fatalf("genre_counts = %v, want %v", rows(genres), want)
	}
	countries := mustRun(t, c, "country_breakdown", Params{})
	if want := [][]any{{"India", 2, 1, 1}}; !reflect.DeepEqual(rows(countries), want) {
		t.Fatalf("country_breakdown = %v, want %v", rows(countries), want)
	}
	share := mustRun(t, c, "genre_share", Params{})
	if got := share.Rows[0][2].(float64); got != 100.0 {
		t.Fatalf("genre_share = %v", rows(share))
	}
}

func TestTopCountriesKeepsTies(t *testing.T) {
	var titles []catalog.Title
	add := func(country string, n int) {
		for range n {
			titles = append(titles, catalog.Title{ShowID: fmt.Sprintf("s%d", len(titles)), Kind: catalog.KindMovie, Country: country})
		}
	}
	add("A", 5)
	add("B", 5)
	add("C", 5)
	add("D", 3)
	c := catalog.MustNew("ties", titles)
	tbl := mustRun(t, c, "top_countries", Params{TopN: 3})
	want := [][]any{{"A", 5, 1}, {"B", 5, 1}, {"C", 5, 1}}
	if got := rows(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("top_countries = %v, want %v", got, want)
	}

	add("D", 2)
	tbl = mustRun(t, catalog.MustNew("ties", titles), "top_countries", Params{TopN: 3})
	if len(tbl.Rows) != 4 {
		t.Fatalf("all four tied countries should be kept, got %v", rows(tbl))
	}

	if _, err := Run(c, "top_countries", Params{TopN: -1}); !errors.Is(err, aggregate.ErrInvalidTopN) {
		t.Fatalf("expected ErrInvalidTopN, got %v", err)
	}
}

func TestGenreAnalyses(t *testing.T) {
	c := sample(t)
	counts := mustRun(t, c, "genre_counts", Params{})
	if got := counts.Rows[0]; !reflect.DeepEqual([]any(got), []any{"Dramas", 3, 3, 0}) {
		t.Fatalf("top genre row = %v", got)
	}
	top := mustRun(t, c, "top_genres_by_year", Params{TopN: 1})
	// In 2021 only International TV Shows is listed twice.
	if top.Rows[0][0] != 2021 || top.Rows[0][1] != "International TV Shows" || top.Rows[0][3] != 1 {
		t.Fatalf("first ranked row = %v", top.Rows[0])
	}
	docs := mustRun(t, c, "genre_titles", Params{})
	if want := [][]any{{"s1", "Dick Johnson Is Dead", 2020}}; !reflect.DeepEqual(rows(docs), want) {
		t.Fatalf("genre_titles = %v", rows(docs))
	}
}

func TestTopGenresByYearDenseRank(t *testing.T) {
	c := catalog.MustNew("dense", []catalog.Title{
		{ShowID: "a", Kind: catalog.KindMovie, ReleaseYear: 2020, ListedIn: "Drama, Comedy"},
		{ShowID: "b", Kind: catalog.KindMovie, ReleaseYear: 2020, ListedIn: "Drama, Horror"},
		{ShowID: "c", Kind: catalog.KindMovie, ReleaseYear: 2020, ListedIn: "Action"},
		{ShowID: "d", Kind: catalog.KindMovie, ReleaseYear: 2019, ListedIn: "Action"},
	})
	tbl := mustRun(t, c, "top_genres_by_year", Params{TopN: 2})
	want := [][]any{
		{2020, "Drama", 2, 1},
		{2020, "Action", 1, 2},
		{2020, "Comedy", 1, 2},
		{2020, "Horror", 1, 2},
		{2019, "Action", 1, 1},
	}
	if got := rows(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("top_genres_by_year = %v, want %v", got, want)
	}
}

func TestTrendAnalyses(t *testing.T) {
	c := sample(t)
	byYear := mustRun(t, c, "titles_by_year_added", Params{})
	want := [][]any{{2014, 1, 0, 1}, {2021, 5, 3, 2}}
	if got := rows(byYear); !reflect.DeepEqual(got, want) {
		t.Fatalf("titles_by_year_added = %v, want %v", got, want)
	}

	months := mustRun(t, c, "titles_by_month_added", Params{})
	if len(months.Rows) != 12 || months.Rows[8][0] != "September" || months.Rows[8][1] != 6 {
		t.Fatalf("titles_by_month_added = %v", rows(months))
	}

	recent := mustRun(t, c, "recent_additions", Params{WithinYears: 1})
	if len(recent.Rows) != 5 || recent.Rows[0][0] != "s1" || recent.Rows[1][0] != "s2" {
		t.Fatalf("recent_additions = %v", rows(recent))
	}

	late := mustRun(t, c, "late_additions", Params{})
	want = [][]any{{"s4", "Sankofa", 1993, 2021, 28}, {"s7", "Kota Factory", 2005, 2014, 9}}
	if got := rows(late); !reflect.DeepEqual(got, want) {
		t.Fatalf("late_additions = %v, want %v", got, want)
	}

	released := mustRun(t, c, "releases_in_year", Params{})
	want = [][]any{{"s2", "Blood & Water", "TV Show"}, {"s3", "Ganglands", "TV Show"}, {"s5", "The Starling", "Movie"}}
	if got := rows(released); !reflect.DeepEqual(got, want) {
		t.Fatalf("releases_in_year = %v, want %v", got, want)
	}
}

func TestRecentAdditionsHonoursReference(t *testing.T) {
	ref := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := mustRun(t, sample(t), "recent_additions", Params{Reference: ref, WithinYears: 2})
	if want := [][]any{{"s7", "Kota Factory", "TV Show", "2014-09-24"}}; !reflect.DeepEqual(rows(tbl), want) {
		t.Fatalf("recent_additions = %v", rows(tbl))
	}
}

func TestCountryYearlyShare(t *testing.T) {
	tbl := mustRun(t, sample(t), "country_yearly_share", Params{})
	// s6 has no parseable date, so India's dated additions are s4 (2021) and s7 (2014).
	want := [][]any{{2014, 1, 50.0}, {2021, 1, 50.0}}
	if got := rows(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("country_yearly_share = %v, want %v", got, want)
	}
}

func TestRatingAnalyses(t *testing.T) {
	c := sample(t)
	dist := mustRun(t, c, "rating_distribution", Params{})
	want := [][]any{{"TV-MA", 4, 66.67}, {"PG-13", 2, 33.33}}
	if got := rows(dist); !reflect.DeepEqual(got, want) {
		t.Fatalf("rating_distribution = %v, want %v", got, want)
	}
	top := mustRun(t, c, "top_rating_by_type", Params{})
	want = [][]any{{"Movie", "PG-13", 2}, {"TV Show", "TV-MA", 3}}
	if got := rows(top); !reflect.DeepEqual(got, want) {
		t.Fatalf("top_rating_by_type = %v, want %v", got, want)
	}
}

func TestDurationAnalyses(t *testing.T) {
	c := sample(t)
	longest := mustRun(t, c, "longest_movies", Params{TopN: 2})
	want := [][]any{{"s6", "Sankofa", 200, 1}, {"s4", "Sankofa", 125, 2}}
	if got := rows(longest); !reflect.DeepEqual(got, want) {
		t.Fatalf("longest_movies = %v, want %v", got, want)
	}

	buckets := mustRun(t, c, "duration_buckets", Params{})
	want = [][]any{{"Short", 0, 0.0}, {"Medium", 3, 75.0}, {"Long", 1, 25.0}}
	if got := rows(buckets); !reflect.DeepEqual(got, want) {
		t.Fatalf("duration_buckets = %v, want %v", got, want)
	}

	stats := mustRun(t, c, "movie_duration_stats", Params{})
	if want := []any{4, 90, 200, 129.75}; !reflect.DeepEqual([]any(stats.Rows[0]), want) {
		t.Fatalf("movie_duration_stats = %v", stats.Rows[0])
	}

	shows := mustRun(t, c, "long_running_shows", Params{})
	if want := [][]any{{"s7", "Kota Factory", 7}}; !reflect.DeepEqual(rows(shows), want) {
		t.Fatalf("long_running_shows = %v", rows(shows))
	}

	seasons := mustRun(t, c, "season_distribution", Params{})
	if want := [][]any{{1, 1}, {2, 1}, {7, 1}}; !reflect.DeepEqual(rows(seasons), want) {
		t.Fatalf("season_distribution = %v", rows(seasons))
	}
}

func TestTalentAnalyses(t *testing.T) {
	c := sample(t)
	directors := mustRun(t, c, "top_directors", Params{TopN: 1})
	if want := [][]any{{"Haile Gerima", 2, 1}}; !reflect.DeepEqual(rows(directors), want) {
		t.Fatalf("top_directors = %v", rows(directors))
	}

	actors := mustRun(t, c, "top_actors", Params{Country: "india", TopN: 1})
	if want := [][]any{{"Kofi Ghanaba", 2, 1}}; !reflect.DeepEqual(rows(actors), want) {
		t.Fatalf("top_actors = %v", rows(actors))
	}

	titles := mustRun(t, c, "director_titles", Params{Director: "haile gerima"})
	want := [][]any{{"s4", "Sankofa", "Movie", 1993}, {"s6", "Sankofa", "Movie", 2010}}
	if got := rows(titles); !reflect.DeepEqual(got, want) {
		t.Fatalf("director_titles = %v, want %v", got, want)
	}

	apps := mustRun(t, c, "actor_appearances", Params{Actor: "Kofi Ghanaba", WithinYears: 20})
	if want := [][]any{{"s6", "Sankofa", 2010}}; !reflect.DeepEqual(rows(apps), want) {
		t.Fatalf("actor_appearances = %v", rows(apps))
	}
	// Reference year 2021: an 11-year window starts after 2010, a 12-year one includes it.
	if apps := mustRun(t, c, "actor_appearances", Params{Actor: "Kofi Ghanaba", WithinYears: 11}); len(apps.Rows) != 0 {
		t.Fatalf("window lower bound should be exclusive: %v", rows(apps))
	}
	if apps := mustRun(t, c, "actor_appearances", Params{Actor: "Kofi Ghanaba", WithinYears: 12}); len(apps.Rows) != 1 {
		t.Fatalf("actor_appearances within 12 years = %v", rows(apps))
	}

	for _, name := range []string{"director_titles", "actor_appearances"} {
		if _, err := Run(c, name, Params{}); !errors.Is(err, ErrMissingParam) {
			t.Fatalf("%s: expected ErrMissingParam, got %v", name, err)
		}
	}
}

func TestQualityAnalyses(t *testing.T) {
	c := sample(t)
	noDirector := mustRun(t, c, "titles_without_director", Params{})
	want := [][]any{{"s2", "Blood & Water", "TV Show"}, {"s7", "Kota Factory", "TV Show"}}
	if got := rows(noDirector); !reflect.DeepEqual(got, want) {
		t.Fatalf("titles_without_director = %v, want %v", got, want)
	}
	dups := mustRun(t, c, "duplicate_titles", Params{})
	if want := [][]any{{"Sankofa", 2}}; !reflect.DeepEqual(rows(dups), want) {
		t.Fatalf("duplicate_titles = %v", rows(dups))
	}
}

func TestContentCategories(t *testing.T) {
	c := sample(t)
	tbl := mustRun(t, c, "content_categories", Params{})
	// "skilled" matches "kill" under substring matching.
	want := [][]any{{"Bad Content", 2, 0, 2}, {"Good Content", 5, 4, 1}}
	if got := rows(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("content_categories = %v, want %v", got, want)
	}
	tbl = mustRun(t, c, "content_categories", Params{Classifier: classify.Classifier{Mode: classify.MatchWholeWord}})
	want = [][]any{{"Bad Content", 1, 0, 1}, {"Good Content", 6, 4, 2}}
	if got := rows(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("whole-word content_categories = %v, want %v", got, want)
	}
}

func TestRunAllSkipsMissingParams(t *testing.T) {
	tables, skipped, err := RunAll(sample(t), Params{})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(tables) != 29 {
		t.Fatalf("expected 29 tables, got %d", len(tables))
	}
	if !reflect.DeepEqual(skipped, []string{"director_titles", "actor_appearances"}) {
		t.Fatalf("skipped = %v", skipped)
	}
}

func TestEmptyCatalog(t *testing.T) {
	c := catalog.MustNew("empty", nil)
	tables, _, err := RunAll(c, Params{Director: "x", Actor: "y"})
	if err != nil {
		t.Fatalf("RunAll on empty catalog: %v", err)
	}
	if len(tables) != 31 {
		t.Fatalf("expected 31 tables, got %d", len(tables))
	}
}

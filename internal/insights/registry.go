// Package insights composes the catalog, classify and aggregate packages
// into named analyses that each produce one Table.
package insights

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
	"github.com/KaramelBytes/showlens/internal/logging"
)

var (
	// ErrUnknownAnalysis is returned for a name not in the registry.
	ErrUnknownAnalysis = errors.New("unknown analysis")
	// ErrMissingParam is returned when an analysis needs a parameter that was not given.
	ErrMissingParam = errors.New("missing parameter")
)

// Params tunes the parameterized analyses. Zero values select each
// analysis's default.
type Params struct {
	TopN        int
	Year        int
	Country     string
	Director    string
	Actor       string
	Genre       string
	WithinYears int
	MinSeasons  int
	LagYears    int
	// Reference anchors "recent" windows. Zero means the latest date_added in the catalog.
	Reference  time.Time
	Classifier classify.Classifier
}

func (p Params) topN(def int) int {
	if p.TopN == 0 {
		return def
	}
	return p.TopN
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

// Analysis is one named query over a catalog.
type Analysis struct {
	Name        string
	Group       string
	Description string
	run         func(c *catalog.Catalog, p Params) (*Table, error)
}

// Analysis groups, in display order.
const (
	GroupTotals   = "catalog"
	GroupTrends   = "trends"
	GroupGenres   = "genres"
	GroupCountry  = "countries"
	GroupRatings  = "ratings"
	GroupDuration = "duration"
	GroupTalent   = "talent"
	GroupQuality  = "data-quality"
	GroupContent  = "content"
)

var registry = []Analysis{
	{"total_titles", GroupTotals, "Number of titles in the catalog", totalTitles},
	{"count_by_type", GroupTotals, "Titles per type", countByType},
	{"type_share", GroupTotals, "Share of each type in the catalog", typeShare},

	{"titles_by_release_year", GroupTrends, "Titles per release year split by type", titlesByReleaseYear},
	{"titles_by_year_added", GroupTrends, "Titles per year added split by type", titlesByYearAdded},
	{"titles_by_month_added", GroupTrends, "Titles per calendar month added", titlesByMonthAdded},
	{"recent_additions", GroupTrends, "Titles added within --within-years (5) of the reference date", recentAdditions},
	{"late_additions", GroupTrends, "Titles added more than --lag-years (5) after release", lateAdditions},
	{"releases_in_year", GroupTrends, "Titles released in --year (reference year)", releasesInYear},

	{"genre_counts", GroupGenres, "Titles per genre split by type", genreCounts},
	{"genre_share", GroupGenres, "Share of catalog titles listed in each genre", genreShare},
	{"top_genres_by_year", GroupGenres, "Top --top (3) genres within each release year", topGenresByYear},
	{"genre_titles", GroupGenres, "Movies listed in --genre (Documentaries)", genreTitles},

	{"country_breakdown", GroupCountry, "Titles per country split by type", countryBreakdown},
	{"top_countries", GroupCountry, "Top --top (5) countries by titles", topCountries},
	{"country_yearly_share", GroupCountry, "Top --top (5) years by share of --country (India) additions", countryYearlyShare},

	{"rating_distribution", GroupRatings, "Titles per rating with share", ratingDistribution},
	{"top_rating_by_type", GroupRatings, "Most common rating for each type", topRatingByType},

	{"longest_movies", GroupDuration, "Top --top (10) movies by running time", longestMovies},
	{"duration_buckets", GroupDuration, "Movies per duration bucket", durationBuckets},
	{"movie_duration_stats", GroupDuration, "Min, max and average movie running time", movieDurationStats},
	{"long_running_shows", GroupDuration, "TV shows with more than --min-seasons (5) seasons", longRunningShows},
	{"season_distribution", GroupDuration, "TV shows per season count", seasonDistribution},

	{"top_directors", GroupTalent, "Top --top (10) directors by titles", topDirectors},
	{"top_actors", GroupTalent, "Top --top (10) movie actors, optionally in --country", topActors},
	{"director_titles", GroupTalent, "Titles directed by --director", directorTitles},
	{"actor_appearances", GroupTalent, "Movies with --actor released within --within-years (10)", actorAppearances},

	{"missing_metadata", GroupQuality, "Missing value rate per optional field", missingMetadata},
	{"titles_without_director", GroupQuality, "Titles with no director", titlesWithoutDirector},
	{"duplicate_titles", GroupQuality, "Display names shared by several show ids", duplicateTitles},

	{"content_categories", GroupContent, "Keyword-based content category split by type", contentCategories},
}

// Analyses returns every registered analysis in display order.
func Analyses() []Analysis {
	out := make([]Analysis, len(registry))
	copy(out, registry)
	return out
}

// Names returns the registered analysis names sorted alphabetically.
func Names() []string {
	out := make([]string, 0, len(registry))
	for _, a := range registry {
		out = append(out, a.Name)
	}
	sort.Strings(out)
	return out
}

// Lookup finds an analysis by name (case-insensitive, '-' accepted for '_').
func Lookup(name string) (Analysis, bool) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, a := range registry {
		if a.Name == n {
			return a, true
		}
	}
	return Analysis{}, false
}

// Run executes one analysis.
func (a Analysis) Run(c *catalog.Catalog, p Params) (*Table, error) {
	start := time.Now()
	t, err := a.run(c, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.Name, err)
	}
	logging.Debug().Str("analysis", a.Name).Int("rows", len(t.Rows)).Dur("took", time.Since(start)).Msg("analysis complete")
	return t, nil
}

// Run executes the named analysis.
func Run(c *catalog.Catalog, name string, p Params) (*Table, error) {
	a, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownAnalysis)
	}
	return a.Run(c, p)
}

// RunAll executes every analysis in display order. Analyses that need a
// parameter absent from p are skipped and reported by name.
func RunAll(c *catalog.Catalog, p Params) ([]*Table, []string, error) {
	var tables []*Table
	var skipped []string
	for _, a := range registry {
		t, err := a.Run(c, p)
		if errors.Is(err, ErrMissingParam) {
			logging.Info().Str("analysis", a.Name).Err(err).Msg("skipping analysis")
			skipped = append(skipped, a.Name)
			continue
		}
		if err != nil {
			return nil, skipped, err
		}
		tables = append(tables, t)
	}
	return tables, skipped, nil
}

package catalog

import "strings"

// Kind is the content type of a title.
type Kind int

const (
	KindUnknown Kind = iota
	KindMovie
	KindTVShow
)

func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "Movie"
	case KindTVShow:
		return "TV Show"
	default:
		return "Unknown"
	}
}

// ParseKind maps the raw type column to a Kind. Unrecognised values yield KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.Join(strings.Fields(s), "")) {
	case "movie":
		return KindMovie
	case "tvshow":
		return KindTVShow
	default:
		return KindUnknown
	}
}

// Title is one catalog entry. Multi-valued columns keep their raw comma-delimited
// text; use Catalog.Values or Expand to read the atomic values.
type Title struct {
	ShowID      string
	Kind        Kind
	Title       string
	Director    string
	Cast        string
	Country     string
	DateAdded   string
	ReleaseYear int
	Rating      string
	Duration    string
	ListedIn    string
	Description string
}

// IsMovie reports whether the title is a movie.
func (t Title) IsMovie() bool { return t.Kind == KindMovie }

// IsTVShow reports whether the title is a TV show.
func (t Title) IsTVShow() bool { return t.Kind == KindTVShow }

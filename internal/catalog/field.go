package catalog

import (
	"iter"
	"strings"
)

// Field selects one of the comma-delimited multi-value columns.
type Field int

const (
	FieldGenres Field = iota
	FieldCountries
	FieldCast
	FieldDirectors
	numFields
)

// Fields lists every multi-value field in declaration order.
func Fields() []Field {
	return []Field{FieldGenres, FieldCountries, FieldCast, FieldDirectors}
}

func (f Field) String() string {
	switch f {
	case FieldGenres:
		return "listed_in"
	case FieldCountries:
		return "country"
	case FieldCast:
		return "cast"
	case FieldDirectors:
		return "director"
	default:
		return "unknown"
	}
}

// Raw returns the undivided column text of t for field f.
func (f Field) Raw(t Title) string {
	switch f {
	case FieldGenres:
		return t.ListedIn
	case FieldCountries:
		return t.Country
	case FieldCast:
		return t.Cast
	case FieldDirectors:
		return t.Director
	default:
		return ""
	}
}

// Pair associates one atomic value with the record it came from.
type Pair struct {
	ID    string
	Value string
	Title Title
}

// Split divides a comma-delimited list into trimmed, non-empty tokens.
// Repeated tokens are kept; distinct counting happens in aggregation.
func Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Expand yields one Pair per atomic value of field f across titles. The
// sequence holds no state of its own and may be ranged over repeatedly.
func Expand(titles iter.Seq[Title], f Field) iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for t := range titles {
			for _, v := range Split(f.Raw(t)) {
				if !yield(Pair{ID: t.ShowID, Value: v, Title: t}) {
					return
				}
			}
		}
	}
}

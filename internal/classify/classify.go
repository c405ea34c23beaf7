// Package classify derives secondary attributes from raw title fields.
// Every function is pure; malformed input yields ok == false instead of an error.
package classify

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/showlens/internal/catalog"
)

// Bucket is a coarse movie length class.
type Bucket string

const (
	Short  Bucket = "Short"
	Medium Bucket = "Medium"
	Long   Bucket = "Long"
)

// Buckets lists duration buckets from shortest to longest.
func Buckets() []Bucket { return []Bucket{Short, Medium, Long} }

// leadingInt parses the first whitespace-separated token of s as an integer.
func leadingInt(s string) (int, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Minutes returns the running time of a movie ("<N> min").
func Minutes(duration string, kind catalog.Kind) (int, bool) {
	if kind != catalog.KindMovie {
		return 0, false
	}
	return leadingInt(duration)
}

// Seasons returns the season count of a TV show ("<N> Season(s)").
func Seasons(duration string, kind catalog.Kind) (int, bool) {
	if kind != catalog.KindTVShow {
		return 0, false
	}
	return leadingInt(duration)
}

// DurationBucket classifies a movie length. Medium includes both 60 and 180.
func DurationBucket(minutes int) Bucket {
	switch {
	case minutes > 180:
		return Long
	case minutes >= 60:
		return Medium
	default:
		return Short
	}
}

var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"2-Jan-06",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
}

// ParseDate parses the date_added encodings seen in the catalog.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// YearAdded extracts the year from date_added.
func YearAdded(raw string) (int, bool) {
	t, ok := ParseDate(raw)
	if !ok {
		return 0, false
	}
	return t.Year(), true
}

// MonthAdded extracts the month from date_added.
func MonthAdded(raw string) (time.Month, bool) {
	t, ok := ParseDate(raw)
	if !ok {
		return 0, false
	}
	return t.Month(), true
}

// YearsBetweenAddAndRelease is year_added - release_year. Negative gaps are kept.
func YearsBetweenAddAndRelease(dateAdded string, releaseYear int) (int, bool) {
	y, ok := YearAdded(dateAdded)
	if !ok {
		return 0, false
	}
	return y - releaseYear, true
}

// IsMissing treats empty and whitespace-only values alike.
func IsMissing(field string) bool {
	return strings.TrimSpace(field) == ""
}

// Category is the keyword-based content label.
type Category string

const (
	BadContent  Category = "Bad Content"
	GoodContent Category = "Good Content"
)

// MatchMode selects how keywords are found in a description.
type MatchMode int

const (
	// MatchSubstring flags any occurrence, so "skill" matches "kill".
	MatchSubstring MatchMode = iota
	// MatchWholeWord only flags keywords bounded by non-letters.
	MatchWholeWord
)

// ParseMatchMode accepts "substring" and "wholeword" (or "whole-word").
func ParseMatchMode(s string) (MatchMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substring":
		return MatchSubstring, true
	case "wholeword", "whole-word", "word":
		return MatchWholeWord, true
	default:
		return MatchSubstring, false
	}
}

func (m MatchMode) String() string {
	if m == MatchWholeWord {
		return "wholeword"
	}
	return "substring"
}

// DefaultKeywords flag a description as Bad Content.
var DefaultKeywords = []string{"kill", "violence"}

// Classifier labels descriptions by keyword.
type Classifier struct {
	Mode     MatchMode
	Keywords []string
}

// Category returns BadContent when any keyword is found in description.
func (c Classifier) Category(description string) Category {
	kws := c.Keywords
	if len(kws) == 0 {
		kws = DefaultKeywords
	}
	text := strings.ToLower(description)
	for _, kw := range kws {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if c.Mode == MatchWholeWord {
			if containsWord(text, kw) {
				return BadContent
			}
			continue
		}
		if strings.Contains(text, kw) {
			return BadContent
		}
	}
	return GoodContent
}

// ContentCategory is the default substring classification.
func ContentCategory(description string) Category {
	return Classifier{}.Category(description)
}

func containsWord(text, word string) bool {
	for off := 0; ; {
		i := strings.Index(text[off:], word)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(word)
		if !letterBefore(text, start) && !letterAt(text, end) {
			return true
		}
		off = start + 1
	}
}

func letterBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func letterAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

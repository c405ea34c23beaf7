package insights

import (
	"strings"

	"github.com/KaramelBytes/showlens/internal/aggregate"
	"github.com/KaramelBytes/showlens/internal/catalog"
	"github.com/KaramelBytes/showlens/internal/classify"
)

var completenessFields = []struct {
	name  string
	value func(catalog.Title) string
}{
	{"director", func(t catalog.Title) string { return t.Director }},
	{"cast", func(t catalog.Title) string { return t.Cast }},
	{"country", func(t catalog.Title) string { return t.Country }},
	{"date_added", func(t catalog.Title) string { return t.DateAdded }},
	{"rating", func(t catalog.Title) string { return t.Rating }},
}

func missingMetadata(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("missing_metadata", "Missing metadata", "field", "missing", colTotal, colPercentage)
	total := c.Len()
	for _, f := range completenessFields {
		missing := 0
		for title := range c.All() {
			if classify.IsMissing(f.value(title)) {
				missing++
			}
		}
		t.add(f.name, missing, total, aggregate.Share(missing, total))
	}
	return t, nil
}

func titlesWithoutDirector(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("titles_without_director", "Titles without a director", colShowID, colTitle, colType)
	for _, title := range titlesWhere(c, func(t catalog.Title) bool { return classify.IsMissing(t.Director) }) {
		t.add(title.ShowID, title.Title, title.Kind.String())
	}
	return t, nil
}

func duplicateTitles(c *catalog.Catalog, _ Params) (*Table, error) {
	t := newTable("duplicate_titles", "Duplicate display names", colTitle, colTotal)
	buckets := aggregate.NewGrouper(titleID, func(t catalog.Title) (string, bool) {
		name := strings.TrimSpace(t.Title)
		return name, name != ""
	}).Run(c.All())
	aggregate.SortByCount(buckets, strings.Compare)
	for _, b := range buckets {
		if b.Count > 1 {
			t.add(b.Key, b.Count)
		}
	}
	return t, nil
}

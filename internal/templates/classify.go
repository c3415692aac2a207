package templates

import (
	"fmt"
	"strings"
)

// typeMapping maps free-form change-type labels to canonical template keys.
// Lookups are case-insensitive; unmatched labels use DefaultTemplateKey.
var typeMapping = map[string]string{
	"bug":           "bug.md",
	"fix":           "bug.md",
	"feature":       "feature.md",
	"enhancement":   "feature.md",
	"docs":          "docs.md",
	"documentation": "docs.md",
	"refactor":      "refactor.md",
	"cleanup":       "refactor.md",
	"test":          "test.md",
	"testing":       "test.md",
	"performance":   "performance.md",
	"optimization":  "performance.md",
	"security":      "security.md",
}

// ClassifyChangeType maps a free-form change-type label to a canonical
// template key.
func ClassifyChangeType(label string) string {
	if key, ok := typeMapping[strings.ToLower(label)]; ok {
		return key
	}
	return DefaultTemplateKey
}

// Suggestion is a template recommendation for a described change.
type Suggestion struct {
	RecommendedTemplate Entry  `json:"recommended_template"`
	Reasoning           string `json:"reasoning"`
	TemplateContent     string `json:"template_content"`
	UsageHint           string `json:"usage_hint"`
}

// Suggest recommends a template for the described change. The change type
// is classified first; if the mapped template is not present in the catalog
// listing, the named default entry is used, and failing that the first
// available entry. Suggest only errors when the catalog itself cannot be
// listed.
func (c *Catalog) Suggest(changesSummary, changeType string) (*Suggestion, error) {
	entries, err := c.List()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no templates available in %s", c.dir)
	}

	key := ClassifyChangeType(changeType)
	selected := findEntry(entries, key)
	if selected == nil {
		selected = findEntry(entries, DefaultTemplateKey)
	}
	if selected == nil {
		selected = &entries[0]
	}

	return &Suggestion{
		RecommendedTemplate: *selected,
		Reasoning: fmt.Sprintf("Based on your analysis: '%s', this appears to be a %s change.",
			changesSummary, changeType),
		TemplateContent: selected.Content,
		UsageHint:       "Fill out this template based on the specific changes in your PR.",
	}, nil
}

func findEntry(entries []Entry, filename string) *Entry {
	for i := range entries {
		if entries[i].Filename == filename {
			return &entries[i]
		}
	}
	return nil
}

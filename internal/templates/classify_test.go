package templates

import (
	"strings"
	"testing"
)

func TestClassifyChangeType(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"bug", "bug.md"},
		{"fix", "bug.md"},
		{"Bug", "bug.md"}, // case-insensitive
		{"feature", "feature.md"},
		{"enhancement", "feature.md"},
		{"docs", "docs.md"},
		{"documentation", "docs.md"},
		{"refactor", "refactor.md"},
		{"cleanup", "refactor.md"},
		{"test", "test.md"},
		{"testing", "test.md"},
		{"performance", "performance.md"},
		{"optimization", "performance.md"},
		{"security", "security.md"},
		{"unknown-type", "feature.md"}, // default fallback
		{"", "feature.md"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ClassifyChangeType(tt.label); got != tt.want {
				t.Errorf("ClassifyChangeType(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestSuggestMatchesChangeType(t *testing.T) {
	dir := writeCatalogDir(t, allTemplateFiles()...)
	c := NewCatalog(dir, false)

	s, err := c.Suggest("fixed null pointer", "bug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.RecommendedTemplate.Filename != "bug.md" {
		t.Errorf("expected bug.md, got %q", s.RecommendedTemplate.Filename)
	}
	if s.TemplateContent != s.RecommendedTemplate.Content {
		t.Error("template_content should equal the recommended template's content")
	}
	if !strings.Contains(s.Reasoning, "fixed null pointer") || !strings.Contains(s.Reasoning, "bug") {
		t.Errorf("reasoning should mention the summary and change type, got %q", s.Reasoning)
	}
	if s.UsageHint == "" {
		t.Error("usage hint should not be empty")
	}
}

func TestSuggestUnknownTypeFallsBackToDefault(t *testing.T) {
	dir := writeCatalogDir(t, allTemplateFiles()...)
	c := NewCatalog(dir, false)

	s, err := c.Suggest("x", "unknown-type")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RecommendedTemplate.Filename != DefaultTemplateKey {
		t.Errorf("expected default %q, got %q", DefaultTemplateKey, s.RecommendedTemplate.Filename)
	}
}

func TestSuggestMappedFileMissingUsesDefaultEntry(t *testing.T) {
	// security.md mapped but absent from the listing: skip-unreadable mode
	// drops it, and the suggestion falls back to the default entry.
	files := []string{"bug.md", "feature.md", "docs.md", "refactor.md", "test.md", "performance.md"}
	dir := writeCatalogDir(t, files...)
	c := NewCatalog(dir, true)

	s, err := c.Suggest("hardened input validation", "security")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RecommendedTemplate.Filename != DefaultTemplateKey {
		t.Errorf("expected fallback to %q, got %q", DefaultTemplateKey, s.RecommendedTemplate.Filename)
	}
}

func TestSuggestFirstEntryWhenDefaultMissing(t *testing.T) {
	dir := writeCatalogDir(t, "bug.md")
	c := NewCatalog(dir, true)

	s, err := c.Suggest("x", "unknown-type")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RecommendedTemplate.Filename != "bug.md" {
		t.Errorf("expected first available entry bug.md, got %q", s.RecommendedTemplate.Filename)
	}
}

// Package templates provides the PR template catalog and the change-type
// classifier that picks a template for a change.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultTemplateKey names the catalog entry used when classification has no
// better answer. It is an explicit default, not a positional convention:
// catalog order is otherwise insignificant.
const DefaultTemplateKey = "feature.md"

// Entry is one template in a catalog listing.
type Entry struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Content  string `json:"content"`
}

// catalogTable maps template filenames to their human-readable labels, in
// listing order.
var catalogTable = []struct {
	filename string
	label    string
}{
	{"bug.md", "Bug Fix"},
	{"feature.md", "Feature"},
	{"docs.md", "Documentation"},
	{"refactor.md", "Refactor"},
	{"test.md", "Test"},
	{"performance.md", "Performance"},
	{"security.md", "Security"},
}

// ReadError indicates a template file was missing or unreadable.
type ReadError struct {
	Filename string
	Err      error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("reading template %s: %v", e.Filename, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Catalog lists PR templates from a directory. The set of recognized
// templates is fixed for the process lifetime; only their file contents are
// read per call.
type Catalog struct {
	dir            string
	skipUnreadable bool
}

// NewCatalog creates a Catalog over dir. When skipUnreadable is true, an
// unreadable template is dropped from listings instead of aborting the
// whole call.
func NewCatalog(dir string, skipUnreadable bool) *Catalog {
	return &Catalog{dir: dir, skipUnreadable: skipUnreadable}
}

// List returns all templates in catalog order with their file contents.
func (c *Catalog) List() ([]Entry, error) {
	entries := make([]Entry, 0, len(catalogTable))
	for _, t := range catalogTable {
		data, err := os.ReadFile(filepath.Join(c.dir, t.filename))
		if err != nil {
			if c.skipUnreadable {
				continue
			}
			return nil, &ReadError{Filename: t.filename, Err: err}
		}
		entries = append(entries, Entry{
			Filename: t.filename,
			Type:     t.label,
			Content:  string(data),
		})
	}
	return entries, nil
}

// Package bundle holds the immutable curated snapshot shipped with the
// client: zero-latency, always available, never mutated at runtime.
// Bundle content is preferred over every other tier during resolution.
package bundle

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/astroview/astro-edge/pkg/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed bundle.yaml
var rawBundle []byte

// bundleFile is the on-disk snapshot shape. Image URLs are proxy-relative
// so the installed client can point them at its configured edge host.
type bundleFile struct {
	Version string        `yaml:"version"`
	Objects []bundleEntry `yaml:"objects"`
}

type bundleEntry struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	ImageURL    string            `yaml:"imageUrl"`
	Type        string            `yaml:"type"`
	Metadata    map[string]string `yaml:"metadata"`
}

// Bundle is the parsed snapshot. Immutable for the lifetime of the
// installed client version.
type Bundle struct {
	version string
	objects map[string]catalog.Object
	order   []string
}

// Load parses the embedded snapshot.
func Load() (*Bundle, error) {
	return Parse(rawBundle)
}

// Parse builds a bundle from raw snapshot YAML.
func Parse(data []byte) (*Bundle, error) {
	var file bundleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}

	b := &Bundle{
		version: file.Version,
		objects: make(map[string]catalog.Object, len(file.Objects)),
		order:   make([]string, 0, len(file.Objects)),
	}

	for _, entry := range file.Objects {
		if entry.ID == "" {
			return nil, fmt.Errorf("bundle entry without id (title %q)", entry.Title)
		}
		category := catalog.Category(entry.Type)
		if !category.Valid() {
			return nil, fmt.Errorf("bundle entry %q has unknown category %q", entry.ID, entry.Type)
		}
		if _, exists := b.objects[entry.ID]; exists {
			return nil, fmt.Errorf("duplicate bundle entry %q", entry.ID)
		}

		b.objects[entry.ID] = catalog.Object{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			ImageURL:    entry.ImageURL,
			Type:        category,
			Metadata:    catalog.NormalizeMetadata(entry.Metadata),
			Source:      catalog.SourceLocal,
		}
		b.order = append(b.order, entry.ID)
	}

	return b, nil
}

// Version returns the snapshot version string.
func (b *Bundle) Version() string {
	return b.version
}

// Len returns the number of bundled objects.
func (b *Bundle) Len() int {
	return len(b.order)
}

// IDs returns the bundled object ids in snapshot order.
func (b *Bundle) IDs() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Get returns a copy of the bundled object with the given id.
func (b *Bundle) Get(id string) (*catalog.Object, bool) {
	obj, ok := b.objects[id]
	if !ok {
		return nil, false
	}
	return copyObject(obj), true
}

// Search filters the snapshot index by case-insensitive substring match
// against title, category and id, in snapshot order.
func (b *Bundle) Search(query string) []*catalog.Object {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	var matches []*catalog.Object
	for _, id := range b.order {
		obj := b.objects[id]
		haystack := strings.ToLower(obj.Title + " " + string(obj.Type) + " " + obj.ID)
		if strings.Contains(haystack, needle) {
			matches = append(matches, copyObject(obj))
		}
	}
	return matches
}

// copyObject returns a deep copy so callers can never mutate the snapshot.
func copyObject(obj catalog.Object) *catalog.Object {
	metadata := make(map[string]string, len(obj.Metadata))
	for k, v := range obj.Metadata {
		metadata[k] = v
	}
	obj.Metadata = metadata
	return &obj
}

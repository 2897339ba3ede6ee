package cache

import "strings"

// Operation identifies the logical proxy operation a cache entry belongs to.
type Operation string

const (
	OpFeatured Operation = "featured"
	OpLookup   Operation = "lookup"
	OpRelay    Operation = "relay"
)

// Key is a deterministic identifier for a cached response.
type Key struct {
	// Operation is the logical proxy operation.
	Operation Operation

	// Target narrows the key within the operation: the normalized search
	// query for lookups, the target URL for relays. Empty for the
	// featured object, which has exactly one entry.
	Target string
}

// String generates the deterministic Redis key string.
// Format: edge:operation[:target]
//
// Example:
//
//	edge:lookup:crab nebula
func (k Key) String() string {
	parts := []string{"edge", string(k.Operation)}
	if target := normalizeTarget(k.Target); target != "" {
		parts = append(parts, target)
	}
	return strings.Join(parts, ":")
}

// normalizeTarget folds case and trims whitespace so logically identical
// requests share one entry.
func normalizeTarget(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}

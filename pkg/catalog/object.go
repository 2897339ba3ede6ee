// Package catalog defines the canonical astronomy object schema shared by
// the edge proxy and the client resolution engine.
//
// All upstream payloads are normalized into Object at the adapter boundary;
// untyped upstream JSON never travels past it.
package catalog

import (
	"bytes"
	"encoding/json"
)

// SourceNASA is the provenance label for objects normalized from the
// upstream NASA feeds.
const SourceNASA = "NASA"

// SourceLocal is the provenance label for bundled fallback content.
const SourceLocal = "local"

// Unknown is the sentinel for metadata facts the upstream did not provide.
// Metadata values are never absent, only "unknown".
const Unknown = "unknown"

// Object is the normalized unit of content served to clients.
//
// ImageURL always points back through the edge proxy's relay operation,
// never at an upstream host. Clients must not be able to reach upstream
// directly; the proxy centralizes rate limiting and key custody.
type Object struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ImageURL    string            `json:"imageUrl"`
	Type        Category          `json:"type"`
	Metadata    map[string]string `json:"metadata"`
	Source      string            `json:"source"`
}

// requiredMetadataKeys are always present in a normalized object.
var requiredMetadataKeys = []string{"distance", "constellation", "discovered"}

// NormalizeMetadata returns a copy of m with every required key present,
// filling gaps with the Unknown sentinel. A nil map is allowed.
func NormalizeMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+len(requiredMetadataKeys))
	for k, v := range m {
		if v == "" {
			v = Unknown
		}
		out[k] = v
	}
	for _, k := range requiredMetadataKeys {
		if _, ok := out[k]; !ok {
			out[k] = Unknown
		}
	}
	return out
}

// Equal reports whether two objects carry identical content.
//
// Freshness checks are equality-based, not timestamp-based: any byte-level
// difference in the canonical encoding counts as a change.
func Equal(a, b *Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// Encode serializes the object to its wire JSON form.
func (o *Object) Encode() ([]byte, error) {
	return json.Marshal(o)
}

// Decode parses wire JSON into an Object.
func Decode(data []byte) (*Object, error) {
	var o Object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

package catalog

import "strings"

// Category classifies an object into the closed display set.
type Category string

const (
	CategoryGalaxy Category = "galaxy"
	CategoryStar   Category = "star"
	CategoryPlanet Category = "planet"
	CategoryNebula Category = "nebula"
	CategoryOther  Category = "other"
)

// categoryPriority is the fixed tie-break order for keyword inference.
// Text matching several keywords resolves to the first match here.
var categoryPriority = []Category{
	CategoryGalaxy,
	CategoryStar,
	CategoryPlanet,
	CategoryNebula,
}

// InferCategory derives a category by substring-matching the given text
// (typically title plus keywords) against the known category names.
// Matching is case-insensitive and defaults to CategoryOther.
func InferCategory(text string) Category {
	lower := strings.ToLower(text)
	for _, c := range categoryPriority {
		if strings.Contains(lower, string(c)) {
			return c
		}
	}
	return CategoryOther
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryGalaxy, CategoryStar, CategoryPlanet, CategoryNebula, CategoryOther:
		return true
	}
	return false
}

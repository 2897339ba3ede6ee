package resolver

import (
	"errors"
	"fmt"
)

// NotFoundError is the only error the resolution engine surfaces to
// callers. Transport and parse failures inside fallback tiers are
// converted into "proceed to next tier"; only exhaustion of every tier
// produces this.
type NotFoundError struct {
	// ID is set for object resolution, Query for searches.
	ID    string
	Query string

	// LocalOnly is true when the network was unreachable and only local
	// tiers were consulted, so callers can show an offline indicator.
	LocalOnly bool
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	switch {
	case e.ID != "":
		return fmt.Sprintf("object %q not found", e.ID)
	case e.LocalOnly:
		return fmt.Sprintf("no results for %q (offline)", e.Query)
	default:
		return fmt.Sprintf("no results for %q", e.Query)
	}
}

// IsNotFound reports whether err is a resolution NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

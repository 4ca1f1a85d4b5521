package doc

import "github.com/google/uuid"

// IDFunc produces unique identifiers for sections, contents, spans, and
// inner tags. Injected so converters stay deterministic under test.
type IDFunc func() string

// NewID is the default id source.
func NewID() string {
	return uuid.NewString()
}

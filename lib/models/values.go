package models

import "strings"

// NormalizeCategory canonicalizes a category so that matching stays a raw
// equality check. Applied on every write path; never on reads.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

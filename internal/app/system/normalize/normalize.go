// Package normalize canonicalizes user-entered identifiers before they are
// stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// NicknameCI folds a nickname for case-insensitive uniqueness and lookups.
func NicknameCI(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// TagTitle trims a tag and collapses inner runs of whitespace so
// "  go   lang " and "go lang" name the same tag.
func TagTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package tcec

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name is an engine name as reported by the feed or written in a watch
// list. Comparison and matching always go through the normalized form;
// the raw string is preserved for display.
type Name string

var (
	// Trailing version: " 2", " v2.0", " 3.44", " v1.2.3"
	versionRE = regexp.MustCompile(` v?(\d+)(\.\d+)?(\.\d+)?$`)
	// Date-style version tag: " 2025a", " 2024B"
	dateVersionRE = regexp.MustCompile(` \d{4}[a-zA-Z]`)
)

// Normalize returns the canonical matching form of a name: NFC,
// ASCII-lowercased, with trailing version numbers and date tags
// stripped.
func (n Name) Normalize() string {
	name := norm.NFC.String(strings.ToLower(string(n)))

	name = strings.TrimSpace(versionRE.ReplaceAllString(name, ""))
	name = strings.TrimSpace(dateVersionRE.ReplaceAllString(name, ""))

	return name
}

// Matches reports whether other names this engine. The check is a
// substring test on normalized forms, so a watch list entry "Stockfish"
// matches the feed's "Stockfish 17" and vice versa a fully qualified
// entry still matches.
func (n Name) Matches(other string) bool {
	return strings.Contains(n.Normalize(), Name(other).Normalize())
}

// Equal reports whether two names normalize to the same form.
func (n Name) Equal(other Name) bool {
	return n.Normalize() == other.Normalize()
}

func (n Name) String() string {
	return string(n)
}

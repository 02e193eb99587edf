package people

import (
	"math/big"
	"regexp"
	"strings"
)

// IDPattern is the set of characters a person id may contain
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9_,.-]+$`)

var unsafeNameChars = regexp.MustCompile(`[\x00-\x1f*"/\\<>:?|]`)

// GenerateID derives the id from the canonical identity string
// "<family>|<given>|<suffix>|<YYYY-MM-DD>": its UTF-8 bytes are read as one
// big-endian integer and written in lowercase base36.
func GenerateID(family, given, suffix, dob string) string {
	canonical := strings.Join([]string{
		strings.TrimSpace(family),
		strings.TrimSpace(given),
		strings.TrimSpace(suffix),
		strings.TrimSpace(dob),
	}, "|")

	return new(big.Int).SetBytes([]byte(canonical)).Text(36)
}

// ShardPath returns the two-level shard directory for an id, "13x9q2z" -> "13/x9"
func ShardPath(personID string) string {
	clean := strings.ToLower(personID)
	for len(clean) < 4 {
		clean += "0"
	}
	return clean[0:2] + "/" + clean[2:4]
}

// SlugifyName makes a name safe for use as a directory on ExFAT
func SlugifyName(name string) string {
	name = unsafeNameChars.ReplaceAllString(name, "")
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// DisplayName renders a name as "Surname, Given", the label used when reading
// people back. The suffix is left out.
func DisplayName(n *Name) string {
	if n == nil {
		return "Unknown"
	}
	return strings.Trim(n.Surname+", "+n.Given, ", ")
}

// FullName renders a name as "Surname, Given Suffix". It names the person's
// directory and labels the record returned by a create.
func FullName(n *Name) string {
	if n == nil {
		return "Unknown"
	}
	full := n.Surname + ", " + n.Given
	if n.Suffix != "" {
		full += " " + n.Suffix
	}
	return strings.Trim(full, ", ")
}

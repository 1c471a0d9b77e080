// Package identifier derives and parses the public account tag used to address
// transfer recipients, e.g. "ALIC-1F3A9C0E".
//
// A tag is PREFIX-SUFFIX where PREFIX is the upper-cased first four characters of
// the email local-part and SUFFIX the upper-cased first eight characters of the
// user id. Tags are not unique: two users may derive the same tag.
package identifier

import (
	"errors"
	"regexp"
	"strings"
)

const (
	prefixLen = 4
	suffixLen = 8
)

var ErrInvalid = errors.New("invalid account identifier")

// Accepts XXXX-YYYYYYYY and XXXX-YYYY-YYYY, case-insensitive.
var pattern = regexp.MustCompile(`^([A-Za-z0-9]{4})-([A-Za-z0-9]{8}|[A-Za-z0-9]{4}-[A-Za-z0-9]{4})$`)

type ID struct {
	Prefix string
	Suffix string
}

// String returns the canonical XXXX-YYYYYYYY layout.
func (id ID) String() string {
	return id.Prefix + "-" + id.Suffix
}

// Derive computes the public identifier for a user.
func Derive(email, userID string) ID {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	return ID{
		Prefix: strings.ToUpper(firstN(local, prefixLen)),
		Suffix: strings.ToUpper(firstN(userID, suffixLen)),
	}
}

// Parse validates s against both accepted layouts and canonicalizes it.
func Parse(s string) (ID, error) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ID{}, ErrInvalid
	}
	return ID{
		Prefix: strings.ToUpper(m[1]),
		Suffix: strings.ToUpper(strings.ReplaceAll(m[2], "-", "")),
	}, nil
}

func firstN(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

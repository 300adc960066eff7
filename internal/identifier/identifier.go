// Package identifier derives the short, DNS-safe name each environment is
// known by (the project_id written into the generated configuration).
package identifier

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Prefix is prepended to every identifier so they are easy to grep for.
	Prefix = "sbwt-"
	// MaxLength bounds the full identifier, prefix and suffix included.
	MaxLength = 40
	// HashLength is the number of hex characters kept from the body hash.
	HashLength = 8

	fallbackBody = "worktree"
)

var (
	invalidCharsRe = regexp.MustCompile(`[^a-z0-9-]`)
	dashRunRe      = regexp.MustCompile(`-{2,}`)
)

// Sanitize lowercases name, maps anything outside [a-z0-9-] to '-',
// collapses runs of '-' and trims them from both ends.
func Sanitize(name string) string {
	s := strings.ToLower(name)
	s = invalidCharsRe.ReplaceAllString(s, "-")
	s = dashRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Hash returns the first HashLength hex characters of the SHA-256 of body.
func Hash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// Derive builds the identifier for an environment. primaryName (the linked
// worktree name) wins over fallbackName (the branch) when it is non-empty.
// Candidates that collide with existing get -2, -3, ... appended, with the
// suffix counted against MaxLength.
func Derive(primaryName, fallbackName string, existing map[string]struct{}) string {
	name := strings.TrimSpace(primaryName)
	if name == "" {
		name = strings.TrimSpace(fallbackName)
	}

	body := Sanitize(name)
	if body == "" {
		body = fallbackBody
	}

	for n := 1; ; n++ {
		suffix := ""
		if n > 1 {
			suffix = "-" + strconv.Itoa(n)
		}
		candidate := fit(body, suffix)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

// fit joins prefix, body and suffix, truncating the body and adding a hash
// of the full body when the result would exceed MaxLength.
func fit(body, suffix string) string {
	if len(Prefix)+len(body)+len(suffix) <= MaxLength {
		return Prefix + body + suffix
	}

	available := MaxLength - len(Prefix) - HashLength - 1 - len(suffix)
	if available < 0 {
		available = 0
	}
	truncated := body
	if len(truncated) > available {
		truncated = truncated[:available]
	}
	truncated = strings.TrimRight(truncated, "-")

	if truncated == "" {
		return Prefix + Hash(body) + suffix
	}
	return Prefix + truncated + "-" + Hash(body) + suffix
}

// Set builds the lookup set Derive expects.
func Set(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

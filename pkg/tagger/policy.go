package tagger

import (
	"fmt"
	"regexp"
)

type Policy string

const (
	// PolicyShort keeps the first ShortLength characters of the SHA.
	PolicyShort Policy = "short"
	// PolicyFull uses the SHA verbatim.
	PolicyFull Policy = "full"

	ShortLength = 8
)

// SHA-1 (40) or SHA-256 (64) object names.
var shaPattern = regexp.MustCompile(`^[0-9a-f]{40}([0-9a-f]{24})?$`)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyShort, PolicyFull:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown tag policy %q (want %s or %s)", s, PolicyShort, PolicyFull)
	}
}

func ValidSHA(sha string) bool {
	return shaPattern.MatchString(sha)
}

// DeriveTag turns a validated SHA into a tag name.
func DeriveTag(sha string, policy Policy) string {
	if policy == PolicyFull || len(sha) <= ShortLength {
		return sha
	}
	return sha[:ShortLength]
}

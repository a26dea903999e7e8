package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coreos/go-semver/semver"

	"github.com/kbukum/registryd/errors"
)

// ParseVersion parses a concrete semantic version ("1.2.3", "v1.2.3").
// The returned version renders canonically (no leading "v").
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return nil, errors.InvalidField("version", fmt.Sprintf("%q is not a semantic version", s))
	}
	return v, nil
}

// Expression is a resolve-time version constraint. It is one of:
//
//   - exact: "1.2.3" matches only that version
//   - major: "1" or "v1" matches any 1.x.x
//   - major.minor: "1.2" or "v1.2" matches any 1.2.x
//
// Matching is prefix-based; range operators are not supported.
type Expression struct {
	major    int64
	minor    int64
	hasMinor bool
	exact    *semver.Version
	raw      string
}

// ParseExpression parses a version expression.
func ParseExpression(s string) (Expression, error) {
	raw := s
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return Expression{}, errors.InvalidField("version", "expression is empty")
	}

	parts := strings.Split(s, ".")
	switch len(parts) {
	case 1, 2:
		nums := make([]int64, len(parts))
		for i, p := range parts {
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil || n < 0 {
				return Expression{}, errors.InvalidField("version",
					fmt.Sprintf("%q is not a version expression", raw))
			}
			nums[i] = n
		}
		expr := Expression{major: nums[0], raw: raw}
		if len(nums) == 2 {
			expr.minor = nums[1]
			expr.hasMinor = true
		}
		return expr, nil
	default:
		v, err := ParseVersion(s)
		if err != nil {
			return Expression{}, errors.InvalidField("version",
				fmt.Sprintf("%q is not a version expression", raw))
		}
		return Expression{exact: v, raw: raw}, nil
	}
}

// Matches reports whether the concrete version satisfies the expression.
// Well-formed but non-matching input never errors.
func (e Expression) Matches(v *semver.Version) bool {
	if e.exact != nil {
		return v.Compare(*e.exact) == 0
	}
	if v.Major != e.major {
		return false
	}
	if e.hasMinor && v.Minor != e.minor {
		return false
	}
	return true
}

// String returns the expression as originally written.
func (e Expression) String() string { return e.raw }

// ComparePrecedence orders concrete versions by standard semantic-version
// precedence: major, then minor, then patch, numeric per component.
// It returns -1 if a < b, 0 if equal, and 1 if a > b.
func ComparePrecedence(a, b *semver.Version) int {
	return a.Compare(*b)
}

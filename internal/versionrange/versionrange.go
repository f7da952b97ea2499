// Package versionrange turns Python version specifiers such as ">=3.9",
// "~=3.10" or "^3.9" into a comparable major.minor floor.
package versionrange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a major.minor pair. Patch components are dropped on parse.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v Version) semver() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// lowerBoundOps are stripped from a clause before the version token is parsed.
// Longer operators come first so ">=" is not mistaken for ">".
var lowerBoundOps = []string{"===", "==", ">=", "~=", ">", "^", "~", "="}

var versionToken = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.\d+)*(?:\.\*)?$`)

// ExtractMinimum returns the floor implied by spec.
//
// Clauses are comma separated. A clause containing '<' or '!' is an upper
// bound or an exclusion and contributes no floor. The result is the highest
// floor among the remaining clauses; ok is false when no clause yields one or
// any lower-bound clause is malformed.
func ExtractMinimum(spec string) (v Version, ok bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Version{}, false
	}

	found := false
	for _, clause := range strings.Split(spec, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if strings.ContainsAny(clause, "<!") {
			continue
		}
		floor, ok := parseClause(clause)
		if !ok {
			return Version{}, false
		}
		if !found || Compare(floor, v) > 0 {
			v = floor
			found = true
		}
	}
	return v, found
}

func parseClause(clause string) (Version, bool) {
	for _, op := range lowerBoundOps {
		if strings.HasPrefix(clause, op) {
			clause = strings.TrimSpace(strings.TrimPrefix(clause, op))
			break
		}
	}
	return Parse(clause)
}

// Parse parses a bare dotted version such as "3", "3.9" or "3.9.1".
func Parse(s string) (Version, bool) {
	m := versionToken.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, false
	}
	minor := 0
	if m[2] != "" {
		minor, err = strconv.Atoi(m[2])
		if err != nil {
			return Version{}, false
		}
	}
	return Version{Major: major, Minor: minor}, true
}

// Compare returns -1, 0 or +1 ordering a against b by major, then minor.
func Compare(a, b Version) int {
	return semver.Compare(a.semver(), b.semver())
}

// IsSupported reports whether detected is at or above floor.
func IsSupported(detected, floor Version) bool {
	return Compare(detected, floor) >= 0
}

// SpecSupported reports whether spec has a determinable floor at or above
// floor. Specs without a floor are never supported.
func SpecSupported(spec string, floor Version) bool {
	v, ok := ExtractMinimum(spec)
	if !ok {
		return false
	}
	return IsSupported(v, floor)
}

// Lowest returns the smallest of vs; ok is false when vs is empty.
func Lowest(vs ...Version) (lowest Version, ok bool) {
	for i, v := range vs {
		if i == 0 || Compare(v, lowest) < 0 {
			lowest = v
		}
	}
	return lowest, len(vs) > 0
}

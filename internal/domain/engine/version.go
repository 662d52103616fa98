// Package engine describes search engine versions and the protocol differences they imply.
package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect is the query document shape the engine understands.
type Dialect int

const (
	// Modern engines (2.x and later) take a flat bool query with must + filter.
	Modern Dialect = iota
	// Legacy engines (1.x) need a filtered query and query-wrapped query_string clauses.
	Legacy
)

func (d Dialect) String() string {
	if d == Legacy {
		return "legacy"
	}
	return "modern"
}

// Version is a parsed engine version number.
type Version struct {
	Number string
	Major  int
	Minor  int
	Patch  int
}

// Fallback is assumed when the engine answers the probe without a usable version.
var Fallback = Version{Number: "2.0.0", Major: 2}

// ParseVersion parses "major.minor.patch" with optional suffixes ("7.10.2", "5.0.0-alpha1").
func ParseVersion(number string) (Version, error) {
	core, _, _ := strings.Cut(strings.TrimSpace(number), "-")
	parts := strings.Split(core, ".")
	if core == "" || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid engine version %q", number)
	}

	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid engine version %q", number)
		}
		nums[i] = n
	}

	return Version{Number: number, Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Dialect returns the query dialect for this version.
func (v Version) Dialect() Dialect {
	if v.Major < 2 {
		return Legacy
	}
	return Modern
}

// HasTextType reports whether the dedicated "text" field type exists (5.x+).
// Older engines use analyzed "string" fields.
func (v Version) HasTextType() bool { return v.Major >= 5 }

// Typeless reports whether mappings and documents no longer take a type name (7.x+).
func (v Version) Typeless() bool { return v.Major >= 7 }

// TotalIsObject reports whether hits.total is reported as {value, relation} (7.x+).
func (v Version) TotalIsObject() bool { return v.Major >= 7 }

func (v Version) String() string {
	if v.Number != "" {
		return v.Number
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

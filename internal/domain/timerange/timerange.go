// Package timerange parses bracketed time range expressions such as
// [2013-03-01 TO 2013-05-01T00:00:00] into open, common-era or BCE sides.
package timerange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/theduckylittle/registry/internal/domain"
)

// Open is the token for an unbounded side.
const Open = "*"

var (
	rangePattern = regexp.MustCompile(`^\[(.*) TO (.*)\]$`)

	// YYYY[-MM[-DD[THH[:MM[:SS[.frac]]]]]][Z|±HH[:MM]]
	datePattern = regexp.MustCompile(
		`^(\d{4})(?:-(\d{1,2})(?:-(\d{1,2})(?:[T ](\d{1,2})(?::(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?)?)?)?)?` +
			`(Z|[+-]\d{2}(?::?\d{2})?)?$`)

	bceYearPattern     = regexp.MustCompile(`^-(\d+)$`)
	bceCompletePattern = regexp.MustCompile(`^-\d+-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)
)

// Side is one boundary of a Range.
type Side struct {
	open      bool
	commonEra bool
	instant   time.Time
	literal   string
}

// IsOpen reports whether the side is unbounded.
func (s Side) IsOpen() bool { return s.open }

// IsCommonEra reports whether the side is a calendar instant (or open).
// BCE sides are kept as literal year markers.
func (s Side) IsCommonEra() bool { return s.commonEra }

// Instant returns the UTC instant of a common-era side.
func (s Side) Instant() time.Time { return s.instant }

// String renders the side for a compiled range: "*", an ISO-8601 UTC instant, or the BCE literal.
func (s Side) String() string {
	switch {
	case s.open:
		return Open
	case !s.commonEra:
		return s.literal
	default:
		return formatInstant(s.instant)
	}
}

// Range is a parsed [left TO right] expression.
type Range struct {
	start Side
	end   Side
}

// Start returns the left side.
func (r Range) Start() Side { return r.start }

// End returns the right side.
func (r Range) End() Side { return r.end }

// IsUnbounded reports whether both sides are open.
func (r Range) IsUnbounded() bool { return r.start.open && r.end.open }

// String renders the canonical [left TO right] form.
func (r Range) String() string {
	return "[" + r.start.String() + " TO " + r.end.String() + "]"
}

// Split returns the raw left and right tokens of a bracketed range.
func Split(s string) (string, string, error) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q does not match [<from> TO <to>]", domain.ErrPatternMismatch, s)
	}
	return m[1], m[2], nil
}

// Parse parses a bracketed time range.
func Parse(s string) (Range, error) {
	left, right, err := Split(s)
	if err != nil {
		return Range{}, err
	}
	start, err := ParseSide(left)
	if err != nil {
		return Range{}, fmt.Errorf("range start: %w", err)
	}
	end, err := ParseSide(right)
	if err != nil {
		return Range{}, fmt.Errorf("range end: %w", err)
	}
	return Range{start: start, end: end}, nil
}

// ParseSide resolves a single range token.
// Omitted month/day/time components default to January 1st, midnight, UTC.
func ParseSide(token string) (Side, error) {
	token = strings.TrimSpace(token)
	if token == Open {
		return Side{open: true, commonEra: true}, nil
	}
	if strings.HasPrefix(token, "-") {
		return parseBCE(token)
	}

	t, err := parseDate(token)
	if err != nil {
		return Side{}, err
	}
	return Side{commonEra: true, instant: t}, nil
}

// parseBCE accepts a bare year only; sub-year BCE precision is not supported.
func parseBCE(token string) (Side, error) {
	if bceCompletePattern.MatchString(token) {
		return Side{literal: token}, nil
	}
	if bceYearPattern.MatchString(token) {
		return Side{literal: token + "-01-01T00:00:00Z"}, nil
	}
	return Side{}, fmt.Errorf("%w: BCE dates support only the year, got %q", domain.ErrPatternMismatch, token)
}

func parseDate(token string) (time.Time, error) {
	m := datePattern.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: unrecognized date %q", domain.ErrPatternMismatch, token)
	}

	year, _ := strconv.Atoi(m[1])
	month := atoiDefault(m[2], 1)
	day := atoiDefault(m[3], 1)
	hour := atoiDefault(m[4], 0)
	minute := atoiDefault(m[5], 0)
	sec := atoiDefault(m[6], 0)
	nsec := fractionToNanos(m[7])

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, fmt.Errorf("%w: date out of range %q", domain.ErrPatternMismatch, token)
	}

	loc, err := zone(m[8])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrPatternMismatch, err)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, nsec, loc)
	if t.Day() != day {
		// time.Date normalizes Feb 30 into March.
		return time.Time{}, fmt.Errorf("%w: invalid day in %q", domain.ErrPatternMismatch, token)
	}
	return t.UTC(), nil
}

func zone(s string) (*time.Location, error) {
	if s == "" || s == "Z" {
		return time.UTC, nil
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(s[1:], ":", "")
	hours, err := strconv.Atoi(digits[:2])
	if err != nil {
		return nil, fmt.Errorf("invalid offset %q", s)
	}
	minutes := 0
	if len(digits) == 4 {
		minutes, err = strconv.Atoi(digits[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q", s)
		}
	}
	return time.FixedZone("", sign*(hours*3600+minutes*60)), nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func fractionToNanos(frac string) int {
	if frac == "" {
		return 0
	}
	padded := (frac + "000000000")[:9]
	n, _ := strconv.Atoi(padded)
	return n
}

// formatInstant renders seconds precision, adding microseconds only when present.
func formatInstant(t time.Time) string {
	t = t.UTC()
	s := t.Format("2006-01-02T15:04:05")
	if micros := t.Nanosecond() / 1000; micros != 0 {
		s += fmt.Sprintf(".%06d", micros)
	}
	return s + "Z"
}

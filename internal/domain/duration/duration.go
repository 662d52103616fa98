// Package duration parses the subset of ISO-8601 durations used for facet gaps
// (P1D, P2Y, PT30M ...) and renders them as engine interval strings.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/theduckylittle/registry/internal/domain"
)

// Unit is a calendar or clock unit.
type Unit string

// Supported units.
const (
	Years   Unit = "YEARS"
	Months  Unit = "MONTHS"
	Weeks   Unit = "WEEKS"
	Days    Unit = "DAYS"
	Hours   Unit = "HOURS"
	Minutes Unit = "MINUTES"
	Seconds Unit = "SECONDS"
)

var (
	datePart = regexp.MustCompile(`^P(\d+)([YMWD])$`)
	timePart = regexp.MustCompile(`^PT(\d+)([HMS])$`)

	dateUnits = map[string]Unit{"Y": Years, "M": Months, "W": Weeks, "D": Days}
	timeUnits = map[string]Unit{"H": Hours, "M": Minutes, "S": Seconds}

	// MONTHS and MINUTES both render as "m"; kept as-is for compatibility with existing clients.
	intervalSuffix = map[Unit]string{
		Years:   "y",
		Months:  "m",
		Weeks:   "w",
		Days:    "d",
		Hours:   "h",
		Minutes: "m",
		Seconds: "s",
	}
)

// Spec is a parsed gap: a positive quantity of one unit.
type Spec struct {
	quantity int
	unit     Unit
}

// Parse parses a date-part token (P<n>[YMWD]) or a time-part token (PT<n>[HMS]).
func Parse(token string) (Spec, error) {
	pattern, units := datePart, dateUnits
	if strings.Contains(token, "T") {
		pattern, units = timePart, timeUnits
	}

	m := pattern.FindStringSubmatch(token)
	if m == nil {
		return Spec{}, fmt.Errorf("%w: %q does not match the pattern %s", domain.ErrUnsupportedFormat, token, pattern)
	}

	quantity, err := strconv.Atoi(m[1])
	if err != nil {
		return Spec{}, fmt.Errorf("%w: quantity %q", domain.ErrNumberFormat, m[1])
	}
	if quantity <= 0 {
		return Spec{}, fmt.Errorf("%w: quantity must be positive in %q", domain.ErrUnsupportedFormat, token)
	}

	return Spec{quantity: quantity, unit: units[m[2]]}, nil
}

// Quantity returns the number of units.
func (s Spec) Quantity() int { return s.quantity }

// Unit returns the unit.
func (s Spec) Unit() Unit { return s.unit }

// Interval renders the engine interval, e.g. "1d" or "30m".
func (s Spec) Interval() string {
	return strconv.Itoa(s.quantity) + intervalSuffix[s.unit]
}

// ToInterval parses token and renders its engine interval.
func ToInterval(token string) (string, error) {
	s, err := Parse(token)
	if err != nil {
		return "", err
	}
	return s.Interval(), nil
}

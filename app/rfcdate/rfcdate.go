// Package rfcdate resolves the loosely formatted dates found in syndication
// feeds (RFC822 and its many variants, plus ISO-8601) to absolute instants.
package rfcdate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// zoneHours maps RFC822 named zones to the hours added to the local time to
// reach UTC. The military letters keep the historical RFC822 signs.
var zoneHours = map[string]int{
	"A": 1, "B": 2, "C": 3, "D": 4, "E": 5, "F": 6, "G": 7, "H": 8, "I": 9,
	"K": 10, "L": 11, "M": 12,
	"N": -1, "O": -2, "P": -3, "Q": -4, "R": -5, "S": -6, "T": -7, "U": -8,
	"V": -9, "W": -10, "X": -11, "Y": -12,
	"EST": 5, "EDT": 4,
	"CST": 6, "CDT": 5,
	"MST": 7, "MDT": 6,
	"PST": 8, "PDT": 7,
}

var utcZones = map[string]bool{
	"GMT": true,
	"UT":  true,
	"UTC": true,
	"Z":   true,
}

// layouts are tried before falling back to dateparse. Day fields use the
// unpadded form so both "7" and "07" are accepted.
var layouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006 15:04",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04",
	"Mon, 2 Jan 06 15:04:05",
	"2 Jan 06 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseOr resolves s and returns def when no strategy understands it.
func ParseOr(s string, def time.Time) time.Time {
	t, err := Parse(s)
	if err != nil {
		return def
	}
	return t
}

// Parse resolves s to an instant. A general parse of the whole string is
// tried first; if that fails the trailing timezone token is split off and
// applied by hand.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	zone := trailingToken(s)

	// Zones from the table are applied by hand. Anything else, such as a
	// meridiem, goes through the general parse first.
	if !needsZoneTable(zone) {
		if t, err := parseInvariant(s); err == nil && !fabricatedZone(t, zone) {
			if strings.EqualFold(zone, "GMT") {
				t = t.UTC()
			}
			return t, nil
		}
	}

	return parseManual(s)
}

// fabricatedZone reports whether t carries a zero-offset location that Go
// invented for an abbreviation it does not know.
func fabricatedZone(t time.Time, token string) bool {
	if !isAlpha(token) || strings.EqualFold(token, "GMT") || strings.EqualFold(token, "UTC") {
		return false
	}
	name, _ := t.Zone()
	return strings.EqualFold(name, token)
}

func parseManual(s string) (time.Time, error) {
	idx := strings.LastIndex(s, " ")
	if idx < 0 {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	reduced := strings.TrimSpace(s[:idx])
	zone := s[idx+1:]

	local, err := parseInvariant(reduced)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", reduced, err)
	}
	local = time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)

	if strings.HasPrefix(zone, "+") || strings.HasPrefix(zone, "-") {
		offset, err := parseOffset(zone)
		if err != nil {
			return time.Time{}, err
		}
		return local.Add(-offset), nil
	}

	hours, ok := lookupZone(zone)
	if !ok {
		return time.Time{}, fmt.Errorf("unknown timezone %q", zone)
	}
	return local.Add(time.Duration(hours) * time.Hour), nil
}

// parseOffset reads a signed "+hhmm" token. Two digits after the sign are
// hours, whatever follows is minutes.
func parseOffset(zone string) (time.Duration, error) {
	sign := time.Duration(1)
	if zone[0] == '-' {
		sign = -1
	}

	digits := strings.ReplaceAll(zone[1:], ":", "")
	if len(digits) < 2 {
		return 0, fmt.Errorf("invalid timezone offset %q", zone)
	}

	hours, err := strconv.Atoi(digits[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid timezone offset %q: %w", zone, err)
	}

	minutes := 0
	if rest := digits[2:]; rest != "" {
		minutes, err = strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid timezone offset %q: %w", zone, err)
		}
	}

	return sign * (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), nil
}

func lookupZone(zone string) (int, bool) {
	code := strings.ToUpper(zone)
	if utcZones[code] {
		return 0, true
	}
	hours, ok := zoneHours[code]
	return hours, ok
}

func parseInvariant(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return parseLoose(s)
}

// parseLoose wraps dateparse, which can panic on some malformed input.
func parseLoose(s string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unparseable date %q", s)
		}
	}()
	return dateparse.ParseIn(s, time.UTC)
}

func trailingToken(s string) string {
	return s[strings.LastIndex(s, " ")+1:]
}

func isAlpha(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// needsZoneTable reports whether token is a zone from the RFC822 table that
// Go's own parser would misread. GMT and UTC are left to Go.
func needsZoneTable(token string) bool {
	if !isAlpha(token) {
		return false
	}
	if _, ok := lookupZone(token); !ok {
		return false
	}
	code := strings.ToUpper(token)
	return code != "GMT" && code != "UTC"
}

// Package models defines the shared data nouns consumed and produced by the
// simulation engine: mission data (events, checklists, autopilot programs,
// PADs, failure taxonomy, consumables, communications schedule, docking
// gates, entry timeline), manual action scripts, and the UI frame shape.
package models

import (
	"fmt"
)

// GET is Ground Elapsed Time: non-negative whole seconds since mission start.
// All timestamps inside the engine are GET-seconds; wall time is never
// consulted by core subsystems.
type GET int64

// Seconds returns the underlying integer second count.
func (g GET) Seconds() int64 { return int64(g) }

// Add returns g shifted by delta seconds.
func (g GET) Add(deltaSeconds int64) GET { return GET(int64(g) + deltaSeconds) }

// Sub returns the seconds between g and other (g - other).
func (g GET) Sub(other GET) int64 { return int64(g) - int64(other) }

// String renders GET as HHH:MM:SS, zero-padded, with an unbounded hour field.
func (g GET) String() string {
	total := int64(g)
	neg := total < 0
	if neg {
		total = -total
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%03d:%02d:%02d", sign, h, m, s)
}

// MarshalJSON renders GET as its HHH:MM:SS string form.
func (g GET) MarshalJSON() ([]byte, error) {
	return []byte(`"` + g.String() + `"`), nil
}

// UnmarshalJSON accepts either an HHH:MM:SS string or a bare integer second count.
func (g *GET) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		parsed, err := ParseGET(s[1 : len(s)-1])
		if err != nil {
			return err
		}
		*g = parsed
		return nil
	}
	var secs int64
	if _, err := fmt.Sscanf(s, "%d", &secs); err != nil {
		return fmt.Errorf("models: invalid GET literal %q: %w", s, err)
	}
	*g = GET(secs)
	return nil
}

// ParseGET parses an HHH:MM:SS string (hours may be any width, optionally
// signed) into a GET value.
func ParseGET(s string) (GET, error) {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var h, m, sec int64
	n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if err != nil || n != 3 {
		return 0, fmt.Errorf("models: invalid GET %q, want HHH:MM:SS", s)
	}
	if m < 0 || m >= 60 || sec < 0 || sec >= 60 || h < 0 {
		return 0, fmt.Errorf("models: invalid GET %q, field out of range", s)
	}
	total := h*3600 + m*60 + sec
	if neg {
		total = -total
	}
	return GET(total), nil
}

// MustParseGET is ParseGET but panics on error; intended for static mission
// data construction (tests, fixtures), never for untrusted input.
func MustParseGET(s string) GET {
	g, err := ParseGET(s)
	if err != nil {
		panic(err)
	}
	return g
}

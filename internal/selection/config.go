// Package selection implements the list selection model and the resolver
// that selects logical indices which have not been loaded yet.
package selection

import (
	"fmt"
	"strings"
)

// Mode is the selection cardinality.
type Mode int

const (
	// Single allows at most one selected record.
	Single Mode = iota
	// Multi selects one record per plain gesture and extends the selection
	// with an extending gesture.
	Multi
	// Simple toggles records on every gesture.
	Simple
)

func (m Mode) String() string {
	switch m {
	case Multi:
		return "multi"
	case Simple:
		return "simple"
	default:
		return "single"
	}
}

// ParseMode parses "single", "multi" or "simple".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return Single, nil
	case "multi":
		return Multi, nil
	case "simple":
		return Simple, nil
	}
	return Single, fmt.Errorf("unknown selection mode %q (want single, multi or simple)", s)
}

// Config holds the recognized selection options.
type Config struct {
	SingleSelect     bool
	MultiSelect      bool
	SimpleSelect     bool
	AllowDeselect    bool
	DisableSelection bool
}

// ConfigForMode returns a Config with the flag for m set.
func ConfigForMode(m Mode) Config {
	switch m {
	case Multi:
		return Config{MultiSelect: true}
	case Simple:
		return Config{SimpleSelect: true}
	default:
		return Config{SingleSelect: true}
	}
}

// Mode derives the cardinality from the flags: simple wins over multi,
// which wins over the single default.
func (c Config) Mode() Mode {
	switch {
	case c.SimpleSelect:
		return Simple
	case c.MultiSelect:
		return Multi
	default:
		return Single
	}
}

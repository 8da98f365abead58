package lazyview

import (
	"fmt"

	"github.com/oakwood-commons/lazyview/internal/render"
)

const (
	// DefaultLoadBarrier is the fraction of a page that must be scrolled
	// past before the next page is requested.
	DefaultLoadBarrier = 0.5
	// DefaultItemSelector is the class the template renderer gives records.
	DefaultItemSelector = "item"
	// DefaultEmptyText is shown when the collection has no records.
	DefaultEmptyText = "No records"
)

// Config holds the recognized view options.
type Config struct {
	// ItemSelector identifies rendered record elements.
	ItemSelector string
	// LoadBarrier is in (0, 1]. Zero means DefaultLoadBarrier.
	LoadBarrier float64
	// EmptyText is shown for an empty collection.
	EmptyText string
	// DeferEmptyText skips the empty text on the first refresh, so it does
	// not flash before the first load completes.
	DeferEmptyText bool
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		ItemSelector: DefaultItemSelector,
		LoadBarrier:  DefaultLoadBarrier,
		EmptyText:    DefaultEmptyText,
	}
}

// WithDefaults fills zero fields with their defaults and reduces the item
// selector to the class it names.
func (c Config) WithDefaults() Config {
	c.ItemSelector = render.Class(c.ItemSelector)
	if c.ItemSelector == "" {
		c.ItemSelector = DefaultItemSelector
	}
	if c.LoadBarrier == 0 {
		c.LoadBarrier = DefaultLoadBarrier
	}
	return c
}

// Validate reports options that cannot work.
func (c Config) Validate() error {
	if c.LoadBarrier <= 0 || c.LoadBarrier > 1 {
		return fmt.Errorf("load barrier %v out of range (0, 1]", c.LoadBarrier)
	}
	if render.Class(c.ItemSelector) == "" {
		return fmt.Errorf("item selector is empty")
	}
	return nil
}

package store

import "fmt"

// Operation describes one read against the proxy. Page is 1-based; Start and
// Limit are record offsets into the logical collection.
type Operation struct {
	ID         string
	Page       int
	Start      int
	Limit      int
	AddRecords bool
}

func (o Operation) String() string {
	return fmt.Sprintf("page=%d start=%d limit=%d add=%t", o.Page, o.Start, o.Limit, o.AddRecords)
}

// PageStart returns the offset of the first record of a 1-based page.
func PageStart(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}

// PageOperation builds the read for a single page.
func PageOperation(page, pageSize int, addRecords bool) Operation {
	return Operation{
		Page:       page,
		Start:      PageStart(page, pageSize),
		Limit:      pageSize,
		AddRecords: addRecords,
	}
}

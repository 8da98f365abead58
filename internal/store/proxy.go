package store

import "context"

// Result is what a proxy returns for one read. Total is the size of the
// remote collection when the backend reports it, or -1 when unknown.
type Result struct {
	Records []Record
	Total   int
}

// Proxy fetches record windows from a backend. Read is called off the event
// loop and must not touch store state.
type Proxy interface {
	Read(ctx context.Context, op Operation) (Result, error)
	Schema() Schema
}

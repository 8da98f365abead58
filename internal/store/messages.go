package store

// LoadedMsg carries a successful read back to the event loop.
type LoadedMsg struct {
	Op     Operation
	Result Result
}

// LoadFailedMsg carries a failed read back to the event loop. A failed read
// never fires the load event.
type LoadFailedMsg struct {
	Op  Operation
	Err error
}

// LoadEvent is emitted after a successful read has been merged.
type LoadEvent struct {
	Op      Operation
	Records []Record
	Count   int
	// Discarded marks a read that started past the materialized records.
	// Its records were dropped and the store is unchanged.
	Discarded bool
}

// FailureEvent is emitted when a read fails.
type FailureEvent struct {
	Op  Operation
	Err error
}

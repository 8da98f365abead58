package store

type pendingState int

const (
	pendingWaiting pendingState = iota
	pendingResolved
	pendingCancelled
)

// Pending is a one-shot continuation waiting for the next load. It resolves
// at most once; a read that fails or never completes leaves it waiting until
// it is cancelled.
type Pending struct {
	off   func()
	state pendingState
}

// Cancel detaches the continuation. It reports whether the continuation was
// still waiting.
func (p *Pending) Cancel() bool {
	if p == nil || p.state != pendingWaiting {
		return false
	}
	p.state = pendingCancelled
	if p.off != nil {
		p.off()
	}
	return true
}

// Waiting reports whether the continuation has neither run nor been cancelled.
func (p *Pending) Waiting() bool {
	return p != nil && p.state == pendingWaiting
}

// Resolved reports whether the continuation has run.
func (p *Pending) Resolved() bool {
	return p != nil && p.state == pendingResolved
}

// Cancelled reports whether the continuation was cancelled before it ran.
func (p *Pending) Cancelled() bool {
	return p != nil && p.state == pendingCancelled
}

// Package event provides the small, single-threaded emitter the list
// components use to publish load, refresh and selection events.
//
// Emitters are not safe for concurrent use. Every call is expected to happen
// on the Bubble Tea update loop, which is also where handlers run.
package event

import tea "charm.land/bubbletea/v2"

// Handler reacts to an event. The returned command, if any, is handed back to
// the event loop by whoever emitted the event.
type Handler[E any] func(E) tea.Cmd

type subscription[E any] struct {
	id   uint64
	fn   Handler[E]
	once bool
}

// Emitter fans an event out to its subscribers in subscription order.
type Emitter[E any] struct {
	nextID uint64
	subs   []subscription[E]
	firing map[uint64]bool // one-shot ids detached by the Emit in progress
}

// On subscribes fn until the returned function is called.
func (e *Emitter[E]) On(fn Handler[E]) (off func()) {
	return e.add(fn, false)
}

// Once subscribes fn for the next emitted event only.
func (e *Emitter[E]) Once(fn Handler[E]) (off func()) {
	return e.add(fn, true)
}

func (e *Emitter[E]) add(fn Handler[E], once bool) func() {
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription[E]{id: id, fn: fn, once: once})
	return func() { e.remove(id) }
}

func (e *Emitter[E]) remove(id uint64) {
	delete(e.firing, id)
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to every current subscriber and batches their commands.
// One-shot subscriptions are dropped before any handler runs, so a handler
// that subscribes again is only called on the next Emit.
func (e *Emitter[E]) Emit(ev E) tea.Cmd {
	if len(e.subs) == 0 {
		return nil
	}
	current := e.subs
	e.subs = make([]subscription[E], 0, len(current))
	e.firing = make(map[uint64]bool)
	for _, s := range current {
		if s.once {
			e.firing[s.id] = true
		} else {
			e.subs = append(e.subs, s)
		}
	}

	cmds := make([]tea.Cmd, 0, len(current))
	for _, s := range current {
		// skip anything an earlier handler unsubscribed during this Emit
		if s.once {
			if !e.firing[s.id] {
				continue
			}
			delete(e.firing, s.id)
		} else if !e.has(s.id) {
			continue
		}
		if cmd := s.fn(ev); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

func (e *Emitter[E]) has(id uint64) bool {
	for _, s := range e.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

// Len reports the number of live subscriptions.
func (e *Emitter[E]) Len() int {
	return len(e.subs)
}

// Package storetest provides a scripted proxy and a synchronous command
// runner for tests of the paged list components.
package storetest

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/lazyview/internal/store"
)

// ErrUnavailable is returned by a Proxy told to fail.
var ErrUnavailable = errors.New("backend unavailable")

// Proxy serves a fixed number of generated contact records and remembers
// every operation it was asked for.
type Proxy struct {
	Total  int
	Fields []string
	Fail   bool
	Ops    []store.Operation
}

// NewProxy returns a proxy over total generated records.
func NewProxy(total int) *Proxy {
	return &Proxy{Total: total, Fields: []string{"firstName", "lastName"}}
}

// Contact returns the generated record at logical index i.
func Contact(i int) store.Record {
	return store.Record{
		"firstName": fmt.Sprintf("First%03d", i),
		"lastName":  fmt.Sprintf("Last%03d", i),
	}
}

func (p *Proxy) Read(_ context.Context, op store.Operation) (store.Result, error) {
	p.Ops = append(p.Ops, op)
	if p.Fail {
		return store.Result{}, ErrUnavailable
	}
	var recs []store.Record
	for i := op.Start; i < op.Start+op.Limit && i < p.Total; i++ {
		recs = append(recs, Contact(i))
	}
	return store.Result{Records: recs, Total: p.Total}, nil
}

func (p *Proxy) Schema() store.Schema {
	return store.Schema{Fields: p.Fields}
}

// LastOp returns the most recent operation, or the zero value.
func (p *Proxy) LastOp() store.Operation {
	if len(p.Ops) == 0 {
		return store.Operation{}
	}
	return p.Ops[len(p.Ops)-1]
}

// Handler consumes a message on the simulated event loop.
type Handler func(tea.Msg) tea.Cmd

// maxSteps guards against commands that keep producing work forever.
const maxSteps = 1000

// Drain runs cmd and every command it produces, feeding each message to
// handle, until no work remains. Batches are flattened and run in order.
// It returns the number of messages delivered.
func Drain(cmd tea.Cmd, handle Handler) int {
	queue := []tea.Cmd{cmd}
	delivered := 0
	for steps := 0; len(queue) > 0 && steps < maxSteps; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		delivered++
		queue = append(queue, handle(msg))
	}
	return delivered
}

// Messages runs cmd once, flattening batches, and returns the produced
// messages without delivering them anywhere.
func Messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, Messages(c)...)
	}
	return out
}

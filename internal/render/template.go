package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/lazyview/internal/store"
)

const ellipsis = "…"

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"default": func(def, v any) any {
		if v == nil || v == "" {
			return def
		}
		return v
	},
}

// TemplateRenderer renders each record through a text/template. Every
// element it produces carries the item class, so the view can find record
// elements with the item selector.
type TemplateRenderer struct {
	tpl   *template.Template
	class string
	width int
}

// NewTemplate parses text and returns a renderer tagging elements with the
// class named by itemSelector.
func NewTemplate(text, itemSelector string) (*TemplateRenderer, error) {
	class := Class(itemSelector)
	if class == "" {
		return nil, fmt.Errorf("item selector is empty")
	}
	tpl, err := template.New("item").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse item template: %w", err)
	}
	return &TemplateRenderer{tpl: tpl, class: class}, nil
}

// SetWidth sets the column budget; lines wider than width are truncated.
func (r *TemplateRenderer) SetWidth(width int) {
	r.width = max(width, 0)
}

// RenderInto clears node and renders records into it.
func (r *TemplateRenderer) RenderInto(node *Node, start int, records []store.Record) error {
	els, err := r.elements(start, records)
	if err != nil {
		return err
	}
	node.Clear()
	node.Elements = append(node.Elements, els...)
	return nil
}

// AppendInto renders records after node's existing elements.
func (r *TemplateRenderer) AppendInto(node *Node, start int, records []store.Record) error {
	els, err := r.elements(start, records)
	if err != nil {
		return err
	}
	node.Elements = append(node.Elements, els...)
	return nil
}

// Measure returns the rendered height of node in rows.
func (r *TemplateRenderer) Measure(node *Node) int {
	return node.Height()
}

func (r *TemplateRenderer) elements(start int, records []store.Record) ([]Element, error) {
	els := make([]Element, 0, len(records))
	var buf bytes.Buffer
	for i, rec := range records {
		buf.Reset()
		if err := r.tpl.Execute(&buf, map[string]any(rec)); err != nil {
			return nil, fmt.Errorf("render record %d: %w", start+i, err)
		}
		els = append(els, Element{
			Class:   r.class,
			Index:   start + i,
			Content: r.fit(strings.TrimRight(buf.String(), "\n")),
		})
	}
	return els, nil
}

func (r *TemplateRenderer) fit(s string) string {
	if r.width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if runewidth.StringWidth(line) > r.width {
			lines[i] = runewidth.Truncate(line, r.width, ellipsis)
		}
	}
	return strings.Join(lines, "\n")
}

// TemplateFields lists the top-level field names text references, in order
// of first use. It is used to ask a proxy only for the fields a template
// needs.
func TemplateFields(text string) ([]string, error) {
	tpl, err := template.New("fields").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse item template: %w", err)
	}
	var fields []string
	seen := map[string]bool{}
	var walk func(n parse.Node)
	walk = func(n parse.Node) {
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return
			}
			for _, c := range n.Nodes {
				walk(c)
			}
		case *parse.ActionNode:
			walk(n.Pipe)
		case *parse.IfNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.RangeNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.WithNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.TemplateNode:
			walk(n.Pipe)
		case *parse.PipeNode:
			if n == nil {
				return
			}
			for _, c := range n.Cmds {
				walk(c)
			}
		case *parse.CommandNode:
			for _, a := range n.Args {
				walk(a)
			}
		case *parse.ChainNode:
			walk(n.Node)
		case *parse.FieldNode:
			if len(n.Ident) > 0 && !seen[n.Ident[0]] {
				seen[n.Ident[0]] = true
				fields = append(fields, n.Ident[0])
			}
		}
	}
	if tpl.Tree != nil {
		walk(tpl.Tree.Root)
	}
	return fields, nil
}

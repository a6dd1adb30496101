// Package explain renders custom bitmap-heap scans for plan
// visualization, in plain text or as a structured document.
package explain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format selects the output representation.
type Format int

const (
	// FormatText renders indented plan text.
	FormatText Format = iota
	// FormatJSON renders a structured JSON document.
	FormatJSON
)

// Prop is one key/value property of a plan node.
type Prop struct {
	Key   string
	Value any
}

// group is a deferred output node. Structured formats buffer the whole
// group tree and emit it once at Render time, so a group can be
// suppressed or reshaped after its properties were added without
// rewriting already-emitted output.
type group struct {
	name     string
	props    []Prop
	children []*group
}

// State accumulates visualization output. Text output is written line
// by line at the current indent; structured output is collected into a
// group tree and marshaled at the end.
type State struct {
	format Format
	indent int

	sb    strings.Builder
	root  *group
	stack []*group
}

// NewState creates an output state for the given format.
func NewState(format Format) *State {
	root := &group{}
	return &State{
		format: format,
		root:   root,
		stack:  []*group{root},
	}
}

// Format returns the selected output format.
func (st *State) Format() Format { return st.format }

// Indent returns the current text indent in spaces.
func (st *State) Indent() int { return st.indent }

// AddIndent shifts the text indent by delta spaces.
func (st *State) AddIndent(delta int) { st.indent += delta }

func (st *State) top() *group { return st.stack[len(st.stack)-1] }

// Line writes one line of text output at the current indent. Ignored
// in structured formats.
func (st *State) Line(format string, args ...any) {
	if st.format != FormatText {
		return
	}
	st.sb.WriteString(strings.Repeat(" ", st.indent))
	fmt.Fprintf(&st.sb, format, args...)
	st.sb.WriteByte('\n')
}

// Property emits one key/value property: a "Key: Value" text line, or
// a field of the current group in structured formats.
func (st *State) Property(key string, value any) {
	if st.format == FormatText {
		st.Line("%s: %v", key, value)
		return
	}
	g := st.top()
	g.props = append(g.props, Prop{Key: key, Value: value})
}

// OpenGroup starts a child group. A named group becomes a field of its
// parent; an empty name makes an anonymous list item, turning the
// parent into a list. Text output carries grouping through indentation
// only, so groups are dropped there.
func (st *State) OpenGroup(name string) {
	if st.format == FormatText {
		return
	}
	child := &group{name: name}
	g := st.top()
	g.children = append(g.children, child)
	st.stack = append(st.stack, child)
}

// CloseGroup closes the innermost open group.
func (st *State) CloseGroup() {
	if st.format == FormatText {
		return
	}
	if len(st.stack) > 1 {
		st.stack = st.stack[:len(st.stack)-1]
	}
}

// Render returns the accumulated output.
func (st *State) Render() (string, error) {
	if st.format == FormatText {
		return st.sb.String(), nil
	}
	doc := st.root.document()
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("explain: render: %w", err)
	}
	return string(out), nil
}

// document converts a group tree into the structure handed to the JSON
// encoder. A group holding only anonymous children renders as a list.
func (g *group) document() any {
	if len(g.props) == 0 && len(g.children) > 0 && g.children[0].name == "" {
		items := make([]any, len(g.children))
		for i, c := range g.children {
			items[i] = c.document()
		}
		return items
	}
	doc := make(map[string]any, len(g.props)+len(g.children))
	for _, p := range g.props {
		doc[p.Key] = p.Value
	}
	for _, c := range g.children {
		doc[c.name] = c.document()
	}
	return doc
}

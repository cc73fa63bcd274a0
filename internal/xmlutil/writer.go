package xmlutil

import (
	"sort"
	"strings"
)

// frameState tracks whether an open element's start tag has been written yet.
// An element stays unflushed until a child, text, raw fragment, or EndElement
// forces it to decide between <x/> and <x>...</x>.
type frameState int

const (
	openUnflushed frameState = iota
	openFlushed
)

type attr struct {
	name  string
	value string
}

type frame struct {
	tag   string
	state frameState
	atts  []attr
}

// Writer builds a namespaced XML document incrementally. The zero value is
// ready to use; StartDocument additionally emits the XML declaration and
// resets any previous state.
//
// Calls must be stack-disciplined: every StartElement needs a matching
// EndElement. EndElement on an empty stack is a programming error and panics.
type Writer struct {
	buf   strings.Builder
	stack []frame
}

// StartDocument resets the writer and emits the XML declaration.
func (w *Writer) StartDocument() {
	w.buf.Reset()
	w.stack = w.stack[:0]
	w.buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
}

// StartElement opens a new element.
func (w *Writer) StartElement(tag string) {
	w.commit()
	w.stack = append(w.stack, frame{tag: tag, state: openUnflushed})
}

// StartElementNS opens a new element carrying namespace declarations, emitted
// as xmlns attributes in prefix order. An empty prefix declares the default
// namespace.
func (w *Writer) StartElementNS(tag string, namespaces map[string]string) {
	w.commit()

	f := frame{tag: tag, state: openUnflushed}

	prefixes := make([]string, 0, len(namespaces))
	for p := range namespaces {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	for _, p := range prefixes {
		name := "xmlns"
		if p != "" {
			name = "xmlns:" + p
		}
		f.atts = append(f.atts, attr{name: name, value: namespaces[p]})
	}

	w.stack = append(w.stack, f)
}

// Attribute sets an attribute on the current element, overwriting any earlier
// value for the same name. Only valid while the element is still unflushed.
func (w *Writer) Attribute(name, value string) {
	f := &w.stack[len(w.stack)-1]

	for i := range f.atts {
		if f.atts[i].name == name {
			f.atts[i].value = value
			return
		}
	}

	f.atts = append(f.atts, attr{name: name, value: value})
}

// Text appends escaped character data, committing the current element as
// non-empty first.
func (w *Writer) Text(s string) {
	w.commit()
	w.buf.WriteString(escape(s, false))
}

// Raw appends s verbatim, with no escaping or well-formedness checking. Used
// to splice pre-built fragments into the current position.
func (w *Writer) Raw(s string) {
	w.commit()
	w.buf.WriteString(s)
}

// ElementText writes a complete element with text content.
func (w *Writer) ElementText(tag, s string) {
	w.StartElement(tag)
	w.Text(s)
	w.EndElement()
}

// EndElement closes the current element. An element that never received
// children or text is emitted self-closing.
func (w *Writer) EndElement() {
	n := len(w.stack)
	if n == 0 {
		panic("xmlutil: EndElement without matching StartElement")
	}

	f := &w.stack[n-1]
	if f.state == openUnflushed {
		w.flushTop(true)
	} else {
		w.buf.WriteString("</")
		w.buf.WriteString(f.tag)
		w.buf.WriteByte('>')
	}

	w.stack = w.stack[:n-1]
}

// Dump returns the document built so far.
func (w *Writer) Dump() string {
	return w.buf.String()
}

// commit forces a pending start tag out as a non-empty parent.
func (w *Writer) commit() {
	if n := len(w.stack); n > 0 && w.stack[n-1].state == openUnflushed {
		w.flushTop(false)
	}
}

func (w *Writer) flushTop(selfClose bool) {
	f := &w.stack[len(w.stack)-1]

	w.buf.WriteByte('<')
	w.buf.WriteString(f.tag)

	for _, a := range f.atts {
		w.buf.WriteByte(' ')
		w.buf.WriteString(escape(a.name, false))
		w.buf.WriteString(`="`)
		w.buf.WriteString(escape(a.value, true))
		w.buf.WriteByte('"')
	}

	if selfClose {
		w.buf.WriteString(" />")
	} else {
		w.buf.WriteByte('>')
	}

	f.state = openFlushed
	f.atts = nil
}

// escape replaces <, >, and & with entity references; inside attribute values
// double quotes are escaped too. Strings without special characters are
// returned as-is.
func escape(s string, att bool) string {
	needed := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '>', '&':
			needed = true
		case '"':
			needed = att
		}
		if needed {
			break
		}
	}

	if !needed {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '"':
			if att {
				b.WriteString("&quot;")
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

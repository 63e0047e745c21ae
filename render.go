package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RenderOptions controls the output layout.
type RenderOptions struct {
	// Indent is repeated once per nesting level.
	Indent string
	// NewlineBeforeContainer puts the opening bracket of an object member
	// whose value is an object or array on its own line, at the indentation
	// of the key. Array elements are never moved.
	NewlineBeforeContainer bool
}

// DefaultRenderOptions is the layout the implant build tooling expects.
var DefaultRenderOptions = RenderOptions{
	Indent:                 "    ",
	NewlineBeforeContainer: true,
}

// Render serializes doc with DefaultRenderOptions. The result has no
// trailing newline.
func Render(doc *Document) ([]byte, error) {
	return RenderWith(doc, DefaultRenderOptions)
}

// RenderWith serializes doc using opts.
func RenderWith(doc *Document, opts RenderOptions) ([]byte, error) {
	p := &printer{opts: opts}
	if err := p.value(doc.Root, 0); err != nil {
		return nil, err
	}
	return p.buf.Bytes(), nil
}

type printer struct {
	buf  bytes.Buffer
	opts RenderOptions
}

func (p *printer) indent(depth int) {
	p.buf.WriteString(strings.Repeat(p.opts.Indent, depth))
}

func (p *printer) value(v any, depth int) error {
	switch t := v.(type) {
	case nil:
		p.buf.WriteString("null")
	case bool:
		if t {
			p.buf.WriteString("true")
		} else {
			p.buf.WriteString("false")
		}
	case json.Number:
		p.buf.WriteString(t.String())
	case string:
		return p.str(t)
	case *Object:
		return p.object(t, depth)
	case []any:
		return p.array(t, depth)
	default:
		return fmt.Errorf("render: unsupported value of type %T", v)
	}
	return nil
}

func (p *printer) object(o *Object, depth int) error {
	if o.Len() == 0 {
		p.buf.WriteString("{}")
		return nil
	}

	p.buf.WriteString("{\n")
	for i, m := range o.Members {
		p.indent(depth + 1)
		if err := p.str(m.Key); err != nil {
			return err
		}
		p.buf.WriteByte(':')
		if p.opts.NewlineBeforeContainer && isContainer(m.Value) {
			p.buf.WriteByte('\n')
			p.indent(depth + 1)
		} else {
			p.buf.WriteByte(' ')
		}
		if err := p.value(m.Value, depth+1); err != nil {
			return err
		}
		if i < len(o.Members)-1 {
			p.buf.WriteByte(',')
		}
		p.buf.WriteByte('\n')
	}
	p.indent(depth)
	p.buf.WriteByte('}')
	return nil
}

func (p *printer) array(a []any, depth int) error {
	if len(a) == 0 {
		p.buf.WriteString("[]")
		return nil
	}

	p.buf.WriteString("[\n")
	for i, elem := range a {
		p.indent(depth + 1)
		if err := p.value(elem, depth+1); err != nil {
			return err
		}
		if i < len(a)-1 {
			p.buf.WriteByte(',')
		}
		p.buf.WriteByte('\n')
	}
	p.indent(depth)
	p.buf.WriteByte(']')
	return nil
}

func (p *printer) str(s string) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	p.buf.Write(bytes.TrimSuffix(b.Bytes(), []byte("\n")))
	return nil
}

func isContainer(v any) bool {
	switch v.(type) {
	case *Object, []any:
		return true
	}
	return false
}

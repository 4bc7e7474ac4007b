// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

package xmlio

import (
	"bufio"
	"io"
	"strings"

	"github.com/tomschr/dbxincluder-go/dom"
)

// Encoder serialises a dom.Document back to XML text. Formatting is
// byte-faithful to the source tree (no re-indentation): Text/Tail strings
// are written verbatim, so whitespace-preserving round-trips stay intact.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes doc to the underlying writer and flushes.
func (e *Encoder) Encode(doc *dom.Document) error {
	if doc == nil || doc.Root == nil {
		return nil
	}
	e.writeElement(doc.Root)
	return e.w.Flush()
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func (e *Encoder) writeElement(el *dom.Element) {
	e.w.WriteByte('<')
	e.w.WriteString(qualifiedTagName(el))

	for _, nd := range el.NSDecls {
		e.w.WriteByte(' ')
		if nd.Prefix == "" {
			e.w.WriteString("xmlns")
		} else {
			e.w.WriteString("xmlns:")
			e.w.WriteString(nd.Prefix)
		}
		e.w.WriteString(`="`)
		e.w.WriteString(escapeAttr(nd.URI))
		e.w.WriteByte('"')
	}

	for p := el.Attrs.First(); p != nil; p = p.Next() {
		e.w.WriteByte(' ')
		e.w.WriteString(qualifiedAttrName(p.Key()))
		e.w.WriteString(`="`)
		e.w.WriteString(escapeAttr(p.Value()))
		e.w.WriteByte('"')
	}

	if len(el.Children) == 0 && el.Text == "" {
		e.w.WriteString("/>")
		e.writeTail(el)
		return
	}

	e.w.WriteByte('>')
	e.w.WriteString(escapeText(el.Text))
	for _, child := range el.Children {
		e.writeNode(child)
	}
	e.w.WriteString("</")
	e.w.WriteString(qualifiedTagName(el))
	e.w.WriteByte('>')
	e.writeTail(el)
}

func (e *Encoder) writeTail(n dom.Node) {
	e.w.WriteString(escapeText(n.Tail()))
}

func (e *Encoder) writeNode(n dom.Node) {
	switch t := n.(type) {
	case *dom.Element:
		e.writeElement(t)
	case *dom.Comment:
		e.w.WriteString("<!--")
		e.w.WriteString(t.Data)
		e.w.WriteString("-->")
		e.writeTail(t)
	case *dom.PI:
		e.w.WriteString("<?")
		e.w.WriteString(t.Target)
		if t.Data != "" {
			e.w.WriteByte(' ')
			e.w.WriteString(t.Data)
		}
		e.w.WriteString("?>")
		e.writeTail(t)
	}
}

func qualifiedTagName(el *dom.Element) string {
	prefix := prefixFor(el, el.Name.Space)
	if prefix == "" {
		return el.Name.Local
	}
	return prefix + ":" + el.Name.Local
}

func qualifiedAttrName(name dom.QName) string {
	if name.Space == "" {
		return name.Local
	}
	prefix := dom.DefaultPrefix(name.Space)
	if prefix == "" {
		return name.Local
	}
	return prefix + ":" + name.Local
}

// prefixFor looks up the prefix bound to uri by walking ancestor
// NSDecls, falling back to the well-known default table.
func prefixFor(el *dom.Element, uri string) string {
	if uri == "" {
		return ""
	}
	for cur := el; cur != nil; cur = cur.Parent() {
		for _, nd := range cur.NSDecls {
			if nd.URI == uri {
				return nd.Prefix
			}
		}
	}
	return dom.DefaultPrefix(uri)
}

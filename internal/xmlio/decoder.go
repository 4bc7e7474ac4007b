// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

// Package xmlio builds a dom.Document from raw XML bytes and serialises one
// back to bytes. It exists because nothing in the dependency stack provides
// a mutable, lxml-style tree with separate text/tail fields; the decoder is
// built directly on encoding/xml.Decoder, tracking byte offsets the same way
// as the reference decoders it's grounded on.
package xmlio

import (
	"bytes"
	"encoding/xml"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/tomschr/dbxincluder-go/dom"
	"github.com/tomschr/dbxincluder-go/internal/errs"
)

// Decoder reads a dom.Document out of a byte slice, recording the source
// line of every node as it goes.
type Decoder struct {
	url        string
	sourceText []byte
	xd         *xml.Decoder
}

// NewDecoder creates a Decoder for src, attributing diagnostics to url.
// Non-UTF-8 input is transcoded via the XML/HTML charset declarations,
// following the same CharsetReader wiring used for HTML in the rest of the
// pack's dependency stack.
func NewDecoder(src []byte, url string) *Decoder {
	xd := xml.NewDecoder(bytes.NewReader(src))
	xd.CharsetReader = charset.NewReaderLabel
	return &Decoder{url: url, sourceText: src, xd: xd}
}

// lineAt returns the 1-based source line containing byte offset off.
func (d *Decoder) lineAt(off int64) int {
	if off < 0 || off > int64(len(d.sourceText)) {
		return 0
	}
	line := 1
	for _, b := range d.sourceText[:off] {
		if b == '\n' {
			line++
		}
	}
	return line
}

func toQName(n xml.Name) dom.QName {
	return dom.QName{Space: n.Space, Local: n.Local}
}

// nsDeclsOf extracts the xmlns/xmlns:* declarations carried directly on a
// start element token, in source order, from its raw (pre-resolution)
// attribute list.
func nsDeclsOf(raw []xml.Attr) []dom.NSDecl {
	var out []dom.NSDecl
	for _, a := range raw {
		switch {
		case a.Name.Space == "xmlns":
			out = append(out, dom.NSDecl{Prefix: a.Name.Local, URI: a.Value})
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			out = append(out, dom.NSDecl{Prefix: "", URI: a.Value})
		}
	}
	return out
}

// Decode parses the whole document and returns its root wrapped in a
// dom.Document. It reports ParseError for any malformed input.
func (d *Decoder) Decode() (*dom.Document, error) {
	var root *dom.Element
	var stack []*dom.Element

	appendText := func(s string) {
		if s == "" {
			return
		}
		if len(stack) == 0 {
			return // text outside the root element, discarded
		}
		top := stack[len(stack)-1]
		if len(top.Children) == 0 {
			top.AppendText(s)
			return
		}
		dom.AppendTail(top.Children[len(top.Children)-1], s)
	}

	for {
		off := d.xd.InputOffset()
		tok, err := d.xd.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.New(errs.ParseError, d.url, d.lineAt(off), err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line := d.lineAt(off)
			el := dom.NewElement(toQName(t.Name), line)
			el.NSDecls = nsDeclsOf(t.Attr)
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				el.Set(toQName(a.Name), a.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errs.New(errs.ParseError, d.url, line, "multiple root elements")
				}
				root = el
			} else {
				stack[len(stack)-1].AppendChild(el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errs.New(errs.ParseError, d.url, d.lineAt(off), "unbalanced end element")
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			appendText(string(t))

		case xml.Comment:
			c := dom.NewComment(string(t), d.lineAt(off))
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(c)
			}

		case xml.ProcInst:
			if t.Target == "xml" {
				continue // XML declaration, not part of the tree
			}
			pi := dom.NewPI(t.Target, string(t.Inst), d.lineAt(off))
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(pi)
			}

		case xml.Directive:
			// DOCTYPE and friends: out of scope, silently dropped.
		}
	}

	if root == nil {
		return nil, errs.New(errs.ParseError, d.url, 0, "empty document")
	}
	return dom.NewDocument(root), nil
}

// Parse is a convenience wrapper around NewDecoder(src, url).Decode().
func Parse(src []byte, url string) (*dom.Document, error) {
	return NewDecoder(src, url).Decode()
}

// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

package xinclude

import (
	"fmt"

	"github.com/tomschr/dbxincluder-go/dom"
	"github.com/tomschr/dbxincluder-go/internal/errs"
)

var validUnnamespacedAttrs = map[string]bool{
	"href":       true,
	"fragid":     true,
	"parse":      true,
	"set-xml-id": true,
}

// Validate checks an xi:include element against spec.md §4.4 and returns
// its effective parse mode ("xml" or "text/plain").
func Validate(include *dom.Element, diagURL string) (string, error) {
	line := include.Line()

	if _, xp := include.Get(dom.Un("xpointer")); xp {
		return "", errs.New(errs.InvalidAttribute, diagURL, line, "xpointer not implemented, use fragid instead")
	}

	for p := include.Attrs.First(); p != nil; p = p.Next() {
		name := p.Key()
		if name.Space == "" && !validUnnamespacedAttrs[name.Local] {
			return "", errs.New(errs.InvalidAttribute, diagURL, line, fmt.Sprintf("invalid attribute %q", name.Local))
		}
	}

	parse, ok := include.Get(dom.Un("parse"))
	if !ok {
		parse = "xml"
	}
	if parse != "xml" && parse != "text/plain" {
		return "", errs.New(errs.InvalidParse, diagURL, line, fmt.Sprintf("invalid value for parse: %q, expected 'xml' or 'text/plain'", parse))
	}

	if len(include.Children) != 0 {
		if len(include.Children) > 1 {
			return "", errs.New(errs.InvalidFallback, diagURL, line, "only one xi:fallback can be a child of xi:include")
		}
		fb, isElem := include.Children[0].(*dom.Element)
		if !isElem || fb.Name != dom.ElemFallback {
			return "", errs.New(errs.InvalidFallback, diagURL, line, "only one xi:fallback can be a child of xi:include")
		}
	}

	return parse, nil
}

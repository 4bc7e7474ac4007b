// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

package pipeline

import "github.com/tomschr/dbxincluder-go/dom"

// cleanup promotes every dbxi:newid to xml:id and strips every remaining
// trans:* and dbxi:* attribute (spec.md §4.10, final pass).
func cleanup(root *dom.Element) {
	root.Descendants(func(e *dom.Element) {
		if newID, ok := e.Get(dom.AttrNewID); ok {
			e.Set(dom.AttrXMLID, newID)
			e.Remove(dom.AttrNewID)
		}

		var toRemove []dom.QName
		for p := e.Attrs.First(); p != nil; p = p.Next() {
			name := p.Key()
			if name.Space == dom.NSTrans || name.Space == dom.NSDbxi {
				toRemove = append(toRemove, name)
			}
		}
		for _, name := range toRemove {
			e.Remove(name)
		}
	})
}

// pruneUnusedNamespaces drops every namespace declaration whose URI no
// element or attribute name anywhere in the document still references
// (spec.md §4.10 / §6 output format). Usage is counted document-wide, so a
// declaration is kept wherever it appears if any element uses its URI.
func pruneUnusedNamespaces(root *dom.Element) {
	used := make(map[string]bool)
	root.Descendants(func(e *dom.Element) {
		if e.Name.Space != "" {
			used[e.Name.Space] = true
		}
		for p := e.Attrs.First(); p != nil; p = p.Next() {
			if sp := p.Key().Space; sp != "" {
				used[sp] = true
			}
		}
	})

	root.Descendants(func(e *dom.Element) {
		var kept []dom.NSDecl
		for _, nd := range e.NSDecls {
			if used[nd.URI] {
				kept = append(kept, nd)
			}
		}
		e.NSDecls = kept
	})
}

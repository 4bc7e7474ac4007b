// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

package xinclude

import "github.com/tomschr/dbxincluder-go/dom"

// CopyAttributes applies the XInclude attribute-copying rules (spec.md
// §4.5) from an include element onto the root of the subtree that
// replaces it.
func CopyAttributes(include, subtreeRoot *dom.Element) {
	for p := include.Attrs.First(); p != nil; p = p.Next() {
		name, value := p.Key(), p.Value()

		switch {
		case name.Space == "" && name.Local == "set-xml-id":
			if value != "" {
				subtreeRoot.Set(dom.AttrXMLID, value)
			} else {
				subtreeRoot.Remove(dom.AttrXMLID)
			}
		case name.Space == dom.NSLocal:
			subtreeRoot.Set(dom.Un(name.Local), value)
		case name.Space == dom.NSXML:
			// xml:* is never copied.
		case name.Space != "":
			subtreeRoot.Set(name, value)
			// Unnamespaced href/fragid/parse are consumed by the include
			// itself and never copied.
		}
	}
}

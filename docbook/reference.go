// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

package docbook

import (
	"fmt"
	"strings"

	"github.com/tomschr/dbxincluder-go/dom"
	"github.com/tomschr/dbxincluder-go/internal/errs"
)

var attrLinkscope = dom.Trans("linkscope")

var singleValueIDREFs = map[string]bool{
	"linkend":   true,
	"otherterm": true,
	"startref":  true,
	"targetptr": true,
	"endterm":   true,
}

var multiValueIDREFs = map[string]bool{
	"arearefs": true,
	"linkends": true,
	"zone":     true,
}

// RepairReferences walks every DocBook-namespaced element of root in
// document order and rewrites its IDREF attributes to the new ids assigned
// by AssignNewIDs (spec.md §4.9). idIndex is a document-wide xml:id lookup
// built once per run (dom.Document.BuildIDIndex), used to resolve
// linkscope="global" references in O(1) instead of re-walking the whole
// tree for every reference.
//
// Unlike the expansion pass, reference repair does not abort on the first
// bad IDREF: every element is still visited, and every failing reference is
// collected into an internal/errs.MultiError, so a single run reports every
// UnresolvedReference/BadLinkscope it finds instead of just the first.
func RepairReferences(root *dom.Element, idIndex map[string]*dom.Element) error {
	var merr errs.MultiError
	root.Descendants(func(e *dom.Element) {
		if e.Name.Space != dom.NSDB {
			return
		}

		idfixup, _, ok := e.InheritedAttribute(attrIdfixup)
		if !ok {
			idfixup = "none"
		}
		if idfixup == "none" {
			return
		}

		linkscope, _, ok := e.InheritedAttribute(attrLinkscope)
		if !ok {
			linkscope = "near"
		}
		if linkscope == "user" {
			return
		}

		for _, p := range idrefAttrsOf(e) {
			name, value := p.key, p.value
			if multiValueIDREFs[name.Local] {
				resolved, err := resolveMulti(e, value, linkscope, idIndex)
				if err != nil {
					merr.Append(err)
					continue
				}
				e.Set(name, resolved)
				continue
			}
			if singleValueIDREFs[name.Local] {
				target, err := findTarget(e, value, linkscope, idIndex)
				if err != nil {
					merr.Append(err)
					continue
				}
				e.Set(name, newIDOf(target))
			}
		}
	})
	return merr.OrNil()
}

type attrPair struct {
	key   dom.QName
	value string
}

// idrefAttrsOf snapshots the IDREF-bearing attributes on e before mutation,
// since Set during the loop would otherwise be observed by Attrs.First.
func idrefAttrsOf(e *dom.Element) []attrPair {
	var out []attrPair
	for p := e.Attrs.First(); p != nil; p = p.Next() {
		name := p.Key()
		if name.Space != "" {
			continue
		}
		if singleValueIDREFs[name.Local] || multiValueIDREFs[name.Local] {
			out = append(out, attrPair{name, p.Value()})
		}
	}
	return out
}

func resolveMulti(e *dom.Element, value, linkscope string, idIndex map[string]*dom.Element) (string, error) {
	tokens := strings.Fields(value)
	resolved := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		target, err := findTarget(e, tok, linkscope, idIndex)
		if err != nil {
			return "", err
		}
		resolved = append(resolved, newIDOf(target))
	}
	return strings.Join(resolved, " "), nil
}

func newIDOf(target *dom.Element) string {
	if v, ok := target.Get(dom.AttrNewID); ok {
		return v
	}
	v, _ := target.Get(dom.AttrXMLID)
	return v
}

// findTarget resolves one IDREF token to its target element, per the
// linkscope in effect (spec.md §4.9).
func findTarget(e *dom.Element, value, linkscope string, idIndex map[string]*dom.Element) (*dom.Element, error) {
	switch linkscope {
	case "local":
		root := includeRootOf(e)
		for _, child := range root.Elements() {
			if id, ok := child.Get(dom.AttrXMLID); ok && id == value {
				return child, nil
			}
		}
	case "near":
		for cur := e; cur.Parent() != nil; cur = cur.Parent() {
			ancestor := cur.Parent()
			for _, child := range ancestor.Elements() {
				if id, ok := child.Get(dom.AttrXMLID); ok && id == value {
					return child, nil
				}
			}
		}
	case "global":
		if target, ok := idIndex[value]; ok {
			return target, nil
		}
	default:
		return nil, errs.New(errs.BadLinkscope, "", e.Line(), fmt.Sprintf("linkscope type %q not implemented", linkscope))
	}
	return nil, errs.New(errs.UnresolvedReference, "", e.Line(), fmt.Sprintf("could not resolve reference %q", value))
}

// includeRootOf walks up to the nearest ancestor-or-self carrying
// dbxi:parentline, i.e. the root of the XInclude result e was materialised
// into; falls back to the document root when e was never the product of an
// include (linkscope=local then degrades to "root's direct children").
func includeRootOf(e *dom.Element) *dom.Element {
	for cur := e; cur != nil; cur = cur.Parent() {
		if _, ok := cur.Get(dom.AttrParentLine); ok {
			return cur
		}
	}
	return e.Root()
}

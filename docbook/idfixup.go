// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

// Package docbook implements the DocBook transclusion module's two
// document-order passes over an already XInclude-expanded tree: ID
// renaming (idfixup) and IDREF repair (linkscope resolution).
package docbook

import (
	"encoding/base64"
	"fmt"

	"github.com/tomschr/dbxincluder-go/dom"
	"github.com/tomschr/dbxincluder-go/internal/errs"
)

var attrIdfixup = dom.Trans("idfixup")
var attrSuffix = dom.Trans("suffix")

// AssignNewIDs walks subtree (the root of one XInclude result) and, if it
// carries trans:idfixup != "none", stamps every descendant xml:id with its
// renamed form on a transient dbxi:newid attribute. xml:id itself is left
// untouched until the cleanup pass (spec.md §4.8).
func AssignNewIDs(subtree *dom.Element) error {
	idfixup, ok := subtree.Get(attrIdfixup)
	if !ok {
		idfixup = "none"
	}
	if idfixup == "none" {
		return nil
	}

	var suffix string
	if idfixup == "suffix" {
		v, _, found := subtree.InheritedAttribute(attrSuffix)
		if !found {
			return errs.New(errs.BadIdfixup, "", subtree.Line(), "idfixup=suffix but no trans:suffix given")
		}
		suffix = v
	}

	var walkErr error
	subtree.Descendants(func(e *dom.Element) {
		if walkErr != nil {
			return
		}
		curID, has := e.Get(dom.AttrXMLID)
		if !has {
			return
		}
		newID, hasNew := e.Get(dom.AttrNewID)
		if !hasNew {
			newID = curID
		}

		switch idfixup {
		case "suffix":
			newID += suffix
		case "auto":
			newID += "--" + generateID(e)
		default:
			walkErr = errs.New(errs.BadIdfixup, "", e.Line(), fmt.Sprintf("idfixup type %q not implemented", idfixup))
			return
		}
		e.Set(dom.AttrNewID, newID)
	})
	return walkErr
}

// generateID derives the per-document unique token used by idfixup="auto":
// the URL-safe base64 of the element's root-path, trailing '=' replaced
// with '-' (spec.md §4.8, ported from the original generate_id()).
func generateID(e *dom.Element) string {
	path := rootPath(e)
	enc := base64.URLEncoding.EncodeToString([]byte(path))
	out := make([]byte, len(enc))
	for i := 0; i < len(enc); i++ {
		if enc[i] == '=' {
			out[i] = '-'
		} else {
			out[i] = enc[i]
		}
	}
	return string(out)
}

// rootPath builds an XPath-like positional path from the document root
// down to e, e.g. "/doc[1]/chapter[2]/section[1]".
func rootPath(e *dom.Element) string {
	type step struct {
		name  string
		index int
	}
	var steps []step
	for cur := e; cur != nil; cur = cur.Parent() {
		idx := 1
		if p := cur.Parent(); p != nil {
			for _, sib := range p.Elements() {
				if sib == cur {
					break
				}
				if sib.Name == cur.Name {
					idx++
				}
			}
		}
		steps = append([]step{{cur.Name.String(), idx}}, steps...)
	}

	path := ""
	for _, s := range steps {
		path += fmt.Sprintf("/%s[%d]", s.name, s.index)
	}
	return path
}

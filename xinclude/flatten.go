// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

package xinclude

import "github.com/tomschr/dbxincluder-go/dom"

// Flatten removes every xi:fallback wrapper left behind by a successful
// fallback substitution, inlining its children and its own text/tail into
// its parent at the fallback's position (spec.md §4.6, second pass).
func Flatten(tree *dom.Element) {
	i := 0
	for i < len(tree.Children) {
		el, ok := tree.Children[i].(*dom.Element)
		if !ok {
			i++
			continue
		}
		if el.Name != dom.ElemFallback {
			Flatten(el)
			i++
			continue
		}

		if len(el.Children) > 0 {
			dom.AppendTail(el.Children[len(el.Children)-1], el.Tail())
		} else {
			el.AppendText(el.Tail())
		}

		if i > 0 {
			dom.AppendTail(tree.Children[i-1], el.Text)
		} else {
			tree.AppendText(el.Text)
		}

		children := el.Children
		tree.RemoveChildAt(i)
		for j, child := range children {
			tree.InsertChildAt(i+j, child)
		}
	}
}

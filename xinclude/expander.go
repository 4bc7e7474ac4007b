// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

// Package xinclude implements the XInclude 1.1 expansion pass: validation,
// attribute copying, fallback materialisation and the recursive expander
// itself (spec.md §4.4-§4.7).
package xinclude

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tomschr/dbxincluder-go/catalog"
	"github.com/tomschr/dbxincluder-go/dom"
	"github.com/tomschr/dbxincluder-go/fragment"
	"github.com/tomschr/dbxincluder-go/internal/errs"
	"github.com/tomschr/dbxincluder-go/internal/xmlio"
	"github.com/tomschr/dbxincluder-go/loader"
)

// Options configures a single Expand call.
type Options struct {
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *Options) catalog() *catalog.Catalog {
	if o == nil {
		return nil
	}
	return o.Catalog
}

// includeKey identifies one in-flight xi:include for cycle detection: the
// effective URL it resolved to, plus the fragid (if any) it selected.
type includeKey struct {
	url    string
	fragid string
}

// Expand walks root in document order, replacing every xi:include with its
// resolved content. It mutates the tree in place.
func Expand(ctx context.Context, opts *Options, root *dom.Element, baseURL string) error {
	if baseURL != "" {
		if _, ok := root.Get(dom.AttrXMLBase); !ok {
			root.Set(dom.AttrXMLBase, baseURL)
		}
	}
	return expandChildren(ctx, opts, root, baseURL, nil)
}

// expandChildren is the manual indexed walk spec.md §4.7/§9 calls for: a
// cached iterator would miss structural changes made at the current
// position, so the index is re-read from parent.Children on every
// iteration instead of being snapshotted.
func expandChildren(ctx context.Context, opts *Options, parent *dom.Element, baseURL string, stack []includeKey) error {
	i := 0
	for i < len(parent.Children) {
		el, ok := parent.Children[i].(*dom.Element)
		if !ok {
			i++
			continue
		}
		if el.Name == dom.ElemInclude {
			skipAdvance, err := handleInclude(ctx, opts, parent, i, baseURL, stack)
			if err != nil {
				return err
			}
			if !skipAdvance {
				i++
			}
			continue
		}
		if err := expandChildren(ctx, opts, el, baseURL, stack); err != nil {
			return err
		}
		i++
	}
	return nil
}

// handleInclude implements the handle_include algorithm of spec.md §4.7.
// skipAdvance reports whether the caller's index must NOT be incremented
// (the include was removed without anything taking its place, so the next
// sibling now sits at the same index).
func handleInclude(ctx context.Context, opts *Options, parent *dom.Element, i int, baseURL string, stack []includeKey) (skipAdvance bool, err error) {
	include := parent.Children[i].(*dom.Element)
	line := include.Line()

	parseMode, verr := Validate(include, baseURL)
	if verr != nil {
		return false, verr
	}

	effectiveBase := baseURL
	if v, _, ok := include.InheritedAttribute(dom.AttrXMLBase); ok {
		effectiveBase = v
	}

	href, _ := include.Get(dom.Un("href"))
	fragid, hasFragid := include.Get(dom.Un("fragid"))

	// spec.md §4.1: an include with no href but a fragid self-references the
	// current document (ported from get_target()'s "href = file" fallback in
	// the reference implementation). Resolved here, not in loader.Load,
	// because only this layer knows both the fragid and the identity of the
	// document currently being processed (baseURL).
	if href == "" && hasFragid && baseURL != "" {
		href = baseURL
		effectiveBase = ""
	}

	data, effectiveURL, lerr := loader.Load(ctx, opts.catalog(), href, effectiveBase, baseURL, line)
	if lerr != nil {
		de, isDbxi := lerr.(*errs.DbxiError)
		if isDbxi && de.Kind == errs.ResourceError {
			opts.logger().Warn(de.Error())
			if err := handleFallback(ctx, opts, parent, i, effectiveBase, stack); err != nil {
				return false, err
			}
			return false, nil
		}
		return false, lerr
	}

	savedTail := include.Tail()
	include.SetTail("")

	if parseMode != "xml" {
		opts.logger().Debug("resolved xi:include as text/plain", "url", effectiveURL, "fragid", fragid)
		text := normalizeLineEndings(string(data))
		selectFragid := ""
		if hasFragid {
			selectFragid = fragid
		}
		selected, ok := fragment.Select(text, selectFragid)
		if !ok {
			opts.logger().Warn(errs.Warn(errs.TextFragidWarning, baseURL, line,
				fmt.Sprintf("invalid fragid for text/plain: %q", fragid)).Error())
		}
		spliceText(parent, i, selected+savedTail)
		parent.RemoveChildAt(i)
		return true, nil
	}

	key := includeKey{url: effectiveURL, fragid: fragid}
	for _, k := range stack {
		if k == key {
			return false, errs.New(errs.InfiniteRecursion, baseURL, line, "infinite recursion detected")
		}
	}

	opts.logger().Debug("resolved xi:include", "url", effectiveURL, "fragid", fragid, "depth", len(stack))

	subDoc, perr := xmlio.Parse(data, effectiveURL)
	if perr != nil {
		return false, errs.New(errs.ParseError, baseURL, line, perr.Error())
	}
	subtreeRoot := subDoc.Root
	effURL := effectiveURL

	if hasFragid {
		matches := findByID(subtreeRoot, fragid)
		if len(matches) != 1 {
			return false, errs.New(errs.FragidNotFound, baseURL, line, fmt.Sprintf("could not find fragid %q in target %q", fragid, effectiveURL))
		}
		subtreeRoot = matches[0]
		if v, _, ok := subtreeRoot.InheritedAttribute(dom.AttrXMLBase); ok {
			effURL = v
		}
	}

	CopyAttributes(include, subtreeRoot)
	subtreeRoot.SetTail(savedTail)

	parent.ReplaceChildAt(i, subtreeRoot)

	if _, ok := subtreeRoot.Get(dom.AttrXMLBase); !ok {
		subtreeRoot.Set(dom.AttrXMLBase, effURL)
	}
	subtreeRoot.Set(dom.AttrParentLine, strconv.Itoa(line))

	newStack := append(append([]includeKey{}, stack...), key)
	if err := expandChildren(ctx, opts, subtreeRoot, effURL, newStack); err != nil {
		return false, err
	}
	return false, nil
}

// handleFallback replaces the include at parent.Children[i] with its
// xi:fallback child, recursively expanding any nested includes inside the
// fallback first (spec.md §4.6). The fallback wrapper itself is removed
// later by Flatten.
func handleFallback(ctx context.Context, opts *Options, parent *dom.Element, i int, baseURL string, stack []includeKey) error {
	include := parent.Children[i].(*dom.Element)
	if len(include.Children) == 0 {
		return errs.New(errs.NoFallback, baseURL, include.Line(), "target not available and no fallback provided")
	}
	fb, ok := include.Children[0].(*dom.Element)
	if !ok || fb.Name != dom.ElemFallback {
		return errs.New(errs.NoFallback, baseURL, include.Line(), "target not available and no fallback provided")
	}

	dom.AppendTail(fb, include.Tail())

	if err := expandChildren(ctx, opts, fb, baseURL, stack); err != nil {
		return err
	}

	parent.ReplaceChildAt(i, fb)
	return nil
}

// findByID returns every element under (and including) root carrying
// xml:id == id.
func findByID(root *dom.Element, id string) []*dom.Element {
	var out []*dom.Element
	root.Descendants(func(e *dom.Element) {
		if v, ok := e.Get(dom.AttrXMLID); ok && v == id {
			out = append(out, e)
		}
	})
	return out
}

// spliceText inlines a text/plain inclusion's content at position i: into
// the previous sibling's tail, or the parent's own text if i is first.
func spliceText(parent *dom.Element, i int, text string) {
	if i > 0 {
		dom.AppendTail(parent.Children[i-1], text)
		return
	}
	parent.AppendText(text)
}

// normalizeLineEndings mirrors "\n".join(content.splitlines()): every line
// ending becomes a single \n, with no trailing terminator preserved.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return s
}

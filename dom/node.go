// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

package dom

import "github.com/tomschr/dbxincluder-go/orderedmap"

// Node is any child of an Element: an *Element, a *Comment or a *PI. Every
// Node has a tail (the character data between it and its next sibling) and
// a source line, used for diagnostics and for the dbxi:parentline marker.
type Node interface {
	Parent() *Element
	Tail() string
	SetTail(string)
	Line() int
	setParent(*Element)
}

type base struct {
	parent *Element
	tail   string
	line   int
}

func (b *base) Parent() *Element     { return b.parent }
func (b *base) Tail() string         { return b.tail }
func (b *base) SetTail(tail string)  { b.tail = tail }
func (b *base) Line() int            { return b.line }
func (b *base) setParent(e *Element) { b.parent = e }

// Comment is an XML comment node.
type Comment struct {
	base
	Data string
}

// PI is a processing instruction node.
type PI struct {
	base
	Target string
	Data   string
}

func NewComment(data string, line int) *Comment { return &Comment{base: base{line: line}, Data: data} }
func NewPI(target, data string, line int) *PI {
	return &PI{base: base{line: line}, Target: target, Data: data}
}

// NSDecl is a namespace declaration carried on the element that introduced
// it, in source order. An empty Prefix is the default namespace.
type NSDecl struct {
	Prefix string
	URI    string
}

// Element is an XML element: a qualified name, an ordered attribute map, a
// "text" that precedes its first child, and a sequence of child nodes.
type Element struct {
	base
	Name     QName
	Attrs    *orderedmap.Map[QName, string]
	NSDecls  []NSDecl
	Children []Node
	Text     string
}

// NewElement creates a detached element with an empty attribute map.
func NewElement(name QName, line int) *Element {
	return &Element{
		base:  base{line: line},
		Name:  name,
		Attrs: orderedmap.New[QName, string](),
	}
}

// Get returns the value of an attribute, and whether it was present.
func (e *Element) Get(name QName) (string, bool) {
	if e.Attrs == nil {
		return "", false
	}
	return e.Attrs.Get(name)
}

// Set assigns an attribute value, appending it to the end of the ordered
// map if it wasn't already present.
func (e *Element) Set(name QName, value string) {
	if e.Attrs == nil {
		e.Attrs = orderedmap.New[QName, string]()
	}
	e.Attrs.Set(name, value)
}

// Remove deletes an attribute if present; a no-op otherwise.
func (e *Element) Remove(name QName) {
	if e.Attrs == nil {
		return
	}
	e.Attrs.Delete(name)
}

// AppendChild adds child as the last child of e and wires its parent.
func (e *Element) AppendChild(child Node) {
	child.setParent(e)
	e.Children = append(e.Children, child)
}

// InsertChildAt inserts child at position i, shifting later children right.
func (e *Element) InsertChildAt(i int, child Node) {
	child.setParent(e)
	e.Children = append(e.Children, nil)
	copy(e.Children[i+1:], e.Children[i:])
	e.Children[i] = child
}

// ReplaceChildAt substitutes the child at position i with replacement. If
// replacement is nil, the child is removed instead.
func (e *Element) ReplaceChildAt(i int, replacement Node) {
	if replacement == nil {
		e.RemoveChildAt(i)
		return
	}
	replacement.setParent(e)
	e.Children[i] = replacement
}

// RemoveChildAt detaches the child at position i.
func (e *Element) RemoveChildAt(i int) {
	e.Children[i].setParent(nil)
	e.Children = append(e.Children[:i], e.Children[i+1:]...)
}

// AppendText appends to e.Text (the text preceding e's first child).
func (e *Element) AppendText(s string) {
	if s == "" {
		return
	}
	e.Text += s
}

// AppendTail appends to a node's tail.
func AppendTail(n Node, s string) {
	if s == "" {
		return
	}
	n.SetTail(n.Tail() + s)
}

// Elements returns the Element children of e, skipping comments/PIs.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Descendants walks e and all its descendant elements in document order,
// calling fn on each (including e itself). fn may be called on elements
// that get mutated by a later sibling's processing; callers that need to
// be robust to structural changes at the current position should not use
// this helper (see xinclude.expandChildren for the manual indexed walk the
// expander needs instead).
func (e *Element) Descendants(fn func(*Element)) {
	fn(e)
	for _, child := range e.Elements() {
		child.Descendants(fn)
	}
}

// InheritedAttribute walks ancestor-or-self from e upward and returns the
// value of the nearest element carrying name, along with that element.
// Implements C3 from spec.md §4.2.
func (e *Element) InheritedAttribute(name QName) (string, *Element, bool) {
	for cur := e; cur != nil; cur = cur.Parent() {
		if v, ok := cur.Get(name); ok {
			return v, cur, true
		}
	}
	return "", nil, false
}

// Root walks up to the outermost ancestor.
func (e *Element) Root() *Element {
	cur := e
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

// Document owns the root element.
type Document struct {
	Root *Element
}

// NewDocument wraps root in a Document.
func NewDocument(root *Element) *Document {
	return &Document{Root: root}
}

// BuildIDIndex returns a fresh map of xml:id -> Element across the whole
// document. Callers rebuild it after any structural pass rather than
// maintaining it incrementally through every tree edit.
func (d *Document) BuildIDIndex() map[string]*Element {
	idx := make(map[string]*Element)
	if d.Root == nil {
		return idx
	}
	d.Root.Descendants(func(e *Element) {
		if id, ok := e.Get(AttrXMLID); ok {
			idx[id] = e
		}
	})
	return idx
}

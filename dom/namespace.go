// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

// Package dom implements a small, mutable, namespace-aware XML tree used as
// the working representation for the transclusion pipeline. It follows the
// ElementTree/lxml shape the original dbxincluder was built against: an
// Element carries its own "text" (content before its first child) and every
// node (element, comment or processing instruction) carries its own "tail"
// (content between itself and its next sibling). This is what lets the
// expander splice text fragments and flatten fallbacks without disturbing
// unrelated character data.
package dom

// QName is a namespace-qualified name: an empty Space means "no namespace".
type QName struct {
	Space string
	Local string
}

func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return q.Space + ":" + q.Local
}

// Fixed namespace URIs from spec.md §3. dbxi is never emitted: it exists
// purely to tag transient attributes that the cleanup pass strips.
const (
	NSXML   = "http://www.w3.org/XML/1998/namespace"
	NSXI    = "http://www.w3.org/2001/XInclude"
	NSLocal = "http://www.w3.org/2001/XInclude/local-attributes"
	NSTrans = "http://docbook.org/ns/transclude"
	NSDB    = "http://docbook.org/ns/docbook"
	NSDbxi  = "dbxincluder"
)

// Conventional prefixes used when no declaration says otherwise; only
// relevant for serialisation and for writing human-readable diagnostics.
const (
	PrefixXML   = "xml"
	PrefixXI    = "xi"
	PrefixLocal = "local"
	PrefixTrans = "trans"
	PrefixDB    = "db"
	PrefixDbxi  = "dbxi"
)

func XML(local string) QName   { return QName{NSXML, local} }
func XI(local string) QName    { return QName{NSXI, local} }
func Local(local string) QName { return QName{NSLocal, local} }
func Trans(local string) QName { return QName{NSTrans, local} }
func DB(local string) QName    { return QName{NSDB, local} }
func Dbxi(local string) QName  { return QName{NSDbxi, local} }
func Un(local string) QName    { return QName{"", local} }

// XMLID and XMLBase are the two xml: attributes the engine cares about.
var (
	AttrXMLID   = XML("id")
	AttrXMLBase = XML("base")
)

// Well-known element names.
var (
	ElemInclude  = XI("include")
	ElemFallback = XI("fallback")
)

// Transient attributes, stripped by the cleanup pass (spec.md §3, §4.10).
var (
	AttrNewID      = Dbxi("newid")
	AttrParentLine = Dbxi("parentline")
)

// defaultPrefixes maps the fixed namespace URIs to their conventional
// prefix, used by the serialiser when no in-scope declaration names one.
var defaultPrefixes = map[string]string{
	NSXML:   PrefixXML,
	NSXI:    PrefixXI,
	NSLocal: PrefixLocal,
	NSTrans: PrefixTrans,
	NSDB:    PrefixDB,
	NSDbxi:  PrefixDbxi,
}

// DefaultPrefix returns the conventional prefix for a fixed namespace, or
// "" if uri isn't one of the namespaces this engine knows about.
func DefaultPrefix(uri string) string {
	return defaultPrefixes[uri]
}

// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

// Package fragment implements RFC 5147 ("URI Fragment Identifiers for the
// text/plain Media Type") text-fragment selection, used to splice a
// sub-range of an included text/plain resource.
package fragment

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit is the RFC 5147 addressing unit: by character offset or by line.
type Unit string

const (
	Char Unit = "char"
	Line Unit = "line"
)

// integrity is validated syntactically but never checked against content,
// per spec.md §4.3 — RFC 5147 integrity clauses exist to let a client
// verify the server sent the same resource, which has no meaning here.
const integrity = `;(?:length=(\d+)|md5=[0-9a-fA-F]{32})(?:,(\w+)?)?`

var fragidRe = regexp.MustCompile(
	`^(char|line)=(?:(?:(\d+)(?:,(\d+)?)?)|(?:,(\d+)))(?:` + integrity + `)?$`,
)

// Range is a parsed RFC 5147 fragment identifier. End is -1 when the
// grammar left it unspecified ("to end of content").
type Range struct {
	Unit  Unit
	Start int
	End   int // -1 means unbounded
}

// Parse parses a raw fragid string per the RFC 5147 grammar. It returns
// ok=false for anything that doesn't match, including the empty string.
func Parse(fragid string) (Range, bool) {
	m := fragidRe.FindStringSubmatch(fragid)
	if m == nil {
		return Range{}, false
	}

	unit := Unit(m[1])
	var start, end int

	switch {
	case m[2] != "":
		// unit=START[,END]
		start, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			end, _ = strconv.Atoi(m[3])
		} else {
			end = -1
		}
	case m[4] != "":
		// unit=,END
		start = 0
		end, _ = strconv.Atoi(m[4])
	default:
		start = 0
		end = -1
	}

	return Range{Unit: unit, Start: start, End: end}, true
}

// Select applies fragid to content and returns the selected substring and
// whether fragid was a valid RFC 5147 identifier. An empty fragid selects
// the whole content (success). An invalid fragid returns the whole content
// with ok=false, so the caller can emit a TextFragidWarning and continue.
func Select(content, fragid string) (string, bool) {
	if fragid == "" {
		return content, true
	}

	r, ok := Parse(fragid)
	if !ok {
		return content, false
	}

	switch r.Unit {
	case Line:
		lines := splitLines(content)
		end := r.End
		if end < 0 || end > len(lines) {
			end = len(lines)
		}
		start := r.Start
		if start > end {
			start = end
		}
		return strings.Join(lines[start:end], "\n"), true
	default: // Char
		end := r.End
		if end < 0 || end > len(content) {
			end = len(content)
		}
		start := r.Start
		if start > end {
			start = end
		}
		return content[start:end], true
	}
}

// splitLines mirrors Python's str.splitlines(): split on line boundaries
// without retaining the terminators, with no trailing empty element for a
// final newline.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if s == "" {
		return nil
	}
	trimmed := strings.HasSuffix(s, "\n")
	if trimmed {
		s = s[:len(s)-1]
	}
	return strings.Split(s, "\n")
}

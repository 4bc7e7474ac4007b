// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

// Package pipeline orchestrates the full transclusion run: parse, expand
// XIncludes, flatten fallbacks, assign new DocBook ids, repair references,
// strip transient attributes and unused namespace declarations, then
// serialise (spec.md §4.10).
package pipeline

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/tomschr/dbxincluder-go/catalog"
	"github.com/tomschr/dbxincluder-go/docbook"
	"github.com/tomschr/dbxincluder-go/dom"
	"github.com/tomschr/dbxincluder-go/internal/xmlio"
	"github.com/tomschr/dbxincluder-go/xinclude"
)

// Config configures one Run call.
type Config struct {
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Run parses src, runs the full transclusion pipeline and returns the
// serialised output.
func Run(ctx context.Context, src []byte, url string, cfg Config) ([]byte, error) {
	doc, err := xmlio.Parse(src, url)
	if err != nil {
		return nil, err
	}

	if err := Process(ctx, doc, url, cfg); err != nil {
		return nil, err
	}

	return Serialise(doc)
}

// Process runs every pass over an already-parsed document in place.
func Process(ctx context.Context, doc *dom.Document, url string, cfg Config) error {
	log := cfg.logger()
	xopts := &xinclude.Options{Catalog: cfg.Catalog, Logger: log}

	log.Log(ctx, traceLevel, "expanding xi:include elements", "url", url)
	if err := xinclude.Expand(ctx, xopts, doc.Root, url); err != nil {
		return err
	}

	log.Log(ctx, traceLevel, "flattening xi:fallback wrappers")
	xinclude.Flatten(doc.Root)

	log.Log(ctx, traceLevel, "assigning renamed DocBook ids")
	var assignErr error
	doc.Root.Descendants(func(e *dom.Element) {
		if assignErr != nil {
			return
		}
		assignErr = docbook.AssignNewIDs(e)
	})
	if assignErr != nil {
		return assignErr
	}

	log.Log(ctx, traceLevel, "repairing DocBook references")
	if err := docbook.RepairReferences(doc.Root, doc.BuildIDIndex()); err != nil {
		return err
	}

	log.Log(ctx, traceLevel, "stripping transient attributes and unused namespaces")
	cleanup(doc.Root)
	pruneUnusedNamespaces(doc.Root)
	return nil
}

// traceLevel is one notch below slog.LevelDebug, enabled only by -vv on the
// CLI: per-pass tracing that is too chatty for plain -v.
const traceLevel = slog.LevelDebug - 4

// Serialise writes doc to bytes as the tree stands: text and tails are
// emitted verbatim, and no indentation or other pretty-printing is added.
func Serialise(doc *dom.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := xmlio.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

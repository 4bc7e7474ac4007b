// Copyright 2016 SUSE Linux GmbH
// SPDX-License-Identifier: MIT

// Command dbxincluder resolves XInclude 1.1 transclusions and the DocBook
// ID-fixup/reference-repair attributes on an XML document.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomschr/dbxincluder-go/catalog"
	"github.com/tomschr/dbxincluder-go/internal/errs"
	"github.com/tomschr/dbxincluder-go/pipeline"
)

// version is overwritten at build time via -ldflags.
var version = "dev"

type flags struct {
	output     string
	catalogURL string
	verbose    int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f flags
	var ranPipeline bool

	cmd := &cobra.Command{
		Use:           "dbxincluder <input>",
		Short:         "Resolve XInclude and DocBook transclusion attributes",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ranPipeline = true
			return runPipeline(cmd.Context(), args[0], f, stdin, stdout, stderr)
		},
	}
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVarP(&f.output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVarP(&f.catalogURL, "catalog", "c", "", "XML catalog path, defaults to /etc/xml/catalog")
	cmd.Flags().CountVarP(&f.verbose, "verbose", "v", "increase log verbosity, repeatable (-vv)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		if !ranPipeline {
			return 2
		}
		return 1
	}
	return 0
}

func runPipeline(ctx context.Context, input string, f flags, stdin io.Reader, stdout, stderr io.Writer) error {
	level := slog.LevelInfo
	switch {
	case f.verbose >= 2:
		level = slog.LevelDebug - 4 // -vv: below Debug, for the most chatty diagnostics
	case f.verbose == 1:
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	var src []byte
	var err error
	url := input
	if input == "-" {
		src, err = io.ReadAll(stdin)
		url = ""
	} else {
		src, err = os.ReadFile(input)
	}
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		Catalog: catalog.New(f.catalogURL),
		Logger:  logger,
	}

	out, err := pipeline.Run(ctx, src, url, cfg)
	if err != nil {
		var merr *errs.MultiError
		if errors.As(err, &merr) {
			for _, sub := range merr.Errors() {
				logger.Error(sub.Error())
			}
			return err
		}
		var de *errs.DbxiError
		if errors.As(err, &de) {
			logger.Error(de.Error())
		}
		return err
	}

	if f.output == "-" {
		_, err = stdout.Write(out)
		return err
	}
	return os.WriteFile(f.output, out, 0o644)
}

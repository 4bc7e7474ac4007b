package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_BasicIncludeToStdout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frag.xml"), []byte("<p>hi</p>"), 0o644))
	docPath := filepath.Join(dir, "doc.xml")
	require.NoError(t, os.WriteFile(docPath,
		[]byte(`<doc xmlns:xi="http://www.w3.org/2001/XInclude"><xi:include href="frag.xml"/></doc>`), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{docPath}, nil, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "hi")
}

func TestRun_MissingFileIsUserError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"/nonexistent/doc.xml"}, nil, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr.String())
}

func TestRun_UsageErrorExitsWith2(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{}, nil, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.True(t, strings.Contains(stderr.String(), "arg") || stderr.Len() > 0)
}

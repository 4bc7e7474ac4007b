package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomschr/dbxincluder-go/pipeline"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRun_BasicInclude(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "frag.xml", "<p>hi</p>")
	docPath := write(t, dir, "doc.xml",
		`<doc xmlns:xi="http://www.w3.org/2001/XInclude"><xi:include href="frag.xml"/></doc>`)

	src, err := os.ReadFile(docPath)
	require.NoError(t, err)

	out, err := pipeline.Run(context.Background(), src, docPath, pipeline.Config{})
	require.NoError(t, err)

	result := string(out)
	assert.Contains(t, result, "<p")
	assert.Contains(t, result, "hi")
	assert.NotContains(t, result, "xi:include")
	assert.NotContains(t, result, "xi:")
}

func TestRun_IdfixupSuffixRewritesLinkend(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "frag.xml",
		`<db:section xmlns:db="http://docbook.org/ns/docbook" xmlns:xml="http://www.w3.org/XML/1998/namespace" xml:id="s">`+
			`<db:para xml:id="s" linkend="s"/></db:section>`)
	docPath := write(t, dir, "doc.xml",
		`<doc xmlns:xi="http://www.w3.org/2001/XInclude" xmlns:trans="http://docbook.org/ns/transclude">`+
			`<xi:include href="frag.xml" trans:idfixup="suffix" trans:suffix="-x"/></doc>`)

	src, err := os.ReadFile(docPath)
	require.NoError(t, err)

	out, err := pipeline.Run(context.Background(), src, docPath, pipeline.Config{})
	require.NoError(t, err)

	result := string(out)
	assert.Contains(t, result, `linkend="s-x"`)
	assert.NotContains(t, result, "trans:")
	assert.NotContains(t, result, "dbxi:")
}

func TestRun_Idempotence(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "frag.xml", "<p>hi</p>")
	docPath := write(t, dir, "doc.xml",
		`<doc xmlns:xi="http://www.w3.org/2001/XInclude"><xi:include href="frag.xml"/></doc>`)

	src, err := os.ReadFile(docPath)
	require.NoError(t, err)

	first, err := pipeline.Run(context.Background(), src, docPath, pipeline.Config{})
	require.NoError(t, err)

	outPath := write(t, dir, "out.xml", string(first))
	second, err := pipeline.Run(context.Background(), first, outPath, pipeline.Config{})
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

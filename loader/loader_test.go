package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomschr/dbxincluder-go/internal/errs"
	"github.com/tomschr/dbxincluder-go/loader"
)

func TestLoad_LocalFileRelativeToBase(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "frag.xml")
	require.NoError(t, os.WriteFile(target, []byte("<p>hi</p>"), 0o644))

	base := filepath.Join(dir, "doc.xml")
	data, effective, err := loader.Load(context.Background(), nil, "frag.xml", base, base, 1)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(data))
	assert.Equal(t, target, effective)
}

func TestLoad_MissingHref(t *testing.T) {
	_, _, err := loader.Load(context.Background(), nil, "", "/tmp/doc.xml", "/tmp/doc.xml", 3)
	require.Error(t, err)
	var de *errs.DbxiError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, errs.MissingHref, de.Kind)
}

func TestLoad_MissingFileIsResourceError(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "doc.xml")
	_, _, err := loader.Load(context.Background(), nil, "nope.xml", base, base, 5)
	require.Error(t, err)
	var de *errs.DbxiError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, errs.ResourceError, de.Kind)
}

func TestResolve_StripsLastSegmentOfBase(t *testing.T) {
	got := loader.Resolve(context.Background(), nil, "b.xml", "/a/b/c/doc.xml")
	assert.Equal(t, "/a/b/c/b.xml", got)
}

func TestResolve_AbsoluteHrefIsUsedVerbatim(t *testing.T) {
	got := loader.Resolve(context.Background(), nil, "https://example.com/x.xml", "/a/doc.xml")
	assert.Equal(t, "https://example.com/x.xml", got)
}

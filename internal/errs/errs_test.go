package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomschr/dbxincluder-go/internal/errs"
)

func TestDbxiError_Error(t *testing.T) {
	err := errs.New(errs.FragidNotFound, "file:///doc.xml", 12, `fragment "intro" not found`)
	assert.Equal(t, `Error at file:///doc.xml:12: fragment "intro" not found`, err.Error())
}

func TestDbxiError_ErrorWithStack(t *testing.T) {
	err := errs.New(errs.InfiniteRecursion, "b.xml", 3, "cycle detected")
	err.Stack = []string{"a.xml", "b.xml"}
	assert.Contains(t, err.Error(), "included from a.xml -> b.xml")
}

func TestWarn_IsNotFatal(t *testing.T) {
	w := errs.Warn(errs.TextFragidWarning, "a.xml", 1, "no integrity check possible")
	assert.False(t, w.IsFatal())
	assert.True(t, errs.New(errs.ParseError, "a.xml", 1, "boom").IsFatal())
}

func TestMultiError_AppendAndFlatten(t *testing.T) {
	var m errs.MultiError
	m.Append(nil)
	assert.Nil(t, m.OrNil())

	m.Append(errs.New(errs.MissingHref, "a.xml", 1, "no href"))

	var inner errs.MultiError
	inner.Append(errs.New(errs.BadIdfixup, "b.xml", 2, "bad value"))
	inner.Append(errs.New(errs.BadLinkscope, "b.xml", 3, "bad value"))
	m.Append(&inner)

	require.Equal(t, 3, m.Count())
	assert.Len(t, m.Errors(), 3)

	var target *errs.DbxiError
	require.True(t, errors.As(m.Errors()[1], &target))
	assert.Equal(t, errs.BadIdfixup, target.Kind)

	require.NotNil(t, m.OrNil())
}

func TestMultiError_EmptyOrNilIsNilError(t *testing.T) {
	var m errs.MultiError
	var asErr error = m.OrNil()
	assert.NoError(t, asErr)
}

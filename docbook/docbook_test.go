package docbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomschr/dbxincluder-go/dom"
	"github.com/tomschr/dbxincluder-go/docbook"
	"github.com/tomschr/dbxincluder-go/internal/errs"
	"github.com/tomschr/dbxincluder-go/internal/xmlio"
)

const nsHeader = `xmlns:db="http://docbook.org/ns/docbook" xmlns:trans="http://docbook.org/ns/transclude" xmlns:xml="http://www.w3.org/XML/1998/namespace"`

func TestAssignNewIDs_Suffix(t *testing.T) {
	src := `<db:section ` + nsHeader + ` trans:idfixup="suffix" trans:suffix="-x" xml:id="root">` +
		`<db:para xml:id="s"/></db:section>`
	doc, err := xmlio.Parse([]byte(src), "doc.xml")
	require.NoError(t, err)

	require.NoError(t, docbook.AssignNewIDs(doc.Root))

	para := doc.Root.Elements()[0]
	newID, ok := para.Get(dom.AttrNewID)
	require.True(t, ok)
	assert.Equal(t, "s-x", newID)
}

func TestAssignNewIDs_SuffixWithoutSuffixAttributeFails(t *testing.T) {
	src := `<db:section ` + nsHeader + ` trans:idfixup="suffix" xml:id="root"><db:para xml:id="s"/></db:section>`
	doc, err := xmlio.Parse([]byte(src), "doc.xml")
	require.NoError(t, err)

	err = docbook.AssignNewIDs(doc.Root)
	require.Error(t, err)
	var de *errs.DbxiError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, errs.BadIdfixup, de.Kind)
}

func TestRepairReferences_RewritesLinkend(t *testing.T) {
	src := `<db:section ` + nsHeader + ` trans:idfixup="suffix" trans:suffix="-x" xml:id="root">` +
		`<db:para xml:id="s"/><db:para linkend="s"/></db:section>`
	doc, err := xmlio.Parse([]byte(src), "doc.xml")
	require.NoError(t, err)

	require.NoError(t, docbook.AssignNewIDs(doc.Root))
	require.NoError(t, docbook.RepairReferences(doc.Root, doc.BuildIDIndex()))

	ref := doc.Root.Elements()[1]
	linkend, ok := ref.Get(dom.Un("linkend"))
	require.True(t, ok)
	assert.Equal(t, "s-x", linkend)
}

func TestRepairReferences_UnresolvedReferenceFails(t *testing.T) {
	src := `<db:section ` + nsHeader + ` trans:idfixup="suffix" trans:suffix="-x" xml:id="root">` +
		`<db:para linkend="missing"/></db:section>`
	doc, err := xmlio.Parse([]byte(src), "doc.xml")
	require.NoError(t, err)

	require.NoError(t, docbook.AssignNewIDs(doc.Root))
	err = docbook.RepairReferences(doc.Root, doc.BuildIDIndex())
	require.Error(t, err)
	var de *errs.DbxiError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, errs.UnresolvedReference, de.Kind)
}

func TestRepairReferences_CollectsEveryUnresolvedReference(t *testing.T) {
	src := `<db:section ` + nsHeader + ` trans:idfixup="suffix" trans:suffix="-x" xml:id="root">` +
		`<db:para linkend="missing-1"/><db:para linkend="missing-2"/></db:section>`
	doc, err := xmlio.Parse([]byte(src), "doc.xml")
	require.NoError(t, err)

	require.NoError(t, docbook.AssignNewIDs(doc.Root))
	err = docbook.RepairReferences(doc.Root, doc.BuildIDIndex())
	require.Error(t, err)

	var merr *errs.MultiError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 2, merr.Count())
	for _, sub := range merr.Errors() {
		var de *errs.DbxiError
		require.ErrorAs(t, sub, &de)
		assert.Equal(t, errs.UnresolvedReference, de.Kind)
	}
}

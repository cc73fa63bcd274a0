package soap

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	env := Envelope(
		`<t:RequestServerVersion Version="Exchange2010" />`,
		`<m:GetFolder><m:FolderShape /></m:GetFolder>`,
	)

	assert.Contains(t, env, `<?xml version="1.0" encoding="UTF-8"?>`)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(env))

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Envelope", root.Tag)
	assert.Equal(t, NsSOAP, root.NamespaceURI())

	children := root.ChildElements()
	require.Len(t, children, 2)

	header := children[0]
	assert.Equal(t, "Header", header.Tag)
	require.Len(t, header.ChildElements(), 1)
	assert.Equal(t, "RequestServerVersion", header.ChildElements()[0].Tag)
	assert.Equal(t, NsTypes, header.ChildElements()[0].NamespaceURI())

	body := children[1]
	assert.Equal(t, "Body", body.Tag)
	require.Len(t, body.ChildElements(), 1)
	assert.Equal(t, "GetFolder", body.ChildElements()[0].Tag)
	assert.Equal(t, NsMessages, body.ChildElements()[0].NamespaceURI())
}

func TestEnvelopeDeclaresAllPrefixes(t *testing.T) {
	env := Envelope("", "")

	for prefix, uri := range envelopeNamespaces {
		assert.Contains(t, env, `xmlns:`+prefix+`="`+uri+`"`)
	}
}

func TestEnvelopeStripsBodyDeclaration(t *testing.T) {
	env := Envelope("", "<?xml version=\"1.0\"?>\n<m:GetFolder />")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(env))

	body := doc.Root().ChildElements()[1]
	require.Len(t, body.ChildElements(), 1)
	assert.Equal(t, "GetFolder", body.ChildElements()[0].Tag)
}

package xmlutil

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterDocument(t *testing.T) {
	var w Writer

	w.StartDocument()
	w.StartElement("root")
	w.StartElement("child")
	w.Text("hello")
	w.EndElement()
	w.StartElement("empty")
	w.EndElement()
	w.EndElement()

	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root><child>hello</child><empty /></root>", w.Dump())
}

func TestWriterAttributes(t *testing.T) {
	var w Writer

	w.StartElement("el")
	w.Attribute("a", "1")
	w.Attribute("b", "2")
	w.Attribute("a", "3") // last write wins
	w.EndElement()

	assert.Equal(t, `<el a="3" b="2" />`, w.Dump())
}

func TestWriterNamespaces(t *testing.T) {
	var w Writer

	w.StartElementNS("m:Request", map[string]string{
		"m": "urn:messages",
		"":  "urn:default",
	})
	w.EndElement()

	assert.Equal(t, `<m:Request xmlns="urn:default" xmlns:m="urn:messages" />`, w.Dump())
}

func TestWriterEscaping(t *testing.T) {
	tests := []struct {
		name     string
		build    func(w *Writer)
		expected string
	}{
		{
			name: "text",
			build: func(w *Writer) {
				w.ElementText("a", `1 < 2 && "so on"`)
			},
			expected: `<a>1 &lt; 2 &amp;&amp; "so on"</a>`,
		},
		{
			name: "attribute value",
			build: func(w *Writer) {
				w.StartElement("a")
				w.Attribute("v", `say "<hi>"`)
				w.EndElement()
			},
			expected: `<a v="say &quot;&lt;hi&gt;&quot;" />`,
		},
		{
			name: "no special characters",
			build: func(w *Writer) {
				w.ElementText("a", "plain text")
			},
			expected: `<a>plain text</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w Writer
			tt.build(&w)
			assert.Equal(t, tt.expected, w.Dump())
		})
	}
}

func TestWriterRawSplice(t *testing.T) {
	var inner Writer
	inner.ElementText("t:Subject", "hello")

	var w Writer
	w.StartElement("m:Items")
	w.Raw(inner.Dump())
	w.EndElement()

	assert.Equal(t, "<m:Items><t:Subject>hello</t:Subject></m:Items>", w.Dump())
}

// A document built through the writer must parse back into an equivalent tree.
func TestWriterRoundTrip(t *testing.T) {
	var w Writer

	w.StartDocument()
	w.StartElementNS("soap:Envelope", map[string]string{"soap": "urn:soap", "t": "urn:types"})
	w.StartElement("soap:Body")
	w.StartElement("t:Message")
	w.Attribute("Id", `A<B&"C"`)
	w.ElementText("t:Subject", "a & b < c")
	w.EndElement()
	w.EndElement()
	w.EndElement()

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(w.Dump()))

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Envelope", root.Tag)
	assert.Equal(t, "urn:soap", root.NamespaceURI())

	body, err := FindChild(root, "urn:soap", "Body")
	require.NoError(t, err)

	msg, err := FindChild(body, "urn:types", "Message")
	require.NoError(t, err)
	assert.Equal(t, `A<B&"C"`, Attr(msg, "Id"))
	assert.Equal(t, "a & b < c", ChildText(msg, "urn:types", "Subject"))
}

func TestWriterEndElementUnderflow(t *testing.T) {
	var w Writer

	assert.Panics(t, func() {
		w.EndElement()
	})
}

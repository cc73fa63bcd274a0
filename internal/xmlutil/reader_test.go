package xmlutil

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readerFixture = `<root xmlns:m="urn:messages" xmlns:t="urn:types">
  <m:Setting Name="first">
    <m:Value>one</m:Value>
  </m:Setting>
  <m:Setting Name="second">
    <m:Value>two</m:Value>
  </m:Setting>
  <t:Setting Name="wrong-namespace" />
  <m:Empty />
</root>`

func parseFixture(t *testing.T) *etree.Element {
	t.Helper()

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(readerFixture))

	return doc.Root()
}

func TestFindChild(t *testing.T) {
	root := parseFixture(t)

	c, err := FindChild(root, "urn:messages", "Setting")
	require.NoError(t, err)
	assert.Equal(t, "first", Attr(c, "Name"))

	_, err = FindChild(root, "urn:messages", "Missing")
	var notFound *TagNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Missing", notFound.Name)
}

// FindChild must not descend into grandchildren.
func TestFindChildDirectOnly(t *testing.T) {
	root := parseFixture(t)

	_, err := FindChild(root, "urn:messages", "Value")
	assert.Error(t, err)
}

func TestChildText(t *testing.T) {
	root := parseFixture(t)

	first, err := FindChild(root, "urn:messages", "Setting")
	require.NoError(t, err)

	assert.Equal(t, "one", ChildText(first, "urn:messages", "Value"))
	assert.Equal(t, "", ChildText(root, "urn:messages", "Missing"))
	assert.Equal(t, "", ChildText(root, "urn:messages", "Empty"))
}

func TestChildAttr(t *testing.T) {
	root := parseFixture(t)

	assert.Equal(t, "first", ChildAttr(root, "urn:messages", "Setting", "Name"))
	assert.Equal(t, "", ChildAttr(root, "urn:messages", "Setting", "Missing"))
	assert.Equal(t, "", ChildAttr(root, "urn:messages", "Missing", "Name"))
}

func TestEachChild(t *testing.T) {
	root := parseFixture(t)

	var names []string
	EachChild(root, "urn:messages", "Setting", func(c *etree.Element) bool {
		names = append(names, Attr(c, "Name"))
		return true
	})

	assert.Equal(t, []string{"first", "second"}, names)
}

func TestEachChildEarlyStop(t *testing.T) {
	root := parseFixture(t)

	calls := 0
	EachChild(root, "urn:messages", "Setting", func(c *etree.Element) bool {
		calls++
		return false
	})

	assert.Equal(t, 1, calls)
}

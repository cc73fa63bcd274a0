package xmlutil

import (
	"fmt"

	"github.com/beevik/etree"
)

// TagNotFoundError is returned when a required child element is absent.
type TagNotFoundError struct {
	Name string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("could not find %s tag", e.Name)
}

// FindChild returns the first direct child of el matching the namespace URI
// and local name. Only direct children are searched, never the full subtree.
func FindChild(el *etree.Element, ns, name string) (*etree.Element, error) {
	for _, c := range el.ChildElements() {
		if c.Tag == name && c.NamespaceURI() == ns {
			return c, nil
		}
	}

	return nil, &TagNotFoundError{Name: name}
}

// ChildText returns the text content of the first matching direct child, or
// "" if there is no match or the match has no text.
func ChildText(el *etree.Element, ns, name string) string {
	c, err := FindChild(el, ns, name)
	if err != nil {
		return ""
	}

	return c.Text()
}

// ChildAttr returns the named attribute of the first matching direct child,
// or "" if either the child or the attribute is absent.
func ChildAttr(el *etree.Element, ns, name, attr string) string {
	c, err := FindChild(el, ns, name)
	if err != nil {
		return ""
	}

	return c.SelectAttrValue(attr, "")
}

// Attr returns the named attribute of el, or "" if absent.
func Attr(el *etree.Element, attr string) string {
	return el.SelectAttrValue(attr, "")
}

// EachChild invokes visit for every direct child matching the namespace URI
// and local name, in document order. Returning false from visit stops the
// iteration.
func EachChild(el *etree.Element, ns, name string, visit func(*etree.Element) bool) {
	for _, c := range el.ChildElements() {
		if c.Tag == name && c.NamespaceURI() == ns {
			if !visit(c) {
				return
			}
		}
	}
}

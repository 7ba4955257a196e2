// Package xmlnode holds a small, namespace-free XML element tree. It is used
// for the parts of PMF documents that have no fixed schema: non-RDF model
// annotations, the archive description and the COMBINE manifest.
//
// Element and attribute names are kept as local names only. Namespace
// declarations are dropped on parse; callers that need them on output add
// them as plain attributes.
package xmlnode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyDocument indicates the input held no root element.
var ErrEmptyDocument = errors.New("xmlnode: empty document")

// Attr is a single name/value attribute pair.
type Attr struct {
	Name  string
	Value string
}

// Node is one XML element with its attributes, trimmed character data and
// child elements in document order.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// New creates an element without attributes or children.
func New(name string) *Node {
	return &Node{Name: name}
}

// NewText creates an element holding only character data.
func NewText(name, text string) *Node {
	return &Node{Name: name, Text: strings.TrimSpace(text)}
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute and returns the node for chaining.
func (n *Node) SetAttr(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Name == name {
			out = append(out, child)
		}
	}
	return out
}

// Append adds children in order and returns the node for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, child := range children {
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// EnsureChild returns the first child with the given name, creating it when
// missing.
func (n *Node) EnsureChild(name string) *Node {
	if child := n.Child(name); child != nil {
		return child
	}
	child := New(name)
	n.Children = append(n.Children, child)
	return child
}

// RemoveChildren drops every direct child with the given name and reports
// how many were removed.
func (n *Node) RemoveChildren(name string) int {
	if n == nil || len(n.Children) == 0 {
		return 0
	}
	kept := n.Children[:0]
	removed := 0
	for _, child := range n.Children {
		if child.Name == name {
			removed++
			continue
		}
		kept = append(kept, child)
	}
	if len(kept) == 0 {
		n.Children = nil
	} else {
		n.Children = kept
	}
	return removed
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{Name: n.Name, Text: n.Text}
	if len(n.Attrs) > 0 {
		clone.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			clone.Children = append(clone.Children, child.Clone())
		}
	}
	return clone
}

// MarshalXML implements xml.Marshaler. The node name wins over the field
// name of the enclosing struct unless the node is unnamed.
func (n *Node) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	name := n.Name
	if name == "" {
		name = start.Name.Local
	}
	el := xml.StartElement{Name: xml.Name{Local: name}}
	for _, attr := range n.Attrs {
		el.Attr = append(el.Attr, xml.Attr{Name: xml.Name{Local: attr.Name}, Value: attr.Value})
	}
	if err := e.EncodeToken(el); err != nil {
		return err
	}
	if n.Text != "" {
		if err := e.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := e.EncodeElement(child, xml.StartElement{Name: xml.Name{Local: child.Name}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(el.End())
}

// UnmarshalXML implements xml.Unmarshaler.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.Name = start.Name.Local
	n.Attrs = nil
	n.Children = nil
	for _, attr := range start.Attr {
		if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
			continue
		}
		n.Attrs = append(n.Attrs, Attr{Name: attr.Name.Local, Value: attr.Value})
	}
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child := &Node{}
			if err := d.DecodeElement(child, &t); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			n.Text = strings.TrimSpace(text.String())
			return nil
		}
	}
}

// Parse reads the first element of r as a tree.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrEmptyDocument
			}
			return nil, fmt.Errorf("xmlnode: parse: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			node := &Node{}
			if err := dec.DecodeElement(node, &start); err != nil {
				return nil, fmt.Errorf("xmlnode: parse %s: %w", start.Name.Local, err)
			}
			return node, nil
		}
	}
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}

// Encode writes the tree with an XML declaration and two-space indentation.
func (n *Node) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("xmlnode: encode %s: %w", n.Name, err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Bytes renders the tree the same way Encode does.
func (n *Node) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

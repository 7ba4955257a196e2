package pmf

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/kingrea/pmfarchive/internal/sbml"
	"github.com/kingrea/pmfarchive/internal/xmlnode"
)

// Cross references live in the model annotation:
//
//	<annotation>
//	  <metadata>
//	    <dataSource file="d1.numl"/>
//	    <primaryModel>p1.sbml</primaryModel>
//	  </metadata>
//	</annotation>
//
// Tertiary models point at their secondary models through comp external
// model definitions. The archive description carries the descriptor:
//
//	<pmfMetadata>
//	  <modelType>TWO_STEP_TERTIARY_MODEL</modelType>
//	  <masterFile>t1.sbml</masterFile>
//	</pmfMetadata>
const (
	metadataTag     = "metadata"
	dataSourceTag   = "dataSource"
	fileAttr        = "file"
	primaryModelTag = "primaryModel"
	descriptorTag   = "pmfMetadata"
	modelTypeTag    = "modelType"
	masterFileTag   = "masterFile"
)

// RootDescriptor is the archive-level record of the model type and the
// entries that are roots of the graph.
type RootDescriptor struct {
	Type        ModelType
	MasterFiles map[string]struct{}
}

// NewRootDescriptor returns a descriptor holding names as master files.
func NewRootDescriptor(t ModelType, names ...string) *RootDescriptor {
	d := &RootDescriptor{Type: t, MasterFiles: make(map[string]struct{}, len(names))}
	for _, name := range names {
		d.Add(name)
	}
	return d
}

// Add records name as a master file.
func (d *RootDescriptor) Add(name string) {
	if d.MasterFiles == nil {
		d.MasterFiles = map[string]struct{}{}
	}
	d.MasterFiles[name] = struct{}{}
}

// Has reports whether name is a master file. A nil descriptor has none.
func (d *RootDescriptor) Has(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.MasterFiles[name]
	return ok
}

// Names returns the master files sorted.
func (d *RootDescriptor) Names() []string {
	if d == nil || len(d.MasterFiles) == 0 {
		return nil
	}
	names := make([]string, 0, len(d.MasterFiles))
	for name := range d.MasterFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EncodeDescriptor renders d as an archive description element.
func EncodeDescriptor(d *RootDescriptor) *xmlnode.Node {
	node := xmlnode.New(descriptorTag).Append(xmlnode.NewText(modelTypeTag, d.Type.String()))
	for _, name := range d.Names() {
		node.Append(xmlnode.NewText(masterFileTag, name))
	}
	return node
}

// DecodeDescriptor parses an archive description. It fails with
// ErrMissingDescriptor when node is not a descriptor and with
// ErrMalformedDescriptor when the model type is absent or unknown. Empty
// master file elements are skipped.
func DecodeDescriptor(node *xmlnode.Node) (*RootDescriptor, error) {
	if node == nil || node.Name != descriptorTag {
		return nil, ErrMissingDescriptor
	}
	typeNode := node.Child(modelTypeTag)
	if typeNode == nil {
		return nil, fmt.Errorf("%w: no %s", ErrMalformedDescriptor, modelTypeTag)
	}
	t, err := ParseModelType(typeNode.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
	}
	d := NewRootDescriptor(t)
	for _, child := range node.ChildrenNamed(masterFileTag) {
		if child.Text != "" {
			d.Add(child.Text)
		}
	}
	return d, nil
}

func metadataOf(doc *sbml.Document) *xmlnode.Node {
	if doc == nil || doc.Model == nil || doc.Model.Annotation == nil {
		return nil
	}
	return doc.Model.Annotation.Child(metadataTag)
}

// DecodeDataSources returns the data file names a model was fitted against,
// in document order.
func DecodeDataSources(doc *sbml.Document) []string {
	var names []string
	for _, ds := range metadataOf(doc).ChildrenNamed(dataSourceTag) {
		if file, ok := ds.Attr(fileAttr); ok && strings.TrimSpace(file) != "" {
			names = append(names, strings.TrimSpace(file))
		}
	}
	return names
}

// DecodePrimaryRefs returns the primary model names a two-step secondary
// model derives from.
func DecodePrimaryRefs(doc *sbml.Document) []string {
	var names []string
	for _, ref := range metadataOf(doc).ChildrenNamed(primaryModelTag) {
		if ref.Text != "" {
			names = append(names, ref.Text)
		}
	}
	return names
}

// DecodeSecondaryRefs returns the sources of a tertiary model's external
// model definitions.
func DecodeSecondaryRefs(doc *sbml.Document) []string {
	if doc == nil {
		return nil
	}
	var names []string
	for _, emd := range doc.ExternalModels {
		if source := strings.TrimSpace(emd.Source); source != "" {
			names = append(names, source)
		}
	}
	return names
}

// EncodeDataSources returns a copy of doc whose dataSource elements are
// replaced by names.
func EncodeDataSources(doc *sbml.Document, names []string) *sbml.Document {
	return withMetadata(doc, dataSourceTag, func() []*xmlnode.Node {
		nodes := make([]*xmlnode.Node, 0, len(names))
		for _, name := range names {
			nodes = append(nodes, xmlnode.New(dataSourceTag).SetAttr(fileAttr, name))
		}
		return nodes
	})
}

// EncodePrimaryRefs returns a copy of doc whose primaryModel elements are
// replaced by names.
func EncodePrimaryRefs(doc *sbml.Document, names []string) *sbml.Document {
	return withMetadata(doc, primaryModelTag, func() []*xmlnode.Node {
		nodes := make([]*xmlnode.Node, 0, len(names))
		for _, name := range names {
			nodes = append(nodes, xmlnode.NewText(primaryModelTag, name))
		}
		return nodes
	})
}

func withMetadata(doc *sbml.Document, tag string, build func() []*xmlnode.Node) *sbml.Document {
	out := doc.Clone()
	if out == nil || out.Model == nil {
		return out
	}
	nodes := build()
	if len(nodes) == 0 {
		metadataOf(out).RemoveChildren(tag)
		return out
	}
	if out.Model.Annotation == nil {
		out.Model.Annotation = xmlnode.New(sbml.AnnotationTag)
	}
	metadata := out.Model.Annotation.EnsureChild(metadataTag)
	metadata.RemoveChildren(tag)
	metadata.Append(nodes...)
	return out
}

// EncodeSecondaryRefs returns a copy of doc whose external model definitions
// point at names. Definitions whose source is kept retain their ids.
func EncodeSecondaryRefs(doc *sbml.Document, names []string) *sbml.Document {
	out := doc.Clone()
	if out == nil {
		return nil
	}
	existing := make(map[string]sbml.ExternalModelDefinition, len(out.ExternalModels))
	for _, emd := range out.ExternalModels {
		existing[emd.Source] = emd
	}
	out.ExternalModels = nil
	for _, name := range names {
		emd, ok := existing[name]
		if !ok {
			emd = sbml.ExternalModelDefinition{ID: sidFor(name), Source: name}
		}
		out.ExternalModels = append(out.ExternalModels, emd)
	}
	return out
}

// sidFor derives an SBML identifier from an entry name.
func sidFor(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	sid := b.String()
	if sid == "" || unicode.IsDigit(rune(sid[0])) {
		sid = "_" + sid
	}
	return sid
}

// Package sbml reads and writes the subset of SBML used by PMF model
// documents: one model with compartments, species and parameters, its
// non-RDF annotation, and the comp package's external model definitions that
// link a tertiary model to its secondary models.
package sbml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/kingrea/pmfarchive/internal/xmlnode"
)

const (
	// Namespace is the SBML Level 3 Version 1 core namespace.
	Namespace = "http://www.sbml.org/sbml/level3/version1/core"

	// AnnotationTag names the element that holds non-RDF annotations.
	AnnotationTag = "annotation"

	defaultLevel   = 3
	defaultVersion = 1
)

// ErrMissingModel indicates an <sbml> element without a <model> child.
var ErrMissingModel = errors.New("sbml: document has no model")

// Document is a parsed SBML document.
type Document struct {
	Level          int
	Version        int
	Model          *Model
	ExternalModels []ExternalModelDefinition
}

// Model is the single model of a document.
type Model struct {
	ID           string
	Name         string
	Compartments []Compartment
	Species      []Species
	Parameters   []Parameter
	// Annotation is the <annotation> element, nil when the model has none.
	Annotation *xmlnode.Node
}

// Compartment is a well-mixed volume, the food matrix in PMF models.
type Compartment struct {
	ID   string
	Name string
}

// Species is an entity within a compartment, the organism in PMF models.
type Species struct {
	ID          string
	Name        string
	Compartment string
	Units       string
}

// Parameter is a named model constant or variable.
type Parameter struct {
	ID       string
	Name     string
	Value    float64
	Units    string
	Constant bool
}

// ExternalModelDefinition is a comp reference to a model in another file.
type ExternalModelDefinition struct {
	ID       string
	Name     string
	Source   string
	ModelRef string
}

// NewDocument returns an empty Level 3 Version 1 document holding model id.
func NewDocument(id string) *Document {
	return &Document{
		Level:   defaultLevel,
		Version: defaultVersion,
		Model:   &Model{ID: id},
	}
}

// HasSpecies reports whether the model declares at least one species.
func (d *Document) HasSpecies() bool {
	return d != nil && d.Model != nil && len(d.Model.Species) > 0
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{Level: d.Level, Version: d.Version}
	if len(d.ExternalModels) > 0 {
		clone.ExternalModels = append([]ExternalModelDefinition(nil), d.ExternalModels...)
	}
	if d.Model != nil {
		m := *d.Model
		m.Compartments = cloneSlice(d.Model.Compartments)
		m.Species = cloneSlice(d.Model.Species)
		m.Parameters = cloneSlice(d.Model.Parameters)
		m.Annotation = d.Model.Annotation.Clone()
		clone.Model = &m
	}
	return clone
}

func cloneSlice[T any](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	return append([]T(nil), in...)
}

// Read parses an SBML document.
func Read(r io.Reader) (*Document, error) {
	var wire wireDocument
	if err := xml.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("sbml: decode: %w", err)
	}
	if wire.Model == nil {
		return nil, ErrMissingModel
	}
	return wire.toDocument(), nil
}

// ReadBytes is Read over a byte slice.
func ReadBytes(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// Write serializes doc. A document without a model cannot be written.
func Write(w io.Writer, doc *Document) error {
	if doc == nil || doc.Model == nil {
		return ErrMissingModel
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(fromDocument(doc)); err != nil {
		return fmt.Errorf("sbml: encode %s: %w", doc.Model.ID, err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal renders doc to bytes.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

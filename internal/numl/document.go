// Package numl reads and writes NuML experimental-data documents: ontology
// terms plus result components whose tuples hold one atomic value per
// described column.
package numl

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Namespace is the NuML Level 1 Version 1 namespace.
const Namespace = "http://www.numl.org/numl/level1/version1"

// ErrNoResults indicates a document without any result component.
var ErrNoResults = errors.New("numl: document has no result components")

// Document is a parsed NuML document.
type Document struct {
	Level            int
	Version          int
	OntologyTerms    []OntologyTerm
	ResultComponents []ResultComponent
}

// OntologyTerm binds a local id to a term in an external ontology.
type OntologyTerm struct {
	ID           string
	Term         string
	SourceTermID string
	OntologyURI  string
}

// ResultComponent is one table of measurements.
type ResultComponent struct {
	ID          string
	Name        string
	Description []AtomicDescription
	Tuples      []Tuple
}

// AtomicDescription describes one column of every tuple.
type AtomicDescription struct {
	Name         string
	OntologyTerm string
	ValueType    string
}

// Tuple is one row of values, aligned with the component's description.
type Tuple []float64

// NewDocument returns an empty Level 1 Version 1 document.
func NewDocument() *Document {
	return &Document{Level: 1, Version: 1}
}

// Validate checks that every tuple matches its component's column count.
func (d *Document) Validate() error {
	if d == nil || len(d.ResultComponents) == 0 {
		return ErrNoResults
	}
	for _, rc := range d.ResultComponents {
		for i, tuple := range rc.Tuples {
			if len(tuple) != len(rc.Description) {
				return fmt.Errorf("numl: result component %s tuple %d has %d values, want %d",
					rc.ID, i, len(tuple), len(rc.Description))
			}
		}
	}
	return nil
}

// Read parses and validates a NuML document.
func Read(r io.Reader) (*Document, error) {
	var wire wireDocument
	if err := xml.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("numl: decode: %w", err)
	}
	doc := wire.toDocument()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadBytes is Read over a byte slice.
func ReadBytes(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// Write validates and serializes doc.
func Write(w io.Writer, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(fromDocument(doc)); err != nil {
		return fmt.Errorf("numl: encode: %w", err)
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

type wireDocument struct {
	XMLName          xml.Name              `xml:"numl"`
	Xmlns            string                `xml:"xmlns,attr,omitempty"`
	Level            int                   `xml:"level,attr"`
	Version          int                   `xml:"version,attr"`
	OntologyTerms    []wireOntologyTerm    `xml:"ontologyTerms>ontologyTerm"`
	ResultComponents []wireResultComponent `xml:"resultComponents>resultComponent"`
}

type wireOntologyTerm struct {
	ID           string `xml:"id,attr"`
	Term         string `xml:"term,attr"`
	SourceTermID string `xml:"sourceTermId,attr"`
	OntologyURI  string `xml:"ontologyURI,attr"`
}

type wireResultComponent struct {
	ID          string           `xml:"id,attr"`
	Name        string           `xml:"name,attr,omitempty"`
	Description []wireAtomicDesc `xml:"dimensionDescription>tupleDescription>atomicDescription"`
	Tuples      []wireTuple      `xml:"dimension>tuple"`
}

type wireAtomicDesc struct {
	Name         string `xml:"name,attr"`
	OntologyTerm string `xml:"ontologyTerm,attr"`
	ValueType    string `xml:"valueType,attr"`
}

type wireTuple struct {
	Values []float64 `xml:"atomicValue"`
}

func fromDocument(doc *Document) wireDocument {
	wire := wireDocument{Xmlns: Namespace, Level: doc.Level, Version: doc.Version}
	if wire.Level == 0 {
		wire.Level = 1
	}
	if wire.Version == 0 {
		wire.Version = 1
	}
	for _, term := range doc.OntologyTerms {
		wire.OntologyTerms = append(wire.OntologyTerms, wireOntologyTerm(term))
	}
	for _, rc := range doc.ResultComponents {
		wrc := wireResultComponent{ID: rc.ID, Name: rc.Name}
		for _, desc := range rc.Description {
			wrc.Description = append(wrc.Description, wireAtomicDesc(desc))
		}
		for _, tuple := range rc.Tuples {
			wrc.Tuples = append(wrc.Tuples, wireTuple{Values: append([]float64(nil), tuple...)})
		}
		wire.ResultComponents = append(wire.ResultComponents, wrc)
	}
	return wire
}

func (w wireDocument) toDocument() *Document {
	doc := &Document{Level: w.Level, Version: w.Version}
	for _, term := range w.OntologyTerms {
		doc.OntologyTerms = append(doc.OntologyTerms, OntologyTerm(term))
	}
	for _, wrc := range w.ResultComponents {
		rc := ResultComponent{ID: wrc.ID, Name: wrc.Name}
		for _, desc := range wrc.Description {
			rc.Description = append(rc.Description, AtomicDescription(desc))
		}
		for _, tuple := range wrc.Tuples {
			rc.Tuples = append(rc.Tuples, Tuple(tuple.Values))
		}
		doc.ResultComponents = append(doc.ResultComponents, rc)
	}
	return doc
}

package sbml

import (
	"encoding/xml"

	"github.com/kingrea/pmfarchive/internal/xmlnode"
)

type wireDocument struct {
	XMLName        xml.Name       `xml:"sbml"`
	Xmlns          string         `xml:"xmlns,attr,omitempty"`
	Level          int            `xml:"level,attr"`
	Version        int            `xml:"version,attr"`
	Model          *wireModel     `xml:"model"`
	ExternalModels []wireExternal `xml:"listOfExternalModelDefinitions>externalModelDefinition"`
}

type wireModel struct {
	ID           string            `xml:"id,attr,omitempty"`
	Name         string            `xml:"name,attr,omitempty"`
	Annotation   *xmlnode.Node     `xml:"annotation"`
	Compartments []wireCompartment `xml:"listOfCompartments>compartment"`
	Species      []wireSpecies     `xml:"listOfSpecies>species"`
	Parameters   []wireParameter   `xml:"listOfParameters>parameter"`
}

type wireCompartment struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr,omitempty"`
}

type wireSpecies struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr,omitempty"`
	Compartment string `xml:"compartment,attr,omitempty"`
	Units       string `xml:"substanceUnits,attr,omitempty"`
}

type wireParameter struct {
	ID       string  `xml:"id,attr"`
	Name     string  `xml:"name,attr,omitempty"`
	Value    float64 `xml:"value,attr"`
	Units    string  `xml:"units,attr,omitempty"`
	Constant bool    `xml:"constant,attr"`
}

type wireExternal struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr,omitempty"`
	Source   string `xml:"source,attr"`
	ModelRef string `xml:"modelRef,attr,omitempty"`
}

func fromDocument(doc *Document) wireDocument {
	level, version := doc.Level, doc.Version
	if level == 0 {
		level = defaultLevel
	}
	if version == 0 {
		version = defaultVersion
	}
	wire := wireDocument{
		Xmlns:   Namespace,
		Level:   level,
		Version: version,
	}
	for _, emd := range doc.ExternalModels {
		wire.ExternalModels = append(wire.ExternalModels, wireExternal(emd))
	}
	m := doc.Model
	wm := &wireModel{ID: m.ID, Name: m.Name}
	if m.Annotation != nil {
		annotation := m.Annotation.Clone()
		annotation.Name = AnnotationTag
		wm.Annotation = annotation
	}
	for _, c := range m.Compartments {
		wm.Compartments = append(wm.Compartments, wireCompartment(c))
	}
	for _, s := range m.Species {
		wm.Species = append(wm.Species, wireSpecies(s))
	}
	for _, p := range m.Parameters {
		wm.Parameters = append(wm.Parameters, wireParameter(p))
	}
	wire.Model = wm
	return wire
}

func (w wireDocument) toDocument() *Document {
	doc := &Document{Level: w.Level, Version: w.Version}
	for _, emd := range w.ExternalModels {
		doc.ExternalModels = append(doc.ExternalModels, ExternalModelDefinition(emd))
	}
	wm := w.Model
	m := &Model{ID: wm.ID, Name: wm.Name, Annotation: wm.Annotation}
	for _, c := range wm.Compartments {
		m.Compartments = append(m.Compartments, Compartment(c))
	}
	for _, s := range wm.Species {
		m.Species = append(m.Species, Species(s))
	}
	for _, p := range wm.Parameters {
		m.Parameters = append(m.Parameters, Parameter(p))
	}
	doc.Model = m
	return doc
}

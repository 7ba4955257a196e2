package pmf

import (
	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/sbml"
)

// Aggregate is a root of the object graph: one experimental data entry or
// one model together with everything it references.
type Aggregate interface {
	// EntryName is the archive entry name of the root document.
	EntryName() string
	Type() ModelType
}

// ExperimentalData is a standalone NuML document.
type ExperimentalData struct {
	Name string
	Doc  *numl.Document
}

// PrimaryModel is a fitted primary model, optionally with the data it was
// fitted against. DataName set with a nil Data means the data entry is
// missing from the archive.
type PrimaryModel struct {
	Name     string
	Doc      *sbml.Document
	DataName string
	Data     *numl.Document
}

// TwoStepSecondaryModel is derived from already fitted primary models.
type TwoStepSecondaryModel struct {
	Name          string
	Doc           *sbml.Document
	PrimaryModels []PrimaryModel
}

// OneStepSecondaryModel is fitted directly against raw data.
// DataNames and Data are index aligned.
type OneStepSecondaryModel struct {
	Name      string
	Doc       *sbml.Document
	DataNames []string
	Data      []*numl.Document
}

// ManualSecondaryModel is entered by hand and has no references.
type ManualSecondaryModel struct {
	Name string
	Doc  *sbml.Document
}

// TwoStepTertiaryModel combines two-step secondary models.
// SecondaryNames and Secondaries are index aligned. On read PrimaryModels
// is the ordered union of the secondaries' primary models. On write it is
// linked under every secondary that has no primary models of its own.
type TwoStepTertiaryModel struct {
	Name           string
	Doc            *sbml.Document
	PrimaryModels  []PrimaryModel
	SecondaryNames []string
	Secondaries    []*TwoStepSecondaryModel
}

// OneStepTertiaryModel combines secondary models fitted in one step along
// with the data they were fitted against.
type OneStepTertiaryModel struct {
	Name           string
	Doc            *sbml.Document
	SecondaryNames []string
	Secondaries    []*sbml.Document
	DataNames      []string
	Data           []*numl.Document
}

// ManualTertiaryModel combines manually entered secondary models.
type ManualTertiaryModel struct {
	Name           string
	Doc            *sbml.Document
	SecondaryNames []string
	Secondaries    []*sbml.Document
}

func (m *ExperimentalData) EntryName() string      { return m.Name }
func (m *PrimaryModel) EntryName() string          { return m.Name }
func (m *TwoStepSecondaryModel) EntryName() string { return m.Name }
func (m *OneStepSecondaryModel) EntryName() string { return m.Name }
func (m *ManualSecondaryModel) EntryName() string  { return m.Name }
func (m *TwoStepTertiaryModel) EntryName() string  { return m.Name }
func (m *OneStepTertiaryModel) EntryName() string  { return m.Name }
func (m *ManualTertiaryModel) EntryName() string   { return m.Name }

func (m *ExperimentalData) Type() ModelType { return TypeExperimentalData }

// Type reports WDATA when the model names a data source.
func (m *PrimaryModel) Type() ModelType {
	if m.DataName != "" {
		return TypePrimaryModelWData
	}
	return TypePrimaryModelWOData
}

func (m *TwoStepSecondaryModel) Type() ModelType { return TypeTwoStepSecondaryModel }
func (m *OneStepSecondaryModel) Type() ModelType { return TypeOneStepSecondaryModel }
func (m *ManualSecondaryModel) Type() ModelType  { return TypeManualSecondaryModel }
func (m *TwoStepTertiaryModel) Type() ModelType  { return TypeTwoStepTertiaryModel }
func (m *OneStepTertiaryModel) Type() ModelType  { return TypeOneStepTertiaryModel }
func (m *ManualTertiaryModel) Type() ModelType   { return TypeManualTertiaryModel }

package pmf

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pmfarchive/internal/combine"
	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/sbml"
)

func primaryDoc(id string) *sbml.Document {
	doc := sbml.NewDocument(id)
	doc.Model.Compartments = []sbml.Compartment{{ID: "milk", Name: "Milk"}}
	doc.Model.Species = []sbml.Species{{ID: "lm", Name: "Listeria monocytogenes", Compartment: "milk", Units: "log10_cfu_g"}}
	doc.Model.Parameters = []sbml.Parameter{{ID: "mu_max", Value: 0.35, Units: "per_h"}}
	return doc
}

func secondaryDoc(id string) *sbml.Document {
	doc := sbml.NewDocument(id)
	doc.Model.Parameters = []sbml.Parameter{{ID: "Tmin", Value: -1.2, Units: "celsius", Constant: true}}
	return doc
}

func dataDoc(values ...float64) *numl.Document {
	doc := numl.NewDocument()
	rc := numl.ResultComponent{
		ID: "growth",
		Description: []numl.AtomicDescription{
			{Name: "Time", ValueType: "double"},
			{Name: "Concentration", ValueType: "double"},
		},
	}
	for i, v := range values {
		rc.Tuples = append(rc.Tuples, numl.Tuple{float64(i * 24), v})
	}
	doc.ResultComponents = []numl.ResultComponent{rc}
	return doc
}

// captureLogger returns a logger whose output lands in the returned buffer.
func captureLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}), &buf
}

func archivePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func entryNames(t *testing.T, path string, format combine.Format) []string {
	t.Helper()
	archive, err := combine.Open(path)
	require.NoError(t, err)
	defer archive.Close()
	var names []string
	for _, e := range archive.Entries(format) {
		names = append(names, e.Name)
	}
	return names
}

func requireModelID(t *testing.T, doc *sbml.Document, id string) {
	t.Helper()
	require.NotNil(t, doc)
	require.NotNil(t, doc.Model)
	require.Equal(t, id, doc.Model.ID)
}

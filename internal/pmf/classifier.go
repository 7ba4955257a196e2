package pmf

import (
	"github.com/charmbracelet/log"

	"github.com/kingrea/pmfarchive/internal/combine"
	"github.com/kingrea/pmfarchive/internal/sbml"
)

// buckets is the classification of one archive. Every parsed model lands in
// exactly one tier map; roots lists the root entries in archive order.
type buckets struct {
	roots  []string
	models map[tier]map[string]*sbml.Document
	data   map[string]struct{}
}

func (b *buckets) model(t tier, name string) (*sbml.Document, bool) {
	doc, ok := b.models[t][name]
	return doc, ok
}

// classify sorts the archive entries into tiers. Models that fail to parse
// are logged and left out of every bucket.
func classify(store Store, l *layout, format combine.Format, desc *RootDescriptor, logger *log.Logger) *buckets {
	b := &buckets{
		models: map[tier]map[string]*sbml.Document{
			tierPrimary:   {},
			tierSecondary: {},
			tierMaster:    {},
		},
		data: map[string]struct{}{},
	}
	for _, entry := range store.Entries(combine.FormatNuML) {
		b.data[entry.Name] = struct{}{}
		if l.modelTiers == 0 {
			b.roots = append(b.roots, entry.Name)
		}
	}
	if l.modelTiers == 0 {
		return b
	}

	for _, entry := range store.Entries(format) {
		doc, err := store.ReadModel(entry.Name)
		if err != nil {
			logger.Warn("skipping unreadable model", "entry", entry.Name, "err", err)
			continue
		}
		t := classifyModel(l, entry.Name, doc, desc)
		b.models[t][entry.Name] = doc
		if t == tierMaster {
			b.roots = append(b.roots, entry.Name)
		}
		logger.Debug("classified model", "entry", entry.Name, "tier", t)
	}
	return b
}

// classifyModel assigns one parsed model to a tier. The species heuristic
// applies only to entries outside the master file set.
func classifyModel(l *layout, name string, doc *sbml.Document, desc *RootDescriptor) tier {
	switch {
	case l.modelTiers <= 1:
		return tierMaster
	case desc.Has(name):
		return tierMaster
	case l.modelTiers == 2:
		return tierSecondary
	case !doc.HasSpecies():
		return tierSecondary
	default:
		return tierPrimary
	}
}

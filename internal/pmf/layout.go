package pmf

import (
	"errors"
	"fmt"

	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/sbml"
)

// tier is the position of a document in the object graph.
type tier int

const (
	tierData tier = iota
	tierPrimary
	tierSecondary
	tierMaster
)

func (t tier) String() string {
	switch t {
	case tierData:
		return "data"
	case tierPrimary:
		return "primary"
	case tierSecondary:
		return "secondary"
	case tierMaster:
		return "master"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// linkKind is one of the cross reference shapes a model can carry. The
// declaration order is the emission order on write.
type linkKind int

const (
	linkDataSources linkKind = iota
	linkPrimaryRefs
	linkSecondaryRefs
	numLinkKinds
)

func (k linkKind) target() tier {
	switch k {
	case linkDataSources:
		return tierData
	case linkPrimaryRefs:
		return tierPrimary
	default:
		return tierSecondary
	}
}

func (k linkKind) decode(doc *sbml.Document) []string {
	switch k {
	case linkDataSources:
		return DecodeDataSources(doc)
	case linkPrimaryRefs:
		return DecodePrimaryRefs(doc)
	default:
		return DecodeSecondaryRefs(doc)
	}
}

func (k linkKind) encode(doc *sbml.Document, names []string) *sbml.Document {
	switch k {
	case linkDataSources:
		return EncodeDataSources(doc, names)
	case linkPrimaryRefs:
		return EncodePrimaryRefs(doc, names)
	default:
		return EncodeSecondaryRefs(doc, names)
	}
}

// node is the format-neutral tree shared by the resolver and the flattener.
// A node whose document is nil stands for an unresolved reference.
type node struct {
	name  string
	tier  tier
	model *sbml.Document
	data  *numl.Document
	links [numLinkKinds][]*node
}

func (n *node) names(kind linkKind) []string {
	if len(n.links[kind]) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.links[kind]))
	for _, child := range n.links[kind] {
		names = append(names, child.name)
	}
	return names
}

// layout describes how one model type spreads over the archive.
type layout struct {
	modelType ModelType
	// modelTiers counts the model tiers: 0 when roots are data entries, 1
	// when every model is a root, 2 when non-roots are secondary models and
	// 3 when non-roots are split by the species heuristic.
	modelTiers int
	// links lists, per tier, the references a document of that tier carries.
	links     map[tier][]linkKind
	assemble  func(*node) (Aggregate, error)
	decompose func(Aggregate) (*node, error)
}

// consultsMasters reports whether classification depends on the master
// file set, which makes the descriptor mandatory.
func (l *layout) consultsMasters() bool {
	return l.modelTiers >= 2
}

func (l *layout) rootTier() tier {
	if l.modelTiers == 0 {
		return tierData
	}
	return tierMaster
}

var (
	errNoDocument = errors.New("pmf: root has no document")
	errMisaligned = errors.New("pmf: reference names and documents are misaligned")
)

var layouts = map[ModelType]*layout{
	TypeExperimentalData: {
		modelType: TypeExperimentalData,
		assemble: func(n *node) (Aggregate, error) {
			if n.data == nil {
				return nil, errNoDocument
			}
			return &ExperimentalData{Name: n.name, Doc: n.data}, nil
		},
		decompose: func(a Aggregate) (*node, error) {
			ed, ok := a.(*ExperimentalData)
			if !ok || ed == nil {
				return nil, wrongAggregate(a, TypeExperimentalData)
			}
			return &node{name: ed.Name, tier: tierData, data: ed.Doc}, nil
		},
	},
	TypePrimaryModelWData: {
		modelType:  TypePrimaryModelWData,
		modelTiers: 1,
		links:      map[tier][]linkKind{tierMaster: {linkDataSources}},
		assemble:   assemblePrimary,
		decompose:  decomposePrimary(TypePrimaryModelWData),
	},
	TypePrimaryModelWOData: {
		modelType:  TypePrimaryModelWOData,
		modelTiers: 1,
		assemble:   assemblePrimary,
		decompose:  decomposePrimary(TypePrimaryModelWOData),
	},
	TypeTwoStepSecondaryModel: {
		modelType:  TypeTwoStepSecondaryModel,
		modelTiers: 3,
		links: map[tier][]linkKind{
			tierMaster:  {linkPrimaryRefs},
			tierPrimary: {linkDataSources},
		},
		assemble: func(n *node) (Aggregate, error) {
			if n.model == nil {
				return nil, errNoDocument
			}
			return twoStepSecondaryFrom(n), nil
		},
		decompose: func(a Aggregate) (*node, error) {
			sm, ok := a.(*TwoStepSecondaryModel)
			if !ok || sm == nil {
				return nil, wrongAggregate(a, TypeTwoStepSecondaryModel)
			}
			return twoStepSecondaryNode(sm, tierMaster)
		},
	},
	TypeOneStepSecondaryModel: {
		modelType:  TypeOneStepSecondaryModel,
		modelTiers: 1,
		links:      map[tier][]linkKind{tierMaster: {linkDataSources}},
		assemble: func(n *node) (Aggregate, error) {
			if n.model == nil {
				return nil, errNoDocument
			}
			names, docs := dataOf(n)
			return &OneStepSecondaryModel{Name: n.name, Doc: n.model, DataNames: names, Data: docs}, nil
		},
		decompose: func(a Aggregate) (*node, error) {
			sm, ok := a.(*OneStepSecondaryModel)
			if !ok || sm == nil {
				return nil, wrongAggregate(a, TypeOneStepSecondaryModel)
			}
			data, err := dataNodes(sm.Name, sm.DataNames, sm.Data)
			if err != nil {
				return nil, err
			}
			n := &node{name: sm.Name, tier: tierMaster, model: sm.Doc}
			n.links[linkDataSources] = data
			return n, nil
		},
	},
	TypeManualSecondaryModel: {
		modelType:  TypeManualSecondaryModel,
		modelTiers: 1,
		assemble: func(n *node) (Aggregate, error) {
			if n.model == nil {
				return nil, errNoDocument
			}
			return &ManualSecondaryModel{Name: n.name, Doc: n.model}, nil
		},
		decompose: func(a Aggregate) (*node, error) {
			sm, ok := a.(*ManualSecondaryModel)
			if !ok || sm == nil {
				return nil, wrongAggregate(a, TypeManualSecondaryModel)
			}
			return &node{name: sm.Name, tier: tierMaster, model: sm.Doc}, nil
		},
	},
	TypeTwoStepTertiaryModel: {
		modelType:  TypeTwoStepTertiaryModel,
		modelTiers: 3,
		links: map[tier][]linkKind{
			tierMaster:    {linkSecondaryRefs},
			tierSecondary: {linkPrimaryRefs},
			tierPrimary:   {linkDataSources},
		},
		assemble: func(n *node) (Aggregate, error) {
			if n.model == nil {
				return nil, errNoDocument
			}
			tm := &TwoStepTertiaryModel{Name: n.name, Doc: n.model}
			seen := map[string]bool{}
			for _, child := range n.links[linkSecondaryRefs] {
				tm.SecondaryNames = append(tm.SecondaryNames, child.name)
				if child.model == nil {
					tm.Secondaries = append(tm.Secondaries, nil)
					continue
				}
				sm := twoStepSecondaryFrom(child)
				tm.Secondaries = append(tm.Secondaries, sm)
				for _, pm := range sm.PrimaryModels {
					if !seen[pm.Name] {
						seen[pm.Name] = true
						tm.PrimaryModels = append(tm.PrimaryModels, pm)
					}
				}
			}
			return tm, nil
		},
		decompose: func(a Aggregate) (*node, error) {
			tm, ok := a.(*TwoStepTertiaryModel)
			if !ok || tm == nil {
				return nil, wrongAggregate(a, TypeTwoStepTertiaryModel)
			}
			n := &node{name: tm.Name, tier: tierMaster, model: tm.Doc}
			if len(tm.SecondaryNames) > 0 && len(tm.Secondaries) > len(tm.SecondaryNames) {
				return nil, misaligned(tm.Name, "secondary", len(tm.SecondaryNames), len(tm.Secondaries))
			}
			names := secondaryNames(tm.SecondaryNames, len(tm.Secondaries), func(i int) string {
				if tm.Secondaries[i] == nil {
					return ""
				}
				return tm.Secondaries[i].Name
			})
			for i, name := range names {
				var sm *TwoStepSecondaryModel
				if i < len(tm.Secondaries) {
					sm = tm.Secondaries[i]
				}
				if sm == nil {
					n.links[linkSecondaryRefs] = append(n.links[linkSecondaryRefs], &node{name: name, tier: tierSecondary})
					continue
				}
				// Secondaries without their own primaries share the tertiary's.
				if len(sm.PrimaryModels) == 0 && len(tm.PrimaryModels) > 0 {
					shared := *sm
					shared.PrimaryModels = tm.PrimaryModels
					sm = &shared
				}
				child, err := twoStepSecondaryNode(sm, tierSecondary)
				if err != nil {
					return nil, err
				}
				child.name = name
				n.links[linkSecondaryRefs] = append(n.links[linkSecondaryRefs], child)
			}
			return n, nil
		},
	},
	TypeOneStepTertiaryModel: {
		modelType:  TypeOneStepTertiaryModel,
		modelTiers: 2,
		links:      map[tier][]linkKind{tierMaster: {linkDataSources, linkSecondaryRefs}},
		assemble: func(n *node) (Aggregate, error) {
			if n.model == nil {
				return nil, errNoDocument
			}
			secNames, secDocs := secondariesOf(n)
			dataNames, data := dataOf(n)
			return &OneStepTertiaryModel{
				Name:           n.name,
				Doc:            n.model,
				SecondaryNames: secNames,
				Secondaries:    secDocs,
				DataNames:      dataNames,
				Data:           data,
			}, nil
		},
		decompose: func(a Aggregate) (*node, error) {
			tm, ok := a.(*OneStepTertiaryModel)
			if !ok || tm == nil {
				return nil, wrongAggregate(a, TypeOneStepTertiaryModel)
			}
			data, err := dataNodes(tm.Name, tm.DataNames, tm.Data)
			if err != nil {
				return nil, err
			}
			secondaries, err := secondaryNodes(tm.Name, tm.SecondaryNames, tm.Secondaries)
			if err != nil {
				return nil, err
			}
			n := &node{name: tm.Name, tier: tierMaster, model: tm.Doc}
			n.links[linkDataSources] = data
			n.links[linkSecondaryRefs] = secondaries
			return n, nil
		},
	},
	TypeManualTertiaryModel: {
		modelType:  TypeManualTertiaryModel,
		modelTiers: 2,
		links:      map[tier][]linkKind{tierMaster: {linkSecondaryRefs}},
		assemble: func(n *node) (Aggregate, error) {
			if n.model == nil {
				return nil, errNoDocument
			}
			names, docs := secondariesOf(n)
			return &ManualTertiaryModel{Name: n.name, Doc: n.model, SecondaryNames: names, Secondaries: docs}, nil
		},
		decompose: func(a Aggregate) (*node, error) {
			tm, ok := a.(*ManualTertiaryModel)
			if !ok || tm == nil {
				return nil, wrongAggregate(a, TypeManualTertiaryModel)
			}
			secondaries, err := secondaryNodes(tm.Name, tm.SecondaryNames, tm.Secondaries)
			if err != nil {
				return nil, err
			}
			n := &node{name: tm.Name, tier: tierMaster, model: tm.Doc}
			n.links[linkSecondaryRefs] = secondaries
			return n, nil
		},
	},
}

func layoutFor(t ModelType) (*layout, error) {
	l, ok := layouts[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModelType, int(t))
	}
	return l, nil
}

func wrongAggregate(a Aggregate, want ModelType) error {
	return fmt.Errorf("pmf: %T cannot be written as %s", a, want)
}

func assemblePrimary(n *node) (Aggregate, error) {
	if n.model == nil {
		return nil, errNoDocument
	}
	pm := primaryFrom(n)
	return &pm, nil
}

func primaryFrom(n *node) PrimaryModel {
	pm := PrimaryModel{Name: n.name, Doc: n.model}
	if sources := n.links[linkDataSources]; len(sources) > 0 {
		pm.DataName = sources[0].name
		pm.Data = sources[0].data
	}
	return pm
}

func decomposePrimary(t ModelType) func(Aggregate) (*node, error) {
	return func(a Aggregate) (*node, error) {
		pm, ok := a.(*PrimaryModel)
		if !ok || pm == nil {
			return nil, wrongAggregate(a, t)
		}
		return primaryNode(*pm, tierMaster)
	}
}

func primaryNode(pm PrimaryModel, t tier) (*node, error) {
	n := &node{name: pm.Name, tier: t, model: pm.Doc}
	if pm.DataName == "" {
		if pm.Data != nil {
			return nil, fmt.Errorf("pmf: primary model %s has data without a name", pm.Name)
		}
		return n, nil
	}
	n.links[linkDataSources] = []*node{{name: pm.DataName, tier: tierData, data: pm.Data}}
	return n, nil
}

func twoStepSecondaryFrom(n *node) *TwoStepSecondaryModel {
	sm := &TwoStepSecondaryModel{Name: n.name, Doc: n.model}
	for _, child := range n.links[linkPrimaryRefs] {
		sm.PrimaryModels = append(sm.PrimaryModels, primaryFrom(child))
	}
	return sm
}

func twoStepSecondaryNode(sm *TwoStepSecondaryModel, t tier) (*node, error) {
	n := &node{name: sm.Name, tier: t, model: sm.Doc}
	for _, pm := range sm.PrimaryModels {
		child, err := primaryNode(pm, tierPrimary)
		if err != nil {
			return nil, err
		}
		n.links[linkPrimaryRefs] = append(n.links[linkPrimaryRefs], child)
	}
	return n, nil
}

func dataOf(n *node) ([]string, []*numl.Document) {
	var names []string
	var docs []*numl.Document
	for _, child := range n.links[linkDataSources] {
		names = append(names, child.name)
		docs = append(docs, child.data)
	}
	return names, docs
}

func secondariesOf(n *node) ([]string, []*sbml.Document) {
	var names []string
	var docs []*sbml.Document
	for _, child := range n.links[linkSecondaryRefs] {
		names = append(names, child.name)
		docs = append(docs, child.model)
	}
	return names, docs
}

// dataNodes pairs names with documents. Names without a document become
// unresolved references; documents without a name are an error.
func dataNodes(owner string, names []string, docs []*numl.Document) ([]*node, error) {
	if len(docs) > len(names) {
		return nil, misaligned(owner, "data", len(names), len(docs))
	}
	var out []*node
	for i, name := range names {
		n := &node{name: name, tier: tierData}
		if i < len(docs) {
			n.data = docs[i]
		}
		out = append(out, n)
	}
	return out, nil
}

func secondaryNodes(owner string, names []string, docs []*sbml.Document) ([]*node, error) {
	if len(docs) > len(names) {
		return nil, misaligned(owner, "secondary", len(names), len(docs))
	}
	var out []*node
	for i, name := range names {
		n := &node{name: name, tier: tierSecondary}
		if i < len(docs) {
			n.model = docs[i]
		}
		out = append(out, n)
	}
	return out, nil
}

func misaligned(owner, kind string, names, docs int) error {
	return fmt.Errorf("%w: %s has %d %s names for %d documents", errMisaligned, owner, names, kind, docs)
}

// secondaryNames returns the explicit names, or when none are given the
// names carried by the secondary aggregates themselves.
func secondaryNames(explicit []string, count int, nameAt func(int) string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		names = append(names, nameAt(i))
	}
	return names
}

package tui

import (
	"fmt"
	"strings"

	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/pmf"
	"github.com/kingrea/pmfarchive/internal/sbml"
)

// treeNode is one line of the aggregate tree before styling.
type treeNode struct {
	name     string
	kind     string
	detail   string
	missing  bool
	children []treeNode
}

func buildTree(agg pmf.Aggregate) treeNode {
	switch a := agg.(type) {
	case *pmf.ExperimentalData:
		return dataNode(a.Name, a.Doc)
	case *pmf.PrimaryModel:
		return primaryNode(*a)
	case *pmf.TwoStepSecondaryModel:
		return twoStepSecondaryNode(a, "secondary")
	case *pmf.OneStepSecondaryModel:
		root := modelNode(a.Name, "secondary", a.Doc)
		root.children = dataNodes(a.DataNames, a.Data)
		return root
	case *pmf.ManualSecondaryModel:
		return modelNode(a.Name, "secondary", a.Doc)
	case *pmf.TwoStepTertiaryModel:
		root := modelNode(a.Name, "tertiary", a.Doc)
		for i, name := range a.SecondaryNames {
			if i < len(a.Secondaries) && a.Secondaries[i] != nil {
				child := twoStepSecondaryNode(a.Secondaries[i], "secondary")
				child.name = name
				root.children = append(root.children, child)
				continue
			}
			root.children = append(root.children, treeNode{name: name, kind: "secondary", missing: true})
		}
		return root
	case *pmf.OneStepTertiaryModel:
		root := modelNode(a.Name, "tertiary", a.Doc)
		root.children = append(secondaryNodes(a.SecondaryNames, a.Secondaries), dataNodes(a.DataNames, a.Data)...)
		return root
	case *pmf.ManualTertiaryModel:
		root := modelNode(a.Name, "tertiary", a.Doc)
		root.children = secondaryNodes(a.SecondaryNames, a.Secondaries)
		return root
	default:
		return treeNode{name: fmt.Sprintf("%T", agg), kind: "unknown"}
	}
}

func modelNode(name, kind string, doc *sbml.Document) treeNode {
	n := treeNode{name: name, kind: kind}
	if doc == nil || doc.Model == nil {
		n.missing = true
		return n
	}
	var parts []string
	if doc.Model.ID != "" {
		parts = append(parts, doc.Model.ID)
	}
	if len(doc.Model.Species) > 0 {
		parts = append(parts, fmt.Sprintf("%d species", len(doc.Model.Species)))
	}
	if len(doc.Model.Parameters) > 0 {
		parts = append(parts, fmt.Sprintf("%d params", len(doc.Model.Parameters)))
	}
	n.detail = strings.Join(parts, ", ")
	return n
}

func dataNode(name string, doc *numl.Document) treeNode {
	n := treeNode{name: name, kind: "data"}
	if doc == nil {
		n.missing = true
		return n
	}
	rows := 0
	for _, rc := range doc.ResultComponents {
		rows += len(rc.Tuples)
	}
	n.detail = fmt.Sprintf("%d rows", rows)
	return n
}

func primaryNode(pm pmf.PrimaryModel) treeNode {
	n := modelNode(pm.Name, "primary", pm.Doc)
	if pm.DataName != "" {
		n.children = []treeNode{dataNode(pm.DataName, pm.Data)}
	}
	return n
}

func twoStepSecondaryNode(sm *pmf.TwoStepSecondaryModel, kind string) treeNode {
	n := modelNode(sm.Name, kind, sm.Doc)
	for _, pm := range sm.PrimaryModels {
		n.children = append(n.children, primaryNode(pm))
	}
	return n
}

func dataNodes(names []string, docs []*numl.Document) []treeNode {
	var out []treeNode
	for i, name := range names {
		var doc *numl.Document
		if i < len(docs) {
			doc = docs[i]
		}
		out = append(out, dataNode(name, doc))
	}
	return out
}

func secondaryNodes(names []string, docs []*sbml.Document) []treeNode {
	var out []treeNode
	for i, name := range names {
		var doc *sbml.Document
		if i < len(docs) {
			doc = docs[i]
		}
		out = append(out, modelNode(name, "secondary", doc))
	}
	return out
}

// renderTree draws the tree with box-drawing guides, one entry per line.
func renderTree(root treeNode) []string {
	lines := []string{root.label()}
	var walk func(children []treeNode, prefix string)
	walk = func(children []treeNode, prefix string) {
		for i, child := range children {
			branch, indent := "├─ ", "│  "
			if i == len(children)-1 {
				branch, indent = "└─ ", "   "
			}
			lines = append(lines, prefix+branch+child.label())
			walk(child.children, prefix+indent)
		}
	}
	walk(root.children, "")
	return lines
}

func (n treeNode) label() string {
	parts := []string{n.name, n.kind}
	switch {
	case n.missing:
		parts = append(parts, "(missing)")
	case n.detail != "":
		parts = append(parts, "("+n.detail+")")
	}
	return strings.Join(parts, "  ")
}

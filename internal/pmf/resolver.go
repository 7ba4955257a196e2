package pmf

import (
	"github.com/charmbracelet/log"

	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/sbml"
)

// maxDepth bounds link recursion: master, secondary, primary, data.
const maxDepth = 3

// resolver joins classified documents into nodes. Data documents are read
// on first use and cached for the rest of the call.
type resolver struct {
	layout  *layout
	store   Store
	buckets *buckets
	log     *log.Logger
	data    map[string]*numl.Document
}

func newResolver(l *layout, store Store, b *buckets, logger *log.Logger) *resolver {
	return &resolver{layout: l, store: store, buckets: b, log: logger, data: map[string]*numl.Document{}}
}

// resolveAll assembles every root in order. A root that cannot be assembled
// is logged and dropped without affecting the others.
func (r *resolver) resolveAll() []Aggregate {
	var out []Aggregate
	for _, name := range r.buckets.roots {
		root := r.root(name)
		agg, err := r.layout.assemble(root)
		if err != nil {
			r.log.Warn("dropping root", "entry", name, "err", err)
			continue
		}
		out = append(out, agg)
	}
	return out
}

func (r *resolver) root(name string) *node {
	if r.layout.rootTier() == tierData {
		return &node{name: name, tier: tierData, data: r.loadData(name)}
	}
	doc, _ := r.buckets.model(tierMaster, name)
	return r.resolve(name, tierMaster, doc, 0)
}

func (r *resolver) resolve(name string, t tier, doc *sbml.Document, depth int) *node {
	n := &node{name: name, tier: t, model: doc}
	if doc == nil || depth >= maxDepth {
		return n
	}
	for _, kind := range r.layout.links[t] {
		for _, childName := range kind.decode(doc) {
			n.links[kind] = append(n.links[kind], r.child(kind, childName, depth+1))
		}
	}
	return n
}

// child resolves one reference. A miss yields a node without a document.
func (r *resolver) child(kind linkKind, name string, depth int) *node {
	target := kind.target()
	if target == tierData {
		return &node{name: name, tier: tierData, data: r.loadData(name)}
	}
	doc, ok := r.buckets.model(target, name)
	if !ok {
		r.log.Warn("unresolved reference", "entry", name, "tier", target)
	}
	return r.resolve(name, target, doc, depth)
}

func (r *resolver) loadData(name string) *numl.Document {
	if doc, ok := r.data[name]; ok {
		return doc
	}
	var doc *numl.Document
	if _, ok := r.buckets.data[name]; !ok {
		r.log.Warn("missing data entry", "entry", name)
	} else {
		var err error
		if doc, err = r.store.ReadData(name); err != nil {
			r.log.Warn("skipping unreadable data", "entry", name, "err", err)
			doc = nil
		}
	}
	r.data[name] = doc
	return doc
}

package pmf

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/kingrea/pmfarchive/internal/combine"
)

var errEmptyName = errors.New("pmf: empty entry name")

// flattener writes aggregates into a store, children before parents.
type flattener struct {
	layout  *layout
	store   Store
	format  combine.Format
	log     *log.Logger
	written map[string]bool
	masters *RootDescriptor
}

func newFlattener(l *layout, store Store, format combine.Format, logger *log.Logger) *flattener {
	return &flattener{
		layout:  l,
		store:   store,
		format:  format,
		log:     logger,
		written: map[string]bool{},
		masters: NewRootDescriptor(l.modelType),
	}
}

// flattenAll writes every aggregate in order. A failed aggregate leaves no
// entries behind and does not stop the rest.
func (f *flattener) flattenAll(aggregates []Aggregate) {
	for i, agg := range aggregates {
		if err := f.flatten(agg); err != nil {
			f.log.Warn("skipping aggregate", "index", i, "kind", fmt.Sprintf("%T", agg), "err", err)
		}
	}
}

func (f *flattener) flatten(agg Aggregate) (err error) {
	root, err := f.layout.decompose(agg)
	if err != nil {
		return err
	}
	if root.model == nil && root.data == nil {
		return fmt.Errorf("%w: %s", errNoDocument, root.name)
	}

	var pending []string
	defer func() {
		if err == nil {
			return
		}
		for i := len(pending) - 1; i >= 0; i-- {
			f.store.Remove(pending[i])
			delete(f.written, pending[i])
		}
	}()
	if err = f.emit(root, &pending); err != nil {
		return err
	}

	if root.tier == tierMaster {
		if err = f.store.SetMaster(root.name, true); err != nil {
			return fmt.Errorf("pmf: mark %s as master: %w", root.name, err)
		}
		f.masters.Add(root.name)
	}
	return nil
}

// emit writes n after its children. Names written earlier in the call are
// shared and skipped. Nodes without a document keep their reference in the
// parent but produce no entry.
func (f *flattener) emit(n *node, pending *[]string) error {
	if n.name == "" {
		return errEmptyName
	}
	kinds := f.layout.links[n.tier]
	for _, kind := range kinds {
		for _, child := range n.links[kind] {
			if err := f.emit(child, pending); err != nil {
				return err
			}
		}
	}
	if f.written[n.name] {
		return nil
	}

	if n.tier == tierData {
		if n.data == nil {
			return nil
		}
		if _, err := f.store.AddData(n.data, n.name); err != nil {
			return fmt.Errorf("pmf: write %s: %w", n.name, err)
		}
	} else {
		if n.model == nil {
			return nil
		}
		doc := n.model
		for _, kind := range kinds {
			doc = kind.encode(doc, n.names(kind))
		}
		if _, err := f.store.AddModel(doc, n.name, f.format); err != nil {
			return fmt.Errorf("pmf: write %s: %w", n.name, err)
		}
	}
	f.written[n.name] = true
	*pending = append(*pending, n.name)
	return nil
}

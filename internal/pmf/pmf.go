// Package pmf maps PMF COMBINE archives to and from the tiered object graph
// of predictive microbiology: experimental data, primary models, secondary
// models and tertiary models.
//
// Archives store every document as a flat entry. Cross references are entry
// names embedded in each model's annotation, and the archive description
// records the model type plus the master files that root the graph. One
// layout per model type drives a shared resolver on read and a shared
// flattener on write.
package pmf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/kingrea/pmfarchive/internal/combine"
)

// ReadmeName is the entry name of the readme added on write.
const ReadmeName = "readme.txt"

const readmeText = `This archive holds predictive microbiology models in the PMF-ML format.
Model entries are SBML documents and experimental data entries are NuML
documents. Models that reference other entries carry the referenced entry
names in their annotation, and the archive description lists the model type
and the master files that are the roots of the model graph.
`

// Mapper reads and writes PMF archives. A Mapper holds no per-call state and
// may be reused for any number of archives.
type Mapper struct {
	log    *log.Logger
	open   Opener
	readme bool
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger routes per-item warnings to logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.log = logger
		}
	}
}

// WithOpener replaces the function that opens archives.
func WithOpener(open Opener) Option {
	return func(m *Mapper) {
		if open != nil {
			m.open = open
		}
	}
}

// WithReadme toggles the readme entry added on write.
func WithReadme(enabled bool) Option {
	return func(m *Mapper) {
		m.readme = enabled
	}
}

// NewMapper returns a Mapper that discards logs, opens COMBINE archives and
// adds a readme on write.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		log:    log.New(io.Discard),
		open:   OpenArchive,
		readme: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result is the outcome of Read.
type Result struct {
	Type       ModelType
	Aggregates []Aggregate
	Descriptor *RootDescriptor
}

// Read resolves the archive at path using the model type recorded in its
// descriptor.
func (m *Mapper) Read(path string) (*Result, error) {
	return m.read(path, 0, false)
}

// ReadAs resolves the archive at path as model type t. Single model tier
// types tolerate a missing descriptor. A descriptor naming another type
// fails with ErrModelTypeMismatch.
func (m *Mapper) ReadAs(path string, t ModelType) ([]Aggregate, error) {
	res, err := m.ResolveAs(path, t)
	if err != nil {
		return nil, err
	}
	return res.Aggregates, nil
}

// ResolveAs is ReadAs returning the whole Result, including the descriptor
// when the archive has one.
func (m *Mapper) ResolveAs(path string, t ModelType) (*Result, error) {
	return m.read(path, t, true)
}

func (m *Mapper) read(path string, t ModelType, declared bool) (*Result, error) {
	format, err := combine.ModelFormatFor(path)
	if err != nil {
		return nil, err
	}
	if declared && !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModelType, int(t))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, archiveError("read", path, ErrOpen, err)
	}

	store, err := m.open(path)
	if err != nil {
		return nil, archiveError("read", path, ErrOpen, err)
	}
	defer store.Close()

	desc, descErr := DecodeDescriptor(store.Description())
	if !declared {
		if descErr != nil {
			return nil, &ArchiveError{Op: "read", Path: path, Err: descErr}
		}
		t = desc.Type
	}
	l, err := layoutFor(t)
	if err != nil {
		return nil, err
	}
	switch {
	case descErr != nil && l.consultsMasters():
		return nil, &ArchiveError{Op: "read", Path: path, Err: descErr}
	case descErr != nil:
		if !errors.Is(descErr, ErrMissingDescriptor) {
			m.log.Warn("ignoring model descriptor", "path", path, "err", descErr)
		}
		desc = nil
	case desc.Type != t:
		return nil, archiveError("read", path, ErrModelTypeMismatch,
			fmt.Errorf("archive is %s, requested %s", desc.Type, t))
	}

	b := classify(store, l, format, desc, m.log)
	aggregates := newResolver(l, store, b, m.log).resolveAll()
	m.log.Debug("read archive", "path", path, "type", t, "roots", len(b.roots), "aggregates", len(aggregates))
	return &Result{Type: t, Aggregates: aggregates, Descriptor: desc}, nil
}

// Write replaces the file at path with an archive holding aggregates as
// model type t. Aggregates that cannot be written are logged and skipped.
// When the archive cannot be finalized no file is left at path.
func (m *Mapper) Write(path string, t ModelType, aggregates []Aggregate) error {
	format, err := combine.ModelFormatFor(path)
	if err != nil {
		return err
	}
	l, err := layoutFor(t)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return archiveError("write", path, ErrOpen, err)
	}

	store, err := m.open(path)
	if err != nil {
		return archiveError("write", path, ErrOpen, err)
	}
	defer store.Close()

	f := newFlattener(l, store, format, m.log)
	f.flattenAll(aggregates)

	if m.readme {
		if _, err := store.AddText(ReadmeName, []byte(readmeText)); err != nil {
			m.log.Warn("skipping readme", "path", path, "err", err)
		}
	}
	store.SetDescription(EncodeDescriptor(f.masters))

	if err := store.Pack(); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			m.log.Error("removing unfinished archive", "path", path, "err", rmErr)
		}
		return archiveError("write", path, ErrPack, err)
	}
	m.log.Debug("wrote archive", "path", path, "type", t, "masters", len(f.masters.MasterFiles))
	return nil
}

// ReadTyped reads the archive at path as model type t and returns the
// aggregates of concrete type T.
func ReadTyped[T Aggregate](m *Mapper, path string, t ModelType) ([]T, error) {
	aggregates, err := m.ReadAs(path, t)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(aggregates))
	for _, agg := range aggregates {
		if typed, ok := agg.(T); ok {
			out = append(out, typed)
		}
	}
	return out, nil
}

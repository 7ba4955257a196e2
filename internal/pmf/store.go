package pmf

import (
	"github.com/kingrea/pmfarchive/internal/combine"
	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/sbml"
	"github.com/kingrea/pmfarchive/internal/xmlnode"
)

// Store is the document container the mapper reads from and writes to.
// *combine.Archive implements it.
type Store interface {
	Entries(format combine.Format) []combine.Entry
	ReadModel(name string) (*sbml.Document, error)
	ReadData(name string) (*numl.Document, error)
	AddModel(doc *sbml.Document, name string, format combine.Format) (combine.Entry, error)
	AddData(doc *numl.Document, name string) (combine.Entry, error)
	AddText(name string, body []byte) (combine.Entry, error)
	Remove(name string) bool
	SetMaster(name string, master bool) error
	Description() *xmlnode.Node
	SetDescription(node *xmlnode.Node)
	Pack() error
	Close() error
}

// Opener opens the store bound to path. A missing file yields an empty store.
type Opener func(path string) (Store, error)

// OpenArchive is the default Opener.
func OpenArchive(path string) (Store, error) {
	archive, err := combine.Open(path)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

var _ Store = (*combine.Archive)(nil)

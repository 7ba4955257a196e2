// Package combine implements the COMBINE archive container: a zip file with
// a manifest.xml listing every entry's format and master flag, plus an
// optional metadata.rdf carrying a free-form description element.
//
// Archives are edited in memory and written with Pack, which stages the new
// zip next to the target and renames it into place.
package combine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/sbml"
	"github.com/kingrea/pmfarchive/internal/xmlnode"
)

var (
	// ErrClosed is returned by operations on a closed archive.
	ErrClosed = errors.New("combine: archive is closed")
	// ErrNoManifest indicates a zip without manifest.xml.
	ErrNoManifest = errors.New("combine: archive has no manifest")
	// ErrEntryNotFound is returned when a named entry is absent.
	ErrEntryNotFound = errors.New("combine: entry not found")
	// ErrInvalidName rejects entry names that escape the archive root.
	ErrInvalidName = errors.New("combine: invalid entry name")
)

// Entry describes one archive member.
type Entry struct {
	Name     string
	Format   Format
	Master   bool
	Size     int
	Checksum uint64
}

type entry struct {
	Name   string
	Format Format
	Master bool
	body   []byte
	// missing marks manifest entries whose file is absent from the zip.
	missing bool
}

func (e *entry) public() Entry {
	return Entry{
		Name:     e.Name,
		Format:   e.Format,
		Master:   e.Master,
		Size:     len(e.body),
		Checksum: xxhash.Sum64(e.body),
	}
}

// Archive is an in-memory view of a COMBINE archive bound to a file path.
type Archive struct {
	path        string
	entries     []*entry
	description *xmlnode.Node
	closed      bool
}

// Open loads the archive at path. A path that does not exist yields an empty
// archive that Pack will create.
func Open(path string) (*Archive, error) {
	a := &Archive{path: path}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("combine: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("combine: %s is a directory", path)
	}
	if err := a.load(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) load() error {
	r, err := zip.OpenReader(a.path)
	if err != nil {
		return fmt.Errorf("combine: open %s: %w", a.path, err)
	}
	defer r.Close()

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[strings.TrimPrefix(f.Name, "./")] = f
	}

	mf, ok := files[manifestName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoManifest, a.path)
	}
	data, err := readZipFile(mf)
	if err != nil {
		return err
	}
	listed, err := decodeManifest(data)
	if err != nil {
		return err
	}
	for _, item := range listed {
		e := &entry{Name: item.Location, Format: item.Format, Master: item.Master}
		if f, ok := files[item.Location]; ok {
			if e.body, err = readZipFile(f); err != nil {
				return err
			}
		} else {
			e.missing = true
		}
		a.entries = append(a.entries, e)
	}

	if f, ok := files[metadataName]; ok {
		data, err := readZipFile(f)
		if err != nil {
			return err
		}
		if a.description, err = decodeMetadata(data); err != nil {
			return err
		}
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("combine: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("combine: read entry %s: %w", f.Name, err)
	}
	return data, nil
}

// Path returns the file the archive is bound to.
func (a *Archive) Path() string {
	return a.path
}

// Entries lists entries with the given format in archive order. An empty
// format lists everything.
func (a *Archive) Entries(format Format) []Entry {
	var out []Entry
	for _, e := range a.entries {
		if format == "" || e.Format == format {
			out = append(out, e.public())
		}
	}
	return out
}

// Entry returns the named entry.
func (a *Archive) Entry(name string) (Entry, bool) {
	e := a.find(name)
	if e == nil {
		return Entry{}, false
	}
	return e.public(), true
}

func (a *Archive) find(name string) *entry {
	for _, e := range a.entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (a *Archive) body(name string) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	e := a.find(name)
	if e == nil || e.missing {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	return e.body, nil
}

// ReadModel parses the named entry as an SBML document.
func (a *Archive) ReadModel(name string) (*sbml.Document, error) {
	data, err := a.body(name)
	if err != nil {
		return nil, err
	}
	doc, err := sbml.ReadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("combine: %s: %w", name, err)
	}
	return doc, nil
}

// ReadData parses the named entry as a NuML document.
func (a *Archive) ReadData(name string) (*numl.Document, error) {
	data, err := a.body(name)
	if err != nil {
		return nil, err
	}
	doc, err := numl.ReadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("combine: %s: %w", name, err)
	}
	return doc, nil
}

// ReadText returns the raw bytes of the named entry.
func (a *Archive) ReadText(name string) ([]byte, error) {
	data, err := a.body(name)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// AddModel serializes doc and stores it under name with the given format.
func (a *Archive) AddModel(doc *sbml.Document, name string, format Format) (Entry, error) {
	data, err := sbml.Marshal(doc)
	if err != nil {
		return Entry{}, fmt.Errorf("combine: write %s: %w", name, err)
	}
	return a.add(name, format, data)
}

// AddData serializes doc as a NuML entry.
func (a *Archive) AddData(doc *numl.Document, name string) (Entry, error) {
	data, err := numl.Marshal(doc)
	if err != nil {
		return Entry{}, fmt.Errorf("combine: write %s: %w", name, err)
	}
	return a.add(name, FormatNuML, data)
}

// AddText stores body as a plain text entry.
func (a *Archive) AddText(name string, body []byte) (Entry, error) {
	return a.AddFile(name, FormatText, body)
}

// AddFile stores body verbatim under name with the given format.
func (a *Archive) AddFile(name string, format Format, body []byte) (Entry, error) {
	return a.add(name, format, append([]byte(nil), body...))
}

// add stores or replaces an entry. A replaced entry keeps its position and
// master flag.
func (a *Archive) add(name string, format Format, body []byte) (Entry, error) {
	if a.closed {
		return Entry{}, ErrClosed
	}
	if err := validateName(name); err != nil {
		return Entry{}, err
	}
	if e := a.find(name); e != nil {
		e.Format = format
		e.body = body
		e.missing = false
		return e.public(), nil
	}
	e := &entry{Name: name, Format: format, body: body}
	a.entries = append(a.entries, e)
	return e.public(), nil
}

func validateName(name string) error {
	if name == "" || name == manifestName || name == metadataName {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	clean := path.Clean(filepath.ToSlash(name))
	if clean != name || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Remove deletes the named entry and reports whether it existed.
func (a *Archive) Remove(name string) bool {
	for i, e := range a.entries {
		if e.Name == name {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return true
		}
	}
	return false
}

// SetMaster flags the named entry as a master file in the manifest.
func (a *Archive) SetMaster(name string, master bool) error {
	e := a.find(name)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	e.Master = master
	return nil
}

// Description returns a copy of the archive description element, or nil.
func (a *Archive) Description() *xmlnode.Node {
	return a.description.Clone()
}

// SetDescription replaces the archive description. Nil clears it.
func (a *Archive) SetDescription(node *xmlnode.Node) {
	a.description = node.Clone()
}

// Pack writes the archive to its path. The zip is staged in a temporary file
// in the same directory and renamed over the target, so a failed Pack leaves
// any previous file untouched.
func (a *Archive) Pack() (err error) {
	if a.closed {
		return ErrClosed
	}
	dir, base := filepath.Split(a.path)
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("combine: pack %s: %w", a.path, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	zw := zip.NewWriter(f)
	if err = a.writeTo(zw); err != nil {
		return fmt.Errorf("combine: pack %s: %w", a.path, err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("combine: pack %s: %w", a.path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("combine: pack %s: %w", a.path, err)
	}
	if err = os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("combine: pack %s: %w", a.path, err)
	}
	return nil
}

func (a *Archive) writeTo(zw *zip.Writer) error {
	var present []*entry
	for _, e := range a.entries {
		if !e.missing {
			present = append(present, e)
		}
	}
	manifest, err := encodeManifest(present, a.description != nil)
	if err != nil {
		return err
	}
	if err := writeZipFile(zw, manifestName, manifest); err != nil {
		return err
	}
	if a.description != nil {
		metadata, err := encodeMetadata(a.description)
		if err != nil {
			return err
		}
		if err := writeZipFile(zw, metadataName, metadata); err != nil {
			return err
		}
	}
	for _, e := range present {
		if err := writeZipFile(zw, e.Name, e.body); err != nil {
			return err
		}
	}
	return nil
}

func writeZipFile(zw *zip.Writer, name string, body []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("entry %s: %w", name, err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("entry %s: %w", name, err)
	}
	return nil
}

// Close releases the in-memory contents. Further reads and writes fail with
// ErrClosed.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.entries = nil
	a.description = nil
	return nil
}

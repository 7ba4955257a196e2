package combine

import (
	"fmt"
	"strings"

	"github.com/kingrea/pmfarchive/internal/xmlnode"
)

const (
	manifestName = "manifest.xml"
	metadataName = "metadata.rdf"

	manifestNamespace = "http://identifiers.org/combine/specifications/omex-manifest"
	rdfNamespace      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

type manifestEntry struct {
	Location string
	Format   Format
	Master   bool
}

func encodeManifest(entries []*entry, withMetadata bool) ([]byte, error) {
	root := xmlnode.New("omexManifest").SetAttr("xmlns", manifestNamespace)
	root.Append(contentNode(".", formatOMEX, false))
	root.Append(contentNode("./"+manifestName, formatManifest, false))
	if withMetadata {
		root.Append(contentNode("./"+metadataName, formatOMEXMetadata, false))
	}
	for _, e := range entries {
		root.Append(contentNode("./"+e.Name, e.Format, e.Master))
	}
	return root.Bytes()
}

func contentNode(location string, format Format, master bool) *xmlnode.Node {
	node := xmlnode.New("content").SetAttr("location", location).SetAttr("format", string(format))
	if master {
		node.SetAttr("master", "true")
	}
	return node
}

func decodeManifest(data []byte) ([]manifestEntry, error) {
	root, err := xmlnode.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("combine: manifest: %w", err)
	}
	if root.Name != "omexManifest" {
		return nil, fmt.Errorf("combine: manifest root is %q", root.Name)
	}
	var out []manifestEntry
	for _, content := range root.ChildrenNamed("content") {
		location, _ := content.Attr("location")
		format, _ := content.Attr("format")
		location = strings.TrimPrefix(strings.TrimSpace(location), "./")
		switch Format(format) {
		case formatOMEX, formatManifest, formatOMEXMetadata:
			continue
		}
		if location == "" || location == "." {
			continue
		}
		master, _ := content.Attr("master")
		out = append(out, manifestEntry{
			Location: location,
			Format:   Format(format),
			Master:   strings.EqualFold(master, "true"),
		})
	}
	return out, nil
}

func encodeMetadata(description *xmlnode.Node) ([]byte, error) {
	about := xmlnode.New("rdf:Description").SetAttr("rdf:about", ".").Append(description.Clone())
	root := xmlnode.New("rdf:RDF").SetAttr("xmlns:rdf", rdfNamespace).Append(about)
	return root.Bytes()
}

// decodeMetadata returns the first element inside the first rdf:Description,
// or nil when the archive carries no description.
func decodeMetadata(data []byte) (*xmlnode.Node, error) {
	root, err := xmlnode.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("combine: metadata: %w", err)
	}
	for _, desc := range root.ChildrenNamed("Description") {
		if len(desc.Children) > 0 {
			return desc.Children[0], nil
		}
	}
	return nil, nil
}

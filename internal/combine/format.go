package combine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the COMBINE format identifier stored next to every manifest entry.
type Format string

const (
	// FormatSBML is the generic SBML identifier, used by .pmf archives.
	FormatSBML Format = "http://identifiers.org/combine/specifications/sbml"
	// FormatPMF identifies PMF-ML models, used by .pmfx and .fskx archives.
	FormatPMF Format = "http://sourceforge.net/projects/microbialmodelingexchange/files/"
	// FormatNuML has no official COMBINE identifier, so the NuML schema URL is used.
	FormatNuML Format = "https://raw.githubusercontent.com/NuML/NuML/master/NUMLSchema.xsd"
	// FormatText marks plain text entries such as the readme.
	FormatText Format = "http://purl.org/NET/mediatypes/text-xplain"

	formatOMEX         Format = "http://identifiers.org/combine/specifications/omex"
	formatManifest     Format = "http://identifiers.org/combine/specifications/omex-manifest"
	formatOMEXMetadata Format = "http://identifiers.org/combine/specifications/omex-metadata"
)

// ErrUnsupportedProfile is returned for archive paths whose extension does not
// select a model format.
var ErrUnsupportedProfile = errors.New("combine: unsupported file profile")

// SupportedExtensions lists the archive extensions ModelFormatFor accepts.
var SupportedExtensions = []string{".pmf", ".pmfx", ".fskx"}

// ModelFormatFor returns the model format identifier selected by the archive
// file extension.
func ModelFormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pmf":
		return FormatSBML, nil
	case ".pmfx", ".fskx":
		return FormatPMF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedProfile, filepath.Base(path))
	}
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return string(f)
}

// Short returns a compact label for display.
func (f Format) Short() string {
	switch f {
	case FormatSBML:
		return "sbml"
	case FormatPMF:
		return "pmf"
	case FormatNuML:
		return "numl"
	case FormatText:
		return "text"
	default:
		return string(f)
	}
}

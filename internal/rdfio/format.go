package rdfio

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"
)

// ErrUnknownFormat is returned when an input path's extension is not one of
// the recognized RDF syntaxes.
var ErrUnknownFormat = errors.New("rdfio: unknown file format")

// FormatForPath maps a file path's extension onto an rdf-go Format. n3 is
// decoded as Turtle: rdf-go carries no dedicated Notation3 decoder, and
// Turtle is a strict syntactic subset of N3 for the RDF-only (non-rules)
// subset this pipeline consumes. Recorded as a deliberate choice, not a
// silent approximation.
func FormatForPath(path string) (rdf.Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "n3", "ttl":
		return rdf.FormatTurtle, nil
	case "nt":
		return rdf.FormatNTriples, nil
	case "nq":
		return rdf.FormatNQuads, nil
	case "rdf":
		return rdf.FormatRDFXML, nil
	case "trig":
		return rdf.FormatTriG, nil
	default:
		return "", ErrUnknownFormat
	}
}

// Package rdfio implements the binary RDF container format this pipeline
// packs statements into, and the thin serializer wrapper the Packer probes
// against. No ready-made binary-RDF codec exists among the project's
// retrieved reference libraries for this exact wire shape, so it is
// implemented here, in the style of the corpus's other binary codecs: a
// length-prefixed record framing borrowed from code.hybscloud.com/framer,
// and non-reflection-based primitive encoding in the manner of
// drewsilcock/go-tdms's readInt*/readUint* helpers.
package rdfio

import (
	"bytes"
	"fmt"
	"hash/crc32"

	"code.hybscloud.com/framer"
	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

// MaxBytes is the hard per-batch byte cap: 1 536 KiB - 1 KiB, leaving
// header headroom for the publishing step.
const MaxBytes = 1_572_864 - 1_024

// AcceptableRatio is the fill-ratio threshold above which the adaptive
// search accepts a probe immediately, per the distilled specification.
const AcceptableRatio = 0.95

const (
	magic   = "RDFB"
	version = byte(1)
)

// Writer builds one binary RDF container in memory. Construct a fresh
// Writer per probe — it owns no state beyond one container's term
// dictionary and is never reused across Packer emissions, matching
// spec §4.4's "constructs a fresh binary-RDF writer ... per probe".
type Writer struct {
	buf  *bytes.Buffer
	fw   interface{ Write([]byte) (int, error) }
	dict *dictionary
}

// NewWriter returns a Writer with its backing buffer pre-sized to
// MaxBytes, avoiding reallocation on the hot path.
func NewWriter() *Writer {
	buf := bytes.NewBuffer(make([]byte, 0, MaxBytes))
	buf.WriteString(magic)
	buf.WriteByte(version)
	return &Writer{
		buf:  buf,
		fw:   framer.NewWriter(buf),
		dict: newDictionary(),
	}
}

// WriteStatement encodes one statement into the container. It returns
// ErrOverflow (wrapping errIndexOverflow, when applicable) if the
// container's internal limits are reached; any other error is a fatal
// encoding failure.
func (w *Writer) WriteStatement(stmt rdf.Statement) error {
	var rec []byte
	var err error
	rec, err = w.dict.encodeTerm(rec, stmt.S)
	if err != nil {
		return err
	}
	rec, err = w.dict.encodeTerm(rec, stmt.P)
	if err != nil {
		return err
	}
	rec, err = w.dict.encodeTerm(rec, stmt.O)
	if err != nil {
		return err
	}
	rec, err = w.dict.encodeTerm(rec, stmt.G)
	if err != nil {
		return err
	}

	if _, err := w.fw.Write(rec); err != nil {
		return fmt.Errorf("rdfio: frame write failed: %w", err)
	}
	if w.buf.Len() > MaxBytes {
		return ErrOverflow
	}
	return nil
}

// Finish appends the trailing checksum and returns the complete container
// bytes. The Writer must not be used afterward.
func (w *Writer) Finish() []byte {
	sum := crc32.ChecksumIEEE(w.buf.Bytes())
	trailer := make([]byte, 4)
	trailer[0] = byte(sum >> 24)
	trailer[1] = byte(sum >> 16)
	trailer[2] = byte(sum >> 8)
	trailer[3] = byte(sum)
	w.buf.Write(trailer)
	return w.buf.Bytes()
}

// Serialize is the Packer's serializer wrapper (spec §4.4): it constructs
// a fresh Writer, feeds it the given statements in order, and returns the
// finished container bytes. It returns ErrOverflow on container-limit
// failures (recoverable, per the adaptive search) and any other error
// unchanged (fatal).
func Serialize(quads []types.IndexedQuad) ([]byte, error) {
	w := NewWriter()
	for _, q := range quads {
		if err := w.WriteStatement(q.Stmt); err != nil {
			return nil, err
		}
	}
	return w.Finish(), nil
}

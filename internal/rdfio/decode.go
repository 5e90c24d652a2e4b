package rdfio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"code.hybscloud.com/framer"
	"github.com/geoknoesis/rdf-go/rdf"
)

// Decode parses a complete container produced by Writer.Finish back into
// its statements. It is not on the packing hot path; its purpose is
// round-trip testability (see §8's end-to-end scenarios: "files ...
// decode").
func Decode(data []byte) ([]rdf.Statement, error) {
	const headerLen = len(magic) + 1
	const trailerLen = 4
	if len(data) < headerLen+trailerLen {
		return nil, ErrTruncated
	}
	if string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("rdfio: bad magic")
	}
	if data[len(magic)] != version {
		return nil, fmt.Errorf("rdfio: unsupported container version %d", data[len(magic)])
	}

	body := data[:len(data)-trailerLen]
	trailer := data[len(data)-trailerLen:]
	want := binary.BigEndian.Uint32(trailer)
	if got := crc32.ChecksumIEEE(body); got != want {
		return nil, ErrChecksumMismatch
	}

	fr := framer.NewReader(bytes.NewReader(body[headerLen:]))
	var terms []rdf.Term
	var stmts []rdf.Statement

	scratch := make([]byte, 1<<20)
	for {
		n, err := fr.Read(scratch)
		if n > 0 {
			stmt, derr := decodeRecord(scratch[:n], &terms)
			if derr != nil {
				return nil, derr
			}
			stmts = append(stmts, stmt)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rdfio: frame read failed: %w", err)
		}
	}
	return stmts, nil
}

func decodeRecord(rec []byte, terms *[]rdf.Term) (rdf.Statement, error) {
	s, rest, err := decodeTerm(rec, terms)
	if err != nil {
		return rdf.Statement{}, err
	}
	p, rest, err := decodeTerm(rest, terms)
	if err != nil {
		return rdf.Statement{}, err
	}
	pIRI, ok := p.(rdf.IRI)
	if p != nil && !ok {
		return rdf.Statement{}, fmt.Errorf("rdfio: predicate is not an IRI")
	}
	o, rest, err := decodeTerm(rest, terms)
	if err != nil {
		return rdf.Statement{}, err
	}
	g, _, err := decodeTerm(rest, terms)
	if err != nil {
		return rdf.Statement{}, err
	}
	return rdf.Statement{S: s, P: pIRI, O: o, G: g}, nil
}

func decodeTerm(buf []byte, terms *[]rdf.Term) (rdf.Term, []byte, error) {
	if len(buf) == 0 {
		return nil, nil, fmt.Errorf("rdfio: truncated term")
	}
	tag := buf[0]
	buf = buf[1:]

	switch tag {
	case tagNil:
		return nil, buf, nil
	case tagRef:
		if len(buf) < 2 {
			return nil, nil, fmt.Errorf("rdfio: truncated term ref")
		}
		idx := binary.BigEndian.Uint16(buf)
		buf = buf[2:]
		if int(idx) >= len(*terms) {
			return nil, nil, fmt.Errorf("rdfio: dangling term reference %d", idx)
		}
		return (*terms)[idx], buf, nil
	case tagNewIRI:
		val, rest, err := readVarBytes(buf)
		if err != nil {
			return nil, nil, err
		}
		term := rdf.IRI{Value: string(val)}
		*terms = append(*terms, term)
		return term, rest, nil
	case tagNewBlank:
		val, rest, err := readVarBytes(buf)
		if err != nil {
			return nil, nil, err
		}
		term := rdf.BlankNode{ID: string(val)}
		*terms = append(*terms, term)
		return term, rest, nil
	case tagNewLiteral:
		payload, rest, err := readVarBytes(buf)
		if err != nil {
			return nil, nil, err
		}
		lex, inner, err := readVarBytes(payload)
		if err != nil {
			return nil, nil, err
		}
		dt, inner, err := readVarBytes(inner)
		if err != nil {
			return nil, nil, err
		}
		lang, _, err := readVarBytes(inner)
		if err != nil {
			return nil, nil, err
		}
		term := rdf.Literal{Lexical: string(lex), Datatype: rdf.IRI{Value: string(dt)}, Lang: string(lang)}
		*terms = append(*terms, term)
		return term, rest, nil
	default:
		return nil, nil, fmt.Errorf("rdfio: unknown term tag %d", tag)
	}
}

func readVarBytes(buf []byte) (val []byte, rest []byte, err error) {
	length, n := binary.Uvarint(buf)
	if n <= 0 {
		return nil, nil, fmt.Errorf("rdfio: malformed varint length")
	}
	buf = buf[n:]
	if uint64(len(buf)) < length {
		return nil, nil, fmt.Errorf("rdfio: truncated term payload")
	}
	return buf[:length], buf[length:], nil
}

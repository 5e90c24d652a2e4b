package rdfio

import (
	"encoding/binary"
	"fmt"

	"github.com/geoknoesis/rdf-go/rdf"
)

// maxDictEntries is the capacity of the term dictionary's index space. A
// container needing to intern more distinct terms than this overflows —
// the concrete trigger for spec's "abruptly overflow an internal index".
const maxDictEntries = 65535

const (
	tagNil        byte = 0
	tagRef        byte = 1
	tagNewIRI     byte = 2
	tagNewBlank   byte = 3
	tagNewLiteral byte = 4
)

// dictionary interns RDF terms, assigning each a sequential uint16 index on
// first occurrence so later occurrences of the same term cost only a
// reference. This is the "shared term dictionary" that makes serialized
// size a non-monotonic function of statement count: a statement that
// reuses prior terms is cheap, one that introduces new terms is not.
type dictionary struct {
	index map[string]uint16
	next  uint16
}

func newDictionary() *dictionary {
	return &dictionary{index: make(map[string]uint16)}
}

// encodeTerm appends the wire encoding of t (or the nil-graph sentinel, if
// t is nil) to dst and returns the extended slice.
func (d *dictionary) encodeTerm(dst []byte, t rdf.Term) ([]byte, error) {
	if t == nil {
		return append(dst, tagNil), nil
	}

	key, tag, payload, err := termKey(t)
	if err != nil {
		return nil, err
	}

	if idx, ok := d.index[key]; ok {
		dst = append(dst, tagRef)
		return binary.BigEndian.AppendUint16(dst, idx), nil
	}

	if int(d.next) >= maxDictEntries {
		return nil, fmt.Errorf("%w: %w", ErrOverflow, errIndexOverflow)
	}
	d.index[key] = d.next
	d.next++

	dst = append(dst, tag)
	dst = appendVarint(dst, uint64(len(payload)))
	return append(dst, payload...), nil
}

// termKey returns a map key unique to the term's kind and content, the
// wire tag for a first occurrence, and the payload bytes to write.
func termKey(t rdf.Term) (key string, tag byte, payload []byte, err error) {
	switch v := t.(type) {
	case rdf.IRI:
		return "i:" + v.Value, tagNewIRI, []byte(v.Value), nil
	case rdf.BlankNode:
		return "b:" + v.ID, tagNewBlank, []byte(v.ID), nil
	case rdf.Literal:
		k := "l:" + v.Lexical + "\x00" + v.Datatype.Value + "\x00" + v.Lang
		return k, tagNewLiteral, encodeLiteralPayload(v), nil
	default:
		return "", 0, nil, fmt.Errorf("rdfio: unsupported term kind %v", t.Kind())
	}
}

func encodeLiteralPayload(l rdf.Literal) []byte {
	var buf []byte
	buf = appendVarint(buf, uint64(len(l.Lexical)))
	buf = append(buf, l.Lexical...)
	buf = appendVarint(buf, uint64(len(l.Datatype.Value)))
	buf = append(buf, l.Datatype.Value...)
	buf = appendVarint(buf, uint64(len(l.Lang)))
	buf = append(buf, l.Lang...)
	return buf
}

func appendVarint(dst []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(dst, tmp[:n]...)
}

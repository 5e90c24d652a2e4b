// ============================================================================
// RDF Dataset Packer — Core Type Definitions
// ============================================================================
//
// Package: pkg/types
// Purpose: Core domain models shared by the Reader, Packer and Writer stages
//
// Core Types:
//   - IndexedQuad: a parsed statement paired with its global emission index
//   - MicroBatch: a fixed-count bundle of indexed quads produced by the Reader
//   - SizedDataset: a serialized, size-capped payload produced by a Packer
//   - OutputFile: a written batch file, forwarded to the downstream consumer
//
// Usage:
//   - Reader: produces MicroBatch values
//   - Packer: consumes MicroBatch, produces SizedDataset
//   - Writer: consumes SizedDataset, produces OutputFile
//
// ============================================================================

// Package types defines core domain models for the RDF dataset packer.
package types

import "github.com/geoknoesis/rdf-go/rdf"

// IndexedQuad pairs a parsed RDF statement with a monotonically increasing,
// 0-based index assigned by the Reader in emission order across all input
// files. The index is used only for diagnostics (naming the input position
// of a statement skipped for being individually oversized); it is never
// persisted.
type IndexedQuad struct {
	Index uint64
	Stmt  rdf.Statement
}

// MicroBatch is an ordered sequence of indexed quads produced by the Reader
// and consumed once by a single Packer. Quads within one MicroBatch, and
// across MicroBatches from a single input file, retain input order.
type MicroBatch struct {
	Quads []IndexedQuad
}

// SizedDataset is the serialized encoding of some leading prefix of a
// Packer's statement buffer. Invariant: len(Data) <= MaxBytes.
type SizedDataset struct {
	Data           []byte
	StatementCount int
	Skipped        int
}

// OutputFile records a batch file written by the Writer and forwarded on
// the downstream files channel.
type OutputFile struct {
	Path           string
	StatementCount int
}

// ReaderProgress reports Reader activity for one input file.
type ReaderProgress struct {
	Path           string
	BytesSinceLast int64
	StatementCount int
	Finished       bool
}

// PrepareProgress reports one Writer emission.
type PrepareProgress struct {
	Path           string
	Bytes          int
	StatementCount int
	Skipped        int
}

// PublishProgress reports one successful publisher submission.
type PublishProgress struct {
	Path           string
	Bytes          int
	StatementCount int
}

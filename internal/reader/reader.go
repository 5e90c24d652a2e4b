// Package reader implements the pipeline's Reader stage: it opens each
// input file in turn, decodes RDF statements with github.com/geoknoesis/rdf-go,
// and bundles them into fixed-count micro-batches for the Packer pool.
//
// Grounded on the teacher's internal/worker/source.go pull-style source
// (a single goroutine draining an external feed into a channel) and on
// spec.md §4.1's per-file open/decode/emit loop.
package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/asimov-platform/rdf-dataset-packer/internal/cancel"
	"github.com/asimov-platform/rdf-dataset-packer/internal/progress"
	"github.com/asimov-platform/rdf-dataset-packer/internal/rdfio"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

// bufferSize is the input buffered-reader size spec.md §4.1 specifies
// ("a large (1 MiB) buffered reader").
const bufferSize = 1 << 20

// ErrOpenFailed wraps a per-file open/read failure (spec §7: fatal,
// surfaced).
var ErrOpenFailed = errors.New("reader: failed to open input file")

// Config bounds one Reader run.
type Config struct {
	// BatchSize is the target quad count per emitted micro-batch.
	BatchSize int
}

// DefaultConfig matches the distilled specification's micro-batch
// capacity target of 100,000 quads.
func DefaultConfig() Config {
	return Config{BatchSize: 100_000}
}

// Reader drives the Reader stage of the pipeline.
type Reader struct {
	Config
	Paths    []string
	Out      chan<- types.MicroBatch
	Cancel   *cancel.Token
	Progress *progress.Sink
	Logger   *slog.Logger
}

// Run streams every path's statements onto Out as micro-batches, in file
// order. It returns the first fatal error (unknown extension, file open
// failure, parser failure); any other return means a graceful shutdown
// (inputs exhausted or cancellation observed — Go channel sends cannot
// detect a receiver going away the way the original's channel-closed
// check could, so shutdown here is driven entirely by the cancellation
// token).
func (r *Reader) Run() error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig().BatchSize
	}

	var index uint64
	for _, path := range r.Paths {
		if r.cancelled() {
			return nil
		}
		if err := r.readFile(path, batchSize, &index, logger); err != nil {
			return err
		}
	}
	return nil
}

// readFile streams one file's statements onto Out.
func (r *Reader) readFile(path string, batchSize int, index *uint64, logger *slog.Logger) error {
	format, err := rdfio.FormatForPath(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", path, ErrOpenFailed, err)
	}
	defer f.Close()

	counting := rdfio.NewCountingReader(bufio.NewReaderSize(f, bufferSize))
	rr, err := rdf.NewReader(counting, format)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", path, ErrOpenFailed, err)
	}
	defer rr.Close()

	var buf []types.IndexedQuad
	for {
		if r.cancelled() {
			return nil
		}

		stmt, err := rr.Next()
		finished := errors.Is(err, io.EOF)
		if err != nil && !finished {
			return fmt.Errorf("%s: parse failed: %w", path, err)
		}

		if !finished {
			buf = append(buf, types.IndexedQuad{Index: *index, Stmt: stmt})
			*index++
		}

		emit := len(buf) >= batchSize || finished
		if !emit {
			continue
		}
		bytesSince := counting.Since()
		// spec.md §4.1's termination condition: finished, buffer empty and
		// nothing read since the last event ends the loop without a
		// spurious final event.
		if finished && len(buf) == 0 && bytesSince == 0 {
			return nil
		}

		r.emitProgress(types.ReaderProgress{
			Path:           path,
			BytesSinceLast: bytesSince,
			StatementCount: len(buf),
			Finished:       finished,
		})

		if len(buf) > 0 {
			// Out is bounded (capacity 100 per spec §5); a full channel
			// blocks the Reader, which is the pipeline's intended
			// backpressure when Packers stall. The cancellation token's
			// Done channel lets a shutdown interrupt that block instead
			// of waiting on a Packer that has already exited.
			batch := types.MicroBatch{Quads: buf}
			if r.Cancel != nil {
				select {
				case <-r.Cancel.Done():
					return nil
				case r.Out <- batch:
				}
			} else {
				r.Out <- batch
			}
			buf = nil
		}

		if finished {
			return nil
		}
	}
}

func (r *Reader) emitProgress(e types.ReaderProgress) {
	if r.Progress != nil {
		r.Progress.EmitReader(e)
	}
}

func (r *Reader) cancelled() bool {
	return r.Cancel != nil && r.Cancel.IsCancelled()
}

// Package packer implements the adaptive batch-size search: the
// algorithmic core of the pipeline. Each Packer drains micro-batches into
// a private statement buffer and repeatedly probes the serializer to find
// the largest leading prefix whose serialized size fits under MaxBytes
// without wasting headroom, converging in O(log n) probes even though
// serialized size is not a monotonic function of statement count.
//
// Grounded on the original Rust prepare.rs's write_count / delta /
// lowest_overflow / best_ratio state machine; the worker-pool fan-out
// around it follows the shape of worker.Worker/worker.Pool in this
// project's teacher package, generalized from a generic job/result pair
// to a micro-batch/sized-dataset pair.
package packer

import (
	"errors"
	"log/slog"
	"math"

	"github.com/asimov-platform/rdf-dataset-packer/internal/cancel"
	"github.com/asimov-platform/rdf-dataset-packer/internal/rdfio"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

// Serializer is the probe function a Packer feeds leading prefixes of its
// buffer to. Production code passes rdfio.Serialize; tests substitute a
// mock implementing the convergence scenarios of SPEC_FULL.md §8.
type Serializer func(quads []types.IndexedQuad) ([]byte, error)

// MetricsRecorder receives one observation per emitted batch. Satisfied
// by *internal/metrics.Collector; kept as a narrow interface here so
// this package does not import metrics registration machinery it has no
// other use for.
type MetricsRecorder interface {
	RecordBatch(bytes, statements, skipped, probes int, fillRatio float64)
}

// Config bounds one Packer's search.
type Config struct {
	MaxBytes        int
	AcceptableRatio float64
}

// DefaultConfig matches the distilled specification's constants.
func DefaultConfig() Config {
	return Config{MaxBytes: rdfio.MaxBytes, AcceptableRatio: rdfio.AcceptableRatio}
}

// Packer consumes micro-batches from In and emits sized datasets on Out.
type Packer struct {
	Config
	In        <-chan types.MicroBatch
	Out       chan<- types.SizedDataset
	Cancel    *cancel.Token
	Serialize Serializer
	Metrics   MetricsRecorder
	Logger    *slog.Logger
}

// Run executes the adaptive-size-search loop until In is exhausted or
// cancellation is observed. It returns nil on any graceful
// shutdown and a non-nil error only for a fatal (non-overflow) serializer
// failure, matching spec §7's error taxonomy.
func (p *Packer) Run() error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var buffer []types.IndexedQuad
	writeCount := 1
	delta := 1
	lowestOverflow := math.MaxInt
	bestRatio := 0.0
	skipped := 0
	haveMore := true
	probes := 0

	for {
		if p.Cancel != nil && p.Cancel.IsCancelled() {
			return nil
		}

	refill:
		for haveMore && len(buffer) < writeCount {
			if p.Cancel == nil {
				mb, ok := <-p.In
				if !ok {
					haveMore = false
					break
				}
				buffer = append(buffer, mb.Quads...)
				continue
			}
			select {
			case <-p.Cancel.Done():
				return nil
			case mb, ok := <-p.In:
				if !ok {
					haveMore = false
					break refill
				}
				buffer = append(buffer, mb.Quads...)
			}
		}

		if len(buffer) == 0 {
			return nil
		}

		n := writeCount
		if n > len(buffer) {
			n = len(buffer)
		}

		data, err := p.Serialize(buffer[:n])
		probes++
		overflow := errors.Is(err, rdfio.ErrOverflow)
		if err != nil && !overflow {
			return err
		}
		if !overflow && len(data) > p.MaxBytes {
			overflow = true
		}

		if overflow {
			if n == 1 {
				logger.Warn("skipping statement that exceeds the byte cap", "index", buffer[0].Index)
				buffer = buffer[1:]
				skipped++
				continue
			}

			if writeCount < lowestOverflow {
				lowestOverflow = writeCount
			}
			writeCount -= delta
			if delta == 1 {
				writeCount = lowestOverflow - 2
			} else {
				delta >>= 1
				if delta < 1 {
					delta = 1
				}
			}
			writeCount += delta
			continue
		}

		ratio := float64(len(data)) / float64(p.MaxBytes)

		// A probe exactly at the cap is never accepted on the ratio test
		// alone (ratio must be strictly below 1.0): one more statement
		// could still shrink the dictionary-shared encoding, so we keep
		// expanding. There are two exceptions: the buffer running dry with
		// nothing left to add, in which case whatever we have is the
		// final batch regardless of how close to the cap it landed; and
		// the next expansion step landing at or next to lowestOverflow,
		// handled below, which also emits the current probe.
		exhausted := len(buffer) < writeCount && !haveMore
		accept := exhausted || (ratio < 1.0 && (ratio > p.AcceptableRatio || ratio == bestRatio))

		if !accept {
			if ratio > bestRatio {
				bestRatio = ratio
			}
			delta <<= 1
			for delta >= (lowestOverflow - writeCount) {
				delta >>= 1
			}
			if delta < 1 {
				delta = 1
			}
			newWriteCount := writeCount + delta
			if newWriteCount+1 >= lowestOverflow {
				accept = true
			} else {
				writeCount = newWriteCount
				continue
			}
		}

		ds := types.SizedDataset{Data: data, StatementCount: n, Skipped: skipped}
		if p.Metrics != nil {
			p.Metrics.RecordBatch(len(data), n, skipped, probes, float64(len(data))/float64(p.MaxBytes))
		}
		if p.Cancel != nil {
			select {
			case <-p.Cancel.Done():
				return nil
			case p.Out <- ds:
			}
		} else {
			p.Out <- ds
		}

		buffer = buffer[n:]
		writeCount = 1
		delta = 1
		bestRatio = 0
		lowestOverflow = math.MaxInt
		skipped = 0
		probes = 0
	}
}

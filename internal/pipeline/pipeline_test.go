package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimov-platform/rdf-dataset-packer/internal/packer"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

func writeFixture(t *testing.T, dir, name string, count int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	for i := 0; i < count; i++ {
		_, err := f.WriteString("<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n")
		require.NoError(t, err)
	}
	return path
}

// TestPipelineRunsEndToEnd exercises the full Reader -> Packer pool ->
// Writer chain against a small real .nt fixture, per SPEC_FULL.md §8's
// end-to-end scenarios.
func TestPipelineRunsEndToEnd(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	path := writeFixture(t, inDir, "a.nt", 50)

	pl := New(Config{
		Paths:       []string{path},
		OutputDir:   outDir,
		PackerCount: 2,
		ReaderBatch: 10,
		Packer:      packer.DefaultConfig(),
	})

	files := make(chan types.OutputFile, 64)
	err := pl.Run(files)
	require.NoError(t, err)

	var total int
	var paths []string
	for f := range files {
		total += f.StatementCount
		paths = append(paths, f.Path)
	}
	assert.Equal(t, 50, total)
	assert.NotEmpty(t, paths)

	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestPipelineRunWithEmptyPathsIsGraceful(t *testing.T) {
	outDir := t.TempDir()
	pl := New(Config{
		Paths:     nil,
		OutputDir: outDir,
		Packer:    packer.DefaultConfig(),
	})

	files := make(chan types.OutputFile, 4)
	err := pl.Run(files)
	require.NoError(t, err)

	var count int
	for range files {
		count++
	}
	assert.Equal(t, 0, count)
}

func TestPipelineRunSurfacesReaderError(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	badPath := filepath.Join(inDir, "bad.unknownext")
	require.NoError(t, os.WriteFile(badPath, []byte("x"), 0o644))

	pl := New(Config{
		Paths:     []string{badPath},
		OutputDir: outDir,
		Packer:    packer.DefaultConfig(),
	})

	err := pl.Run(nil)
	assert.Error(t, err)
}

func TestPipelineCancelStopsRunPromptly(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	path := writeFixture(t, inDir, "a.nt", 1000)

	pl := New(Config{
		Paths:       []string{path},
		OutputDir:   outDir,
		PackerCount: 1,
		ReaderBatch: 1,
		Packer:      packer.DefaultConfig(),
	})

	pl.Cancel.Cancel()

	done := make(chan error, 1)
	go func() { done <- pl.Run(nil) }()
	err := <-done
	assert.NoError(t, err)
}

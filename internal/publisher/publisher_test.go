package publisher

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimov-platform/rdf-dataset-packer/internal/cancel"
	"github.com/asimov-platform/rdf-dataset-packer/pkg/types"
)

type recordingClient struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (c *recordingClient) FunctionCall(ctx context.Context, accountID, contractID, method string, args []byte, gas, deposit uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, method)
	if c.fail[method] {
		return assert.AnError
	}
	return nil
}

func writeBatchFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestBuildPayloadFramesVersionNameAndContents(t *testing.T) {
	dir := t.TempDir()
	path := writeBatchFile(t, dir, "prepared.000001.rdfb", "RDFB\x01payload-bytes")

	payload, err := buildPayload("mydataset", path)
	require.NoError(t, err)

	assert.Equal(t, versionByte, payload[0])
	nameLen := binary.BigEndian.Uint32(payload[1:5])
	assert.Equal(t, uint32(len("mydataset")), nameLen)
	name := string(payload[5 : 5+nameLen])
	assert.Equal(t, "mydataset", name)
	assert.Equal(t, encodingByte, payload[5+nameLen])
	assert.Equal(t, "RDFB\x01payload-bytes", string(payload[6+nameLen:]))
}

func TestPublisherSubmitsEachFileAndDeletesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	a := writeBatchFile(t, dir, "prepared.000001.rdfb", "batch-a")
	b := writeBatchFile(t, dir, "prepared.000002.rdfb", "batch-b")

	in := make(chan types.OutputFile, 2)
	in <- types.OutputFile{Path: a, StatementCount: 1}
	in <- types.OutputFile{Path: b, StatementCount: 2}
	close(in)

	client := &recordingClient{}
	p := &Publisher{
		Config: Config{AccountID: "acct", ContractID: "contract", DatasetName: "ds"},
		Client: client,
		In:     in,
	}

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, []string{methodName, methodName}, client.calls)

	_, errA := os.Stat(a)
	_, errB := os.Stat(b)
	assert.True(t, os.IsNotExist(errA))
	assert.True(t, os.IsNotExist(errB))
}

func TestPublisherKeepsFileAndContinuesOnRemoteFailure(t *testing.T) {
	dir := t.TempDir()
	a := writeBatchFile(t, dir, "prepared.000001.rdfb", "batch-a")

	in := make(chan types.OutputFile, 1)
	in <- types.OutputFile{Path: a, StatementCount: 1}
	close(in)

	client := &recordingClient{fail: map[string]bool{methodName: true}}
	p := &Publisher{
		Config: Config{AccountID: "acct", ContractID: "contract", DatasetName: "ds"},
		Client: client,
		In:     in,
	}

	require.NoError(t, p.Run(context.Background()))
	_, err := os.Stat(a)
	assert.NoError(t, err, "file should remain after a failed submission")
}

func TestPublisherStopsOnCancellation(t *testing.T) {
	tok := cancel.New()
	tok.Cancel()

	in := make(chan types.OutputFile)
	p := &Publisher{
		Config: Config{AccountID: "acct", ContractID: "contract"},
		Client: &recordingClient{},
		In:     in,
		Cancel: tok,
	}

	assert.NoError(t, p.Run(context.Background()))
}

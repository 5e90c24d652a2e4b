package rdfio

import "io"

// CountingReader wraps an io.Reader and tracks bytes read since the last
// call to Since. The Reader drains Since after each emitted progress event
// so every ReaderProgress.BytesSinceLast value is a delta, never a running
// total (see SPEC_FULL.md's resolution of the "bytes_since_last" open
// question).
type CountingReader struct {
	r     io.Reader
	count int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}

// Since returns the byte count accumulated since the last call to Since,
// and resets the counter to zero.
func (c *CountingReader) Since() int64 {
	n := c.count
	c.count = 0
	return n
}

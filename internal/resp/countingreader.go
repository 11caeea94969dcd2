package resp

import "io"

// CountingReader wraps an io.Reader and tracks the total number of bytes
// read from the underlying source. Combined with a Reader's Buffered()
// count, (CountingReader.N() - Reader.Buffered()) gives the exact number of
// bytes actually consumed from the stream so far — what the replica needs
// for byte-accurate offset accounting (spec.md §4.8, §9).
type CountingReader struct {
	r io.Reader
	n int64
}

func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *CountingReader) N() int64 { return c.n }

// Package codec holds the external collaborators used by response pipelines:
// content decompressors keyed by Content-Encoding token, and JSON/XML
// deserializers.
//
// Decompression failures are reported as *CodecError and are fatal to a
// pipeline run; deserialization failures are plain errors that steps convert
// into step failures.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Content-Encoding tokens, as registered with IANA.
const (
	EncodingGzip    = "gzip"
	EncodingXGzip   = "x-gzip"
	EncodingDeflate = "deflate"
	EncodingBrotli  = "br"
	EncodingZstd    = "zstd"
)

// ErrTooLarge is returned when decompressed output exceeds a configured limit.
var ErrTooLarge = errors.New("codec: decompressed content exceeds limit")

// Decompressor decodes a whole compressed body for one Content-Encoding.
type Decompressor interface {
	// Encoding returns the Content-Encoding token handled, e.g. "gzip".
	Encoding() string
	// Decompress returns the decoded bytes of data.
	Decompress(data []byte) ([]byte, error)
}

// CodecError wraps a failure of a Decompressor.
type CodecError struct {
	Encoding string
	Err      error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec %s: %v", e.Encoding, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// streamFunc opens a decoding reader over r.
type streamFunc func(r io.Reader) (io.ReadCloser, error)

type streamDecompressor struct {
	encoding string
	open     streamFunc
	limit    int64
}

func (d *streamDecompressor) Encoding() string { return d.encoding }

func (d *streamDecompressor) Decompress(data []byte) ([]byte, error) {
	rc, err := d.open(bytes.NewReader(data))
	if err != nil {
		return nil, &CodecError{Encoding: d.encoding, Err: err}
	}
	defer rc.Close()
	out, err := readLimited(rc, d.limit)
	if err != nil {
		return nil, &CodecError{Encoding: d.encoding, Err: err}
	}
	return out, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, ErrTooLarge
	}
	return out, nil
}

// WithLimit returns a decompressor that fails with ErrTooLarge when the decoded
// output of d exceeds limit bytes. A limit <= 0 returns d unchanged.
func WithLimit(d Decompressor, limit int64) Decompressor {
	if limit <= 0 {
		return d
	}
	if sd, ok := d.(*streamDecompressor); ok {
		return &streamDecompressor{encoding: sd.encoding, open: sd.open, limit: limit}
	}
	return &limitedDecompressor{inner: d, limit: limit}
}

type limitedDecompressor struct {
	inner Decompressor
	limit int64
}

func (d *limitedDecompressor) Encoding() string { return d.inner.Encoding() }

func (d *limitedDecompressor) Decompress(data []byte) ([]byte, error) {
	out, err := d.inner.Decompress(data)
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > d.limit {
		return nil, &CodecError{Encoding: d.inner.Encoding(), Err: ErrTooLarge}
	}
	return out, nil
}

// Registry maps Content-Encoding tokens to decompressors. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byEnc map[string]Decompressor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byEnc: make(map[string]Decompressor)}
}

// DefaultRegistry returns a registry with gzip, x-gzip, deflate, br and zstd.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Gzip())
	r.RegisterAs(EncodingXGzip, Gzip())
	r.Register(Deflate())
	r.Register(Brotli())
	r.Register(Zstd())
	return r
}

// Register adds d under its own Encoding token, replacing any previous entry.
func (r *Registry) Register(d Decompressor) {
	r.RegisterAs(d.Encoding(), d)
}

// RegisterAs adds d under token.
func (r *Registry) RegisterAs(token string, d Decompressor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEnc[strings.ToLower(token)] = d
}

// Lookup returns the decompressor for token (case-insensitive).
func (r *Registry) Lookup(token string) (Decompressor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byEnc[strings.ToLower(token)]
	return d, ok
}

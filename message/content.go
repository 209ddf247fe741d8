package message

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/dcshock/respipe/mediatype"
)

// ErrNoContentType is returned by Content.MediaType when Content-Type is absent.
var ErrNoContentType = errors.New("message: no content type")

// ErrClosed is returned when reading a content that has been closed.
var ErrClosed = errors.New("message: content closed")

// Content is the body of a message and its content-level headers. The body is
// read at most once; the bytes are cached so every reader sees the same data.
type Content struct {
	Header http.Header

	mu       sync.Mutex
	body     io.Reader
	data     []byte
	buffered bool
	closed   bool
}

// NewContent returns a content reading lazily from body. If body is an
// io.Closer it is closed by Close or once fully read.
func NewContent(body io.Reader, header http.Header) *Content {
	if header == nil {
		header = make(http.Header)
	}
	return &Content{Header: header, body: body}
}

// NewBytesContent returns a content holding data.
func NewBytesContent(data []byte, header http.Header) *Content {
	if header == nil {
		header = make(http.Header)
	}
	return &Content{Header: header, data: data, buffered: true}
}

// Bytes returns the full body. The first call reads the underlying stream; a
// cancelled ctx aborts the read by closing the stream when it is an io.Closer.
func (c *Content) Bytes(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.buffered {
		return c.data, nil
	}
	data, err := readAll(ctx, c.body)
	closeBody(c.body)
	c.body = nil
	if err != nil {
		c.closed = true
		return nil, err
	}
	c.data, c.buffered = data, true
	return c.data, nil
}

// Text returns the full body as a string.
func (c *Content) Text(ctx context.Context) (string, error) {
	b, err := c.Bytes(ctx)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Reader returns a stream over the full body. The body is materialized first so
// later readers are not affected.
func (c *Content) Reader(ctx context.Context) (io.Reader, error) {
	b, err := c.Bytes(ctx)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// MediaType parses the Content-Type header.
func (c *Content) MediaType() (mediatype.MediaType, error) {
	v := c.Header.Get("Content-Type")
	if v == "" {
		return mediatype.MediaType{}, ErrNoContentType
	}
	return mediatype.Parse(v)
}

// Encodings returns the Content-Encoding tokens in order, lower-cased.
func (c *Content) Encodings() []string {
	var out []string
	for _, v := range c.Header.Values("Content-Encoding") {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// Close releases the underlying stream. It is safe to call more than once.
func (c *Content) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.data = nil
	if c.body != nil {
		err := closeBody(c.body)
		c.body = nil
		return err
	}
	return nil
}

func closeBody(r io.Reader) error {
	if rc, ok := r.(io.Closer); ok {
		return rc.Close()
	}
	return nil
}

type readResult struct {
	data []byte
	err  error
}

// readAll reads r until EOF or until ctx is done. On cancellation a Closer is
// closed to unblock the pending read. A reader that cannot be closed has no way
// to be interrupted, so it is read synchronously and ctx is only checked
// before the read starts.
func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := r.(io.Closer); !ok {
		return io.ReadAll(r)
	}
	done := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(r)
		done <- readResult{data: data, err: err}
	}()
	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		closeBody(r)
		return nil, ctx.Err()
	}
}

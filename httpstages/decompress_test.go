package httpstages

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/dcshock/respipe/codec"
	"github.com/dcshock/respipe/message"
	"github.com/dcshock/respipe/pipeline"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func deflated(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte(s))
	w.Close()
	return buf.Bytes()
}

func brotlied(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	w.Write([]byte(s))
	w.Close()
	return buf.Bytes()
}

func zstded(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func encodedMessage(encoding string, data []byte) *message.Message {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Content-Encoding", encoding)
	h.Set("Content-Length", "123")
	return &message.Message{
		StatusCode: 200,
		Header:     http.Header{},
		Content:    message.NewBytesContent(data, h),
	}
}

func bodyOf(t *testing.T, msg *message.Message) string {
	t.Helper()
	s, err := msg.Content.Text(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDecompressionSteps(t *testing.T) {
	const doc = `{"a":1}`
	tests := []struct {
		name     string
		step     pipeline.Step[pipeline.Unit]
		encoding string
		data     []byte
	}{
		{"gzip", UseGzipDecompression[pipeline.Unit](), "gzip", gzipped(t, doc)},
		{"deflate", UseDeflateDecompression[pipeline.Unit](), "deflate", deflated(t, doc)},
		{"brotli", UseBrotliDecompression[pipeline.Unit](), "br", brotlied(t, doc)},
		{"zstd", UseZstdDecompression[pipeline.Unit](), "zstd", zstded(t, doc)},
		{"auto", UseAutoDecompression[pipeline.Unit](nil), "br", brotlied(t, doc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := encodedMessage(tt.encoding, tt.data)
			old := msg.Content
			if !run(t, tt.step, msg) {
				t.Fatal("decompression step should succeed")
			}
			if msg.Content == old {
				t.Fatal("content should be replaced")
			}
			if got := bodyOf(t, msg); got != doc {
				t.Errorf("body: got %q", got)
			}
			if _, err := old.Bytes(context.Background()); !errors.Is(err, message.ErrClosed) {
				t.Errorf("old content should be closed, got %v", err)
			}
			// Content headers are copied verbatim, Content-Encoding included.
			if got := msg.Content.Header.Get("Content-Encoding"); got != tt.encoding {
				t.Errorf("Content-Encoding: got %q, want %q", got, tt.encoding)
			}
			if got := msg.Content.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type: got %q", got)
			}
		})
	}
}

func TestDecompression_NoMatchingEncodingIsNoop(t *testing.T) {
	data := gzipped(t, "payload")
	for _, enc := range []string{"", "br", "identity"} {
		msg := encodedMessage(enc, data)
		if enc == "" {
			msg.Content.Header.Del("Content-Encoding")
		}
		before := msg.Content.Header.Clone()
		old := msg.Content

		if !run(t, UseGzipDecompression[pipeline.Unit](), msg) {
			t.Fatalf("encoding %q: expected success", enc)
		}
		if msg.Content != old {
			t.Fatalf("encoding %q: content must not be replaced", enc)
		}
		if !reflect.DeepEqual(msg.Content.Header, before) {
			t.Errorf("encoding %q: headers changed: %v", enc, msg.Content.Header)
		}
		if got := bodyOf(t, msg); got != string(data) {
			t.Errorf("encoding %q: body changed", enc)
		}
	}
}

func TestDecompression_OnlyFirstTokenMatches(t *testing.T) {
	msg := encodedMessage("br, gzip", gzipped(t, "x"))
	old := msg.Content
	if !run(t, UseGzipDecompression[pipeline.Unit](), msg) {
		t.Fatal("expected success")
	}
	if msg.Content != old {
		t.Error("gzip is not the first token; content must be untouched")
	}
}

func TestDecompression_StripEncoding(t *testing.T) {
	msg := encodedMessage("gzip, br", gzipped(t, "x"))
	if !run(t, UseGzipDecompression[pipeline.Unit](StripEncoding()), msg) {
		t.Fatal("expected success")
	}
	if got := msg.Content.Header.Get("Content-Encoding"); got != "br" {
		t.Errorf("Content-Encoding: got %q, want br", got)
	}
	if got := msg.Content.Header.Get("Content-Length"); got != "" {
		t.Errorf("Content-Length should be dropped, got %q", got)
	}

	msg = encodedMessage("gzip", gzipped(t, "x"))
	run(t, UseGzipDecompression[pipeline.Unit](StripEncoding()), msg)
	if _, ok := msg.Content.Header["Content-Encoding"]; ok {
		t.Error("Content-Encoding should be removed")
	}
}

func TestDecompression_CodecFailureIsFatal(t *testing.T) {
	msg := encodedMessage("gzip", []byte("not gzip at all"))
	_, err := UseGzipDecompression[pipeline.Unit]().Fn(context.Background(), msg, pipeline.Unit{})
	var ce *codec.CodecError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CodecError, got %v", err)
	}
}

func TestDecompression_MaxBytes(t *testing.T) {
	msg := encodedMessage("gzip", gzipped(t, strings.Repeat("a", 1000)))
	_, err := UseGzipDecompression[pipeline.Unit](MaxBytes(10)).Fn(context.Background(), msg, pipeline.Unit{})
	if !errors.Is(err, codec.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestAutoDecompression_UnknownEncoding(t *testing.T) {
	msg := encodedMessage("compress", []byte("lzw"))
	old := msg.Content
	if !run(t, UseAutoDecompression[pipeline.Unit](codec.DefaultRegistry()), msg) {
		t.Fatal("expected success")
	}
	if msg.Content != old {
		t.Error("unknown encoding must leave the content untouched")
	}
}

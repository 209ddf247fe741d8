package httpstages

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dcshock/respipe/codec"
	"github.com/dcshock/respipe/message"
	"github.com/dcshock/respipe/pipeline"
)

type decompressConfig struct {
	stripEncoding bool
	maxBytes      int64
}

// DecompressOption configures a decompression step.
type DecompressOption func(*decompressConfig)

// StripEncoding removes the consumed encoding token from the Content-Encoding
// header of the decompressed content, and drops the now stale Content-Length.
// Without it every original content header is copied verbatim.
func StripEncoding() DecompressOption {
	return func(c *decompressConfig) { c.stripEncoding = true }
}

// MaxBytes limits the decompressed size; larger output is a codec failure
// wrapping codec.ErrTooLarge. n <= 0 means no limit.
func MaxBytes(n int64) DecompressOption {
	return func(c *decompressConfig) { c.maxBytes = n }
}

func newDecompressConfig(opts []DecompressOption) decompressConfig {
	var cfg decompressConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// UseGzipDecompression decompresses the content when it is gzip encoded.
func UseGzipDecompression[A any](opts ...DecompressOption) pipeline.Step[A] {
	return UseDecompression[A](codec.Gzip(), opts...)
}

// UseDeflateDecompression decompresses the content when it is deflate encoded.
func UseDeflateDecompression[A any](opts ...DecompressOption) pipeline.Step[A] {
	return UseDecompression[A](codec.Deflate(), opts...)
}

// UseBrotliDecompression decompresses the content when it is brotli (br) encoded.
func UseBrotliDecompression[A any](opts ...DecompressOption) pipeline.Step[A] {
	return UseDecompression[A](codec.Brotli(), opts...)
}

// UseZstdDecompression decompresses the content when it is zstd encoded.
func UseZstdDecompression[A any](opts ...DecompressOption) pipeline.Step[A] {
	return UseDecompression[A](codec.Zstd(), opts...)
}

// UseDecompression returns a transform step that, when the first
// Content-Encoding token equals dec.Encoding(), reads the full body, decodes it
// with dec and replaces the message content with the result. The previous
// content is closed. When the encoding does not match the step does nothing.
// Codec failures are returned as errors and abort the run.
func UseDecompression[A any](dec codec.Decompressor, opts ...DecompressOption) pipeline.Step[A] {
	cfg := newDecompressConfig(opts)
	dec = codec.WithLimit(dec, cfg.maxBytes)
	token := strings.ToLower(dec.Encoding())
	return pipeline.Transform("decompress:"+token, func(ctx context.Context, msg *message.Message, _ A) error {
		return decompress(ctx, msg, cfg, func(enc string) (codec.Decompressor, bool) {
			return dec, enc == token
		})
	})
}

// UseAutoDecompression is like UseDecompression but picks the decompressor for
// the first Content-Encoding token from reg (codec.DefaultRegistry if nil).
// Unknown encodings are left untouched.
func UseAutoDecompression[A any](reg *codec.Registry, opts ...DecompressOption) pipeline.Step[A] {
	if reg == nil {
		reg = codec.DefaultRegistry()
	}
	cfg := newDecompressConfig(opts)
	return pipeline.Transform("decompress", func(ctx context.Context, msg *message.Message, _ A) error {
		return decompress(ctx, msg, cfg, func(enc string) (codec.Decompressor, bool) {
			d, ok := reg.Lookup(enc)
			if !ok {
				return nil, false
			}
			return codec.WithLimit(d, cfg.maxBytes), true
		})
	})
}

func decompress(ctx context.Context, msg *message.Message, cfg decompressConfig, lookup func(enc string) (codec.Decompressor, bool)) error {
	if msg.Content == nil {
		return nil
	}
	encodings := msg.Content.Encodings()
	if len(encodings) == 0 {
		return nil
	}
	dec, ok := lookup(encodings[0])
	if !ok {
		return nil
	}
	raw, err := body(ctx, msg)
	if err != nil {
		return err
	}
	out, err := dec.Decompress(raw)
	if err != nil {
		return err
	}

	header := msg.Content.Header.Clone()
	if cfg.stripEncoding {
		header.Del("Content-Encoding")
		header.Del("Content-Length")
		if rest := encodings[1:]; len(rest) > 0 {
			header.Set("Content-Encoding", strings.Join(rest, ", "))
		}
	}
	pipeline.LoggerFrom(ctx).Debug("content decompressed",
		zap.String("encoding", encodings[0]),
		zap.Int("compressed_bytes", len(raw)),
		zap.Int("decompressed_bytes", len(out)),
	)
	return msg.ReplaceContent(message.NewBytesContent(out, header))
}

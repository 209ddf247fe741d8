package codec

import (
	"bufio"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Gzip returns a gzip decompressor.
func Gzip() Decompressor {
	return &streamDecompressor{encoding: EncodingGzip, open: func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	}}
}

// Deflate returns a deflate decompressor. Raw deflate streams are accepted, as
// are zlib-wrapped streams (the form RFC 9110 actually names "deflate"), which
// are recognised by their two byte header.
func Deflate() Decompressor {
	return &streamDecompressor{encoding: EncodingDeflate, open: func(r io.Reader) (io.ReadCloser, error) {
		br := bufio.NewReader(r)
		if hdr, err := br.Peek(2); err == nil && isZlibHeader(hdr) {
			return zlib.NewReader(br)
		}
		return flate.NewReader(br), nil
	}}
}

func isZlibHeader(b []byte) bool {
	// CM must be 8 (deflate) and the header checksum must be a multiple of 31.
	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

// Brotli returns a brotli decompressor.
func Brotli() Decompressor {
	return &streamDecompressor{encoding: EncodingBrotli, open: func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	}}
}

// Zstd returns a zstandard decompressor.
func Zstd() Decompressor {
	return &streamDecompressor{encoding: EncodingZstd, open: func(r io.Reader) (io.ReadCloser, error) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}}
}

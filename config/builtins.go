package config

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/dcshock/respipe/codec"
	"github.com/dcshock/respipe/httpstages"
	"github.com/dcshock/respipe/mediatype"
	"github.com/dcshock/respipe/pipeline"
)

// RegisterBuiltins registers the httpstages steps that need no Go callback:
//
//	gzip, deflate, brotli, zstd   decompress a matching Content-Encoding
//	decompress                    decompress any encoding in codec.DefaultRegistry
//	ensure-header                 require header (and value, if set)
//	ensure-content-type           require media_type
//	ensure-json, ensure-xml,
//	ensure-text, ensure-html      require the content type and a parseable body
//	ensure-status                 require one of status
//	ensure-success-status         require a 2xx status
func RegisterBuiltins[A any](r *Registry[A]) {
	r.Register("gzip", decompressor[A](codec.Gzip()))
	r.Register("deflate", decompressor[A](codec.Deflate()))
	r.Register("brotli", decompressor[A](codec.Brotli()))
	r.Register("zstd", decompressor[A](codec.Zstd()))
	r.Register("decompress", func(ref StepRef, cfg *PipelineConfig) (pipeline.Step[A], error) {
		return httpstages.UseAutoDecompression[A](codec.DefaultRegistry(), decompressOptions(ref, cfg)...), nil
	})

	r.Register("ensure-header", func(ref StepRef, _ *PipelineConfig) (pipeline.Step[A], error) {
		if ref.Header == "" {
			return pipeline.Step[A]{}, fmt.Errorf("header required")
		}
		if ref.Value == "" {
			return httpstages.RequireHeader(ref.Header, func([]string, A) {}), nil
		}
		want := ref.Value
		return httpstages.EnsureHeader(ref.Header, func(values []string, _ A) bool {
			for _, v := range values {
				if v == want {
					return true
				}
			}
			return false
		}), nil
	})
	r.Register("ensure-content-type", func(ref StepRef, _ *PipelineConfig) (pipeline.Step[A], error) {
		mt, err := resolveMediaType(ref.MediaType)
		if err != nil {
			return pipeline.Step[A]{}, err
		}
		return httpstages.EnsureContentType[A](mt), nil
	})

	r.RegisterStep("ensure-json", httpstages.EnsureJSONContentAs(func(any, A) {}))
	r.RegisterStep("ensure-xml", httpstages.EnsureXMLContent(func(*etree.Document, A) {}))
	r.RegisterStep("ensure-text", httpstages.EnsureTextContent(func(string, A) {}))
	r.RegisterStep("ensure-html", httpstages.EnsureHTMLContent(func(string, A) {}))

	r.Register("ensure-status", func(ref StepRef, _ *PipelineConfig) (pipeline.Step[A], error) {
		if len(ref.Status) == 0 {
			return pipeline.Step[A]{}, fmt.Errorf("status required")
		}
		return httpstages.EnsureStatus[A](ref.Status...), nil
	})
	r.RegisterStep("ensure-success-status", httpstages.EnsureSuccessStatus[A]())
}

func decompressor[A any](dec codec.Decompressor) Factory[A] {
	return func(ref StepRef, cfg *PipelineConfig) (pipeline.Step[A], error) {
		return httpstages.UseDecompression[A](dec, decompressOptions(ref, cfg)...), nil
	}
}

func decompressOptions(ref StepRef, cfg *PipelineConfig) []httpstages.DecompressOption {
	var opts []httpstages.DecompressOption
	if ref.StripEncoding {
		opts = append(opts, httpstages.StripEncoding())
	}
	if cfg != nil && cfg.MaxDecompressedBytes > 0 {
		opts = append(opts, httpstages.MaxBytes(cfg.MaxDecompressedBytes))
	}
	return opts
}

// resolveMediaType accepts a well-known short name ("json") or a full media type.
func resolveMediaType(s string) (mediatype.MediaType, error) {
	if s == "" {
		return mediatype.MediaType{}, fmt.Errorf("media_type required")
	}
	if mt, ok := mediatype.Lookup(s); ok {
		return mt, nil
	}
	return mediatype.Parse(s)
}

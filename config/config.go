package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dcshock/respipe/pipeline"
)

// PipelineConfig is the root structure for a pipeline definition (e.g. from YAML).
type PipelineConfig struct {
	Name              string   `yaml:"name"`
	ContinueOnFailure bool     `yaml:"continue_on_failure"`
	StepTimeout       Duration `yaml:"step_timeout"`

	// MaxDecompressedBytes bounds the output of every decompression step; 0 means no limit.
	MaxDecompressedBytes int64 `yaml:"max_decompressed_bytes"`

	Steps []StepRef `yaml:"steps"`
}

// StepRef is a single step entry: either a plain name or name + options.
// In YAML, a step can be written as:
//   - gzip
//   - name: ensure-content-type
//     media_type: application/json
//     timeout: 2s
type StepRef struct {
	Name string `yaml:"name"`

	// ensure-header: header name, and optionally a value that one of its values must equal
	Header string `yaml:"header"`
	Value  string `yaml:"value"`

	// ensure-content-type: a media type ("text/html; charset=utf-8") or a well-known name ("json")
	MediaType string `yaml:"media_type"`

	// ensure-status: accepted status codes
	Status []int `yaml:"status"`

	// Timeout applied around the step (e.g. "2s").
	Timeout Duration `yaml:"timeout"`

	// Decompression steps: remove the consumed token from Content-Encoding.
	StripEncoding bool `yaml:"strip_encoding"`
}

// UnmarshalYAML allows a step to be a string (step name only) or a struct.
func (s *StepRef) UnmarshalYAML(value *yaml.Node) error {
	var nameOnly string
	if err := value.Decode(&nameOnly); err == nil {
		s.Name = nameOnly
		return nil
	}
	type raw StepRef
	return value.Decode((*raw)(s))
}

// Duration is a time.Duration that unmarshals from YAML strings (e.g. "60s", "5m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the standard time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// RunOptions returns the pipeline.RunOptions described by cfg. Callers add
// their own Observer and Logger to the result.
func RunOptions(cfg *PipelineConfig) *pipeline.RunOptions {
	if cfg == nil {
		return &pipeline.RunOptions{}
	}
	return &pipeline.RunOptions{
		ContinueOnFailure: cfg.ContinueOnFailure,
		StepTimeout:       cfg.StepTimeout.Duration(),
	}
}

// ParsePipelineConfig parses YAML bytes into a single PipelineConfig.
func ParsePipelineConfig(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SequenceConfig names pipelines that run one after another against the same message.
type SequenceConfig struct {
	Name      string   `yaml:"name"`
	Pipelines []string `yaml:"pipelines"`
}

// MultiPipelineConfig is the root structure for a file that defines multiple pipelines.
// Top-level key is "pipelines"; each value is a pipeline (name + steps).
// Optional "sequences" chain pipelines by name.
type MultiPipelineConfig struct {
	Pipelines map[string]PipelineConfig `yaml:"pipelines"`
	Sequences map[string]SequenceConfig `yaml:"sequences"`
}

// ParseMultiPipelineConfig parses YAML bytes that contain a "pipelines" map from name to pipeline config.
// Example YAML:
//
//	pipelines:
//	  json-api:
//	    steps: [decompress, ensure-success-status, ensure-json]
//	  html-page:
//	    continue_on_failure: true
//	    steps: [gzip, ensure-html]
//	sequences:
//	  checked:
//	    pipelines: [json-api]
func ParseMultiPipelineConfig(data []byte) (*MultiPipelineConfig, error) {
	var cfg MultiPipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a YAML file holding either a "pipelines" map or a single
// pipeline definition. A single pipeline is returned as the only entry of the
// map, keyed by its name.
func LoadFile(path string) (*MultiPipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	multi, err := ParseMultiPipelineConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(multi.Pipelines) > 0 || len(multi.Sequences) > 0 {
		return multi, nil
	}
	single, err := ParsePipelineConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if single.Name == "" {
		return nil, fmt.Errorf("parse %s: no pipelines defined", path)
	}
	return &MultiPipelineConfig{Pipelines: map[string]PipelineConfig{single.Name: *single}}, nil
}

package config

import (
	"fmt"

	"github.com/dcshock/respipe/pipeline"
)

// BuildPipeline builds a pipeline.Pipeline from config and registry. Step names in config must be registered.
// A step with a timeout is wrapped with pipeline.WithTimeout.
func BuildPipeline[A any](reg *Registry[A], cfg *PipelineConfig) (*pipeline.Pipeline[A], error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	p := pipeline.New[A](cfg.Name)
	for i, ref := range cfg.Steps {
		if ref.Name == "" {
			return nil, fmt.Errorf("step %d: name required", i)
		}
		factory, ok := reg.Get(ref.Name)
		if !ok {
			return nil, fmt.Errorf("step %d: %q not in registry", i, ref.Name)
		}
		step, err := factory(ref, cfg)
		if err != nil {
			return nil, fmt.Errorf("step %d (%q): %w", i, ref.Name, err)
		}
		if step.Fn == nil {
			return nil, fmt.Errorf("step %d (%q): factory returned a step without Fn", i, ref.Name)
		}
		if ref.Timeout > 0 {
			step = pipeline.WithTimeout(step, ref.Timeout.Duration())
		}
		p.Add(step)
	}
	return p, nil
}

// BuildAllPipelines builds a pipeline.Pipeline for each entry in multi. Keys are pipeline names.
// If a pipeline config's Name is empty, the map key is used as the pipeline name.
func BuildAllPipelines[A any](reg *Registry[A], multi *MultiPipelineConfig) (map[string]*pipeline.Pipeline[A], error) {
	if multi == nil {
		return nil, fmt.Errorf("MultiPipelineConfig is nil")
	}
	out := make(map[string]*pipeline.Pipeline[A], len(multi.Pipelines))
	for name := range multi.Pipelines {
		p, err := buildNamed(reg, multi, name)
		if err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

func buildNamed[A any](reg *Registry[A], multi *MultiPipelineConfig, name string) (*pipeline.Pipeline[A], error) {
	cfg, ok := multi.Pipelines[name]
	if !ok {
		return nil, fmt.Errorf("pipeline %q not defined", name)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	p, err := BuildPipeline(reg, &cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", name, err)
	}
	return p, nil
}

// BuildSequence builds a pipeline.Sequence from a sequence config by looking up the named pipelines
// in the built pipeline map. Each name in seq.Pipelines must exist in builtPipelines and appear once,
// since a pipeline can only be executed once.
func BuildSequence[A any](seq *SequenceConfig, builtPipelines map[string]*pipeline.Pipeline[A]) (*pipeline.Sequence[A], error) {
	if seq == nil {
		return nil, fmt.Errorf("SequenceConfig is nil")
	}
	seen := make(map[string]bool, len(seq.Pipelines))
	out := make([]*pipeline.Pipeline[A], 0, len(seq.Pipelines))
	for i, name := range seq.Pipelines {
		p, ok := builtPipelines[name]
		if !ok {
			return nil, fmt.Errorf("sequence %q pipeline %d: %q not in built pipelines", seq.Name, i, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("sequence %q pipeline %d: %q listed twice", seq.Name, i, name)
		}
		seen[name] = true
		out = append(out, p)
	}
	return &pipeline.Sequence[A]{Name: seq.Name, Pipelines: out}, nil
}

// BuildAllSequences builds a pipeline.Sequence for each entry in multi.Sequences.
// Every sequence gets freshly built pipelines, so sequences never share a pipeline.
func BuildAllSequences[A any](reg *Registry[A], multi *MultiPipelineConfig) (map[string]*pipeline.Sequence[A], error) {
	if multi == nil || len(multi.Sequences) == 0 {
		return map[string]*pipeline.Sequence[A]{}, nil
	}
	out := make(map[string]*pipeline.Sequence[A], len(multi.Sequences))
	for name, cfg := range multi.Sequences {
		if cfg.Name == "" {
			cfg.Name = name
		}
		built := make(map[string]*pipeline.Pipeline[A], len(cfg.Pipelines))
		for _, pn := range cfg.Pipelines {
			if _, ok := built[pn]; ok {
				continue
			}
			p, err := buildNamed(reg, multi, pn)
			if err != nil {
				return nil, fmt.Errorf("sequence %q: %w", name, err)
			}
			built[pn] = p
		}
		seq, err := BuildSequence(&cfg, built)
		if err != nil {
			return nil, fmt.Errorf("sequence %q: %w", name, err)
		}
		out[name] = seq
	}
	return out, nil
}

// Package config provides a step registry and human-readable pipeline configuration.
//
// Register step factories by name (RegisterBuiltins adds the httpstages steps),
// then define pipelines in YAML (or structs) that reference those names and
// optional modifiers:
//
//	pipelines:
//	  json-api:
//	    continue_on_failure: false
//	    step_timeout: 5s
//	    max_decompressed_bytes: 10485760
//	    steps:
//	      - decompress
//	      - ensure-success-status
//	      - name: ensure-content-type
//	        media_type: application/json
//	      - name: ensure-header
//	        header: X-Request-Id
//	      - ensure-json
//
// Build a pipeline with BuildPipeline(registry, config) and run it with
// RunOptions(config). Pipelines are single-use, so build one per message.
package config

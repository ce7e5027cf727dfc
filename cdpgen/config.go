package cdpgen

import (
	"github.com/probelab/cdp/cdpgen/golang"
	"github.com/probelab/cdp/cdpgen/sink"
)

// Config holds the configuration for binding generation.
type Config struct {
	// BrowserSchema is the path to the browser protocol schema
	// (browser_protocol.json).
	BrowserSchema string

	// JSSchema is the path to the JavaScript protocol schema
	// (js_protocol.json).
	JSSchema string

	// OutDir is the directory generated files are written to. Ignored when
	// Sink is set.
	OutDir string

	// Package is the output package name (default: "protocol").
	Package string

	// Sink overrides the filesystem destination. Useful for tests.
	Sink sink.OutputSink
}

// Warning is a non-fatal finding reported alongside generated output.
type Warning struct {
	Code    string
	Message string
}

// Result describes a completed generation run.
type Result struct {
	// Files lists the written file paths, protocol.go first, then one file
	// per domain in schema order.
	Files []string

	// Borrows is the set of generated types that can alias decoded string
	// memory, keyed by qualified name.
	Borrows map[golang.QualifiedName]bool

	// Warnings carries non-fatal findings.
	Warnings []Warning
}

// applyConfigDefaults returns a copy of cfg with defaults filled in.
func applyConfigDefaults(cfg *Config) *Config {
	result := *cfg
	if result.Package == "" {
		result.Package = "protocol"
	}
	return &result
}

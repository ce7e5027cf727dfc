// Package cdpgen compiles DevTools protocol schemas into Go bindings.
//
// A generation run loads the two schema halves, resolves every type
// reference, computes which generated types can alias decoded string memory,
// emits one source file per protocol domain, formats each file, and hands
// the results to an output sink. Any failure before the write phase aborts
// the run with nothing written.
package cdpgen

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/tools/imports"

	"github.com/probelab/cdp/cdpgen/definition"
	"github.com/probelab/cdp/cdpgen/golang"
	"github.com/probelab/cdp/cdpgen/sink"
)

// Generate runs the full pipeline described by cfg and writes the bindings
// to the configured sink.
func Generate(ctx context.Context, cfg *Config) (*Result, error) {
	cfg = applyConfigDefaults(cfg)

	out := cfg.Sink
	if out == nil {
		if cfg.OutDir == "" {
			return nil, fmt.Errorf("cdpgen: OutDir or Sink is required")
		}
		out = sink.NewFilesystemSink(cfg.OutDir)
	}

	def, err := loadDefinition(cfg)
	if err != nil {
		return nil, err
	}
	if err := def.Resolve(); err != nil {
		return nil, err
	}

	result := &Result{Borrows: golang.ComputeBorrows(def)}
	if len(def.Domains) == 0 {
		result.Warnings = append(result.Warnings, Warning{
			Code:    "empty-schema",
			Message: "schemas declare no domains",
		})
	}

	emitter := golang.NewEmitter(def, cfg.Package, result.Borrows)

	// Emit and format everything before the first write so a bad domain
	// never leaves a partial output tree behind.
	type outputFile struct {
		path    string
		content []byte
	}
	files := []outputFile{{path: "protocol.go", content: emitter.EmitProtocol()}}
	for i := range def.Domains {
		domain := &def.Domains[i]
		src, err := emitter.EmitDomain(domain)
		if err != nil {
			return nil, fmt.Errorf("cdpgen: emitting domain '%s': %w", domain.Name, err)
		}
		files = append(files, outputFile{path: golang.FileName(domain.Name), content: src})
	}
	for i := range files {
		formatted, err := imports.Process(files[i].path, files[i].content, nil)
		if err != nil {
			return nil, fmt.Errorf("cdpgen: formatting %s: %w", files[i].path, err)
		}
		files[i].content = formatted
	}

	for _, file := range files {
		if err := out.WriteFile(ctx, file.path, file.content); err != nil {
			return nil, fmt.Errorf("cdpgen: writing %s: %w", file.path, err)
		}
		result.Files = append(result.Files, file.path)
		slog.Debug("wrote binding file", "path", file.path, "bytes", len(file.content))
	}

	slog.Info("generated protocol bindings",
		"version", def.Version.String(),
		"domains", len(def.Domains),
		"files", len(result.Files))
	return result, nil
}

// loadDefinition reads and merges the configured schema halves. With only
// one path set, that half is loaded alone.
func loadDefinition(cfg *Config) (*definition.Definition, error) {
	switch {
	case cfg.BrowserSchema != "" && cfg.JSSchema != "":
		browser, err := os.ReadFile(cfg.BrowserSchema)
		if err != nil {
			return nil, fmt.Errorf("cdpgen: reading browser schema: %w", err)
		}
		js, err := os.ReadFile(cfg.JSSchema)
		if err != nil {
			return nil, fmt.Errorf("cdpgen: reading js schema: %w", err)
		}
		return definition.Load(browser, js)
	case cfg.BrowserSchema != "":
		data, err := os.ReadFile(cfg.BrowserSchema)
		if err != nil {
			return nil, fmt.Errorf("cdpgen: reading browser schema: %w", err)
		}
		return definition.Parse(data)
	case cfg.JSSchema != "":
		data, err := os.ReadFile(cfg.JSSchema)
		if err != nil {
			return nil, fmt.Errorf("cdpgen: reading js schema: %w", err)
		}
		return definition.Parse(data)
	default:
		return nil, fmt.Errorf("cdpgen: at least one schema path is required")
	}
}

package cdpgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/probelab/cdp/cdpgen/golang"
	"github.com/probelab/cdp/cdpgen/sink"
)

const browserSchema = `{
  "version": {"major": "1", "minor": "3"},
  "domains": [
    {
      "domain": "Page",
      "types": [
        {"id": "FrameId", "description": "Unique frame identifier.", "type": "string"},
        {
          "id": "Frame",
          "type": "object",
          "properties": [
            {"name": "id", "$ref": "FrameId"},
            {"name": "parent", "$ref": "Frame", "optional": true},
            {"name": "loaderId", "$ref": "Network.LoaderId"},
            {"name": "clip", "type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4},
            {"name": "extra", "type": "object"}
          ]
        },
        {"id": "TransitionType", "type": "string", "enum": ["link", "typed", "-0"]},
        {
          "id": "Viewport",
          "type": "object",
          "properties": [
            {"name": "x", "type": "number"},
            {"name": "y", "type": "number"}
          ]
        }
      ],
      "commands": [
        {
          "name": "navigate",
          "parameters": [{"name": "url", "type": "string"}],
          "returns": [{"name": "frameId", "$ref": "FrameId"}]
        },
        {"name": "close", "deprecated": true, "description": "Deprecated, use Target.closeTarget instead."}
      ],
      "events": [
        {"name": "loadEventFired", "parameters": [{"name": "timestamp", "type": "number"}]}
      ]
    },
    {
      "domain": "Network",
      "types": [{"id": "LoaderId", "type": "string"}]
    }
  ]
}`

const jsSchema = `{
  "version": {"major": "1", "minor": "3"},
  "domains": [
    {
      "domain": "Runtime",
      "types": [{"id": "ScriptId", "type": "string"}],
      "commands": [
        {"name": "evaluate", "parameters": [{"name": "expression", "type": "string"}]}
      ]
    }
  ]
}`

func writeSchemas(t *testing.T, browser, js string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	browserPath := filepath.Join(dir, "browser_protocol.json")
	jsPath := filepath.Join(dir, "js_protocol.json")
	if err := os.WriteFile(browserPath, []byte(browser), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsPath, []byte(js), 0644); err != nil {
		t.Fatal(err)
	}
	return browserPath, jsPath
}

func TestGenerate(t *testing.T) {
	browserPath, jsPath := writeSchemas(t, browserSchema, jsSchema)
	out := sink.NewMemorySink()

	result, err := Generate(context.Background(), &Config{
		BrowserSchema: browserPath,
		JSSchema:      jsPath,
		Sink:          out,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	wantFiles := []string{"protocol.go", "page.go", "network.go", "runtime.go"}
	if len(result.Files) != len(wantFiles) {
		t.Fatalf("Files = %v, want %v", result.Files, wantFiles)
	}
	for i, want := range wantFiles {
		if result.Files[i] != want {
			t.Errorf("Files[%d] = %q, want %q", i, result.Files[i], want)
		}
	}

	protocol := string(out.Get("protocol.go"))
	if !strings.Contains(protocol, `const Version = "1.3"`) {
		t.Errorf("protocol.go missing version constant:\n%s", protocol)
	}
	if !strings.Contains(protocol, "package protocol") {
		t.Error("protocol.go must use the default package name")
	}

	page := string(out.Get("page.go"))
	for _, want := range []string{
		"type PageFrame struct",
		"type PageTransitionType int",
		"func ParsePageTransitionType(s string) (PageTransitionType, error)",
		"PageTransitionTypeNegative0",
		"[4]float64",
		"func (v PageFrame) Detach() PageFrame",
		`func (PageNavigateCommand) CommandName() string { return "Page.navigate" }`,
		"func (PageNavigateCommand) Reply() *PageNavigateResponse",
		`func (PageLoadEventFiredEvent) EventName() string { return "Page.loadEventFired" }`,
		"Deprecated: use Target.closeTarget instead.",
		"func DecodePageCommand(method string, params json.RawMessage) (cdp.Command, error)",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page.go missing %q", want)
		}
	}

	runtime := string(out.Get("runtime.go"))
	if !strings.Contains(runtime, `func (RuntimeEvaluateCommand) CommandName() string { return "Runtime.evaluate" }`) {
		t.Error("runtime.go missing the js-half command")
	}

	if !result.Borrows[golang.QualifiedName{Domain: "Page", Name: "Frame"}] {
		t.Error("expected Page.Frame to borrow")
	}
	if result.Borrows[golang.QualifiedName{Domain: "Page", Name: "Viewport"}] {
		t.Error("expected Page.Viewport not to borrow")
	}
}

func TestGenerateSingleSchema(t *testing.T) {
	browserPath, _ := writeSchemas(t, browserSchema, jsSchema)
	out := sink.NewMemorySink()

	result, err := Generate(context.Background(), &Config{
		BrowserSchema: browserPath,
		Package:       "cdproto",
		Sink:          out,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(result.Files) != 3 {
		t.Fatalf("Files = %v, want 3 entries", result.Files)
	}
	if !strings.Contains(string(out.Get("page.go")), "package cdproto") {
		t.Error("expected the configured package name")
	}
}

func TestGenerateVersionMismatchWritesNothing(t *testing.T) {
	mismatched := strings.Replace(jsSchema, `"minor": "3"`, `"minor": "4"`, 1)
	browserPath, jsPath := writeSchemas(t, browserSchema, mismatched)
	out := sink.NewMemorySink()

	_, err := Generate(context.Background(), &Config{
		BrowserSchema: browserPath,
		JSSchema:      jsPath,
		Sink:          out,
	})
	if err == nil {
		t.Fatal("expected version mismatch error")
	}
	if !strings.Contains(err.Error(), "version mismatch") {
		t.Errorf("error = %v, want version mismatch", err)
	}
	if len(out.Files()) != 0 {
		t.Errorf("expected no files written, got %v", out.Files())
	}
}

func TestGenerateUnresolvedReferenceWritesNothing(t *testing.T) {
	broken := strings.Replace(browserSchema, `"$ref": "Network.LoaderId"`, `"$ref": "Network.Missing"`, 1)
	browserPath, jsPath := writeSchemas(t, broken, jsSchema)
	out := sink.NewMemorySink()

	_, err := Generate(context.Background(), &Config{
		BrowserSchema: browserPath,
		JSSchema:      jsPath,
		Sink:          out,
	})
	if err == nil {
		t.Fatal("expected unresolved reference error")
	}
	if len(out.Files()) != 0 {
		t.Errorf("expected no files written, got %v", out.Files())
	}
}

func TestGenerateRequiresSchemaAndDestination(t *testing.T) {
	if _, err := Generate(context.Background(), &Config{OutDir: t.TempDir()}); err == nil {
		t.Error("expected error when no schema path is set")
	}
	browserPath, _ := writeSchemas(t, browserSchema, jsSchema)
	if _, err := Generate(context.Background(), &Config{BrowserSchema: browserPath}); err == nil {
		t.Error("expected error when no destination is set")
	}
}

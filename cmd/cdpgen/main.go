package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/probelab/cdp/cdpgen"
	"github.com/probelab/cdp/cdpgen/definition"
	"github.com/probelab/cdp/cdpgen/golang"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate Go protocol bindings from schema files."`
	Check   CheckCmd   `cmd:"" help:"Load and resolve schemas without generating files."`

	Verbose bool `help:"Enable debug logging." short:"v"`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type GenCmd struct {
	BrowserSchema string `arg:"" help:"Path to browser_protocol.json."`
	JSSchema      string `arg:"" optional:"" help:"Path to js_protocol.json."`
	Out           string `help:"Output directory for generated files." default:"./protocol"`
	Package       string `help:"Output package name." default:"protocol"`
}

func (c *GenCmd) Run() error {
	result, err := cdpgen.Generate(context.Background(), &cdpgen.Config{
		BrowserSchema: c.BrowserSchema,
		JSSchema:      c.JSSchema,
		OutDir:        c.Out,
		Package:       c.Package,
	})
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		slog.Warn(w.Message, "code", w.Code)
	}
	fmt.Printf("wrote %d files to %s\n", len(result.Files), c.Out)
	return nil
}

type CheckCmd struct {
	BrowserSchema string `arg:"" help:"Path to browser_protocol.json."`
	JSSchema      string `arg:"" optional:"" help:"Path to js_protocol.json."`
}

func (c *CheckCmd) Run() error {
	def, err := loadSchemas(c.BrowserSchema, c.JSSchema)
	if err != nil {
		return err
	}
	if err := def.Resolve(); err != nil {
		return err
	}

	borrows := golang.ComputeBorrows(def)
	var commands, events, types int
	for i := range def.Domains {
		commands += len(def.Domains[i].Commands)
		events += len(def.Domains[i].Events)
		types += len(def.Domains[i].TypeDefs)
	}
	borrowing := 0
	for _, b := range borrows {
		if b {
			borrowing++
		}
	}

	fmt.Printf("protocol %s: %d domains, %d types, %d commands, %d events\n",
		def.Version.String(), len(def.Domains), types, commands, events)
	fmt.Printf("%d generated types will carry a Detach method\n", borrowing)
	return nil
}

func loadSchemas(browserPath, jsPath string) (*definition.Definition, error) {
	browser, err := os.ReadFile(browserPath)
	if err != nil {
		return nil, err
	}
	if jsPath == "" {
		return definition.Parse(browser)
	}
	js, err := os.ReadFile(jsPath)
	if err != nil {
		return nil, err
	}
	return definition.Load(browser, js)
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("cdpgen"),
		kong.Description("DevTools protocol binding generator."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vk/pipedox/internal/ctxlog"
	"github.com/vk/pipedox/internal/defaults"
	"github.com/vk/pipedox/internal/document"
	"github.com/vk/pipedox/internal/hcldecl"
	"github.com/vk/pipedox/internal/pipeline"
	"github.com/vk/pipedox/internal/registry"
)

// App wires the registry, declarations and dispatcher together and drives
// one extraction run.
type App struct {
	outW io.Writer
	cfg  *Config
}

// NewApp creates an App writing its results to outW.
func NewApp(outW io.Writer, cfg *Config) *App {
	return &App{outW: outW, cfg: cfg}
}

// Run performs one extraction: build the engine, open the document, resolve
// the requested outputs, print them as JSON.
func (a *App) Run(ctx context.Context) error {
	logger := newLogger(a.cfg.LogLevel, a.cfg.LogFormat, os.Stderr)
	ctx = ctxlog.WithLogger(ctx, logger)

	reg := registry.New()
	reg.Install(coreModules()...)
	logger.Debug("Operators registered.", "operators", reg.Names())

	set := defaults.Set()
	if a.cfg.PipelinesPath != "" {
		userSet, err := hcldecl.NewLoader(reg).LoadPath(a.cfg.PipelinesPath)
		if err != nil {
			return fmt.Errorf("loading pipeline declarations: %w", err)
		}
		set = defaults.Merge(set, userSet)
		logger.Info("User pipeline declarations loaded.", "path", a.cfg.PipelinesPath, "pipelines", len(userSet))
	}

	dispatcher := pipeline.NewDispatcher(set, reg)
	// Malformed declarations must fail the run up front, not on first use of
	// the affected document type.
	if err := dispatcher.BuildAll(ctx); err != nil {
		return fmt.Errorf("building pipelines: %w", err)
	}

	doc, err := document.Open(ctx, dispatcher, a.cfg.DocPath, document.Options{Type: a.cfg.DocType})
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	logger.Info("Document opened.", "document_id", doc.ID(), "type", doc.Type())

	if len(a.cfg.Outputs) == 0 {
		return json.NewEncoder(a.outW).Encode(map[string]any{
			"document_type": doc.Type(),
			"outputs":       doc.Outputs(),
		})
	}

	results := make(map[string]any, len(a.cfg.Outputs))
	for _, name := range a.cfg.Outputs {
		value, err := doc.Get(ctx, name)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", name, err)
		}
		if seq, ok := value.(*pipeline.Seq); ok {
			if value, err = seq.Collect(); err != nil {
				return fmt.Errorf("resolving %q: %w", name, err)
			}
		}
		results[name] = value
	}

	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

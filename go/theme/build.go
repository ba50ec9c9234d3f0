package theme

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/wotr-tools/blockweights/go/config"
	"github.com/wotr-tools/blockweights/go/processor"
	"github.com/wotr-tools/blockweights/go/schem"
	"github.com/wotr-tools/blockweights/go/weights"
)

// GridError reports a template that could not be read at all.
type GridError struct {
	Processor int
	Path      string
	Err       error
}

func (e *GridError) Error() string {
	return fmt.Sprintf("processor %d (%s): %v", e.Processor, e.Path, e.Err)
}

func (e *GridError) Unwrap() error { return e.Err }

// Recorder receives intermediate results as a theme is built.
type Recorder interface {
	RecordGrid(processor int, path string, g weights.Grid, res weights.GridResult) error
	RecordFailure(processor int, path string, err error) error
}

// GridReport is the outcome of one template.
type GridReport struct {
	Processor int            `json:"processor"`
	File      string         `json:"file"`
	Used      bool           `json:"used"`
	Report    weights.Report `json:"report"`
	Error     string         `json:"error,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Result is everything a build produced. Document holds only the rules of
// templates that passed validation.
type Result struct {
	Theme      string                `json:"theme"`
	Grids      []GridReport          `json:"grids"`
	Missing    []int                 `json:"missing,omitempty"`
	Unexpected []string              `json:"unexpected,omitempty"`
	Document   *processor.Document   `json:"-"`
	Rules      []weights.Replacement `json:"-"`
}

// Builder turns a theme folder into a processor document.
type Builder struct {
	Config config.Config
	Logger *slog.Logger
	// Recorder, when set, is given every grid processed.
	Recorder Recorder
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

// Build processes every template in dir in ascending processor order.
// Templates that cannot be read or fail validation are reported and left
// out; only an unreadable folder is an error.
func (b *Builder) Build(dir string) (*Result, error) {
	cfg := b.Config
	name := filepath.Base(filepath.Clean(dir))
	log := b.logger().With("theme", name)

	found, err := Discover(dir, cfg.RequiredProcessors, cfg.MaxProcessors)
	if err != nil {
		return nil, err
	}
	res := &Result{Theme: name, Missing: found.Missing, Unexpected: found.Unexpected}
	for _, n := range found.Missing {
		log.Warn("missing required processor", "file", fmt.Sprintf("processor%d.schem", n))
	}
	for _, f := range found.Unexpected {
		log.Warn("ignoring unexpected schematic", "file", f)
	}

	var rules weights.RuleSet
	for _, src := range found.Sources {
		res.Grids = append(res.Grids, b.buildGrid(log, src, &rules))
	}
	res.Rules = rules.Rules()

	doc, errs := processor.Assemble(res.Rules, cfg.ProcessorType, cfg.Features)
	for _, err := range errs {
		log.Warn("skipping attachment", "err", err)
	}
	res.Document = doc
	log.Info("built theme", "grids", len(res.Grids), "replacements", rules.Len())
	return res, nil
}

func (b *Builder) buildGrid(log *slog.Logger, src Source, rules *weights.RuleSet) GridReport {
	log = log.With("processor", src.Processor, "file", filepath.Base(src.Path))
	gr := GridReport{Processor: src.Processor, File: filepath.Base(src.Path)}

	s, err := schem.Load(src.Path)
	if err != nil {
		gerr := &GridError{Processor: src.Processor, Path: src.Path, Err: err}
		log.Error("unreadable template", "err", err)
		gr.Error = gerr.Error()
		b.record(log, func(r Recorder) error { return r.RecordFailure(src.Processor, src.Path, gerr) })
		return gr
	}
	for _, err := range s.Skipped {
		log.Warn("skipping palette entry", "err", err)
	}
	if b.Config.DataVersion > 0 {
		s.Migrate(b.Config.DataVersion)
	}

	out := weights.Extract(s, b.Config.Options(src.Processor))
	gr.Report = out.Report
	for _, m := range out.Report.Mismatches {
		log.Warn("placeholder mismatch", "column", m.Column, "expected", m.Expected, "actual", m.Actual, "missing", m.Missing)
	}
	b.record(log, func(r Recorder) error { return r.RecordGrid(src.Processor, src.Path, s, out) })

	gr.Used = rules.Add(out)
	if !gr.Used {
		log.Warn("skipping template with incorrect placeholder blocks")
		return gr
	}
	for _, err := range out.ColumnErrs() {
		log.Warn("dropping column weights", "err", err)
		gr.Warnings = append(gr.Warnings, err.Error())
	}
	log.Debug("extracted template", "columns", len(out.Columns))
	return gr
}

// record reports recorder failures without affecting the build.
func (b *Builder) record(log *slog.Logger, fn func(Recorder) error) {
	if b.Recorder == nil {
		return
	}
	if err := fn(b.Recorder); err != nil {
		log.Error("recording artifacts", "err", err)
	}
}

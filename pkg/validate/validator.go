package validate

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adammathes/fntverify/pkg/config"
	"github.com/adammathes/fntverify/pkg/document"
	"github.com/adammathes/fntverify/pkg/entity"
	"github.com/adammathes/fntverify/pkg/normalize"
	"github.com/adammathes/fntverify/pkg/parse"
	"github.com/adammathes/fntverify/pkg/report"
	"github.com/adammathes/fntverify/pkg/tags"
)

// Options configures validation behavior.
type Options struct {
	// Logger receives per-stage debug output. The zero value logs nothing.
	Logger *zerolog.Logger

	// Jobs bounds the number of documents validated at once by
	// ValidateDir. Zero or less means GOMAXPROCS.
	Jobs int

	// Extensions overrides the file extensions ValidateDir selects.
	Extensions []string
}

// Validator runs the full pipeline over documents. It keeps no state
// between documents and is safe for concurrent use.
type Validator struct {
	cfg        *config.Config
	log        zerolog.Logger
	jobs       int
	extensions []string

	normalizer *normalize.Normalizer
	checker    *entity.Checker
	tags       *tags.Validator
}

// New builds a Validator from cfg. It fails only when cfg carries an
// invalid non-closing tag pattern.
func New(cfg *config.Config, opts Options) (*Validator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	patterns, err := cfg.Patterns()
	if err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	jobs := opts.Jobs
	if jobs == 0 {
		jobs = cfg.Jobs
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = cfg.Extensions
	}
	return &Validator{
		cfg:        cfg,
		log:        log,
		jobs:       jobs,
		extensions: exts,
		normalizer: normalize.New(cfg.PageMarker, cfg.FootnotePrefixes),
		checker:    entity.NewChecker(cfg.CustomEntities),
		tags:       tags.NewValidator(cfg.SupportedTags, patterns, cfg.Relationships),
	}, nil
}

// Config returns the configuration the Validator was built from.
func (v *Validator) Config() *config.Config { return v.cfg }

// Validate runs every check on doc and returns its report. Parser
// diagnostics come first, then entity diagnostics, then tag diagnostics.
func (v *Validator) Validate(doc *document.Document) *report.Report {
	log := v.log.With().Str("document", doc.Name).Logger()
	r := report.NewReport()

	var entityDiags []report.Diagnostic
	var g errgroup.Group

	// The entity checker reads only the raw text, so it runs alongside
	// the cleaning and parsing stages.
	g.Go(func() error {
		entityDiags = v.checker.Check(doc)
		return nil
	})

	// Phase 1: normalize, sanitize and resolve into parseable content
	content := v.normalizer.Normalize(doc.Text())
	content = normalize.SanitizeAmpersands(content)
	content = entity.Resolve(content)

	// Phase 2: strict parse
	tree, parseDiags := parse.Parse(content)
	log.Debug().Str("stage", "parse").Int("diagnostics", len(parseDiags)).Msg("stage finished")

	// The checker goroutine always returns nil.
	_ = g.Wait()
	log.Debug().Str("stage", "entities").Int("diagnostics", len(entityDiags)).Msg("stage finished")

	r.Add(parseDiags...)
	r.Add(entityDiags...)

	// Phase 3: tag rules, only with a tree
	if tree != nil {
		tagDiags := v.tags.Validate(tree)
		log.Debug().Str("stage", "tags").Int("diagnostics", len(tagDiags)).Msg("stage finished")
		r.Add(tagDiags...)
	}
	return r
}

// ValidateString validates text under the given document name.
func (v *Validator) ValidateString(name, text string) *report.Report {
	return v.Validate(document.New(name, text))
}

// Result is the outcome for one file.
type Result struct {
	Path     string
	Document *document.Document
	Report   *report.Report
}

// File adapts the result for the report writers.
func (res Result) File() report.File {
	f := report.File{Name: res.Path, Report: res.Report}
	if res.Document != nil {
		f.Lines = res.Document.Lines()
	}
	return f
}

// ValidateFile reads and validates one file. A file that cannot be read
// yields a report with a single structural diagnostic rather than an
// error.
func (v *Validator) ValidateFile(path string) Result {
	doc, err := document.Read(path)
	if err != nil {
		v.log.Warn().Err(err).Str("path", path).Msg("cannot read document")
		r := report.NewReport()
		r.AddAt(report.StructuralError, report.CheckDocumentAccess, 0, 0, err.Error())
		return Result{Path: path, Report: r}
	}
	return Result{Path: path, Document: doc, Report: v.Validate(doc)}
}

// Files returns the results' report files in order.
func Files(results []Result) []report.File {
	files := make([]report.File, len(results))
	for i, res := range results {
		files[i] = res.File()
	}
	return files
}

// Clean reports whether no result carries a diagnostic.
func Clean(results []Result) bool {
	for _, res := range results {
		if !res.Report.IsClean() {
			return false
		}
	}
	return true
}

// ValidatePaths validates the given files on the worker pool and returns
// one result per path, in the order given.
func (v *Validator) ValidatePaths(ctx context.Context, paths []string) ([]Result, error) {
	return v.run(ctx, paths)
}

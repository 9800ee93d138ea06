// Package engine orchestrates validation runs: it opens the target file,
// preloads the gene catalogs, executes every registered rule, and
// assembles the frozen report.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
	"github.com/cellannotation/capval/rule"
)

// Validator coordinates schema validation of annotated expression files.
// A Validator is safe for concurrent use; each Validate call works on its
// own file view and report.
type Validator struct {
	options  *capval.Options
	registry *rule.Registry
	provider *catalog.Provider
	log      *zap.Logger
	metrics  *capval.Metrics

	catalogOnce sync.Once
	catalogs    catalog.Set
	catalogErr  error
}

// New creates a Validator with the default rule registry and the given
// options.
func New(opts ...capval.Option) *Validator {
	options := capval.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	v := &Validator{
		options: options,
		log:     options.Logger,
		metrics: options.Metrics,
	}

	provOpts := []catalog.ProviderOption{catalog.WithLogger(v.log)}
	if options.CatalogDir != "" {
		provOpts = append(provOpts, catalog.WithDir(options.CatalogDir))
	}
	if v.metrics != nil {
		provOpts = append(provOpts, catalog.WithLookupHooks(
			v.metrics.RecordCatalogHit, v.metrics.RecordCatalogMiss))
	}
	v.provider = catalog.NewProvider(provOpts...)
	v.registry = rule.Default(options)

	return v
}

// Registry returns the rule registry in execution order.
func (v *Validator) Registry() *rule.Registry {
	return v.registry
}

// Options returns the validator's configuration.
func (v *Validator) Options() *capval.Options {
	return v.options
}

// Metrics returns the metrics collector, or nil when none was configured.
func (v *Validator) Metrics() *capval.Metrics {
	return v.metrics
}

// Validate opens the file at path and checks it against every registered
// rule. The returned report lists every violation found; a report with no
// error-severity violations means the file is valid.
//
// An unreadable file or an unavailable catalog is a run failure: Validate
// returns a non-nil error and no report. Schema violations never surface
// as errors.
func (v *Validator) Validate(ctx context.Context, path string) (*capval.Report, error) {
	view, err := anndata.Open(path)
	if err != nil {
		v.log.Error("cannot open file", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer view.Close()

	return v.run(ctx, view)
}

// ValidateContainer checks an already-open container, identified by name
// in the report. The caller retains ownership of the container.
func (v *Validator) ValidateContainer(ctx context.Context, c anndata.Container, name string) (*capval.Report, error) {
	return v.run(ctx, anndata.OpenContainer(c, name))
}

// ValidateBatch validates several files concurrently. Results are ordered
// to match paths. The first run failure cancels the remaining work and is
// returned; schema violations do not.
func (v *Validator) ValidateBatch(ctx context.Context, paths []string) ([]*capval.Report, error) {
	reports := make([]*capval.Report, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			report, err := v.Validate(gctx, path)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (v *Validator) run(ctx context.Context, view *anndata.FileView) (*capval.Report, error) {
	start := time.Now()

	catalogs, err := v.loadCatalogs()
	if err != nil {
		v.log.Error("catalog load failed", zap.Error(err))
		return nil, err
	}

	if v.metrics != nil {
		view.SetChunkObserver(v.metrics.RecordChunk)
	}

	report := capval.NewReport(view.Path())
	nObs, nVar := view.Shape()
	v.log.Debug("starting validation",
		zap.String("source", view.Path()),
		zap.Int("n_obs", nObs),
		zap.Int("n_var", nVar),
		zap.Strings("rules", v.registry.Names()))

	for _, r := range v.registry.Rules() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ruleStart := time.Now()
		violations := v.runRule(ctx, r, view, catalogs)
		report.AppendAll(violations)

		if v.metrics != nil {
			v.metrics.RecordRule(r.Name(), time.Since(ruleStart), len(violations))
			for _, viol := range violations {
				v.metrics.RecordViolation(viol.Severity)
			}
		}
		v.log.Debug("rule finished",
			zap.String("rule", r.Name()),
			zap.Int("violations", len(violations)),
			zap.Duration("elapsed", time.Since(ruleStart)))
	}

	report.Freeze()
	if v.metrics != nil {
		v.metrics.RecordValidation(time.Since(start), report.IsValid())
	}
	v.log.Info("validation finished",
		zap.String("source", view.Path()),
		zap.Bool("valid", report.IsValid()),
		zap.Int("errors", report.ErrorCount()),
		zap.Int("warnings", report.WarningCount()),
		zap.Duration("elapsed", time.Since(start)))

	return report, nil
}

// runRule executes one rule, converting a panic into a single error
// violation so one broken rule cannot take down the run or suppress the
// findings of the others.
func (v *Validator) runRule(ctx context.Context, r rule.Rule, view *anndata.FileView, catalogs catalog.Set) (violations []capval.Violation) {
	defer func() {
		if rec := recover(); rec != nil {
			v.log.Error("rule panicked",
				zap.String("rule", r.Name()),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			violations = []capval.Violation{
				capval.ErrorViolation(r.Name()).
					Message(fmt.Sprintf("rule %s failed: %v", r.Name(), rec)).
					Build(),
			}
		}
	}()
	return r.Check(ctx, view, catalogs)
}

// loadCatalogs loads every organism catalog once per Validator and shares
// the set across runs.
func (v *Validator) loadCatalogs() (catalog.Set, error) {
	v.catalogOnce.Do(func() {
		v.catalogs, v.catalogErr = v.provider.LoadAll()
	})
	return v.catalogs, v.catalogErr
}

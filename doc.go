// Package capval validates annotated expression matrices (AnnData .h5ad
// files) against the Cell Annotation Platform upload schema.
//
// The validator checks every upload requirement independently and returns a
// complete list of violations, not just the first one, so a single
// corrective pass over the file reveals every problem. The expression
// matrix is never materialized in full: bulk reads go through a chunked
// accessor whose peak memory is bounded by the configured chunk size.
//
// # Quick Start
//
//	import (
//	    "github.com/cellannotation/capval"
//	    "github.com/cellannotation/capval/engine"
//	)
//
//	v := engine.New()
//
//	report, err := v.Validate(ctx, "dataset.h5ad")
//	if err != nil {
//	    // Fatal: the file could not even be checked (unreadable container,
//	    // missing reference catalog). No report exists in this case.
//	    log.Fatal(err)
//	}
//	if !report.IsValid() {
//	    for _, violation := range report.Violations() {
//	        fmt.Println(violation)
//	    }
//	}
//
// # Failure Classes
//
// Fatal run failures (unreadable file, unavailable catalog) surface as Go
// errors from Validate and never become violations. Schema violations
// (missing columns, duplicate indices, unknown gene identifiers, shape
// mismatches) are collected into the Report and never abort the run; one
// broken rule cannot suppress the findings of the others.
//
// # Functional Options
//
//	v := engine.New(
//	    capval.WithChunkRows(2000),
//	    capval.WithCatalogDir("/data/genemaps"),
//	    capval.WithLogger(logger),
//	)
//
// # Rules
//
// The schema is the ordered rule registry in package rule. Each rule checks
// one aspect of the CAP AnnData schema:
//
//   - count-matrix: raw counts present and non-negative integers
//   - embeddings: at least one X_-prefixed 2D embedding in obsm
//   - required-obs-columns / required-uns-keys: mandatory metadata
//   - unique-obs-index / unique-var-index: axis label uniqueness
//   - field-dtypes: declared element types compatible with the schema
//   - shape-consistency: annotation tables match matrix dimensions
//   - var-raw-subset: var identifiers covered by raw.var
//   - gene-identifiers: ENSEMBL ids valid for the declared organism
//   - empty-rows / empty-columns: no all-zero axes, scanned in chunks
package capval

package capval

import (
	"encoding/json"
	"sync"
)

// Report contains the outcome of validating one file.
//
// A Report is created empty at the start of a run, appended to by the
// engine as each rule completes, and frozen once the run finishes.
// Violations are kept in insertion order, which equals rule execution
// order. A frozen Report is read-only; further appends are ignored.
type Report struct {
	// Source identifies the validated file (usually its path)
	Source string `json:"source,omitempty"`

	violations []Violation
	frozen     bool

	// mu protects violations and frozen
	mu sync.Mutex
}

// NewReport creates an empty, unfrozen report for the given source.
func NewReport(source string) *Report {
	return &Report{
		Source:     source,
		violations: make([]Violation, 0, 8),
	}
}

// Append adds a violation to the report.
// Appends after Freeze are ignored.
func (r *Report) Append(v Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return
	}
	r.violations = append(r.violations, v)
}

// AppendAll adds multiple violations, preserving their order.
func (r *Report) AppendAll(vs []Violation) {
	if len(vs) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return
	}
	r.violations = append(r.violations, vs...)
}

// Freeze marks the report read-only. Idempotent.
func (r *Report) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the report has been frozen.
func (r *Report) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// IsValid returns true if the report contains no error-severity violation.
// Warnings do not affect validity.
func (r *Report) IsValid() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.violations {
		if v.IsError() {
			return false
		}
	}
	return true
}

// Violations returns a copy of the ordered violation sequence.
func (r *Report) Violations() []Violation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// Len returns the number of violations.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.violations)
}

// ErrorCount returns the number of error-severity violations.
func (r *Report) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, v := range r.violations {
		if v.IsError() {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-severity violations.
func (r *Report) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, v := range r.violations {
		if v.IsWarning() {
			count++
		}
	}
	return count
}

// ByRule returns the violations produced by one rule, in emission order.
func (r *Report) ByRule(rule string) []Violation {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Violation
	for _, v := range r.violations {
		if v.Rule == rule {
			out = append(out, v)
		}
	}
	return out
}

// reportJSON is the serialization shape consumed by CLI and platform callers.
type reportJSON struct {
	Source     string      `json:"source,omitempty"`
	IsValid    bool        `json:"is_valid"`
	Violations []Violation `json:"violations"`
}

// MarshalJSON serializes the report as
// {source, is_valid, violations: [{rule, severity, message, location?}]}.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		Source:     r.Source,
		IsValid:    r.IsValid(),
		Violations: r.Violations(),
	})
}

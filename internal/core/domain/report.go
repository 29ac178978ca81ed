package domain

import "errors"

// Report summarises one pipeline pass over a set of files.
type Report struct {
	Kind RunKind

	// Processed lists the files written (or checked, in a dry run).
	Processed []string

	// Skipped lists files left alone because they had not changed.
	Skipped []string

	// Placements counts entries relocated into pools.
	Placements int

	// Diagnostics are recoverable problems, e.g. truncated slots.
	Diagnostics []Diagnostic

	// Failures are per-file errors. Other files were still processed.
	Failures []Diagnostic
}

// NewReport creates an empty report for a pass of the given kind.
func NewReport(kind RunKind) *Report {
	return &Report{Kind: kind}
}

// Fail records a per-file error.
func (r *Report) Fail(file string, err error) {
	r.Failures = append(r.Failures, Diagnostic{File: file, Err: err})
}

// Merge appends other's results.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Processed = append(r.Processed, other.Processed...)
	r.Skipped = append(r.Skipped, other.Skipped...)
	r.Placements += other.Placements
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
	r.Failures = append(r.Failures, other.Failures...)
}

// Err joins the failures, or returns nil if there were none.
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Error makes a failure usable as an error value.
func (d Diagnostic) Error() string {
	return d.String()
}

// Unwrap exposes the underlying error.
func (d Diagnostic) Unwrap() error {
	return d.Err
}

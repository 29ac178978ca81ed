package domain

import "time"

// RunKind names the pipeline action a run performed.
type RunKind string

const (
	RunExtract  RunKind = "extract"
	RunInsert   RunKind = "insert"
	RunPack     RunKind = "pack"
	RunValidate RunKind = "validate"
)

// Run is one recorded pipeline invocation in the build ledger.
type Run struct {
	ID         string
	Kind       RunKind
	Target     string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Skipped    int
	Errors     int
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

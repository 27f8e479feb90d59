package app

import (
	"strings"
	"time"
)

// Operation is one CLI invocation. Its ID tags every log line the
// invocation writes.
type Operation struct {
	ID         string
	Name       string
	Parameters string
	Status     string // "running", "success" or "error"
	StartedAt  time.Time
}

// NewOperation starts an operation named after the command being run.
func NewOperation(name string, parameters []string, now time.Time) *Operation {
	return &Operation{
		ID:         now.UTC().Format("20060102T150405.000Z"),
		Name:       name,
		Parameters: strings.Join(parameters, " "),
		Status:     "running",
		StartedAt:  now,
	}
}

// Finish records the outcome of the operation.
func (op *Operation) Finish(err error) {
	if err != nil {
		op.Status = "error"
		return
	}
	op.Status = "success"
}

// Finished reports whether Finish has been called.
func (op *Operation) Finished() bool {
	return op.Status != "running"
}

package app

import (
	"strings"
	"time"

	"dump-go/internal/model"
)

// CommandOperation tracks the CLI command being run. Commands that change
// the tree are written to the journal when the app closes; read-only
// commands leave no trace.
type CommandOperation struct {
	Name       string
	Parameters []string
	Status     string // "success" or "error"
}

// NewCommandOperation creates an operation for a command that has not failed yet.
func NewCommandOperation(name string, parameters ...string) *CommandOperation {
	return &CommandOperation{
		Name:       name,
		Parameters: parameters,
		Status:     "success",
	}
}

// Fail marks the command as failed when err is non-nil.
func (op *CommandOperation) Fail(err error) {
	if err != nil {
		op.Status = "error"
	}
}

// Record converts the command into a journal entry.
func (op *CommandOperation) Record(now time.Time) *model.Operation {
	detail := op.Status
	if len(op.Parameters) > 0 {
		detail += " " + strings.Join(op.Parameters, " ")
	}
	return &model.Operation{
		Operation: "Command:" + op.Name,
		Detail:    detail,
		CreatedAt: now,
	}
}

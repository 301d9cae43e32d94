package store

import "context"

// Action identifies the kind of data operation being dispatched.
type Action string

const (
	ActionCreate     Action = "create"
	ActionFindOne    Action = "find-one"
	ActionFindMany   Action = "find-many"
	ActionUpdate     Action = "update"
	ActionUpdateMany Action = "update-many"
	ActionDelete     Action = "delete"
	ActionDeleteMany Action = "delete-many"
)

// Operation describes a single data-access request flowing through the
// pipeline. Filter keys and Data keys are database column names.
//
// Stages may rewrite the operation in place before it reaches the executor;
// callers must not reuse an Operation value across dispatches.
type Operation struct {
	Model  string
	Action Action
	Filter map[string]any
	Data   map[string]any
	Dest   any

	// Limit, Offset, and Order shape find-many results; ignored elsewhere.
	Limit  int
	Offset int
	Order  string
}

// Result reports the outcome of an executed operation.
type Result struct {
	RowsAffected int64
}

// Handler executes an operation, returning its result or the store's error
// untranslated.
type Handler func(ctx context.Context, op *Operation) (*Result, error)

// Stage wraps a handler with additional behaviour. Stages compose into an
// ordered pipeline around the executor.
type Stage func(next Handler) Handler

// Chain composes stages around a terminal handler. The first stage becomes the
// outermost wrapper.
func Chain(terminal Handler, stages ...Stage) Handler {
	h := terminal
	for i := len(stages) - 1; i >= 0; i-- {
		h = stages[i](h)
	}
	return h
}

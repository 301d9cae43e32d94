package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Executor is the terminal pipeline handler. It maps operation descriptors
// onto GORM calls against the configured handle and propagates store errors
// untranslated.
type Executor struct {
	db     *gorm.DB
	naming schema.Namer
}

// NewExecutor constructs an executor bound to the provided database handle.
func NewExecutor(db *gorm.DB) *Executor {
	return &Executor{
		db:     db,
		naming: schema.NamingStrategy{},
	}
}

// WithDB returns a copy of the executor bound to a different handle,
// typically a transaction scope.
func (e *Executor) WithDB(db *gorm.DB) *Executor {
	return &Executor{db: db, naming: e.naming}
}

// Execute runs a single operation. Delete actions reach this point only when
// the pipeline was built without the soft-delete stage; they then remove rows
// physically.
func (e *Executor) Execute(ctx context.Context, op *Operation) (*Result, error) {
	if op == nil || op.Model == "" {
		return nil, errors.New("store: operation requires a model")
	}

	table := e.naming.TableName(op.Model)
	q := e.db.WithContext(ctx).Table(table)
	if len(op.Filter) > 0 {
		// Nil filter values stay meaningful: GORM renders them as IS NULL,
		// which the soft-delete exclusion relies on.
		q = q.Where(op.Filter)
	}

	var res *gorm.DB
	switch op.Action {
	case ActionCreate:
		if len(op.Filter) > 0 {
			return nil, errors.New("store: create does not accept a filter")
		}
		if op.Dest != nil {
			// Struct destinations go through the model schema so creation
			// hooks (UUID assignment, timestamps) run.
			res = e.db.WithContext(ctx).Create(op.Dest)
		} else {
			if len(op.Data) == 0 {
				return nil, errors.New("store: create requires data or a destination")
			}
			res = e.db.WithContext(ctx).Table(table).Create(copyMap(op.Data))
		}
	case ActionFindOne:
		if op.Dest == nil {
			return nil, errors.New("store: find requires a destination")
		}
		res = q.Take(op.Dest)
	case ActionFindMany:
		if op.Dest == nil {
			return nil, errors.New("store: find requires a destination")
		}
		if op.Order != "" {
			q = q.Order(op.Order)
		}
		if op.Limit > 0 {
			q = q.Limit(op.Limit)
		}
		if op.Offset > 0 {
			q = q.Offset(op.Offset)
		}
		res = q.Find(op.Dest)
	case ActionUpdate, ActionUpdateMany:
		if len(op.Data) == 0 {
			return nil, errors.New("store: update requires data")
		}
		res = q.Updates(copyMap(op.Data))
	case ActionDelete, ActionDeleteMany:
		res = q.Delete(nil)
	default:
		return nil, errors.New("store: unsupported action " + string(op.Action))
	}

	if res.Error != nil {
		return nil, res.Error
	}
	return &Result{RowsAffected: res.RowsAffected}, nil
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

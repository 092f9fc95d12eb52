package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Operation tags one instruction of a batch.
type Operation int

const (
	OperationCreate Operation = iota
	OperationRead
	OperationUpdate
	OperationDelete
)

// ErrUnknownOperation aborts a batch holding an operation outside the enum.
var ErrUnknownOperation = errors.New("unknown batch operation")

func (o Operation) String() string {
	switch o {
	case OperationCreate:
		return "create"
	case OperationRead:
		return "read"
	case OperationUpdate:
		return "update"
	case OperationDelete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Instruction is one step of a batch.
//
// Create and Delete act on Model, a pointer to a record. Read loads the rows
// matching Filter into Model, a pointer to a slice. Update sets the columns in
// Filter on the row identified by Model's primary key.
type Instruction struct {
	Operation Operation
	Model     any
	Filter    Filter
}

// Result reports what one instruction did.
type Result struct {
	Operation    Operation
	RowsAffected int64
}

// Batch runs instructions in order inside one transaction. The first failing
// instruction rolls back the whole batch.
func (g *Gateway) Batch(ctx context.Context, instructions []Instruction) ([]Result, error) {
	results := make([]Result, 0, len(instructions))

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, in := range instructions {
			res, err := apply(tx, in)
			if err != nil {
				return fmt.Errorf("batch instruction %d (%s): %w", i, in.Operation, err)
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Debug("batch applied", zap.Int("instructions", len(instructions)))
	return results, nil
}

func apply(tx *gorm.DB, in Instruction) (Result, error) {
	var res *gorm.DB

	switch in.Operation {
	case OperationCreate:
		res = tx.Create(in.Model)
	case OperationRead:
		q := tx
		if len(in.Filter) > 0 {
			q = q.Where(map[string]any(in.Filter))
		}
		res = q.Find(in.Model)
	case OperationUpdate:
		res = tx.Model(in.Model).Updates(map[string]any(in.Filter))
	case OperationDelete:
		res = tx.Delete(in.Model)
	default:
		return Result{}, ErrUnknownOperation
	}

	if res.Error != nil {
		return Result{}, res.Error
	}
	return Result{Operation: in.Operation, RowsAffected: res.RowsAffected}, nil
}

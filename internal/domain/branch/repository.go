package branch

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("branch not found")

	// ErrStillReferenced rejects deleting a branch that a loan points at.
	ErrStillReferenced = errors.New("branch is referenced by existing loans")
)

type Repository interface {
	Save(ctx context.Context, b *Branch) error

	FindByID(ctx context.Context, branchID int64) (*Branch, error)

	FindAll(ctx context.Context) ([]*Branch, error)

	Delete(ctx context.Context, branchID int64) error
}

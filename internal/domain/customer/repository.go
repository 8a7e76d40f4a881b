package customer

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("customer not found")

type Repository interface {
	Save(ctx context.Context, c *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)
}

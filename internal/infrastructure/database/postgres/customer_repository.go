package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"loan-monitor/internal/domain/customer"
	"loan-monitor/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.CustomerID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("name", cust.FullName))

	query := `
        INSERT INTO customers (full_name, phone_number, email, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING customer_id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		cust.FullName,
		cust.PhoneNumber,
		cust.Email,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.InfoContext(ctx, "Attempting to update customer")

	query := `
        UPDATE customers
        SET full_name = $1,
            phone_number = $2,
            email = $3,
            updated_at = NOW()
        WHERE customer_id = $4`

	cmdTag, err := r.db.Exec(ctx, query,
		cust.FullName,
		cust.PhoneNumber,
		cust.Email,
		cust.CustomerID,
	)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `
        SELECT customer_id, full_name, phone_number, email, created_at, updated_at
        FROM customers
        WHERE customer_id = $1`

	var c customer.Customer
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&c.CustomerID,
		&c.FullName,
		&c.PhoneNumber,
		&c.Email,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to find customer by ID", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return &c, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	query := `
        SELECT customer_id, full_name, phone_number, email, created_at, updated_at
        FROM customers
        ORDER BY customer_id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		var c customer.Customer
		err := rows.Scan(&c.CustomerID, &c.FullName, &c.PhoneNumber, &c.Email, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		customers = append(customers, &c)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return customers, nil
}

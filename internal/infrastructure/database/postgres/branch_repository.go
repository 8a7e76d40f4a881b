package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"loan-monitor/internal/domain/branch"
	"loan-monitor/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type BranchRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ branch.Repository = (*BranchRepository)(nil)

func NewBranchRepository(db DBPool, logger *slog.Logger) *BranchRepository {
	if db == nil {
		panic("DBPool cannot be nil for BranchRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewBranchRepository, using default stderr handler")
	}
	return &BranchRepository{
		db:     db,
		logger: logger.With("component", "BranchRepository"),
	}
}

func (r *BranchRepository) Save(ctx context.Context, b *branch.Branch) error {
	if b == nil {
		return fmt.Errorf("%w: branch cannot be nil", apperrors.ErrInvalidArgument)
	}

	if b.BranchID == 0 {
		return r.createBranch(ctx, b)
	}
	return r.updateBranch(ctx, b)
}

func (r *BranchRepository) createBranch(ctx context.Context, b *branch.Branch) error {
	r.logger.InfoContext(ctx, "Attempting to insert new branch", slog.String("name", b.Name))

	query := `
        INSERT INTO branches (branch_name, loan_officer, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())
        RETURNING branch_id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		b.Name,
		b.LoanOfficer,
	).Scan(
		&b.BranchID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert branch", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert branch: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Branch inserted successfully", slog.Int64("branchID", b.BranchID))
	return nil
}

func (r *BranchRepository) updateBranch(ctx context.Context, b *branch.Branch) error {
	r.logger.InfoContext(ctx, "Attempting to update branch")

	query := `
        UPDATE branches
        SET branch_name = $1,
            loan_officer = $2,
            updated_at = NOW()
        WHERE branch_id = $3`

	cmdTag, err := r.db.Exec(ctx, query,
		b.Name,
		b.LoanOfficer,
		b.BranchID,
	)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update branch", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update branch: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, branch likely not found")
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Branch updated successfully")
	return nil
}

func (r *BranchRepository) FindByID(ctx context.Context, branchID int64) (*branch.Branch, error) {
	query := `
        SELECT branch_id, branch_name, loan_officer, created_at, updated_at
        FROM branches
        WHERE branch_id = $1`

	var b branch.Branch
	err := r.db.QueryRow(ctx, query, branchID).Scan(
		&b.BranchID,
		&b.Name,
		&b.LoanOfficer,
		&b.CreatedAt,
		&b.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Branch not found", slog.Int64("branchID", branchID))
			return nil, branch.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to find branch by ID", slog.Int64("branchID", branchID), slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return &b, nil
}

func (r *BranchRepository) FindAll(ctx context.Context) ([]*branch.Branch, error) {
	query := `
        SELECT branch_id, branch_name, loan_officer, created_at, updated_at
        FROM branches
        ORDER BY branch_id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query branches", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	branches := make([]*branch.Branch, 0)
	for rows.Next() {
		var b branch.Branch
		err := rows.Scan(&b.BranchID, &b.Name, &b.LoanOfficer, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan branch row", slog.Any("error", err))
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		branches = append(branches, &b)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating branch rows", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return branches, nil
}

// Delete removes a branch. The foreign key from loans is RESTRICT, so a
// referenced branch surfaces as branch.ErrStillReferenced.
func (r *BranchRepository) Delete(ctx context.Context, branchID int64) error {
	query := `DELETE FROM branches WHERE branch_id = $1`

	cmdTag, err := r.db.Exec(ctx, query, branchID)
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrReferential) {
			r.logger.WarnContext(ctx, "Cannot delete branch: referenced by loans", slog.Int64("branchID", branchID))
			return fmt.Errorf("%w: %w", branch.ErrStillReferenced, err)
		}
		r.logger.ErrorContext(ctx, "Failed to delete branch", slog.Int64("branchID", branchID), slog.Any("error", err))
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, branch likely not found", slog.Int64("branchID", branchID))
		return branch.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Branch deleted successfully", slog.Int64("branchID", branchID))
	return nil
}

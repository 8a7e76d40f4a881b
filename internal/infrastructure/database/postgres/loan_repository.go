package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-monitor/internal/domain/loan"
	"loan-monitor/internal/infrastructure/monitoring"
	"loan-monitor/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

const loanColumns = `loan_id, customer_id, branch_id, amount_borrowed, outstanding_balance, due_date, loan_status, created_at, updated_at`

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	if newLoan == nil {
		return nil, fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}

	query := `
        INSERT INTO loans (loan_id, customer_id, branch_id, amount_borrowed, outstanding_balance, due_date, loan_status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING ` + loanColumns

	status := "success"
	startTime := time.Now()

	var created loan.Loan
	err := r.db.QueryRow(ctx, query,
		newLoan.ID,
		newLoan.CustomerID,
		newLoan.BranchID,
		newLoan.AmountBorrowed,
		newLoan.OutstandingBalance,
		newLoan.DueDate,
		newLoan.Status,
	).Scan(
		&created.ID, &created.CustomerID, &created.BranchID,
		&created.AmountBorrowed, &created.OutstandingBalance,
		&created.DueDate, &created.Status, &created.CreatedAt, &created.UpdatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateLoan", status, time.Since(startTime))

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrConstraint) || errors.Is(translatedErr, apperrors.ErrReferential) {
			r.logger.WarnContext(ctx, "Failed to insert loan due to constraint violation", "loan_id", newLoan.ID, slog.Any("error", err))
			return nil, translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert loan", "loan_id", newLoan.ID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)
	return &created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID string) (*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE loan_id = $1`

	status := "success"
	startTime := time.Now()

	var l loan.Loan
	err := r.db.QueryRow(ctx, query, loanID).Scan(
		&l.ID, &l.CustomerID, &l.BranchID,
		&l.AmountBorrowed, &l.OutstandingBalance,
		&l.DueDate, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &l, nil
}

func (r *LoanRepository) UpdateBalanceStatus(ctx context.Context, loanID string, balance float64, newStatus loan.Status) error {
	query := `
        UPDATE loans
        SET outstanding_balance = $1,
            loan_status = $2,
            updated_at = NOW()
        WHERE loan_id = $3`

	status := "success"
	startTime := time.Now()

	cmdTag, err := r.db.Exec(ctx, query, balance, newStatus, loanID)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("UpdateBalanceStatus", status, time.Since(startTime))

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrConstraint) {
			r.logger.WarnContext(ctx, "Failed to update loan due to constraint violation", "loan_id", loanID, slog.Any("error", err))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to update loan balance", "loan_id", loanID, slog.Any("error", err))
		return fmt.Errorf("%w: failed to update loan: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, loan likely not found", "loan_id", loanID)
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Loan balance updated", "loan_id", loanID)
	return nil
}

// FindDueWithin joins customer and branch and computes the effective status
// inline, so a loan whose due date passed since the last batch run already
// reads as Overdue.
func (r *LoanRepository) FindDueWithin(ctx context.Context, asOf time.Time, daysAhead int, includeOverdue bool) ([]loan.DueLoan, error) {
	today := asOf.Format(time.DateOnly)
	cutoff := asOf.AddDate(0, 0, daysAhead).Format(time.DateOnly)

	dueFilter := `l.due_date BETWEEN $1 AND $2`
	if includeOverdue {
		dueFilter = `l.due_date <= $2`
	}

	query := `
        SELECT
            l.loan_id,
            c.full_name,
            l.amount_borrowed,
            l.outstanding_balance,
            l.due_date,
            c.phone_number,
            c.email,
            b.loan_officer,
            b.branch_name,
            CASE WHEN l.loan_status = 'Active' AND l.due_date < $1 THEN 'Overdue' ELSE l.loan_status END
        FROM loans l
        JOIN customers c ON l.customer_id = c.customer_id
        JOIN branches  b ON l.branch_id   = b.branch_id
        WHERE ` + dueFilter + `
          AND l.loan_status != 'Paid'
        ORDER BY l.due_date ASC`

	status := "success"
	startTime := time.Now()

	rows, err := r.db.Query(ctx, query, today, cutoff)
	if err != nil {
		monitoring.RecordDBQuery("FindDueWithin", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query due loans", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	due := make([]loan.DueLoan, 0)
	for rows.Next() {
		var d loan.DueLoan
		err := rows.Scan(
			&d.LoanID, &d.CustomerName, &d.AmountBorrowed, &d.OutstandingBalance,
			&d.DueDate, &d.PhoneNumber, &d.Email, &d.LoanOfficer, &d.BranchName, &d.Status,
		)
		if err != nil {
			monitoring.RecordDBQuery("FindDueWithin", "error", time.Since(startTime))
			r.logger.ErrorContext(ctx, "Failed to scan due loan row", slog.Any("error", err))
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		d.DaysRemaining = loan.DaysRemaining(d.DueDate, asOf)
		due = append(due, d)
	}

	if err = rows.Err(); err != nil {
		monitoring.RecordDBQuery("FindDueWithin", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Error iterating due loan rows", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery("FindDueWithin", status, time.Since(startTime))
	r.logger.InfoContext(ctx, "Fetched due loans", "count", len(due), "days_ahead", daysAhead)
	return due, nil
}

func (r *LoanRepository) FindByStatus(ctx context.Context, s loan.Status) ([]*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE loan_status = $1
        ORDER BY due_date ASC`
	return r.queryLoans(ctx, "FindByStatus", query, s)
}

func (r *LoanRepository) FindByBranch(ctx context.Context, branchID int64) ([]*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE branch_id = $1
        ORDER BY due_date ASC`
	return r.queryLoans(ctx, "FindByBranch", query, branchID)
}

func (r *LoanRepository) FindByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE customer_id = $1
        ORDER BY due_date ASC`
	return r.queryLoans(ctx, "FindByCustomer", query, customerID)
}

func (r *LoanRepository) queryLoans(ctx context.Context, queryName, query string, args ...any) ([]*loan.Loan, error) {
	status := "success"
	startTime := time.Now()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		monitoring.RecordDBQuery(queryName, "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query loans", "query_name", queryName, slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		err := rows.Scan(
			&l.ID, &l.CustomerID, &l.BranchID,
			&l.AmountBorrowed, &l.OutstandingBalance,
			&l.DueDate, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			monitoring.RecordDBQuery(queryName, "error", time.Since(startTime))
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "query_name", queryName, slog.Any("error", err))
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, &l)
	}

	if err = rows.Err(); err != nil {
		monitoring.RecordDBQuery(queryName, "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "query_name", queryName, slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery(queryName, status, time.Since(startTime))
	return loans, nil
}

func (r *LoanRepository) FindOverdueCandidateIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	logCtx := r.logger.With(slog.String("operation", "FindOverdueCandidateIDs"))
	logCtx.DebugContext(ctx, "Attempting to get overdue candidate loan IDs")

	query := `
        SELECT loan_id
        FROM loans
        WHERE loan_status = $1
          AND outstanding_balance > 0
          AND due_date < $2
        ORDER BY loan_id`

	rows, err := r.db.Query(ctx, query, loan.StatusActive, asOf.Format(time.DateOnly))
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query overdue candidates", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan overdue candidate row", slog.Any("error", err))
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating overdue candidate rows", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return ids, nil
}

func (r *LoanRepository) MarkOverdue(ctx context.Context, loanID string, asOf time.Time) (bool, error) {
	// Guarded update: a loan paid off between candidate listing and marking
	// must not be flipped.
	query := `
        UPDATE loans
        SET loan_status = $1,
            updated_at = NOW()
        WHERE loan_id = $2
          AND loan_status = $3
          AND outstanding_balance > 0
          AND due_date < $4`

	cmdTag, err := r.db.Exec(ctx, query, loan.StatusOverdue, loanID, loan.StatusActive, asOf.Format(time.DateOnly))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark loan overdue", "loan_id", loanID, slog.Any("error", err))
		return false, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrConstraint, pgErr.ConstraintName)
		case "23514":
			contextLogger.Warn("Database check constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrConstraint, pgErr.ConstraintName)
		case "23503":
			contextLogger.Warn("Database foreign key violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrReferential, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}

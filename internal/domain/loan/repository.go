package loan

import (
	"context"
	"time"
)

type Repository interface {
	// CreateLoan inserts the loan. Duplicate loan IDs surface as
	// apperrors.ErrConstraint, dangling customer or branch references as
	// apperrors.ErrReferential.
	CreateLoan(ctx context.Context, l *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID string) (*Loan, error)

	// UpdateBalanceStatus sets the outstanding balance and status in one
	// statement. apperrors.ErrNotFound when the loan does not exist.
	UpdateBalanceStatus(ctx context.Context, loanID string, balance float64, status Status) error

	// FindDueWithin returns loans whose due date falls within daysAhead days
	// of asOf, joined with customer and branch, Paid loans excluded, ordered
	// by due date. Overdue loans (due date already passed) are included when
	// includeOverdue is set. Each call re-executes against current state.
	FindDueWithin(ctx context.Context, asOf time.Time, daysAhead int, includeOverdue bool) ([]DueLoan, error)

	FindByStatus(ctx context.Context, status Status) ([]*Loan, error)

	FindByBranch(ctx context.Context, branchID int64) ([]*Loan, error)

	FindByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	// FindOverdueCandidateIDs lists Active loans with a balance whose due
	// date is behind asOf.
	FindOverdueCandidateIDs(ctx context.Context, asOf time.Time) ([]string, error)

	// MarkOverdue flips a single loan Active -> Overdue, guarded so a loan
	// paid off between listing and marking is left alone. Reports whether a
	// row was updated.
	MarkOverdue(ctx context.Context, loanID string, asOf time.Time) (bool, error)
}

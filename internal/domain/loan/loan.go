package loan

import (
	"fmt"
	"strings"
	"time"

	"loan-monitor/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive  Status = "Active"
	StatusOverdue Status = "Overdue"
	StatusPaid    Status = "Paid"
)

// ParseStatus validates a caller-supplied status string against the allowed
// set. Anything else is a constraint violation, matching the store's CHECK.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusOverdue, StatusPaid:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: loan_status '%s' is not one of Active, Overdue, Paid", apperrors.ErrConstraint, s)
	}
}

type Loan struct {
	ID                 string
	CustomerID         int64
	BranchID           int64
	AmountBorrowed     float64
	OutstandingBalance float64
	DueDate            time.Time
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DueLoan is a report row: a loan joined with its customer and branch,
// with the effective status and days remaining computed against a reference
// date. Negative DaysRemaining means overdue.
type DueLoan struct {
	LoanID             string
	CustomerName       string
	AmountBorrowed     float64
	OutstandingBalance float64
	DueDate            time.Time
	DaysRemaining      int
	PhoneNumber        string
	Email              string
	LoanOfficer        string
	BranchName         string
	Status             Status
}

func NewLoan(id string, customerID, branchID int64, amount, balance float64, dueDate time.Time, status Status) (*Loan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("loan_id", "cannot be empty")
	}
	if customerID <= 0 {
		return nil, apperrors.NewValidationError("customer_id", "must be a positive identifier")
	}
	if branchID <= 0 {
		return nil, apperrors.NewValidationError("branch_id", "must be a positive identifier")
	}
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount_borrowed", "must be greater than zero")
	}
	if balance < 0 {
		return nil, apperrors.NewValidationError("outstanding_balance", "cannot be negative")
	}
	if balance > amount {
		return nil, apperrors.NewValidationError("outstanding_balance", "cannot exceed amount borrowed")
	}
	if dueDate.IsZero() {
		return nil, apperrors.NewValidationError("due_date", "cannot be empty")
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	if err := checkBalanceStatus(balance, status); err != nil {
		return nil, err
	}

	return &Loan{
		ID:                 id,
		CustomerID:         customerID,
		BranchID:           branchID,
		AmountBorrowed:     amount,
		OutstandingBalance: balance,
		DueDate:            dueDate,
		Status:             status,
	}, nil
}

// checkBalanceStatus enforces the Paid/zero-balance coupling: Paid loans
// carry no balance and a zero balance means the loan is Paid.
func checkBalanceStatus(balance float64, status Status) error {
	if status == StatusPaid && balance != 0 {
		return apperrors.NewValidationError("outstanding_balance", "must be zero for a Paid loan")
	}
	if status != StatusPaid && balance == 0 {
		return apperrors.NewValidationError("loan_status", "must be Paid when outstanding balance is zero")
	}
	return nil
}

// Overdue reports whether the loan should be treated as overdue on the given
// date: still carrying a balance with its due date behind us.
func (l *Loan) Overdue(asOf time.Time) bool {
	return l.Status != StatusPaid && l.OutstandingBalance > 0 && civilDate(l.DueDate).Before(civilDate(asOf))
}

// EffectiveStatus computes the status as of a reference date without
// consulting the persisted field's staleness. The batch job persists the
// same transition; this keeps reads from ever showing a stale Active.
func (l *Loan) EffectiveStatus(asOf time.Time) Status {
	if l.Status == StatusActive && l.Overdue(asOf) {
		return StatusOverdue
	}
	return l.Status
}

// NewReference generates a loan reference of the form "LN-2024-1a2b3c4d" for
// callers without their own numbering scheme. Loan identity is otherwise
// caller-assigned.
func NewReference(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("LN-%d-%s", now.Year(), token)
}

// civilDate strips the wall clock and the zone, keeping only the calendar
// day. Due dates scan out of the store at UTC midnight while asOf is usually
// server-local time.Now(); comparing them in their own zones would leave an
// hour residue that skews the day count.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysRemaining is the whole-day distance from asOf to due, negative when
// due has passed.
func DaysRemaining(due, asOf time.Time) int {
	d := civilDate(due).Sub(civilDate(asOf))
	return int(d.Hours() / 24)
}

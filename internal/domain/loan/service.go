package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-monitor/internal/domain/branch"
	"loan-monitor/internal/domain/customer"
	"loan-monitor/internal/event"
	"loan-monitor/internal/infrastructure/monitoring"
	"loan-monitor/internal/pkg/apperrors"
)

type Money = float64

type Service interface {
	// CreateLoan records a disbursement. The caller assigns the loan ID; an
	// empty ID, an invalid status, a duplicate ID or a dangling customer or
	// branch reference is rejected.
	CreateLoan(ctx context.Context, loanID string, customerID, branchID int64, amount, balance Money, dueDate time.Time, status Status) (*Loan, error)

	GetLoan(ctx context.Context, loanID string) (*Loan, error)

	// UpdateLoanBalance sets a new outstanding balance and status, enforcing
	// the status enum, the Paid/zero-balance coupling and Paid terminality.
	UpdateLoanBalance(ctx context.Context, loanID string, newBalance Money, newStatus Status) (*Loan, error)

	// RecordPayment reduces the outstanding balance, transitioning the loan
	// to Paid when it reaches zero.
	RecordPayment(ctx context.Context, loanID string, amount Money) (*Loan, error)

	// MarkOverdue flips a single Active loan to Overdue when its due date has
	// passed with a balance remaining. Reports whether a transition happened.
	MarkOverdue(ctx context.Context, loanID string, asOf time.Time) (bool, error)

	LoansDueWithin(ctx context.Context, asOf time.Time, daysAhead int, includeOverdue bool) ([]DueLoan, error)

	LoansByStatus(ctx context.Context, status Status) ([]*Loan, error)

	LoansByBranch(ctx context.Context, branchID int64) ([]*Loan, error)

	LoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)
}

type loanService struct {
	repo            Repository
	customerService customer.Service
	branchService   branch.Service
	pub             event.Publisher
	logger          *slog.Logger
}

var _ Service = (*loanService)(nil)

func NewService(r Repository, cs customer.Service, bs branch.Service, pub event.Publisher, logger *slog.Logger) Service {
	if r == nil || cs == nil || bs == nil || pub == nil {
		panic("loan service dependencies cannot be nil")
	}
	return &loanService{
		repo:            r,
		customerService: cs,
		branchService:   bs,
		pub:             pub,
		logger:          logger.With(slog.String("component", "loanService")),
	}
}

func (s *loanService) CreateLoan(ctx context.Context, loanID string, customerID, branchID int64, amount, balance Money, dueDate time.Time, status Status) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan", "loanID", loanID)

	newLoan, err := NewLoan(loanID, customerID, branchID, amount, balance, dueDate, status)
	if err != nil {
		s.logger.WarnContext(ctx, "Loan validation failed", slog.Any("error", err))
		return nil, err
	}

	// Referential check up front for a clean error; the store's foreign keys
	// remain the backstop against races.
	if _, err := s.customerService.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found for loan", "customerID", customerID)
			return nil, fmt.Errorf("%w: customer %d does not exist", apperrors.ErrReferential, customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to verify customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify customer %d: %w", customerID, err)
	}
	if _, err := s.branchService.GetBranch(ctx, branchID); err != nil {
		if errors.Is(err, branch.ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Branch not found for loan", "branchID", branchID)
			return nil, fmt.Errorf("%w: branch %d does not exist", apperrors.ErrReferential, branchID)
		}
		s.logger.ErrorContext(ctx, "Failed to verify branch", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify branch %d: %w", branchID, err)
	}

	created, err := s.repo.CreateLoan(ctx, newLoan)
	if err != nil {
		if errors.Is(err, apperrors.ErrConstraint) {
			s.logger.WarnContext(ctx, "Loan ID already exists", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan '%s' already exists", apperrors.ErrConstraint, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to save loan", slog.Any("error", err))
		return nil, err
	}
	monitoring.RecordLoanCreated()

	createdEvent := event.LoanCreatedEvent{
		Timestamp: time.Now(),
		Payload: event.LoanEventPayload{
			LoanID:             created.ID,
			CustomerID:         created.CustomerID,
			BranchID:           created.BranchID,
			AmountBorrowed:     created.AmountBorrowed,
			OutstandingBalance: created.OutstandingBalance,
			DueDate:            created.DueDate.Format(time.DateOnly),
			Status:             string(created.Status),
		},
	}
	if pubErr := s.pub.PublishLoanCreated(ctx, createdEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Loan created, but failed to publish creation event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Loan created successfully", "loanID", created.ID, "customerID", customerID, "branchID", branchID)
	return created, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID string) (*Loan, error) {
	s.logger.InfoContext(ctx, "Getting loan details", "loanID", loanID)

	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan '%s' not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan '%s': %v", apperrors.ErrInternalServer, loanID, err)
	}
	return l, nil
}

func (s *loanService) UpdateLoanBalance(ctx context.Context, loanID string, newBalance Money, newStatus Status) (*Loan, error) {
	s.logger.InfoContext(ctx, "Updating loan balance and status", "loanID", loanID, "newBalance", newBalance, "newStatus", newStatus)

	current, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if _, err := ParseStatus(string(newStatus)); err != nil {
		s.logger.WarnContext(ctx, "Invalid status on update", "loanID", loanID, "status", newStatus)
		return nil, err
	}
	if current.Status == StatusPaid && newStatus != StatusPaid {
		s.logger.WarnContext(ctx, "Rejected transition out of Paid", "loanID", loanID, "requested", newStatus)
		return nil, fmt.Errorf("%w: loan '%s' is Paid, no transition out of Paid is allowed", apperrors.ErrConstraint, loanID)
	}
	if newBalance < 0 {
		return nil, apperrors.NewValidationError("outstanding_balance", "cannot be negative")
	}
	if newBalance > current.AmountBorrowed {
		return nil, apperrors.NewValidationError("outstanding_balance", "cannot exceed amount borrowed")
	}
	if err := checkBalanceStatus(newBalance, newStatus); err != nil {
		s.logger.WarnContext(ctx, "Balance/status coupling check failed", "loanID", loanID, slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.UpdateBalanceStatus(ctx, loanID, newBalance, newStatus); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update loan balance", "loanID", loanID, slog.Any("error", err))
		return nil, err
	}

	if current.Status != newStatus {
		s.publishStatusChange(ctx, loanID, current.Status, newStatus)
	}

	updated := *current
	updated.OutstandingBalance = newBalance
	updated.Status = newStatus
	updated.UpdatedAt = time.Now()
	s.logger.InfoContext(ctx, "Loan balance updated", "loanID", loanID)
	return &updated, nil
}

func (s *loanService) RecordPayment(ctx context.Context, loanID string, amount Money) (*Loan, error) {
	s.logger.InfoContext(ctx, "Recording payment", "loanID", loanID, "amount", amount)

	current, err := s.GetLoan(ctx, loanID)
	if err != nil {
		monitoring.RecordPayment("failure_not_found")
		return nil, err
	}

	if current.Status == StatusPaid {
		monitoring.RecordPayment("failure_fully_paid")
		s.logger.WarnContext(ctx, "Payment against fully paid loan", "loanID", loanID)
		return nil, fmt.Errorf("%w: loan '%s'", apperrors.ErrLoanAlreadyPaid, loanID)
	}
	if amount <= 0 {
		monitoring.RecordPayment("failure_amount")
		return nil, fmt.Errorf("%w: payment must be greater than zero", apperrors.ErrInvalidPaymentAmount)
	}
	if amount > current.OutstandingBalance {
		monitoring.RecordPayment("failure_amount")
		s.logger.WarnContext(ctx, "Payment exceeds outstanding balance", "loanID", loanID, "amount", amount, "outstanding", current.OutstandingBalance)
		return nil, fmt.Errorf("%w: payment %.2f exceeds outstanding balance %.2f",
			apperrors.ErrInvalidPaymentAmount, amount, current.OutstandingBalance)
	}

	newBalance := current.OutstandingBalance - amount
	newStatus := current.Status
	if newBalance == 0 {
		newStatus = StatusPaid
	}

	if err := s.repo.UpdateBalanceStatus(ctx, loanID, newBalance, newStatus); err != nil {
		monitoring.RecordPayment("failure_internal")
		s.logger.ErrorContext(ctx, "Failed to apply payment", "loanID", loanID, slog.Any("error", err))
		return nil, err
	}
	monitoring.RecordPayment("success")

	if newStatus != current.Status {
		s.publishStatusChange(ctx, loanID, current.Status, newStatus)
	}

	updated := *current
	updated.OutstandingBalance = newBalance
	updated.Status = newStatus
	updated.UpdatedAt = time.Now()
	s.logger.InfoContext(ctx, "Payment recorded successfully", "loanID", loanID, "newBalance", newBalance, "status", newStatus)
	return &updated, nil
}

func (s *loanService) MarkOverdue(ctx context.Context, loanID string, asOf time.Time) (bool, error) {
	marked, err := s.repo.MarkOverdue(ctx, loanID, asOf)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to mark loan overdue", "loanID", loanID, slog.Any("error", err))
		return false, err
	}
	if marked {
		monitoring.RecordOverdueTransition()
		s.publishStatusChange(ctx, loanID, StatusActive, StatusOverdue)
	}
	return marked, nil
}

func (s *loanService) LoansDueWithin(ctx context.Context, asOf time.Time, daysAhead int, includeOverdue bool) ([]DueLoan, error) {
	if daysAhead < 0 {
		return nil, fmt.Errorf("%w: daysAhead cannot be negative", apperrors.ErrInvalidArgument)
	}
	s.logger.InfoContext(ctx, "Querying loans due within window", "daysAhead", daysAhead, "includeOverdue", includeOverdue)

	due, err := s.repo.FindDueWithin(ctx, asOf, daysAhead, includeOverdue)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to query due loans", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Fetched loans due within window", "count", len(due), "daysAhead", daysAhead)
	return due, nil
}

func (s *loanService) LoansByStatus(ctx context.Context, status Status) ([]*Loan, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	return s.repo.FindByStatus(ctx, status)
}

func (s *loanService) LoansByBranch(ctx context.Context, branchID int64) ([]*Loan, error) {
	if branchID <= 0 {
		return nil, fmt.Errorf("%w: branchID must be positive", apperrors.ErrInvalidArgument)
	}
	return s.repo.FindByBranch(ctx, branchID)
}

func (s *loanService) LoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customerID must be positive", apperrors.ErrInvalidArgument)
	}
	return s.repo.FindByCustomer(ctx, customerID)
}

func (s *loanService) publishStatusChange(ctx context.Context, loanID string, oldStatus, newStatus Status) {
	ev := event.LoanStatusChangedEvent{
		LoanID:    loanID,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
		Timestamp: time.Now(),
	}
	if err := s.pub.PublishLoanStatusChanged(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan status changed event", "loanID", loanID, slog.Any("error", err))
	}
}

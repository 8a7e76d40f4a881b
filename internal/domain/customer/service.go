package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"loan-monitor/internal/pkg/apperrors"
)

const inputValidationPassed = "Input validation passed"

type Service interface {
	CreateCustomer(ctx context.Context, fullName, phoneNumber, email string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
}

var _ Service = (*customerService)(nil)

type customerService struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewService, using default stderr handler")
	}
	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, fullName, phoneNumber, email string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	fullName = strings.TrimSpace(fullName)
	phoneNumber = strings.TrimSpace(phoneNumber)
	email = strings.TrimSpace(email)
	if fullName == "" {
		s.logger.WarnContext(ctx, "Validation failed: full name is empty")
		return nil, apperrors.NewValidationError("full_name", "cannot be empty")
	}
	if phoneNumber == "" {
		s.logger.WarnContext(ctx, "Validation failed: phone number is empty", slog.String("name", fullName))
		return nil, apperrors.NewValidationError("phone_number", "cannot be empty")
	}
	if email == "" || !strings.Contains(email, "@") {
		s.logger.WarnContext(ctx, "Validation failed: email is missing or malformed", slog.String("name", fullName))
		return nil, apperrors.NewValidationError("email", "must be a valid email address")
	}
	s.logger.InfoContext(ctx, inputValidationPassed)

	c := NewCustomer(fullName, phoneNumber, email)
	if err := s.repo.Save(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully created new customer", slog.Int64("customerID", c.CustomerID))
	return c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID", slog.Int64("customerID", customerID))

	c, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.Int64("customerID", customerID))
			return nil, fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customer")
	return c, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list all customers")

	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

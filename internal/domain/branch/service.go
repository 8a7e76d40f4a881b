package branch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"loan-monitor/internal/pkg/apperrors"
)

type Service interface {
	CreateBranch(ctx context.Context, name, officer string) (*Branch, error)
	GetBranch(ctx context.Context, branchID int64) (*Branch, error)
	ListBranches(ctx context.Context) ([]*Branch, error)
	DeleteBranch(ctx context.Context, branchID int64) error
}

var _ Service = (*branchService)(nil)

type branchService struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	if repo == nil {
		panic("branch repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewService, using default stderr handler")
	}
	return &branchService{
		repo:   repo,
		logger: logger.With(slog.String("component", "branchService")),
	}
}

func (s *branchService) CreateBranch(ctx context.Context, name, officer string) (*Branch, error) {
	s.logger.InfoContext(ctx, "Attempting to create new branch")

	name = strings.TrimSpace(name)
	officer = strings.TrimSpace(officer)
	if name == "" {
		s.logger.WarnContext(ctx, "Validation failed: branch name is empty")
		return nil, apperrors.NewValidationError("branch_name", "cannot be empty")
	}
	if officer == "" {
		s.logger.WarnContext(ctx, "Validation failed: loan officer is empty", slog.String("name", name))
		return nil, apperrors.NewValidationError("loan_officer", "cannot be empty")
	}

	b := NewBranch(name, officer)
	if err := s.repo.Save(ctx, b); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new branch", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new branch: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully created new branch", slog.Int64("branchID", b.BranchID))
	return b, nil
}

func (s *branchService) GetBranch(ctx context.Context, branchID int64) (*Branch, error) {
	s.logger.InfoContext(ctx, "Attempting to get branch by ID", slog.Int64("branchID", branchID))

	b, err := s.repo.FindByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Branch not found by repository", slog.Int64("branchID", branchID))
			return nil, fmt.Errorf("%w: branch %d", apperrors.ErrNotFound, branchID)
		}
		s.logger.ErrorContext(ctx, "Repository error finding branch", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get branch %d: %w", branchID, err)
	}
	return b, nil
}

func (s *branchService) ListBranches(ctx context.Context) ([]*Branch, error) {
	s.logger.InfoContext(ctx, "Attempting to list all branches")

	branches, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing branches", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved branches", slog.Int("count", len(branches)))
	return branches, nil
}

func (s *branchService) DeleteBranch(ctx context.Context, branchID int64) error {
	s.logger.InfoContext(ctx, "Attempting to delete branch", slog.Int64("branchID", branchID))

	err := s.repo.Delete(ctx, branchID)
	if err != nil {
		if errors.Is(err, ErrStillReferenced) || errors.Is(err, apperrors.ErrReferential) {
			s.logger.WarnContext(ctx, "Cannot delete branch: still referenced by loans", slog.Int64("branchID", branchID))
			return fmt.Errorf("%w: branch %d is referenced by existing loans", apperrors.ErrReferential, branchID)
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Branch not found for delete", slog.Int64("branchID", branchID))
			return fmt.Errorf("%w: branch %d", apperrors.ErrNotFound, branchID)
		}
		s.logger.ErrorContext(ctx, "Repository error deleting branch", slog.Any("error", err))
		return fmt.Errorf("failed to delete branch %d: %w", branchID, err)
	}

	s.logger.InfoContext(ctx, "Successfully deleted branch", slog.Int64("branchID", branchID))
	return nil
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"loan-monitor/internal/domain/loan"
	"loan-monitor/internal/pkg/apperrors"
)

// OverdueJob is the nightly sweep that persists the Active to Overdue
// transition for every loan whose due date has passed with a balance
// remaining. Reads compute the effective status on the fly, so the sweep
// is about keeping the stored field honest, not about correctness of
// queries between runs.
type OverdueJob struct {
	loanRepo    loan.Repository
	loanService loan.Service
	logger      *slog.Logger
}

func NewOverdueJob(loanRepo loan.Repository, loanSvc loan.Service, logger *slog.Logger) *OverdueJob {
	if loanRepo == nil || loanSvc == nil || logger == nil {
		panic("OverdueJob dependencies cannot be nil")
	}
	return &OverdueJob{
		loanRepo:    loanRepo,
		loanService: loanSvc,
		logger:      logger.With("job", "OverdueUpdate"),
	}
}

func (j *OverdueJob) Run(ctx context.Context) error {
	startTime := time.Now()
	asOf := startTime
	j.logger.InfoContext(ctx, "Starting daily overdue status update job.")

	candidateIDs, err := j.loanRepo.FindOverdueCandidateIDs(ctx, asOf)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to get overdue candidate loan IDs, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to get overdue candidates: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched overdue candidate loan IDs.", slog.Int("count", len(candidateIDs)))

	if len(candidateIDs) == 0 {
		j.logger.InfoContext(ctx, "No loans past due, nothing to update.")
		j.logger.InfoContext(ctx, "Overdue status update job finished.", slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	var wg sync.WaitGroup
	var markedCount, skippedCount, errorCount atomic.Int32

	for _, loanID := range candidateIDs {
		wg.Add(1)
		go func(currentLoanID string) {
			defer wg.Done()

			logCtx := j.logger.With(slog.String("loanID", currentLoanID))

			marked, markErr := j.loanService.MarkOverdue(ctx, currentLoanID, asOf)
			if markErr != nil {
				if errors.Is(markErr, apperrors.ErrNotFound) {
					logCtx.WarnContext(ctx, "Loan not found during overdue update (removed since candidate listing?)", slog.Any("error", markErr))
				} else {
					logCtx.ErrorContext(ctx, "Failed to mark loan overdue", slog.Any("error", markErr))
					errorCount.Add(1)
				}
				return
			}

			if marked {
				logCtx.InfoContext(ctx, "Loan marked overdue.")
				markedCount.Add(1)
			} else {
				// Paid or already flipped between listing and update.
				logCtx.DebugContext(ctx, "Loan no longer eligible, skipped.")
				skippedCount.Add(1)
			}
		}(loanID)
	}

	wg.Wait()
	duration := time.Since(startTime)
	summaryLog := j.logger.With(
		slog.Duration("duration", duration),
		slog.Int("candidates", len(candidateIDs)),
		slog.Int("marked_overdue", int(markedCount.Load())),
		slog.Int("skipped", int(skippedCount.Load())),
		slog.Int("errors_encountered", int(errorCount.Load())),
	)
	if errorCount.Load() > 0 {
		summaryLog.WarnContext(ctx, "Overdue status update job finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount.Load())
	}
	summaryLog.InfoContext(ctx, "Overdue status update job finished successfully.")
	return nil
}

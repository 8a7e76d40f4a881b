package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"loan-monitor/internal/config"
	"loan-monitor/internal/domain/loan"
	"loan-monitor/internal/infrastructure/monitoring"

	"github.com/google/uuid"
)

// Job runs the end-to-end due report: query the window, render the CSV,
// optionally save a local copy, then hand it to the mailer. Scheduled weekly
// and also triggerable over the API.
type Job struct {
	loanService loan.Service
	mailer      Mailer
	cfg         config.ReportConfig
	logger      *slog.Logger
}

func NewJob(loanSvc loan.Service, mailer Mailer, cfg config.ReportConfig, logger *slog.Logger) *Job {
	if loanSvc == nil || mailer == nil || logger == nil {
		panic("report job dependencies cannot be nil")
	}
	return &Job{
		loanService: loanSvc,
		mailer:      mailer,
		cfg:         cfg,
		logger:      logger.With("job", "DueReport"),
	}
}

// Run generates and delivers one report. Returns the report so API callers
// can inspect the summary.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	startTime := time.Now()
	logCtx := j.logger.With(slog.String("runID", runID))
	logCtx.InfoContext(ctx, "Starting due report run.", "days_ahead", j.cfg.DaysAhead, "include_overdue", j.cfg.IncludeOverdue)

	rows, err := j.loanService.LoansDueWithin(ctx, startTime, j.cfg.DaysAhead, j.cfg.IncludeOverdue)
	if err != nil {
		monitoring.RecordReportRun("error")
		logCtx.ErrorContext(ctx, "Failed to query due loans for report.", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query due loans: %w", err)
	}

	rep, err := Build(rows, j.cfg.DaysAhead, startTime)
	if err != nil {
		monitoring.RecordReportRun("error")
		logCtx.ErrorContext(ctx, "Failed to build report.", slog.Any("error", err))
		return nil, err
	}

	if j.cfg.SaveLocalCopy {
		if err := j.saveLocalCopy(rep); err != nil {
			// a failed local copy does not abort delivery
			logCtx.WarnContext(ctx, "Failed to save local report copy.", slog.Any("error", err))
		}
	}

	if len(rep.Rows) == 0 {
		monitoring.RecordReportRun("empty")
		logCtx.InfoContext(ctx, "No loans due in window, skipping email delivery.",
			slog.Duration("duration", time.Since(startTime)))
		return rep, nil
	}

	if err := j.mailer.Send(rep); err != nil {
		monitoring.RecordReportRun("error")
		logCtx.ErrorContext(ctx, "Failed to deliver report.", slog.Any("error", err))
		return nil, err
	}

	monitoring.RecordReportRun("success")
	logCtx.InfoContext(ctx, "Due report run finished.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("loans", rep.Summary.TotalLoans),
		slog.Int("overdue", rep.Summary.OverdueCount),
	)
	return rep, nil
}

func (j *Job) saveLocalCopy(rep *Report) error {
	if err := os.MkdirAll(j.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create report output dir: %w", err)
	}
	path := filepath.Join(j.cfg.OutputDir, rep.Filename())
	if err := os.WriteFile(path, rep.CSV, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	j.logger.Info("Report saved locally.", "path", path)
	return nil
}

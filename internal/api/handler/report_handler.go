package handler

import (
	"log/slog"
	"net/http"

	"loan-monitor/internal/api/handler/dto"
	"loan-monitor/internal/report"
)

type ReportHandler struct {
	job    *report.Job
	logger *slog.Logger
}

func NewReportHandler(job *report.Job, l *slog.Logger) *ReportHandler {
	if job == nil {
		panic("report job cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &ReportHandler{
		job:    job,
		logger: l.With("component", "ReportHandler"),
	}
}

// TriggerDueReport handles POST /reports/due
// @Summary Generate the loans due report on demand
// @Description Runs the due loans report immediately and returns its summary. The CSV is emailed and saved according to the report configuration.
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.ReportSummaryResponse "Report generated"
// @Failure 500 {object} dto.ErrorResponse "Report generation failed"
// @Router /reports/due [post]
// @Security BearerAuth
func (h *ReportHandler) TriggerDueReport(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "Manual due report run requested")

	rep, err := h.job.Run(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Due report run failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewReportSummaryResponse(rep.Summary))
}

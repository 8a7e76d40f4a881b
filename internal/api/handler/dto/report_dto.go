package dto

import (
	"time"

	"loan-monitor/internal/report"
)

type ReportSummaryResponse struct {
	GeneratedAt        time.Time `json:"generatedAt"`
	DaysAhead          int       `json:"daysAhead"`
	TotalLoans         int       `json:"totalLoans"`
	TotalOutstanding   string    `json:"totalOutstanding"`
	OverdueCount       int       `json:"overdueCount"`
	OverdueOutstanding string    `json:"overdueOutstanding"`
	DueTodayCount      int       `json:"dueTodayCount"`
	DueSoonCount       int       `json:"dueSoonCount"`
	DueLaterCount      int       `json:"dueLaterCount"`
}

func NewReportSummaryResponse(s report.Summary) ReportSummaryResponse {
	return ReportSummaryResponse{
		GeneratedAt:        s.GeneratedAt,
		DaysAhead:          s.DaysAhead,
		TotalLoans:         s.TotalLoans,
		TotalOutstanding:   s.TotalOutstanding.StringFixed(2),
		OverdueCount:       s.OverdueCount,
		OverdueOutstanding: s.OverdueOutstanding.StringFixed(2),
		DueTodayCount:      s.DueTodayCount,
		DueSoonCount:       s.DueSoonCount,
		DueLaterCount:      s.DueLaterCount,
	}
}

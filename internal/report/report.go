package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"loan-monitor/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// csvHeader is the column layout loan officers receive. Order matters to the
// people reading it, keep it stable.
var csvHeader = []string{
	"Customer Name",
	"Loan ID",
	"Amount Borrowed",
	"Outstanding Balance",
	"Due Date",
	"Days Remaining",
	"Phone",
	"Email",
	"Loan Officer",
	"Branch",
	"Status",
}

// Summary aggregates a due report for the email body and the logs.
type Summary struct {
	GeneratedAt        time.Time
	DaysAhead          int
	TotalLoans         int
	TotalOutstanding   decimal.Decimal
	OverdueCount       int
	OverdueOutstanding decimal.Decimal
	DueTodayCount      int
	DueSoonCount       int // due in 1 to 3 days
	DueLaterCount      int // due in 4 or more days
}

type Report struct {
	Rows    []loan.DueLoan
	Summary Summary
	CSV     []byte
}

// Build renders the due loans into a CSV document and computes the summary
// buckets. An empty slice still yields a valid header-only CSV.
func Build(rows []loan.DueLoan, daysAhead int, generatedAt time.Time) (*Report, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	summary := Summary{
		GeneratedAt:        generatedAt,
		DaysAhead:          daysAhead,
		TotalLoans:         len(rows),
		TotalOutstanding:   decimal.Zero,
		OverdueOutstanding: decimal.Zero,
	}

	for _, row := range rows {
		outstanding := decimal.NewFromFloat(row.OutstandingBalance)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(outstanding)

		switch {
		case row.DaysRemaining < 0 || row.Status == loan.StatusOverdue:
			summary.OverdueCount++
			summary.OverdueOutstanding = summary.OverdueOutstanding.Add(outstanding)
		case row.DaysRemaining == 0:
			summary.DueTodayCount++
		case row.DaysRemaining <= 3:
			summary.DueSoonCount++
		default:
			summary.DueLaterCount++
		}

		record := []string{
			row.CustomerName,
			row.LoanID,
			decimal.NewFromFloat(row.AmountBorrowed).StringFixed(2),
			outstanding.StringFixed(2),
			row.DueDate.Format(time.DateOnly),
			strconv.Itoa(row.DaysRemaining),
			row.PhoneNumber,
			row.Email,
			row.LoanOfficer,
			row.BranchName,
			string(row.Status),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write report row for loan '%s': %w", row.LoanID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush report: %w", err)
	}

	return &Report{Rows: rows, Summary: summary, CSV: buf.Bytes()}, nil
}

// Filename derives the attachment name from the generation date.
func (r *Report) Filename() string {
	return fmt.Sprintf("loans_due_report_%s.csv", r.Summary.GeneratedAt.Format("2006-01-02"))
}

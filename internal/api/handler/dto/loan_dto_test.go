package dto

import (
	"testing"
	"time"

	"loan-monitor/internal/domain/loan"

	"github.com/stretchr/testify/assert"
)

func validCreateLoanRequest() CreateLoanRequest {
	return CreateLoanRequest{
		LoanID:             "LN-2024-0101",
		CustomerID:         1,
		BranchID:           1,
		AmountBorrowed:     150000,
		OutstandingBalance: 45000,
		DueDate:            "2026-09-15",
		Status:             "Active",
	}
}

func TestCreateLoanRequestValidate(t *testing.T) {
	req := validCreateLoanRequest()
	assert.NoError(t, req.Validate())

	tests := []struct {
		name   string
		mutate func(*CreateLoanRequest)
	}{
		{"empty loan id", func(r *CreateLoanRequest) { r.LoanID = " " }},
		{"zero customer id", func(r *CreateLoanRequest) { r.CustomerID = 0 }},
		{"zero branch id", func(r *CreateLoanRequest) { r.BranchID = 0 }},
		{"zero amount", func(r *CreateLoanRequest) { r.AmountBorrowed = 0 }},
		{"bad due date", func(r *CreateLoanRequest) { r.DueDate = "15/09/2026" }},
		{"empty due date", func(r *CreateLoanRequest) { r.DueDate = "" }},
		{"unknown status", func(r *CreateLoanRequest) { r.Status = "Defaulted" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := validCreateLoanRequest()
			tt.mutate(&bad)
			assert.Error(t, bad.Validate())
		})
	}
}

func TestUpdateLoanBalanceRequestValidate(t *testing.T) {
	req := UpdateLoanBalanceRequest{OutstandingBalance: 100, Status: "Active"}
	assert.NoError(t, req.Validate())

	req = UpdateLoanBalanceRequest{OutstandingBalance: -1, Status: "Active"}
	assert.Error(t, req.Validate())

	req = UpdateLoanBalanceRequest{OutstandingBalance: 100, Status: "Pending"}
	assert.Error(t, req.Validate())
}

func TestRecordPaymentRequestValidate(t *testing.T) {
	assert.NoError(t, (&RecordPaymentRequest{Amount: 50}).Validate())
	assert.Error(t, (&RecordPaymentRequest{Amount: 0}).Validate())
	assert.Error(t, (&RecordPaymentRequest{Amount: -50}).Validate())
}

func TestNewLoanResponseFormatsMoney(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	domainLoan := &loan.Loan{
		ID:                 "LN-2024-0101",
		CustomerID:         1,
		BranchID:           2,
		AmountBorrowed:     150000,
		OutstandingBalance: 45000.5,
		DueDate:            due,
		Status:             loan.StatusActive,
	}

	resp := NewLoanResponse(domainLoan)
	assert.Equal(t, "150000.00", resp.AmountBorrowed)
	assert.Equal(t, "45000.50", resp.OutstandingBalance)
	assert.Equal(t, "2026-09-15", resp.DueDate)
	assert.Equal(t, "Active", resp.Status)
}

func TestNewDueLoanResponse(t *testing.T) {
	d := loan.DueLoan{
		LoanID:             "LN-2024-0102",
		CustomerName:       "Mary Njeri",
		AmountBorrowed:     80000,
		OutstandingBalance: 80000,
		DueDate:            time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		DaysRemaining:      -1,
		Status:             loan.StatusOverdue,
	}

	resp := NewDueLoanResponse(d)
	assert.Equal(t, "80000.00", resp.OutstandingBalance)
	assert.Equal(t, -1, resp.DaysRemaining)
	assert.Equal(t, "Overdue", resp.Status)
}

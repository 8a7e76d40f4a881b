package dto

import (
	"fmt"
	"strings"
	"time"

	"loan-monitor/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	LoanID             string  `json:"loanId"`
	CustomerID         int64   `json:"customerId"`
	BranchID           int64   `json:"branchId"`
	AmountBorrowed     float64 `json:"amountBorrowed"`
	OutstandingBalance float64 `json:"outstandingBalance"`
	DueDate            string  `json:"dueDate"`
	Status             string  `json:"status"`
}

func (r *CreateLoanRequest) Validate() error {
	if strings.TrimSpace(r.LoanID) == "" {
		return fmt.Errorf("loanId cannot be empty")
	}
	if r.CustomerID <= 0 {
		return fmt.Errorf("customerId must be positive")
	}
	if r.BranchID <= 0 {
		return fmt.Errorf("branchId must be positive")
	}
	if r.AmountBorrowed <= 0 {
		return fmt.Errorf("amountBorrowed must be greater than zero")
	}
	if _, err := time.Parse(time.DateOnly, r.DueDate); err != nil || r.DueDate == "" {
		return fmt.Errorf("invalid dueDate format (use YYYY-MM-DD): %w", err)
	}
	if _, err := loan.ParseStatus(r.Status); err != nil {
		return err
	}
	return nil
}

type UpdateLoanBalanceRequest struct {
	OutstandingBalance float64 `json:"outstandingBalance"`
	Status             string  `json:"status"`
}

func (r *UpdateLoanBalanceRequest) Validate() error {
	if r.OutstandingBalance < 0 {
		return fmt.Errorf("outstandingBalance cannot be negative")
	}
	if _, err := loan.ParseStatus(r.Status); err != nil {
		return err
	}
	return nil
}

type RecordPaymentRequest struct {
	Amount float64 `json:"amount"`
}

func (r *RecordPaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}

type LoanResponse struct {
	LoanID             string    `json:"loanId"`
	CustomerID         int64     `json:"customerId"`
	BranchID           int64     `json:"branchId"`
	AmountBorrowed     string    `json:"amountBorrowed"`
	OutstandingBalance string    `json:"outstandingBalance"`
	DueDate            string    `json:"dueDate"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func NewLoanResponse(domainLoan *loan.Loan) LoanResponse {
	return LoanResponse{
		LoanID:             domainLoan.ID,
		CustomerID:         domainLoan.CustomerID,
		BranchID:           domainLoan.BranchID,
		AmountBorrowed:     decimal.NewFromFloat(domainLoan.AmountBorrowed).StringFixed(2),
		OutstandingBalance: decimal.NewFromFloat(domainLoan.OutstandingBalance).StringFixed(2),
		DueDate:            domainLoan.DueDate.Format(time.DateOnly),
		Status:             string(domainLoan.Status),
		CreatedAt:          domainLoan.CreatedAt,
		UpdatedAt:          domainLoan.UpdatedAt,
	}
}

type DueLoanResponse struct {
	LoanID             string `json:"loanId"`
	CustomerName       string `json:"customerName"`
	AmountBorrowed     string `json:"amountBorrowed"`
	OutstandingBalance string `json:"outstandingBalance"`
	DueDate            string `json:"dueDate"`
	DaysRemaining      int    `json:"daysRemaining"`
	PhoneNumber        string `json:"phoneNumber"`
	Email              string `json:"email"`
	LoanOfficer        string `json:"loanOfficer"`
	BranchName         string `json:"branchName"`
	Status             string `json:"status"`
}

func NewDueLoanResponse(d loan.DueLoan) DueLoanResponse {
	return DueLoanResponse{
		LoanID:             d.LoanID,
		CustomerName:       d.CustomerName,
		AmountBorrowed:     decimal.NewFromFloat(d.AmountBorrowed).StringFixed(2),
		OutstandingBalance: decimal.NewFromFloat(d.OutstandingBalance).StringFixed(2),
		DueDate:            d.DueDate.Format(time.DateOnly),
		DaysRemaining:      d.DaysRemaining,
		PhoneNumber:        d.PhoneNumber,
		Email:              d.Email,
		LoanOfficer:        d.LoanOfficer,
		BranchName:         d.BranchName,
		Status:             string(d.Status),
	}
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

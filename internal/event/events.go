package event

import "time"

type LoanEventPayload struct {
	LoanID             string  `json:"loanId"`
	CustomerID         int64   `json:"customerId"`
	BranchID           int64   `json:"branchId"`
	AmountBorrowed     float64 `json:"amountBorrowed"`
	OutstandingBalance float64 `json:"outstandingBalance"`
	DueDate            string  `json:"dueDate"`
	Status             string  `json:"status"`
}

type LoanCreatedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

type LoanStatusChangedEvent struct {
	LoanID    string    `json:"loanId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Timestamp time.Time `json:"timestamp"`
}

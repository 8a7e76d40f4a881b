package branch

import "time"

// Branch is a loan-issuing unit with an assigned officer. Branches are
// created at setup time and never deleted while a loan references them.
type Branch struct {
	BranchID    int64     `json:"branchId"`
	Name        string    `json:"name"`
	LoanOfficer string    `json:"loanOfficer"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewBranch(name, officer string) *Branch {
	now := time.Now()
	return &Branch{
		Name:        name,
		LoanOfficer: officer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

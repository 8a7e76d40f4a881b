package dto

import (
	"fmt"
	"strings"
	"time"

	"loan-monitor/internal/domain/branch"
)

type CreateBranchRequest struct {
	BranchName  string `json:"branchName"`
	LoanOfficer string `json:"loanOfficer"`
}

func (r *CreateBranchRequest) Validate() error {
	if strings.TrimSpace(r.BranchName) == "" {
		return fmt.Errorf("branchName cannot be empty")
	}
	if strings.TrimSpace(r.LoanOfficer) == "" {
		return fmt.Errorf("loanOfficer cannot be empty")
	}
	return nil
}

type BranchResponse struct {
	BranchID    int64     `json:"branchId"`
	BranchName  string    `json:"branchName"`
	LoanOfficer string    `json:"loanOfficer"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewBranchResponse(b *branch.Branch) BranchResponse {
	return BranchResponse{
		BranchID:    b.BranchID,
		BranchName:  b.Name,
		LoanOfficer: b.LoanOfficer,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

package dto

import (
	"fmt"
	"strings"
	"time"

	"loan-monitor/internal/domain/customer"
)

type CreateCustomerRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

func (r *CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("fullName cannot be empty")
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return fmt.Errorf("phoneNumber cannot be empty")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email must be a valid email address")
	}
	return nil
}

type CustomerResponse struct {
	CustomerID  int64     `json:"customerId"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:  c.CustomerID,
		FullName:    c.FullName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

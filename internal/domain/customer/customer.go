package customer

import "time"

type Customer struct {
	CustomerID  int64     `json:"customerId"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewCustomer(fullName, phoneNumber, email string) *Customer {
	now := time.Now()
	return &Customer{
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		Email:       email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

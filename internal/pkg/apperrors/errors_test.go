package apperrors

import (
	"errors"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestValidationErrorError(t *testing.T) {
	tests := []struct {
		name     string
		valError *ValidationError
		expected string
	}{
		{
			name: "With Field",
			valError: &ValidationError{
				Field:   "loan_status",
				Message: "must be one of Active, Overdue, Paid",
			},
			expected: "validation failed for field 'loan_status': must be one of Active, Overdue, Paid",
		},
		{
			name: "Without Field",
			valError: &ValidationError{
				Message: "outstanding balance exceeds amount borrowed",
			},
			expected: "validation failed: outstanding balance exceeds amount borrowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.valError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNewValidationErrorWrapsSentinel(t *testing.T) {
	err := NewValidationError("loan_id", "cannot be empty")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected error to wrap ErrValidation, got %v", err)
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected error to unwrap to *ValidationError, got %v", err)
	}
	if valErr.Field != "loan_id" {
		t.Errorf("expected field 'loan_id', got %q", valErr.Field)
	}
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDatabaseError(cause, "failed to insert loan")

	if !errors.Is(err, ErrDatabase) {
		t.Errorf("expected error to wrap ErrDatabase, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected error to wrap original cause, got %v", err)
	}
	if err.Error() != "[DB_ERROR] failed to insert loan" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loan-monitor/internal/api/handler/dto"
	"loan-monitor/internal/domain/customer"
	"loan-monitor/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, fullName, phoneNumber, email string) (*customer.Customer, error) {
	args := m.Called(ctx, fullName, phoneNumber, email)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func sampleCustomer() *customer.Customer {
	return &customer.Customer{
		CustomerID:  1,
		FullName:    "John Mwangi",
		PhoneNumber: "+254700111001",
		Email:       "john.mwangi@example.com",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestCustomerHandlerCreateCustomer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("successfully creates a customer", func(t *testing.T) {
		mockService := new(MockCustomerService)
		handler := NewCustomerHandler(mockService, logger)

		mockService.On("CreateCustomer", mock.Anything, "John Mwangi", "+254700111001", "john.mwangi@example.com").
			Return(sampleCustomer(), nil)

		body := `{"fullName":"John Mwangi","phoneNumber":"+254700111001","email":"john.mwangi@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.CustomerResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(1), resp.CustomerID)
		assert.Equal(t, "John Mwangi", resp.FullName)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a payload without an email", func(t *testing.T) {
		mockService := new(MockCustomerService)
		handler := NewCustomerHandler(mockService, logger)

		body := `{"fullName":"John Mwangi","phoneNumber":"+254700111001","email":""}`
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateCustomer")
	})

	t.Run("surfaces a service validation failure", func(t *testing.T) {
		mockService := new(MockCustomerService)
		handler := NewCustomerHandler(mockService, logger)

		mockService.On("CreateCustomer", mock.Anything, "Jane", "0700", "jane@example.com").
			Return(nil, apperrors.NewValidationError("phone_number", "cannot be empty"))

		body := `{"fullName":"Jane","phoneNumber":"0700","email":"jane@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCustomerHandlerGetCustomer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("successfully retrieves a customer", func(t *testing.T) {
		mockService := new(MockCustomerService)
		handler := NewCustomerHandler(mockService, logger)

		mockService.On("GetCustomer", mock.Anything, int64(1)).Return(sampleCustomer(), nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/1", nil), "customerID", "1")
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "john.mwangi@example.com", resp.Email)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 404 when the customer does not exist", func(t *testing.T) {
		mockService := new(MockCustomerService)
		handler := NewCustomerHandler(mockService, logger)

		mockService.On("GetCustomer", mock.Anything, int64(42)).Return(nil, apperrors.ErrNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/42", nil), "customerID", "42")
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a non-numeric customer ID", func(t *testing.T) {
		mockService := new(MockCustomerService)
		handler := NewCustomerHandler(mockService, logger)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/abc", nil), "customerID", "abc")
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "GetCustomer")
	})
}

func TestCustomerHandlerListCustomers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("returns all customers", func(t *testing.T) {
		mockService := new(MockCustomerService)
		handler := NewCustomerHandler(mockService, logger)

		second := sampleCustomer()
		second.CustomerID = 2
		second.FullName = "Mary Njeri"
		mockService.On("ListCustomers", mock.Anything).Return([]*customer.Customer{sampleCustomer(), second}, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		rec := httptest.NewRecorder()

		handler.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.CustomerResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 2)
		assert.Equal(t, "Mary Njeri", resp[1].FullName)
		mockService.AssertExpectations(t)
	})

	t.Run("returns an empty array when there are no customers", func(t *testing.T) {
		mockService := new(MockCustomerService)
		handler := NewCustomerHandler(mockService, logger)

		mockService.On("ListCustomers", mock.Anything).Return([]*customer.Customer{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		rec := httptest.NewRecorder()

		handler.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
		mockService.AssertExpectations(t)
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"loan-monitor/internal/api/handler/dto"
	"loan-monitor/internal/domain/loan"
	"loan-monitor/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type LoanHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewLoanHandler(s loan.Service, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrReferential):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrConstraint):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrInvalidPaymentAmount), errors.Is(err, apperrors.ErrLoanAlreadyPaid):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getLoanIDFromURL(r *http.Request) (string, error) {
	id := chi.URLParam(r, "loanID")
	if id == "" {
		return "", fmt.Errorf("%w: loanID not found in URL path", apperrors.ErrInvalidArgument)
	}
	return id, nil
}

// CreateLoan handles POST /loans
// @Summary Create a new loan
// @Description Records a loan disbursement. The loan ID is caller-assigned; the customer and branch must already exist.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 409 {object} dto.ErrorResponse "Duplicate loan ID or unknown customer/branch"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Loan request validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	dueDate, _ := time.Parse(time.DateOnly, req.DueDate)

	createdLoan, err := h.service.CreateLoan(r.Context(), req.LoanID, req.CustomerID, req.BranchID,
		req.AmountBorrowed, req.OutstandingBalance, dueDate, loan.Status(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(createdLoan))
}

// GetLoan handles GET /loans/{loanID}
// @Summary Retrieve loan details
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details retrieved"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	domainLoan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get loan", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(domainLoan))
}

// UpdateLoanBalance handles PUT /loans/{loanID}/balance
// @Summary Update loan balance and status
// @Description Sets a new outstanding balance and status. A Paid loan cannot leave the Paid status, and a zero balance requires Paid.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param request body dto.UpdateLoanBalanceRequest true "New balance and status"
// @Success 200 {object} dto.LoanResponse "Loan updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Status constraint violated"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/balance [put]
// @Security BearerAuth
func (h *LoanHandler) UpdateLoanBalance(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdateLoanBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.UpdateLoanBalance(r.Context(), loanID, req.OutstandingBalance, loan.Status(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(updated))
}

// RecordPayment handles POST /loans/{loanID}/payments
// @Summary Record a payment against a loan
// @Description Reduces the outstanding balance. When the balance reaches zero the loan transitions to Paid.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param request body dto.RecordPaymentRequest true "Payment amount"
// @Success 200 {object} dto.LoanResponse "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or loan already paid"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/payments [post]
// @Security BearerAuth
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RecordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.RecordPayment(r.Context(), loanID, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(updated))
}

// ListLoansDue handles GET /loans/due
// @Summary List loans due within a window
// @Description Returns loans due within the next N days joined with customer and branch detail. Overdue loans are included when include_overdue=true. Paid loans never appear.
// @Tags Loans
// @Produce json
// @Param days query int false "Days ahead (default 7)" Minimum(0)
// @Param include_overdue query bool false "Include already overdue loans"
// @Success 200 {array} dto.DueLoanResponse "Loans due in the window"
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/due [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoansDue(w http.ResponseWriter, r *http.Request) {
	daysAhead := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 0 {
			respondError(w, fmt.Errorf("%w: invalid days parameter: %s", apperrors.ErrInvalidArgument, daysStr))
			return
		}
		daysAhead = parsed
	}
	includeOverdue := r.URL.Query().Get("include_overdue") == "true"

	due, err := h.service.LoansDueWithin(r.Context(), time.Now(), daysAhead, includeOverdue)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list due loans", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.DueLoanResponse, len(due))
	for i, d := range due {
		resp[i] = dto.NewDueLoanResponse(d)
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListLoans handles GET /loans
// @Summary List loans filtered by status, branch or customer
// @Description Exactly one of status, branch_id or customer_id must be supplied.
// @Tags Loans
// @Produce json
// @Param status query string false "Loan status (Active, Overdue, Paid)"
// @Param branch_id query int false "Branch ID"
// @Param customer_id query int false "Customer ID"
// @Success 200 {array} dto.LoanResponse "Matching loans"
// @Failure 400 {object} dto.ErrorResponse "Invalid or missing filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	statusStr := r.URL.Query().Get("status")
	branchStr := r.URL.Query().Get("branch_id")
	customerStr := r.URL.Query().Get("customer_id")

	var loans []*loan.Loan
	var err error

	switch {
	case statusStr != "":
		loans, err = h.service.LoansByStatus(r.Context(), loan.Status(statusStr))
	case branchStr != "":
		var branchID int64
		branchID, err = strconv.ParseInt(branchStr, 10, 64)
		if err != nil {
			respondError(w, fmt.Errorf("%w: invalid branch_id: %s", apperrors.ErrInvalidArgument, branchStr))
			return
		}
		loans, err = h.service.LoansByBranch(r.Context(), branchID)
	case customerStr != "":
		var customerID int64
		customerID, err = strconv.ParseInt(customerStr, 10, 64)
		if err != nil {
			respondError(w, fmt.Errorf("%w: invalid customer_id: %s", apperrors.ErrInvalidArgument, customerStr))
			return
		}
		loans, err = h.service.LoansByCustomer(r.Context(), customerID)
	default:
		respondError(w, fmt.Errorf("%w: one of status, branch_id or customer_id is required", apperrors.ErrInvalidArgument))
		return
	}

	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.LoanResponse, len(loans))
	for i, l := range loans {
		resp[i] = dto.NewLoanResponse(l)
	}
	respondJSON(w, http.StatusOK, resp)
}

package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"loan-monitor/internal/domain/loan"
	"loan-monitor/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const pgxmockExpectationsNotMetMsg = "pgxmock expectations not met"

var loanColumnNames = []string{
	"loan_id", "customer_id", "branch_id", "amount_borrowed",
	"outstanding_balance", "due_date", "loan_status", "created_at", "updated_at",
}

func setupLoanRepo(t *testing.T) (context.Context, *LoanRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewLoanRepository(mockPool, logger)

	return ctx, repo, mockPool
}

func testLoan() *loan.Loan {
	return &loan.Loan{
		ID:                 "LN-2024-0101",
		CustomerID:         1,
		BranchID:           1,
		AmountBorrowed:     150000,
		OutstandingBalance: 45000,
		DueDate:            time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:             loan.StatusActive,
	}
}

func TestCreateLoanWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	newLoan := testLoan()
	now := time.Now()

	query := `
        INSERT INTO loans (loan_id, customer_id, branch_id, amount_borrowed, outstanding_balance, due_date, loan_status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING ` + loanColumns

	mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(
		newLoan.ID,
		newLoan.CustomerID,
		newLoan.BranchID,
		newLoan.AmountBorrowed,
		newLoan.OutstandingBalance,
		newLoan.DueDate,
		newLoan.Status,
	).WillReturnRows(pgxmock.NewRows(loanColumnNames).AddRow(
		newLoan.ID, newLoan.CustomerID, newLoan.BranchID,
		newLoan.AmountBorrowed, newLoan.OutstandingBalance,
		newLoan.DueDate, newLoan.Status, now, now,
	))

	created, err := repo.CreateLoan(ctx, newLoan)
	assert.NoError(t, err)
	assert.Equal(t, newLoan.ID, created.ID)
	assert.Equal(t, loan.StatusActive, created.Status)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateLoanWhenDuplicateID(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	newLoan := testLoan()

	mockPool.ExpectQuery("INSERT INTO loans").WithArgs(
		newLoan.ID,
		newLoan.CustomerID,
		newLoan.BranchID,
		newLoan.AmountBorrowed,
		newLoan.OutstandingBalance,
		newLoan.DueDate,
		newLoan.Status,
	).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "loans_pkey"})

	created, err := repo.CreateLoan(ctx, newLoan)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrConstraint)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateLoanWhenUnknownCustomer(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	newLoan := testLoan()
	newLoan.CustomerID = 999

	mockPool.ExpectQuery("INSERT INTO loans").WithArgs(
		newLoan.ID,
		newLoan.CustomerID,
		newLoan.BranchID,
		newLoan.AmountBorrowed,
		newLoan.OutstandingBalance,
		newLoan.DueDate,
		newLoan.Status,
	).WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "loans_customer_id_fkey"})

	created, err := repo.CreateLoan(ctx, newLoan)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrReferential)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateLoanWhenNil(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	created, err := repo.CreateLoan(ctx, nil)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestGetLoanByIDWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	expected := testLoan()
	now := time.Now()

	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE loan_id = $1`

	mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(expected.ID).
		WillReturnRows(pgxmock.NewRows(loanColumnNames).AddRow(
			expected.ID, expected.CustomerID, expected.BranchID,
			expected.AmountBorrowed, expected.OutstandingBalance,
			expected.DueDate, expected.Status, now, now,
		))

	got, err := repo.GetLoanByID(ctx, expected.ID)
	assert.NoError(t, err)
	assert.Equal(t, expected.ID, got.ID)
	assert.Equal(t, expected.OutstandingBalance, got.OutstandingBalance)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestGetLoanByIDWhenNotFound(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery("SELECT").WithArgs("LN-0000-9999").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetLoanByID(ctx, "LN-0000-9999")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateBalanceStatusWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	query := `
        UPDATE loans
        SET outstanding_balance = $1,
            loan_status = $2,
            updated_at = NOW()
        WHERE loan_id = $3`

	mockPool.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(0.0, loan.StatusPaid, "LN-2024-0101").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateBalanceStatus(ctx, "LN-2024-0101", 0.0, loan.StatusPaid)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateBalanceStatusWhenNotFound(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectExec("UPDATE loans").
		WithArgs(100.0, loan.StatusActive, "LN-0000-9999").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateBalanceStatus(ctx, "LN-0000-9999", 100.0, loan.StatusActive)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateBalanceStatusWhenInvalidStatus(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectExec("UPDATE loans").
		WithArgs(100.0, loan.Status("Defaulted"), "LN-2024-0101").
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "loans_loan_status_check"})

	err := repo.UpdateBalanceStatus(ctx, "LN-2024-0101", 100.0, loan.Status("Defaulted"))
	assert.ErrorIs(t, err, apperrors.ErrConstraint)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func dueLoanRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"loan_id", "full_name", "amount_borrowed", "outstanding_balance",
		"due_date", "phone_number", "email", "loan_officer", "branch_name", "loan_status",
	})
}

func TestFindDueWithinWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	asOf := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	today := "2026-08-29"
	cutoff := "2026-09-05"

	mockPool.ExpectQuery("SELECT").WithArgs(today, cutoff).
		WillReturnRows(dueLoanRows().
			AddRow("LN-2024-0106", "Lucy Akinyi", 120000.0, 60000.0,
				asOf.AddDate(0, 0, 1), "+254700111006", "lucy.akinyi@example.com",
				"Alice Achieng", "Kisumu West", loan.StatusActive).
			AddRow("LN-2024-0101", "John Mwangi", 150000.0, 45000.0,
				asOf.AddDate(0, 0, 2), "+254700111001", "john.mwangi@example.com",
				"Grace Wanjiru", "Nairobi Central", loan.StatusActive))

	due, err := repo.FindDueWithin(ctx, asOf, 7, false)
	assert.NoError(t, err)
	assert.Len(t, due, 2)
	assert.Equal(t, "LN-2024-0106", due[0].LoanID)
	assert.Equal(t, 1, due[0].DaysRemaining)
	assert.Equal(t, 2, due[1].DaysRemaining)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindDueWithinIncludingOverdue(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	asOf := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SELECT").WithArgs("2026-08-29", "2026-09-05").
		WillReturnRows(dueLoanRows().
			AddRow("LN-2024-0102", "Mary Njeri", 80000.0, 80000.0,
				asOf.AddDate(0, 0, -1), "+254700111002", "mary.njeri@example.com",
				"Grace Wanjiru", "Nairobi Central", loan.StatusOverdue))

	due, err := repo.FindDueWithin(ctx, asOf, 7, true)
	assert.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, loan.StatusOverdue, due[0].Status)
	assert.Equal(t, -1, due[0].DaysRemaining)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindDueWithinWhenEmpty(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	asOf := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SELECT").WithArgs("2026-08-29", "2026-08-29").
		WillReturnRows(dueLoanRows())

	due, err := repo.FindDueWithin(ctx, asOf, 0, false)
	assert.NoError(t, err)
	assert.Empty(t, due)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindByStatusWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	l := testLoan()
	now := time.Now()

	mockPool.ExpectQuery("SELECT").WithArgs(loan.StatusActive).
		WillReturnRows(pgxmock.NewRows(loanColumnNames).AddRow(
			l.ID, l.CustomerID, l.BranchID,
			l.AmountBorrowed, l.OutstandingBalance,
			l.DueDate, l.Status, now, now,
		))

	loans, err := repo.FindByStatus(ctx, loan.StatusActive)
	assert.NoError(t, err)
	assert.Len(t, loans, 1)
	assert.Equal(t, l.ID, loans[0].ID)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindByBranchWhenQueryFails(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery("SELECT").WithArgs(int64(3)).
		WillReturnError(errors.New("connection reset"))

	loans, err := repo.FindByBranch(ctx, 3)
	assert.Nil(t, loans)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindOverdueCandidateIDs(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	asOf := time.Date(2026, 8, 29, 1, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SELECT loan_id").
		WithArgs(loan.StatusActive, "2026-08-29").
		WillReturnRows(pgxmock.NewRows([]string{"loan_id"}).
			AddRow("LN-2024-0102").
			AddRow("LN-2024-0105"))

	ids, err := repo.FindOverdueCandidateIDs(ctx, asOf)
	assert.NoError(t, err)
	assert.Equal(t, []string{"LN-2024-0102", "LN-2024-0105"}, ids)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestMarkOverdueWhenUpdated(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	asOf := time.Date(2026, 8, 29, 1, 0, 0, 0, time.UTC)

	mockPool.ExpectExec("UPDATE loans").
		WithArgs(loan.StatusOverdue, "LN-2024-0102", loan.StatusActive, "2026-08-29").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := repo.MarkOverdue(ctx, "LN-2024-0102", asOf)
	assert.NoError(t, err)
	assert.True(t, updated)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestMarkOverdueWhenAlreadyPaid(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	asOf := time.Date(2026, 8, 29, 1, 0, 0, 0, time.UTC)

	mockPool.ExpectExec("UPDATE loans").
		WithArgs(loan.StatusOverdue, "LN-2024-0104", loan.StatusActive, "2026-08-29").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err := repo.MarkOverdue(ctx, "LN-2024-0104", asOf)
	assert.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestTranslateDBError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, apperrors.ErrConstraint},
		{"check violation", &pgconn.PgError{Code: "23514"}, apperrors.ErrConstraint},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, apperrors.ErrReferential},
		{"other pg error", &pgconn.PgError{Code: "42703"}, apperrors.ErrDatabase},
		{"generic error", errors.New("boom"), apperrors.ErrDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateDBError(tt.input, logger)
			assert.ErrorIs(t, got, tt.expected)
		})
	}
}

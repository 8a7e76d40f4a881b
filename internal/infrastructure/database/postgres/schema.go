package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// The schema mirrors the monitored loan book: store-assigned branch and
// customer identities, caller-assigned loan identities, an enumerated status
// CHECK and restrictive foreign keys so a referenced branch or customer can
// never be removed out from under a loan.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS branches (
    branch_id    BIGSERIAL PRIMARY KEY,
    branch_name  TEXT NOT NULL,
    loan_officer TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS customers (
    customer_id  BIGSERIAL PRIMARY KEY,
    full_name    TEXT NOT NULL,
    phone_number TEXT NOT NULL,
    email        TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS loans (
    loan_id             TEXT PRIMARY KEY,
    customer_id         BIGINT NOT NULL REFERENCES customers(customer_id) ON DELETE RESTRICT,
    branch_id           BIGINT NOT NULL REFERENCES branches(branch_id) ON DELETE RESTRICT,
    amount_borrowed     DOUBLE PRECISION NOT NULL,
    outstanding_balance DOUBLE PRECISION NOT NULL,
    due_date            DATE NOT NULL,
    loan_status         TEXT NOT NULL CHECK (loan_status IN ('Active', 'Overdue', 'Paid')),
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_loans_due_date ON loans (due_date);
CREATE INDEX IF NOT EXISTS idx_loans_status   ON loans (loan_status);
CREATE INDEX IF NOT EXISTS idx_loans_branch   ON loans (branch_id);
CREATE INDEX IF NOT EXISTS idx_loans_customer ON loans (customer_id);
`

func BootstrapSchema(ctx context.Context, db DBPool, logger *slog.Logger) error {
	logger.Info("Ensuring database schema exists...")
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		logger.Error("Failed to bootstrap schema", "error", err)
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	logger.Info("Database schema ready.")
	return nil
}

type seedBranch struct {
	name    string
	officer string
}

type seedCustomer struct {
	fullName string
	phone    string
	email    string
}

type seedLoan struct {
	loanID        string
	customerIdx   int
	branchIdx     int
	amount        float64
	balance       float64
	dueDaysOffset int
	status        string
}

var demoBranches = []seedBranch{
	{"Nairobi Central", "Grace Wanjiru"},
	{"Mombasa Road", "Peter Otieno"},
	{"Kisumu West", "Alice Achieng"},
	{"Nakuru Town", "Samuel Kiprop"},
}

var demoCustomers = []seedCustomer{
	{"John Mwangi", "+254700111001", "john.mwangi@example.com"},
	{"Mary Njeri", "+254700111002", "mary.njeri@example.com"},
	{"David Ochieng", "+254700111003", "david.ochieng@example.com"},
	{"Sarah Wambui", "+254700111004", "sarah.wambui@example.com"},
	{"James Kamau", "+254700111005", "james.kamau@example.com"},
	{"Lucy Akinyi", "+254700111006", "lucy.akinyi@example.com"},
	{"Paul Mutua", "+254700111007", "paul.mutua@example.com"},
	{"Esther Chebet", "+254700111008", "esther.chebet@example.com"},
	{"Daniel Njoroge", "+254700111009", "daniel.njoroge@example.com"},
	{"Ruth Moraa", "+254700111010", "ruth.moraa@example.com"},
}

// Due dates are offsets from the seeding day so the demo book always has
// loans inside and outside the 7-day reporting window.
var demoLoans = []seedLoan{
	{"LN-2024-0101", 0, 0, 150000, 45000, 2, "Active"},
	{"LN-2024-0102", 1, 0, 80000, 80000, -1, "Overdue"},
	{"LN-2024-0103", 2, 1, 200000, 120000, 5, "Active"},
	{"LN-2024-0104", 3, 1, 50000, 15000, 7, "Active"},
	{"LN-2024-0105", 4, 2, 300000, 300000, -3, "Overdue"},
	{"LN-2024-0106", 5, 2, 120000, 60000, 1, "Active"},
	{"LN-2024-0107", 6, 3, 95000, 20000, 3, "Active"},
	{"LN-2024-0108", 7, 3, 175000, 90000, 6, "Active"},
	{"LN-2024-0109", 8, 0, 250000, 250000, 30, "Active"},
	{"LN-2024-0110", 9, 1, 60000, 35000, 14, "Active"},
}

// SeedDemoData loads the demo loan book when the store is empty. Safe to run
// on every startup.
func SeedDemoData(ctx context.Context, db DBPool, logger *slog.Logger) error {
	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM branches`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check for existing seed data: %w", err)
	}
	if count > 0 {
		logger.Info("Demo data already present, skipping seed.")
		return nil
	}

	logger.Info("Seeding demo loan book...")
	today := time.Now()

	branchIDs := make([]int64, len(demoBranches))
	for i, b := range demoBranches {
		err := db.QueryRow(ctx,
			`INSERT INTO branches (branch_name, loan_officer) VALUES ($1, $2) RETURNING branch_id`,
			b.name, b.officer,
		).Scan(&branchIDs[i])
		if err != nil {
			return fmt.Errorf("failed to seed branch '%s': %w", b.name, err)
		}
	}

	customerIDs := make([]int64, len(demoCustomers))
	for i, c := range demoCustomers {
		err := db.QueryRow(ctx,
			`INSERT INTO customers (full_name, phone_number, email) VALUES ($1, $2, $3) RETURNING customer_id`,
			c.fullName, c.phone, c.email,
		).Scan(&customerIDs[i])
		if err != nil {
			return fmt.Errorf("failed to seed customer '%s': %w", c.fullName, err)
		}
	}

	for _, l := range demoLoans {
		dueDate := today.AddDate(0, 0, l.dueDaysOffset).Format(time.DateOnly)
		_, err := db.Exec(ctx,
			`INSERT INTO loans (loan_id, customer_id, branch_id, amount_borrowed, outstanding_balance, due_date, loan_status)
             VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.loanID, customerIDs[l.customerIdx], branchIDs[l.branchIdx],
			l.amount, l.balance, dueDate, l.status,
		)
		if err != nil {
			return fmt.Errorf("failed to seed loan '%s': %w", l.loanID, err)
		}
	}

	logger.Info("Demo loan book seeded.",
		"branches", len(demoBranches),
		"customers", len(demoCustomers),
		"loans", len(demoLoans),
	)
	return nil
}

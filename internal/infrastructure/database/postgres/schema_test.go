package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func TestBootstrapSchema(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	defer mockPool.Close()

	mockPool.ExpectExec("CREATE TABLE IF NOT EXISTS branches").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	err = BootstrapSchema(context.Background(), mockPool, logger)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSeedDemoDataSkipsWhenPopulated(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	defer mockPool.Close()

	mockPool.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	err = SeedDemoData(context.Background(), mockPool, logger)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSeedDemoDataLoadsWhenEmpty(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	defer mockPool.Close()

	mockPool.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	for i := range demoBranches {
		mockPool.ExpectQuery("INSERT INTO branches").
			WillReturnRows(pgxmock.NewRows([]string{"branch_id"}).AddRow(int64(i + 1)))
	}
	for i := range demoCustomers {
		mockPool.ExpectQuery("INSERT INTO customers").
			WillReturnRows(pgxmock.NewRows([]string{"customer_id"}).AddRow(int64(i + 1)))
	}
	for range demoLoans {
		mockPool.ExpectExec("INSERT INTO loans").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	err = SeedDemoData(context.Background(), mockPool, logger)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

// Mirror of the FindDueWithin SQL filter: due_date BETWEEN today AND cutoff
// (inclusive), or due_date <= cutoff when overdue rows are wanted, Paid rows
// always excluded. The seed offsets are relative to the seeding day, so the
// window math works directly on them.
func seedLoansInWindow(daysAhead int, includeOverdue bool) []string {
	var ids []string
	for _, l := range demoLoans {
		if l.status == "Paid" {
			continue
		}
		if l.dueDaysOffset > daysAhead {
			continue
		}
		if !includeOverdue && l.dueDaysOffset < 0 {
			continue
		}
		ids = append(ids, l.loanID)
	}
	return ids
}

func TestSeedLoansSevenDayWindow(t *testing.T) {
	withOverdue := seedLoansInWindow(7, true)
	assert.Equal(t, []string{
		"LN-2024-0101", "LN-2024-0102", "LN-2024-0103", "LN-2024-0104",
		"LN-2024-0105", "LN-2024-0106", "LN-2024-0107", "LN-2024-0108",
	}, withOverdue)
	assert.NotContains(t, withOverdue, "LN-2024-0109")
	assert.NotContains(t, withOverdue, "LN-2024-0110")

	withoutOverdue := seedLoansInWindow(7, false)
	assert.Equal(t, []string{
		"LN-2024-0101", "LN-2024-0103", "LN-2024-0104",
		"LN-2024-0106", "LN-2024-0107", "LN-2024-0108",
	}, withoutOverdue)

	// due exactly on the cutoff day stays in, one day past it drops out
	assert.Contains(t, seedLoansInWindow(7, false), "LN-2024-0104")
	assert.NotContains(t, seedLoansInWindow(6, false), "LN-2024-0104")

	// widening to two weeks picks up the fourteen day loan but not the
	// thirty day one
	twoWeeks := seedLoansInWindow(14, true)
	assert.Contains(t, twoWeeks, "LN-2024-0110")
	assert.NotContains(t, twoWeeks, "LN-2024-0109")
}

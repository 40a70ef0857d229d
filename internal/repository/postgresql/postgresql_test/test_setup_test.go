package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/lrliang/hmf-ehr/internal/pkg/database"
	"github.com/lrliang/hmf-ehr/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds the connection shared by one test.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// Tests are skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4})
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, migrations.Apply(ctx, db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row written by the repositories.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"salary_details",
		"monthly_attendance_reports",
		"daily_attendance_reports",
		"attendance_punches",
		"employees",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// CreateEmployee inserts an employee row and returns its id.
func (s *TestDatabaseSetup) CreateEmployee(t *testing.T, no, name, status string, baseSalary string) string {
	t.Helper()

	var id string
	err := s.DB.QueryRow(context.Background(), `
		INSERT INTO employees (employee_no, name, base_salary, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, no, name, decimal.RequireFromString(baseSalary), status).Scan(&id)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}

package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zahabi-gold/zahabi-backend/pkg/migrate"
)

func TestBalancesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_accounts.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS account_balances",
		"FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE RESTRICT",
		"CHECK (amount >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_balances_account_asset",
		"DROP TABLE IF EXISTS account_balances",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestTransactionsMigrationGuardsRefunds(t *testing.T) {
	content := readMigration(t, "*_create_transactions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transactions",
		"FOREIGN KEY (original_transaction_id) REFERENCES transactions(id) ON DELETE RESTRICT",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_transactions_refund_of",
		"WHERE original_transaction_id IS NOT NULL",
		"CHECK (grams >= 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

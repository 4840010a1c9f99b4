package ledger

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate applies a row-level write lock. SQLite (used by the test suite)
// has no FOR UPDATE syntax and serializes writers globally, so the clause is
// only emitted on Postgres.
func forUpdate(tx *gorm.DB, table string) *gorm.DB {
	if tx.Dialector.Name() != "postgres" {
		return tx
	}
	locking := clause.Locking{Strength: "UPDATE"}
	if table != "" {
		locking.Table = clause.Table{Name: table}
	}
	return tx.Clauses(locking)
}

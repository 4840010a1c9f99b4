package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

const maxTxAttempts = 3

// errTxConflict marks a conflict the ledger detected itself (as opposed to
// one reported by the store); runInTx retries it like any other transient.
var errTxConflict = errors.New("ledger: transaction conflict")

// runInTx executes fn inside a database transaction, retrying a small bounded
// number of times when the store reports a concurrency conflict (serialization
// failure, deadlock, or a locked database). Anything else is returned as-is;
// exhausting the retries surfaces ErrServiceUnavailable.
func runInTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	backoff := retry.WithMaxRetries(maxTxAttempts-1, retry.NewFibonacci(10*time.Millisecond))

	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		txErr := db.Transaction(fn)
		if txErr != nil && isTransientConflict(txErr) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})

	if err != nil && isTransientConflict(err) {
		return ErrServiceUnavailable
	}
	return err
}

func isTransientConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errTxConflict) || errors.Is(err, gorm.ErrInvalidTransaction) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlstate 40001") ||
		strings.Contains(msg, "sqlstate 40p01")
}

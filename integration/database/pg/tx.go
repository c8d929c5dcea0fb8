package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// txContextKey is an unexported key type to avoid context key collisions.
type txContextKey struct{}

// beginner is the subset of *pgxpool.Pool needed to open a transaction.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Tx runs fn inside a transaction. The transaction rides on the context fn
// receives, so repositories resolving it with TxFromContext join the same
// transaction transparently. An error from fn rolls back, otherwise Tx
// commits.
func Tx(ctx context.Context, db beginner, fn func(ctx context.Context) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxFromContext extracts the transaction placed on the context by Tx. The
// second return value reports whether one was present.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx, ok
}

package db

import (
	"context"

	"github.com/zkotp-io/zkotp/internal/authz/entity"
	"github.com/zkotp-io/zkotp/internal/pkg/goerror"
)

// CreateAccount inserts the account atomically: the primary-key constraint is
// the single arbiter, so concurrent registrations for one id cannot both
// succeed. A duplicate reports goerror.ErrConflict.
func (s *DB) CreateAccount(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	err = withRetry(ctx, func(ctx context.Context) error {
		tag, err := s.conn.Exec(ctx,
			`INSERT INTO authz_accounts (id, secret_blob, created_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO NOTHING`,
			acc.ID, acc.SecretBlob, acc.CreatedAt,
		)
		if err != nil {
			return s.mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrConflict
		}
		return nil
	})
	return err
}

// GetAccount fetches one account, goerror.ErrNotFound when absent.
func (s *DB) GetAccount(ctx context.Context, id string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccount")
	defer func() { s.endSpan(span, err) }()

	var acc entity.Account
	err = withRetry(ctx, func(ctx context.Context) error {
		row := s.conn.QueryRow(ctx,
			`SELECT id, secret_blob, created_at FROM authz_accounts WHERE id = $1`, id)
		return s.mapError(row.Scan(&acc.ID, &acc.SecretBlob, &acc.CreatedAt))
	})
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

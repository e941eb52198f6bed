package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stickyboard/core/internal/ports"
)

// UserMetaStoreImpl implements the UserMetaStore interface
type UserMetaStoreImpl struct {
	db *sqlx.DB
}

// NewUserMetaStore creates a new per-user metadata store
func NewUserMetaStore(db *sqlx.DB) ports.UserMetaStore {
	return &UserMetaStoreImpl{db: db}
}

func (s *UserMetaStoreImpl) Get(ctx context.Context, userID, key string) (string, bool, error) {
	query := s.db.Rebind(`SELECT meta_value FROM user_meta WHERE user_id = ? AND meta_key = ?`)

	var value string
	if err := s.db.GetContext(ctx, &value, query, userID, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get user meta: %w", err)
	}
	return value, true, nil
}

func (s *UserMetaStoreImpl) Set(ctx context.Context, userID, key, value string) error {
	query := s.db.Rebind(`
		INSERT INTO user_meta (user_id, meta_key, meta_value)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`)

	if _, err := s.db.ExecContext(ctx, query, userID, key, value); err != nil {
		return fmt.Errorf("set user meta: %w", err)
	}
	return nil
}

func (s *UserMetaStoreImpl) Delete(ctx context.Context, userID, key string) error {
	query := s.db.Rebind(`DELETE FROM user_meta WHERE user_id = ? AND meta_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID, key); err != nil {
		return fmt.Errorf("delete user meta: %w", err)
	}
	return nil
}

func (s *UserMetaStoreImpl) DeleteKey(ctx context.Context, key string) (int64, error) {
	query := s.db.Rebind(`DELETE FROM user_meta WHERE meta_key = ?`)
	result, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return 0, fmt.Errorf("delete user meta %s: %w", key, err)
	}
	return result.RowsAffected()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stickyboard/core/internal/infrastructure/database"
	"github.com/stickyboard/core/internal/ports"
)

// NoteMetaStoreImpl implements the NoteMetaStore interface
type NoteMetaStoreImpl struct {
	db *database.DB
}

// NewNoteMetaStore creates a new note metadata store
func NewNoteMetaStore(db *database.DB) ports.NoteMetaStore {
	return &NoteMetaStoreImpl{db: db}
}

type metaRow struct {
	NoteID int64  `db:"note_id"`
	Key    string `db:"meta_key"`
	Value  string `db:"meta_value"`
}

func (s *NoteMetaStoreImpl) Get(ctx context.Context, noteID int64, key string) (string, bool, error) {
	query := s.db.DB.Rebind(`SELECT meta_value FROM note_meta WHERE note_id = ? AND meta_key = ?`)

	var value string
	if err := s.db.DB.GetContext(ctx, &value, query, noteID, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get note meta: %w", err)
	}
	return value, true, nil
}

func (s *NoteMetaStoreImpl) GetAll(ctx context.Context, noteID int64) (map[string]string, error) {
	all, err := s.GetForNotes(ctx, []int64{noteID})
	if err != nil {
		return nil, err
	}
	if meta, ok := all[noteID]; ok {
		return meta, nil
	}
	return map[string]string{}, nil
}

func (s *NoteMetaStoreImpl) GetForNotes(ctx context.Context, noteIDs []int64) (map[int64]map[string]string, error) {
	out := make(map[int64]map[string]string, len(noteIDs))
	if len(noteIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT note_id, meta_key, meta_value FROM note_meta WHERE note_id IN (?)`, noteIDs)
	if err != nil {
		return nil, fmt.Errorf("get notes meta: %w", err)
	}

	var rows []metaRow
	if err := s.db.DB.SelectContext(ctx, &rows, s.db.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get notes meta: %w", err)
	}

	for _, row := range rows {
		meta, ok := out[row.NoteID]
		if !ok {
			meta = make(map[string]string)
			out[row.NoteID] = meta
		}
		meta[row.Key] = row.Value
	}
	return out, nil
}

func (s *NoteMetaStoreImpl) ValuesByKey(ctx context.Context, key string) (map[int64]string, error) {
	query := s.db.DB.Rebind(`SELECT note_id, meta_key, meta_value FROM note_meta WHERE meta_key = ?`)

	var rows []metaRow
	if err := s.db.DB.SelectContext(ctx, &rows, query, key); err != nil {
		return nil, fmt.Errorf("list note meta %s: %w", key, err)
	}

	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[row.NoteID] = row.Value
	}
	return out, nil
}

func (s *NoteMetaStoreImpl) Set(ctx context.Context, noteID int64, key, value string) error {
	return upsertMeta(ctx, s.db.DB, noteID, map[string]string{key: value})
}

func (s *NoteMetaStoreImpl) SetMany(ctx context.Context, key string, values map[int64]string) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}

	var written int
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(upsertLiveMetaSQL)
		for noteID, value := range values {
			result, err := tx.ExecContext(ctx, query, noteID, key, value, noteID)
			if err != nil {
				return fmt.Errorf("set note meta %s: %w", key, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("set note meta %s: %w", key, err)
			}
			written += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (s *NoteMetaStoreImpl) Delete(ctx context.Context, noteID int64, key string) error {
	query := s.db.DB.Rebind(`DELETE FROM note_meta WHERE note_id = ? AND meta_key = ?`)
	if _, err := s.db.DB.ExecContext(ctx, query, noteID, key); err != nil {
		return fmt.Errorf("delete note meta: %w", err)
	}
	return nil
}

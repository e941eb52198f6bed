package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stickyboard/core/internal/domain/entities"
	"github.com/stickyboard/core/internal/infrastructure/database"
	"github.com/stickyboard/core/internal/ports"
)

// NoteStoreImpl implements the NoteStore interface on sqlx. Queries are
// written with ? placeholders and rebound for the active driver.
type NoteStoreImpl struct {
	db *database.DB
}

// NewNoteStore creates a new note store
func NewNoteStore(db *database.DB) ports.NoteStore {
	return &NoteStoreImpl{db: db}
}

const noteColumns = `id, title, owner_id, created_at, updated_at`

func (s *NoteStoreImpl) Create(ctx context.Context, note *entities.NoteRecord, meta map[string]string) error {
	if note.OwnerID == "" {
		return fmt.Errorf("create note: %w", entities.ErrInvalidInput)
	}

	now := time.Now().UTC()
	note.CreatedAt, note.UpdatedAt = now, now

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO notes (title, owner_id, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			RETURNING id`)

		if err := tx.QueryRowxContext(ctx, query, note.Title, note.OwnerID, note.CreatedAt, note.UpdatedAt).Scan(&note.ID); err != nil {
			return fmt.Errorf("create note: %w", err)
		}

		return upsertMeta(ctx, tx, note.ID, meta)
	})
}

func (s *NoteStoreImpl) GetByID(ctx context.Context, id int64) (*entities.NoteRecord, error) {
	query := s.db.DB.Rebind(`SELECT ` + noteColumns + ` FROM notes WHERE id = ?`)

	var note entities.NoteRecord
	if err := s.db.DB.GetContext(ctx, &note, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note by id: %w", err)
	}

	return &note, nil
}

func (s *NoteStoreImpl) Update(ctx context.Context, note *entities.NoteRecord) error {
	query := s.db.DB.Rebind(`UPDATE notes SET title = ?, updated_at = ? WHERE id = ?`)

	note.UpdatedAt = time.Now().UTC()
	result, err := s.db.DB.ExecContext(ctx, query, note.Title, note.UpdatedAt, note.ID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	return expectRow(result, "update note")
}

func (s *NoteStoreImpl) Delete(ctx context.Context, id int64) error {
	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM note_meta WHERE note_id = ?`), id); err != nil {
			return fmt.Errorf("delete note meta: %w", err)
		}

		result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM notes WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		return expectRow(result, "delete note")
	})
}

func (s *NoteStoreImpl) List(ctx context.Context, filter ports.NoteFilter) ([]*entities.NoteRecord, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []*entities.NoteRecord{}, nil
	}

	var (
		where []string
		args  []interface{}
	)
	if filter.OwnerID != nil {
		where = append(where, "owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if len(filter.IDs) > 0 {
		where = append(where, "id IN (?)")
		args = append(args, filter.IDs)
	}

	query := `SELECT ` + noteColumns + ` FROM notes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	var notes []*entities.NoteRecord
	if err := s.db.DB.SelectContext(ctx, &notes, s.db.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *NoteStoreImpl) DeleteAll(ctx context.Context) (int64, error) {
	var removed int64
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_meta`); err != nil {
			return fmt.Errorf("purge note meta: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM notes`)
		if err != nil {
			return fmt.Errorf("purge notes: %w", err)
		}
		removed, err = result.RowsAffected()
		return err
	})
	return removed, err
}

const upsertMetaSQL = `
	INSERT INTO note_meta (note_id, meta_key, meta_value)
	VALUES (?, ?, ?)
	ON CONFLICT (note_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`

// upsertLiveMetaSQL writes nothing when the note row is gone.
const upsertLiveMetaSQL = `
	INSERT INTO note_meta (note_id, meta_key, meta_value)
	SELECT CAST(? AS BIGINT), ?, ?
	WHERE EXISTS (SELECT 1 FROM notes WHERE id = ?)
	ON CONFLICT (note_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`

func upsertMeta(ctx context.Context, ext sqlx.ExtContext, noteID int64, meta map[string]string) error {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := ext.Rebind(upsertMetaSQL)
	for _, k := range keys {
		if _, err := ext.ExecContext(ctx, query, noteID, k, meta[k]); err != nil {
			return fmt.Errorf("set note meta %s: %w", k, err)
		}
	}
	return nil
}

func expectRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return entities.ErrNoteNotFound
	}
	return nil
}

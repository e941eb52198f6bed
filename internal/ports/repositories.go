package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stickyboard/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
}

// NoteStore keeps note records. Create writes the record and its initial
// metadata together; Delete removes both together.
type NoteStore interface {
	Create(ctx context.Context, note *entities.NoteRecord, meta map[string]string) error
	GetByID(ctx context.Context, id int64) (*entities.NoteRecord, error)
	Update(ctx context.Context, note *entities.NoteRecord) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter NoteFilter) ([]*entities.NoteRecord, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// NoteMetaStore is the per-note key/value store.
type NoteMetaStore interface {
	Get(ctx context.Context, noteID int64, key string) (string, bool, error)
	GetAll(ctx context.Context, noteID int64) (map[string]string, error)
	GetForNotes(ctx context.Context, noteIDs []int64) (map[int64]map[string]string, error)
	ValuesByKey(ctx context.Context, key string) (map[int64]string, error)
	Set(ctx context.Context, noteID int64, key, value string) error
	// SetMany writes key for every note in values that still exists and
	// reports how many were written.
	SetMany(ctx context.Context, key string, values map[int64]string) (int, error)
	Delete(ctx context.Context, noteID int64, key string) error
}

// UserMetaStore is the per-actor key/value store.
type UserMetaStore interface {
	Get(ctx context.Context, userID, key string) (string, bool, error)
	Set(ctx context.Context, userID, key, value string) error
	Delete(ctx context.Context, userID, key string) error
	DeleteKey(ctx context.Context, key string) (int64, error)
}

// PositionCache remembers the highest order position handed out so the
// next one can be computed without scanning every note.
type PositionCache interface {
	Max(ctx context.Context) (int64, bool, error)
	Store(ctx context.Context, max int64, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Authorizer answers the write-side permission questions for a note.
type Authorizer interface {
	CanEdit(actor entities.Actor, note *entities.Note) bool
	CanDelete(actor entities.Actor, note *entities.Note) bool
}

// NoteFilter narrows NoteStore.List. Zero value matches every note.
type NoteFilter struct {
	OwnerID *string
	IDs     []int64
}

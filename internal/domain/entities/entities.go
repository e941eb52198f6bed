package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUserInactive  = errors.New("user account is deactivated")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidNoteID = errors.New("invalid note id")

	// Field-level validation failures. Each wraps ErrInvalidInput.
	ErrInvalidColor      = wrapInvalid("invalid color")
	ErrInvalidVisibility = wrapInvalid("invalid visibility")
	ErrInvalidChecklist  = wrapInvalid("checklist payload must be a list")
	ErrEmptyOrder        = wrapInvalid("empty order list")
)

type invalidInputError struct{ msg string }

func (e *invalidInputError) Error() string { return e.msg }
func (e *invalidInputError) Unwrap() error { return ErrInvalidInput }

func wrapInvalid(msg string) error { return &invalidInputError{msg: msg} }

// Visibility decides who besides the owner may see a note.
type Visibility string

const (
	VisibilityOnlyMe          Visibility = "only_me"
	VisibilityAllAdmins       Visibility = "all_admins"
	VisibilityEditorsAndAbove Visibility = "editors_and_above"
)

// IsValid reports whether v is one of the closed set of visibility modes.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityOnlyMe, VisibilityAllAdmins, VisibilityEditorsAndAbove:
		return true
	}
	return false
}

// Label is the human readable name shown in the visibility picker.
func (v Visibility) Label() string {
	switch v {
	case VisibilityAllAdmins:
		return "All admins"
	case VisibilityEditorsAndAbove:
		return "Editors and above"
	default:
		return "Only me"
	}
}

// ParseVisibility maps a stored value onto the closed set. Anything
// unrecognized reads as only_me.
func ParseVisibility(raw string) Visibility {
	v := Visibility(raw)
	if v.IsValid() {
		return v
	}
	return VisibilityOnlyMe
}

// User represents an account that can sign in to the board
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Actor returns the identity the board sees for this user.
func (u *User) Actor() Actor {
	return NewActor(u.ID.String(), u.Role)
}

// NoteRecord is the row kept by the object store. Everything else about a
// note lives in its metadata.
type NoteRecord struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TaskItem is one checklist entry. Items have no position field; their
// order is their index in the checklist.
type TaskItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Note is the assembled view of a record and its metadata
type Note struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	OwnerID       string     `json:"owner_id"`
	Color         string     `json:"color"`
	Visibility    Visibility `json:"visibility"`
	OrderPosition int64      `json:"order_position"`
	Checklist     []TaskItem `json:"checklist"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsOwnedBy reports whether actorID created the note.
func (n *Note) IsOwnedBy(actorID string) bool {
	return n.OwnerID != "" && n.OwnerID == actorID
}

// Less orders notes by position, then creation time, then id.
func (n *Note) Less(other *Note) bool {
	if n.OrderPosition != other.OrderPosition {
		return n.OrderPosition < other.OrderPosition
	}
	if !n.CreatedAt.Equal(other.CreatedAt) {
		return n.CreatedAt.Before(other.CreatedAt)
	}
	return n.ID < other.ID
}

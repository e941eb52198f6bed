package ports

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stickyboard/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
	ActorFromClaims(claims *Claims) entities.Actor
}

// UserService interface for user management operations
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*entities.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

// BoardService is the set of operations a board client can invoke. Every
// call names the acting user explicitly.
type BoardService interface {
	AddNote(ctx context.Context, actor entities.Actor) (*BoardNote, error)
	GetNote(ctx context.Context, actor entities.Actor, noteID int64) (*BoardNote, error)
	DeleteNote(ctx context.Context, actor entities.Actor, noteID int64) error
	RenameNote(ctx context.Context, actor entities.Actor, noteID int64, title string) (*BoardNote, error)
	RecolorNote(ctx context.Context, actor entities.Actor, noteID int64, color string) (*BoardNote, error)
	SetVisibility(ctx context.Context, actor entities.Actor, noteID int64, visibility string) (*BoardNote, error)
	SetChecklist(ctx context.Context, actor entities.Actor, noteID int64, raw string) (*BoardNote, error)
	ToggleCollapsed(ctx context.Context, actor entities.Actor, noteID int64, collapsed bool) (*BoardNote, error)
	ReorderBoard(ctx context.Context, actor entities.Actor, noteIDs []int64) (int, error)
	ListVisibleNotes(ctx context.Context, actor entities.Actor) ([]*BoardNote, error)
	PurgeNotes(ctx context.Context) (int64, error)
}

// BoardMetrics records the outcome of each board operation.
type BoardMetrics interface {
	ObserveOperation(operation, outcome string)
}

// BoardNote is a note as one particular actor sees it.
type BoardNote struct {
	entities.Note
	Collapsed bool `json:"collapsed"`
}

// LoginRequest carries sign-in credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after a successful login
type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

// CreateUserRequest carries the fields needed to register a user
type CreateUserRequest struct {
	Email       string        `json:"email" validate:"required,email"`
	DisplayName string        `json:"display_name" validate:"required,max=100"`
	Password    string        `json:"password" validate:"required,min=8"`
	Role        entities.Role `json:"role" validate:"required"`
}

// Claims are the JWT claims issued at login
type Claims struct {
	UserID uuid.UUID     `json:"user_id"`
	Email  string        `json:"email"`
	Role   entities.Role `json:"role"`
	jwt.RegisteredClaims
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/stickyboard/core/internal/domain/access"
	"github.com/stickyboard/core/internal/domain/checklist"
	"github.com/stickyboard/core/internal/domain/entities"
	"github.com/stickyboard/core/internal/infrastructure/logger"
	"github.com/stickyboard/core/internal/ports"
)

// Defaults for newly created notes.
const (
	DefaultTitle = "Untitled Note"
	DefaultColor = "#FFF9C4"
)

// PresetColors are the swatches offered by the color picker.
var PresetColors = []string{
	"#bae6fd", "#d9f99d", "#bbf7d0", "#c7d2fe", "#e9d5ff",
	"#fbcfe8", "#ffd9d9", "#fed7aa", "#fef08a",
}

// BoardOptions configures a BoardService.
type BoardOptions struct {
	Policy       access.Policy
	DefaultTitle string
	DefaultColor string
}

// BoardService applies actor requests to the board. Every operation
// authorizes before it writes.
type BoardService struct {
	repo    *NoteRepository
	order   *OrderManager
	authz   ports.Authorizer
	metrics ports.BoardMetrics
	opts    BoardOptions
	logger  *logger.Logger
}

// NewBoardService creates a new board service. metrics may be nil.
func NewBoardService(repo *NoteRepository, order *OrderManager, authz ports.Authorizer, metrics ports.BoardMetrics, opts BoardOptions, logger *logger.Logger) *BoardService {
	if opts.Policy.BoardCapability == "" {
		opts.Policy = access.DefaultPolicy()
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = DefaultTitle
	}
	if !IsHexColor(opts.DefaultColor) {
		opts.DefaultColor = DefaultColor
	}
	return &BoardService{
		repo:    repo,
		order:   order,
		authz:   authz,
		metrics: metrics,
		opts:    opts,
		logger:  logger.WithComponent("board_service"),
	}
}

// AddNote creates a note owned by actor at the end of the board.
func (s *BoardService) AddNote(ctx context.Context, actor entities.Actor) (note *ports.BoardNote, err error) {
	defer s.observe("add_note", &err)

	if !s.opts.Policy.CanAccessBoard(actor) {
		s.deny(actor, "add_note", 0)
		return nil, entities.ErrForbidden
	}

	pos, err := s.order.NextPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	n := &entities.Note{
		Title:         s.opts.DefaultTitle,
		OwnerID:       actor.ID,
		Color:         s.opts.DefaultColor,
		Visibility:    entities.VisibilityOnlyMe,
		OrderPosition: pos,
		Checklist:     []entities.TaskItem{},
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	s.order.Observe(ctx, pos)

	s.logger.LogBoardAction(actor.ID, "add_note", n.ID, map[string]interface{}{"order_position": pos})

	return &ports.BoardNote{Note: *n}, nil
}

// GetNote returns one note if actor may see it.
func (s *BoardService) GetNote(ctx context.Context, actor entities.Actor, noteID int64) (*ports.BoardNote, error) {
	n, err := s.load(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(actor, n) {
		s.deny(actor, "get_note", noteID)
		return nil, entities.ErrForbidden
	}
	return s.view(ctx, actor, n), nil
}

// DeleteNote permanently removes a note and its metadata.
func (s *BoardService) DeleteNote(ctx context.Context, actor entities.Actor, noteID int64) (err error) {
	defer s.observe("delete_note", &err)

	n, err := s.load(ctx, noteID)
	if err != nil {
		return err
	}
	if !s.authz.CanDelete(actor, n) {
		s.deny(actor, "delete_note", noteID)
		return entities.ErrForbidden
	}

	if err := s.repo.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	s.order.Forget(ctx)

	if set, err := s.repo.Collapsed(ctx, actor.ID); err == nil && set[noteID] {
		delete(set, noteID)
		if err := s.repo.SetCollapsed(ctx, actor.ID, set); err != nil {
			s.logger.Warnw("Failed to prune collapsed set", "actor_id", actor.ID, "note_id", noteID, "error", err)
		}
	}

	s.logger.LogBoardAction(actor.ID, "delete_note", noteID, nil)
	return nil
}

// RenameNote replaces the note title. An empty title is allowed.
func (s *BoardService) RenameNote(ctx context.Context, actor entities.Actor, noteID int64, title string) (note *ports.BoardNote, err error) {
	defer s.observe("rename_note", &err)

	n, err := s.loadForEdit(ctx, actor, noteID, "rename_note")
	if err != nil {
		return nil, err
	}

	if err := s.repo.Rename(ctx, n, sanitizeTitle(title)); err != nil {
		return nil, fmt.Errorf("failed to rename note: %w", err)
	}

	s.logger.LogBoardAction(actor.ID, "rename_note", noteID, nil)
	return s.view(ctx, actor, n), nil
}

// RecolorNote sets the note color. An invalid color leaves the note as it
// was and returns it together with entities.ErrInvalidColor.
func (s *BoardService) RecolorNote(ctx context.Context, actor entities.Actor, noteID int64, color string) (note *ports.BoardNote, err error) {
	defer s.observe("recolor_note", &err)

	n, err := s.loadForEdit(ctx, actor, noteID, "recolor_note")
	if err != nil {
		return nil, err
	}

	color = strings.TrimSpace(color)
	if !IsHexColor(color) {
		return s.view(ctx, actor, n), entities.ErrInvalidColor
	}

	if err := s.repo.SetColor(ctx, noteID, color); err != nil {
		return nil, fmt.Errorf("failed to recolor note: %w", err)
	}
	n.Color = color

	s.logger.LogBoardAction(actor.ID, "recolor_note", noteID, map[string]interface{}{"color": color})
	return s.view(ctx, actor, n), nil
}

// SetVisibility changes who may see the note. Setting the current value
// succeeds without writing.
func (s *BoardService) SetVisibility(ctx context.Context, actor entities.Actor, noteID int64, visibility string) (note *ports.BoardNote, err error) {
	defer s.observe("set_visibility", &err)

	n, err := s.loadForEdit(ctx, actor, noteID, "set_visibility")
	if err != nil {
		return nil, err
	}

	v := entities.Visibility(strings.TrimSpace(visibility))
	if !v.IsValid() {
		return s.view(ctx, actor, n), entities.ErrInvalidVisibility
	}
	if v == n.Visibility {
		return s.view(ctx, actor, n), nil
	}

	if err := s.repo.SetVisibility(ctx, noteID, v); err != nil {
		return nil, fmt.Errorf("failed to set visibility: %w", err)
	}
	n.Visibility = v

	s.logger.LogBoardAction(actor.ID, "set_visibility", noteID, map[string]interface{}{"visibility": v})
	return s.view(ctx, actor, n), nil
}

// SetChecklist replaces the checklist with the decoded payload. A payload
// that is not a list leaves the stored checklist untouched.
func (s *BoardService) SetChecklist(ctx context.Context, actor entities.Actor, noteID int64, raw string) (note *ports.BoardNote, err error) {
	defer s.observe("set_checklist", &err)

	n, err := s.loadForEdit(ctx, actor, noteID, "set_checklist")
	if err != nil {
		return nil, err
	}

	if !checklist.IsList(raw) {
		return s.view(ctx, actor, n), entities.ErrInvalidChecklist
	}
	items := checklist.Normalize(checklist.Decode(raw))

	if err := s.repo.SetChecklist(ctx, noteID, items); err != nil {
		return nil, fmt.Errorf("failed to save checklist: %w", err)
	}
	n.Checklist = items

	s.logger.LogBoardAction(actor.ID, "set_checklist", noteID, map[string]interface{}{"items": len(items)})
	return s.view(ctx, actor, n), nil
}

// ToggleCollapsed records whether actor has the note collapsed. Only the
// actor's own collapsed-set changes.
func (s *BoardService) ToggleCollapsed(ctx context.Context, actor entities.Actor, noteID int64, collapsed bool) (note *ports.BoardNote, err error) {
	defer s.observe("toggle_collapsed", &err)

	n, err := s.load(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(actor, n) {
		s.deny(actor, "toggle_collapsed", noteID)
		return nil, entities.ErrForbidden
	}

	set, err := s.repo.Collapsed(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collapsed set: %w", err)
	}
	if set[noteID] != collapsed {
		if collapsed {
			set[noteID] = true
		} else {
			delete(set, noteID)
		}
		if err := s.repo.SetCollapsed(ctx, actor.ID, set); err != nil {
			return nil, fmt.Errorf("failed to save collapsed set: %w", err)
		}
	}

	return &ports.BoardNote{Note: *n, Collapsed: collapsed}, nil
}

// ReorderBoard rewrites board positions from a full ordered id list.
func (s *BoardService) ReorderBoard(ctx context.Context, actor entities.Actor, noteIDs []int64) (count int, err error) {
	defer s.observe("reorder_board", &err)

	if !s.opts.Policy.CanAccessBoard(actor) {
		s.deny(actor, "reorder_board", 0)
		return 0, entities.ErrForbidden
	}
	if len(noteIDs) == 0 {
		return 0, entities.ErrEmptyOrder
	}

	count, err = s.order.Reindex(ctx, noteIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to reorder board: %w", err)
	}

	s.logger.LogBoardAction(actor.ID, "reorder_board", 0, map[string]interface{}{"positioned": count, "requested": len(noteIDs)})
	return count, nil
}

// ListVisibleNotes returns the notes actor may see, in board order, with
// actor's collapsed flags.
func (s *BoardService) ListVisibleNotes(ctx context.Context, actor entities.Actor) ([]*ports.BoardNote, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	collapsed, err := s.repo.Collapsed(ctx, actor.ID)
	if err != nil {
		s.logger.Warnw("Failed to load collapsed set", "actor_id", actor.ID, "error", err)
	}

	visible := make([]*ports.BoardNote, 0, len(notes))
	for _, n := range notes {
		if access.CanView(actor, n) {
			visible = append(visible, &ports.BoardNote{Note: *n, Collapsed: collapsed[n.ID]})
		}
	}
	return visible, nil
}

// PurgeNotes deletes every note and every collapsed-set.
func (s *BoardService) PurgeNotes(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeAll(ctx)
	if err != nil {
		return n, fmt.Errorf("failed to purge notes: %w", err)
	}
	s.order.Forget(ctx)

	s.logger.Infow("Notes purged", "removed", n)
	return n, nil
}

func (s *BoardService) load(ctx context.Context, noteID int64) (*entities.Note, error) {
	if noteID <= 0 {
		return nil, entities.ErrNoteNotFound
	}
	n, err := s.repo.Get(ctx, noteID)
	if err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	return n, nil
}

func (s *BoardService) loadForEdit(ctx context.Context, actor entities.Actor, noteID int64, op string) (*entities.Note, error) {
	n, err := s.load(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanEdit(actor, n) {
		s.deny(actor, op, noteID)
		return nil, entities.ErrForbidden
	}
	return n, nil
}

func (s *BoardService) view(ctx context.Context, actor entities.Actor, n *entities.Note) *ports.BoardNote {
	set, err := s.repo.Collapsed(ctx, actor.ID)
	if err != nil {
		s.logger.Warnw("Failed to load collapsed set", "actor_id", actor.ID, "error", err)
	}
	return &ports.BoardNote{Note: *n, Collapsed: set[n.ID]}
}

func (s *BoardService) deny(actor entities.Actor, op string, noteID int64) {
	s.logger.LogSecurityEvent("board_access_denied", actor.ID, map[string]interface{}{
		"operation": op,
		"note_id":   noteID,
	})
}

func (s *BoardService) observe(op string, errp *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOperation(op, Outcome(*errp))
}

// Outcome classifies an operation error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, entities.ErrNoteNotFound):
		return "not_found"
	case errors.Is(err, entities.ErrForbidden):
		return "forbidden"
	case errors.Is(err, entities.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

func sanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, title)
	return strings.TrimSpace(title)
}

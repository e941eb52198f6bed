package http

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/stickyboard/core/internal/domain/entities"
	"github.com/stickyboard/core/internal/infrastructure/logger"
	"github.com/stickyboard/core/internal/ports"
)

// BoardHandler exposes the board operations over HTTP.
type BoardHandler struct {
	board        ports.BoardService
	defaultColor string
	logger       *logger.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(board ports.BoardService, defaultColor string, logger *logger.Logger) *BoardHandler {
	return &BoardHandler{
		board:        board,
		defaultColor: defaultColor,
		logger:       logger.WithComponent("board_handler"),
	}
}

// Request bodies
type RenameRequest struct {
	Title string `json:"title"`
}

type ColorRequest struct {
	Color string `json:"color"`
}

type VisibilityRequest struct {
	Visibility string `json:"visibility"`
}

// ChecklistRequest accepts the checklist either as a JSON array or as a
// string holding one.
type ChecklistRequest struct {
	Checklist sonic.NoCopyRawMessage `json:"checklist"`
}

type CollapsedRequest struct {
	Collapsed bool `json:"collapsed"`
}

// OrderRequest accepts the ids as a JSON array, a string holding a JSON
// array, or a comma-separated string.
type OrderRequest struct {
	Order sonic.NoCopyRawMessage `json:"order"`
}

// Nonce godoc
// @Summary Issue an anti-forgery token
// @Description The token must be sent back in the X-Sticky-Nonce header on every board write
// @Tags board
// @Produce json
// @Success 200 {object} Envelope
// @Security BearerAuth
// @Router /board/nonce [get]
func (h *BoardHandler) Nonce(c echo.Context) error {
	token, _ := c.Get(NonceContextKey).(string)
	return success(c, http.StatusOK, map[string]string{"nonce": token})
}

// Presets godoc
// @Summary Palette and visibility choices
// @Tags board
// @Produce json
// @Success 200 {object} Envelope
// @Security BearerAuth
// @Router /board/presets [get]
func (h *BoardHandler) Presets(c echo.Context) error {
	return success(c, http.StatusOK, NewPresets(h.defaultColor))
}

// ListNotes godoc
// @Summary List the notes visible to the caller
// @Description Notes come back in board order with the caller's collapsed flags
// @Tags board
// @Produce json
// @Success 200 {object} Envelope
// @Security BearerAuth
// @Router /board/notes [get]
func (h *BoardHandler) ListNotes(c echo.Context) error {
	notes, err := h.board.ListVisibleNotes(c.Request().Context(), ActorFrom(c))
	if err != nil {
		return h.fail(c, "list_notes", err, nil)
	}
	return success(c, http.StatusOK, NewNoteViews(notes))
}

// AddNote godoc
// @Summary Add a note at the end of the board
// @Tags board
// @Produce json
// @Param X-Sticky-Nonce header string true "Anti-forgery token"
// @Success 201 {object} Envelope
// @Failure 403 {object} Envelope
// @Security BearerAuth
// @Router /board/notes [post]
func (h *BoardHandler) AddNote(c echo.Context) error {
	note, err := h.board.AddNote(c.Request().Context(), ActorFrom(c))
	if err != nil {
		return h.fail(c, "add_note", err, nil)
	}
	return success(c, http.StatusCreated, NewNoteView(note))
}

// GetNote godoc
// @Summary Get one note
// @Tags board
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Security BearerAuth
// @Router /board/notes/{id} [get]
func (h *BoardHandler) GetNote(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return failure(c, err, nil)
	}
	note, err := h.board.GetNote(c.Request().Context(), ActorFrom(c), id)
	if err != nil {
		return h.fail(c, "get_note", err, nil)
	}
	return success(c, http.StatusOK, NewNoteView(note))
}

// DeleteNote godoc
// @Summary Delete a note
// @Tags board
// @Produce json
// @Param id path int true "Note ID"
// @Param X-Sticky-Nonce header string true "Anti-forgery token"
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Security BearerAuth
// @Router /board/notes/{id} [delete]
func (h *BoardHandler) DeleteNote(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return failure(c, err, nil)
	}
	if err := h.board.DeleteNote(c.Request().Context(), ActorFrom(c), id); err != nil {
		return h.fail(c, "delete_note", err, nil)
	}
	return success(c, http.StatusOK, map[string]int64{"id": id})
}

// RenameNote godoc
// @Summary Rename a note
// @Tags board
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Param request body RenameRequest true "New title"
// @Success 200 {object} Envelope
// @Security BearerAuth
// @Router /board/notes/{id}/title [put]
func (h *BoardHandler) RenameNote(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return failure(c, err, nil)
	}
	var req RenameRequest
	if err := decodeBody(c, &req); err != nil {
		return failure(c, err, nil)
	}

	note, err := h.board.RenameNote(c.Request().Context(), ActorFrom(c), id, req.Title)
	if err != nil {
		return h.fail(c, "rename_note", err, nil)
	}
	return success(c, http.StatusOK, NewNoteView(note))
}

// RecolorNote godoc
// @Summary Change a note's color
// @Description An invalid color answers 422 and carries the unchanged note
// @Tags board
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Param request body ColorRequest true "#RRGGBB color"
// @Success 200 {object} Envelope
// @Failure 422 {object} Envelope
// @Security BearerAuth
// @Router /board/notes/{id}/color [put]
func (h *BoardHandler) RecolorNote(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return failure(c, err, nil)
	}
	var req ColorRequest
	if err := decodeBody(c, &req); err != nil {
		return failure(c, err, nil)
	}

	note, err := h.board.RecolorNote(c.Request().Context(), ActorFrom(c), id, req.Color)
	if err != nil {
		return h.fail(c, "recolor_note", err, note)
	}
	return success(c, http.StatusOK, NewNoteView(note))
}

// SetVisibility godoc
// @Summary Change who may see a note
// @Tags board
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Param request body VisibilityRequest true "only_me, all_admins or editors_and_above"
// @Success 200 {object} Envelope
// @Failure 422 {object} Envelope
// @Security BearerAuth
// @Router /board/notes/{id}/visibility [put]
func (h *BoardHandler) SetVisibility(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return failure(c, err, nil)
	}
	var req VisibilityRequest
	if err := decodeBody(c, &req); err != nil {
		return failure(c, err, nil)
	}

	note, err := h.board.SetVisibility(c.Request().Context(), ActorFrom(c), id, req.Visibility)
	if err != nil {
		return h.fail(c, "set_visibility", err, note)
	}
	return success(c, http.StatusOK, NewNoteView(note))
}

// SetChecklist godoc
// @Summary Replace a note's checklist
// @Tags board
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Param request body ChecklistRequest true "Checklist items"
// @Success 200 {object} Envelope
// @Failure 422 {object} Envelope
// @Security BearerAuth
// @Router /board/notes/{id}/checklist [put]
func (h *BoardHandler) SetChecklist(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return failure(c, err, nil)
	}
	var req ChecklistRequest
	if err := decodeBody(c, &req); err != nil {
		return failure(c, err, nil)
	}

	note, err := h.board.SetChecklist(c.Request().Context(), ActorFrom(c), id, unquoteRaw(req.Checklist))
	if err != nil {
		return h.fail(c, "set_checklist", err, note)
	}
	return success(c, http.StatusOK, NewNoteView(note))
}

// ToggleCollapsed godoc
// @Summary Collapse or expand a note for the caller
// @Tags board
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Param request body CollapsedRequest true "Collapsed flag"
// @Success 200 {object} Envelope
// @Security BearerAuth
// @Router /board/notes/{id}/collapsed [put]
func (h *BoardHandler) ToggleCollapsed(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return failure(c, err, nil)
	}
	var req CollapsedRequest
	if err := decodeBody(c, &req); err != nil {
		return failure(c, err, nil)
	}

	note, err := h.board.ToggleCollapsed(c.Request().Context(), ActorFrom(c), id, req.Collapsed)
	if err != nil {
		return h.fail(c, "toggle_collapsed", err, nil)
	}
	return success(c, http.StatusOK, NewNoteView(note))
}

// ReorderBoard godoc
// @Summary Save the board order
// @Description Ids not naming a note are skipped; notes left out keep their position
// @Tags board
// @Accept json
// @Produce json
// @Param request body OrderRequest true "Ordered note ids"
// @Success 200 {object} Envelope
// @Failure 422 {object} Envelope
// @Security BearerAuth
// @Router /board/order [put]
func (h *BoardHandler) ReorderBoard(c echo.Context) error {
	var req OrderRequest
	if err := decodeBody(c, &req); err != nil {
		return failure(c, err, nil)
	}

	n, err := h.board.ReorderBoard(c.Request().Context(), ActorFrom(c), ParseOrder(req.Order))
	if err != nil {
		return h.fail(c, "reorder_board", err, nil)
	}
	return success(c, http.StatusOK, map[string]int{"positioned": n})
}

func (h *BoardHandler) fail(c echo.Context, op string, err error, note *ports.BoardNote) error {
	if statusFor(err) == http.StatusInternalServerError {
		h.logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
			Errorw("Board operation failed", "operation", op, "error", err)
	}
	if note != nil {
		return failure(c, err, NewNoteView(note))
	}
	return failure(c, err, nil)
}

func noteID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, entities.ErrInvalidNoteID
	}
	return id, nil
}

// unquoteRaw returns the text of a JSON string value, or the raw JSON
// itself for any other value.
func unquoteRaw(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := sonic.ConfigStd.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// ParseOrder turns an order payload into note ids. Entries that are not
// positive integers are dropped.
func ParseOrder(raw []byte) []int64 {
	text := strings.TrimSpace(unquoteRaw(raw))
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "[") {
		var elems []interface{}
		if err := sonic.ConfigStd.UnmarshalFromString(text, &elems); err == nil {
			ids := make([]int64, 0, len(elems))
			for _, elem := range elems {
				if id, ok := orderID(elem); ok {
					ids = append(ids, id)
				}
			}
			return ids
		}
	}

	parts := strings.Split(text, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		if id, ok := orderID(strings.TrimSpace(part)); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func orderID(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case float64:
		if x > 0 && x == float64(int64(x)) {
			return int64(x), true
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/stickyboard/core/internal/domain/entities"
	"github.com/stickyboard/core/internal/infrastructure/logger"
	"github.com/stickyboard/core/internal/ports"
)

// stubBoard answers every operation with note and err.
type stubBoard struct {
	note      *ports.BoardNote
	err       error
	lastRaw   string
	lastOrder []int64
	lastActor entities.Actor
}

func (s *stubBoard) AddNote(_ context.Context, a entities.Actor) (*ports.BoardNote, error) {
	s.lastActor = a
	return s.note, s.err
}

func (s *stubBoard) GetNote(_ context.Context, a entities.Actor, _ int64) (*ports.BoardNote, error) {
	s.lastActor = a
	return s.note, s.err
}

func (s *stubBoard) DeleteNote(_ context.Context, a entities.Actor, _ int64) error {
	s.lastActor = a
	return s.err
}

func (s *stubBoard) RenameNote(_ context.Context, _ entities.Actor, _ int64, title string) (*ports.BoardNote, error) {
	s.lastRaw = title
	return s.note, s.err
}

func (s *stubBoard) RecolorNote(_ context.Context, _ entities.Actor, _ int64, color string) (*ports.BoardNote, error) {
	s.lastRaw = color
	return s.note, s.err
}

func (s *stubBoard) SetVisibility(_ context.Context, _ entities.Actor, _ int64, v string) (*ports.BoardNote, error) {
	s.lastRaw = v
	return s.note, s.err
}

func (s *stubBoard) SetChecklist(_ context.Context, _ entities.Actor, _ int64, raw string) (*ports.BoardNote, error) {
	s.lastRaw = raw
	return s.note, s.err
}

func (s *stubBoard) ToggleCollapsed(_ context.Context, _ entities.Actor, _ int64, _ bool) (*ports.BoardNote, error) {
	return s.note, s.err
}

func (s *stubBoard) ReorderBoard(_ context.Context, _ entities.Actor, ids []int64) (int, error) {
	s.lastOrder = ids
	if s.err != nil {
		return 0, s.err
	}
	return len(ids), nil
}

func (s *stubBoard) ListVisibleNotes(_ context.Context, _ entities.Actor) ([]*ports.BoardNote, error) {
	if s.note == nil {
		return nil, s.err
	}
	return []*ports.BoardNote{s.note}, s.err
}

func (s *stubBoard) PurgeNotes(context.Context) (int64, error) { return 0, s.err }

type envelope struct {
	Success      bool                   `json:"success"`
	Data         sonic.NoCopyRawMessage `json:"data"`
	ErrorMessage string                 `json:"error_message"`
}

func sampleNote() *ports.BoardNote {
	return &ports.BoardNote{
		Note: entities.Note{
			ID:            7,
			Title:         "Untitled Note",
			OwnerID:       "alice",
			Color:         "#FFF9C4",
			Visibility:    entities.VisibilityOnlyMe,
			OrderPosition: 3,
		},
		Collapsed: true,
	}
}

func call(t *testing.T, h echo.HandlerFunc, method, body string, params ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	e.JSONSerializer = SonicSerializer{}
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		c.SetParamNames("id")
		c.SetParamValues(params...)
	}
	SetActor(c, entities.NewActor("alice", entities.RoleAuthor))

	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var env envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestBoardHandlerSuccess(t *testing.T) {
	board := &stubBoard{note: sampleNote()}
	h := NewBoardHandler(board, "#FFF9C4", logger.NewNop())

	rec, env := call(t, h.AddNote, http.MethodPost, "")
	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("AddNote = %d %+v", rec.Code, env)
	}
	if board.lastActor.ID != "alice" {
		t.Fatalf("actor not forwarded: %+v", board.lastActor)
	}

	var view NoteView
	if err := sonic.Unmarshal(env.Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.ID != 7 || view.BodyColor != "#fffcdf" || view.BorderColor != "#ccc79d" || !view.Collapsed {
		t.Fatalf("view = %+v", view)
	}
	if view.VisibilityLabel != "Only me" || len(view.PresetColors) != 9 || view.Checklist == nil {
		t.Fatalf("view = %+v", view)
	}

	rec, env = call(t, h.DeleteNote, http.MethodDelete, "", "7")
	if rec.Code != http.StatusOK || !env.Success || string(env.Data) != `{"id":7}` {
		t.Fatalf("DeleteNote = %d %s", rec.Code, rec.Body.String())
	}
}

func TestBoardHandlerErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", entities.ErrNoteNotFound, http.StatusNotFound, "Invalid note ID"},
		{"forbidden", entities.ErrForbidden, http.StatusForbidden, "Insufficient permissions"},
		{"invalid", entities.ErrInvalidColor, http.StatusUnprocessableEntity, "invalid color"},
		{"storage", context.DeadlineExceeded, http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBoardHandler(&stubBoard{err: tt.err}, "#FFF9C4", logger.NewNop())
			rec, env := call(t, h.GetNote, http.MethodGet, "", "7")
			if rec.Code != tt.status || env.Success || env.ErrorMessage != tt.message {
				t.Fatalf("GetNote = %d %+v, want %d %q", rec.Code, env, tt.status, tt.message)
			}
		})
	}
}

func TestBoardHandlerBadID(t *testing.T) {
	h := NewBoardHandler(&stubBoard{note: sampleNote()}, "#FFF9C4", logger.NewNop())
	for _, id := range []string{"abc", "0", "-3"} {
		rec, env := call(t, h.DeleteNote, http.MethodDelete, "", id)
		if rec.Code != http.StatusNotFound || env.Success {
			t.Fatalf("DeleteNote(%q) = %d %+v", id, rec.Code, env)
		}
	}
}

func TestRecolorInvalidCarriesNote(t *testing.T) {
	board := &stubBoard{note: sampleNote(), err: entities.ErrInvalidColor}
	h := NewBoardHandler(board, "#FFF9C4", logger.NewNop())

	rec, env := call(t, h.RecolorNote, http.MethodPut, `{"color":"blue"}`, "7")
	if rec.Code != http.StatusUnprocessableEntity || env.Success {
		t.Fatalf("RecolorNote = %d %+v", rec.Code, env)
	}
	if board.lastRaw != "blue" {
		t.Fatalf("color forwarded = %q", board.lastRaw)
	}
	var view NoteView
	if err := sonic.Unmarshal(env.Data, &view); err != nil || view.Color != "#FFF9C4" {
		t.Fatalf("unchanged note missing: %s", env.Data)
	}
}

func TestSetChecklistPayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"array", `{"checklist":[{"text":"a"}]}`, `[{"text":"a"}]`},
		{"string", `{"checklist":"[{\"text\":\"a\"}]"}`, `[{"text":"a"}]`},
		{"missing", `{}`, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &stubBoard{note: sampleNote()}
			h := NewBoardHandler(board, "#FFF9C4", logger.NewNop())
			call(t, h.SetChecklist, http.MethodPut, tt.body, "7")
			if board.lastRaw != tt.want {
				t.Fatalf("raw = %q, want %q", board.lastRaw, tt.want)
			}
		})
	}
}

func TestMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "truncated", body: `{"title":`},
		{name: "wrong type", body: `{"title":12}`},
		{name: "oversized", body: `{"title":"` + strings.Repeat("x", maxBodySize) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBoardHandler(&stubBoard{note: sampleNote()}, "#FFF9C4", logger.NewNop())
			rec, env := call(t, h.RenameNote, http.MethodPut, tt.body, "7")
			if rec.Code != http.StatusUnprocessableEntity || env.Success {
				t.Fatalf("RenameNote(%s) = %d %+v", tt.name, rec.Code, env)
			}
			if env.ErrorMessage == "" {
				t.Fatal("missing error message")
			}
		})
	}
}

func TestReorderBoardHandler(t *testing.T) {
	board := &stubBoard{}
	h := NewBoardHandler(board, "#FFF9C4", logger.NewNop())

	rec, env := call(t, h.ReorderBoard, http.MethodPut, `{"order":"3,1,2"}`)
	if rec.Code != http.StatusOK || string(env.Data) != `{"positioned":3}` {
		t.Fatalf("ReorderBoard = %d %s", rec.Code, rec.Body.String())
	}
	if len(board.lastOrder) != 3 || board.lastOrder[0] != 3 {
		t.Fatalf("order = %v", board.lastOrder)
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"array", `[3,1,2]`, []int64{3, 1, 2}},
		{"array of strings", `["3","1"]`, []int64{3, 1}},
		{"json in string", `"[5,4]"`, []int64{5, 4}},
		{"comma string", `"3, 1,2"`, []int64{3, 1, 2}},
		{"junk dropped", `"3,x,,-1,2"`, []int64{3, 2}},
		{"fractions dropped", `[1.5,2]`, []int64{2}},
		{"empty string", `""`, nil},
		{"missing", ``, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOrder([]byte(tt.raw))
			if len(got) != len(tt.want) {
				t.Fatalf("ParseOrder(%s) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ParseOrder(%s) = %v, want %v", tt.raw, got, tt.want)
				}
			}
		})
	}
}

func TestMixColor(t *testing.T) {
	tests := []struct {
		hex    string
		with   uint8
		weight float64
		want   string
	}{
		{"#FFF9C4", 0xff, 0.55, "#fffcdf"},
		{"#FFF9C4", 0x00, 0.80, "#ccc79d"},
		{"#000000", 0xff, 0.55, "#737373"},
		{"#ffffff", 0x00, 0.80, "#cccccc"},
		{"red", 0xff, 0.55, "red"},
		{"#zzzzzz", 0xff, 0.55, "#zzzzzz"},
	}
	for _, tt := range tests {
		if got := mixColor(tt.hex, tt.with, tt.weight); got != tt.want {
			t.Fatalf("mixColor(%q, %d, %v) = %q, want %q", tt.hex, tt.with, tt.weight, got, tt.want)
		}
	}
}

func TestActorFromMissing(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if a := ActorFrom(c); !a.IsAnonymous() {
		t.Fatalf("ActorFrom() = %+v, want anonymous", a)
	}
}

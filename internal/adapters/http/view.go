package http

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/stickyboard/core/internal/application/services"
	"github.com/stickyboard/core/internal/domain/entities"
	"github.com/stickyboard/core/internal/ports"
)

// NoteView is the render model for a single note card.
type NoteView struct {
	ID              int64               `json:"id"`
	Title           string              `json:"title"`
	OwnerID         string              `json:"owner_id"`
	Color           string              `json:"color"`
	BodyColor       string              `json:"body_color"`
	BorderColor     string              `json:"border_color"`
	Visibility      entities.Visibility `json:"visibility"`
	VisibilityLabel string              `json:"visibility_label"`
	OrderPosition   int64               `json:"order_position"`
	Checklist       []entities.TaskItem `json:"checklist"`
	Collapsed       bool                `json:"collapsed"`
	PresetColors    []string            `json:"preset_colors"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// VisibilityOption is one entry of the visibility picker.
type VisibilityOption struct {
	Value entities.Visibility `json:"value"`
	Label string              `json:"label"`
}

// Presets lists the palette and the visibility picker choices.
type Presets struct {
	Colors       []string           `json:"colors"`
	DefaultColor string             `json:"default_color"`
	Visibility   []VisibilityOption `json:"visibility"`
}

// NewNoteView renders note for the actor it was loaded for.
func NewNoteView(note *ports.BoardNote) NoteView {
	checklist := note.Checklist
	if checklist == nil {
		checklist = []entities.TaskItem{}
	}
	return NoteView{
		ID:              note.ID,
		Title:           note.Title,
		OwnerID:         note.OwnerID,
		Color:           note.Color,
		BodyColor:       mixColor(note.Color, 0xff, 0.55),
		BorderColor:     mixColor(note.Color, 0x00, 0.80),
		Visibility:      note.Visibility,
		VisibilityLabel: note.Visibility.Label(),
		OrderPosition:   note.OrderPosition,
		Checklist:       checklist,
		Collapsed:       note.Collapsed,
		PresetColors:    services.PresetColors,
		CreatedAt:       note.CreatedAt,
		UpdatedAt:       note.UpdatedAt,
	}
}

// NewNoteViews renders a board.
func NewNoteViews(notes []*ports.BoardNote) []NoteView {
	views := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, NewNoteView(n))
	}
	return views
}

// NewPresets builds the picker choices.
func NewPresets(defaultColor string) Presets {
	return Presets{
		Colors:       services.PresetColors,
		DefaultColor: defaultColor,
		Visibility: []VisibilityOption{
			{Value: entities.VisibilityOnlyMe, Label: entities.VisibilityOnlyMe.Label()},
			{Value: entities.VisibilityAllAdmins, Label: entities.VisibilityAllAdmins.Label()},
			{Value: entities.VisibilityEditorsAndAbove, Label: entities.VisibilityEditorsAndAbove.Label()},
		},
	}
}

// mixColor blends a #RRGGBB color with a grey level, keeping weight of the
// original. Unparseable colors are returned as given.
func mixColor(hex string, with uint8, weight float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	rgb, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return hex
	}

	channel := func(shift uint) uint8 {
		c := float64((rgb >> shift) & 0xff)
		return uint8(math.Round(c*weight + float64(with)*(1-weight)))
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(16), channel(8), channel(0))
}

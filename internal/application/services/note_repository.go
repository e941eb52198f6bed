package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/stickyboard/core/internal/domain/checklist"
	"github.com/stickyboard/core/internal/domain/entities"
	"github.com/stickyboard/core/internal/ports"
)

// Metadata keys under which note fields are stored.
const (
	MetaColor         = "_sticky_note_color"
	MetaVisibility    = "_sticky_note_visibility"
	MetaChecklist     = "_sticky_note_checklist"
	MetaOrder         = "_sticky_note_order"
	UserMetaCollapsed = "sticky_notes_collapsed"
)

var validate = validator.New()

// IsHexColor reports whether color is a #RRGGBB value.
func IsHexColor(color string) bool {
	return validate.Var(color, "required,len=7,hexcolor") == nil
}

// NoteRepository maps notes onto a record plus metadata in the object
// store, and the collapsed-set onto per-user metadata.
type NoteRepository struct {
	notes        ports.NoteStore
	meta         ports.NoteMetaStore
	userMeta     ports.UserMetaStore
	defaultColor string
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(notes ports.NoteStore, meta ports.NoteMetaStore, userMeta ports.UserMetaStore, defaultColor string) *NoteRepository {
	if !IsHexColor(defaultColor) {
		defaultColor = DefaultColor
	}
	return &NoteRepository{
		notes:        notes,
		meta:         meta,
		userMeta:     userMeta,
		defaultColor: defaultColor,
	}
}

// Create persists a new note with all of its fields and fills in its id
// and timestamps.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) error {
	raw, err := checklist.Encode(note.Checklist)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}

	rec := &entities.NoteRecord{Title: note.Title, OwnerID: note.OwnerID}
	meta := map[string]string{
		MetaColor:      note.Color,
		MetaVisibility: string(note.Visibility),
		MetaChecklist:  raw,
		MetaOrder:      strconv.FormatInt(note.OrderPosition, 10),
	}
	if err := r.notes.Create(ctx, rec, meta); err != nil {
		return err
	}

	note.ID = rec.ID
	note.CreatedAt = rec.CreatedAt
	note.UpdatedAt = rec.UpdatedAt
	return nil
}

// Get loads one note. Unknown ids yield entities.ErrNoteNotFound.
func (r *NoteRepository) Get(ctx context.Context, id int64) (*entities.Note, error) {
	rec, err := r.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	meta, err := r.meta.GetAll(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.assemble(rec, meta), nil
}

// List returns every note in board order.
func (r *NoteRepository) List(ctx context.Context) ([]*entities.Note, error) {
	recs, err := r.notes.List(ctx, ports.NoteFilter{})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	meta, err := r.meta.GetForNotes(ctx, ids)
	if err != nil {
		return nil, err
	}

	notes := make([]*entities.Note, 0, len(recs))
	for _, rec := range recs {
		notes = append(notes, r.assemble(rec, meta[rec.ID]))
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Less(notes[j]) })
	return notes, nil
}

// ExistingIDs returns the subset of ids that name stored notes.
func (r *NoteRepository) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	recs, err := r.notes.List(ctx, ports.NoteFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(recs))
	for _, rec := range recs {
		out[rec.ID] = true
	}
	return out, nil
}

// MaxPosition scans stored order values. Unparseable values are ignored.
func (r *NoteRepository) MaxPosition(ctx context.Context) (int64, error) {
	values, err := r.meta.ValuesByKey(ctx, MetaOrder)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, raw := range values {
		if pos, err := strconv.ParseInt(raw, 10, 64); err == nil && pos > max {
			max = pos
		}
	}
	return max, nil
}

// Rename replaces the note title.
func (r *NoteRepository) Rename(ctx context.Context, note *entities.Note, title string) error {
	rec := &entities.NoteRecord{ID: note.ID, Title: title}
	if err := r.notes.Update(ctx, rec); err != nil {
		return err
	}
	note.Title = title
	note.UpdatedAt = rec.UpdatedAt
	return nil
}

// SetColor stores an already validated color.
func (r *NoteRepository) SetColor(ctx context.Context, id int64, color string) error {
	return r.meta.Set(ctx, id, MetaColor, color)
}

// SetVisibility stores an already validated visibility.
func (r *NoteRepository) SetVisibility(ctx context.Context, id int64, v entities.Visibility) error {
	return r.meta.Set(ctx, id, MetaVisibility, string(v))
}

// SetChecklist encodes and stores items.
func (r *NoteRepository) SetChecklist(ctx context.Context, id int64, items []entities.TaskItem) error {
	raw, err := checklist.Encode(items)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	return r.meta.Set(ctx, id, MetaChecklist, raw)
}

// SetPositions writes order positions for several notes at once. Notes
// deleted since the positions were computed are skipped; the result is the
// number of positions written.
func (r *NoteRepository) SetPositions(ctx context.Context, positions map[int64]int64) (int, error) {
	values := make(map[int64]string, len(positions))
	for id, pos := range positions {
		values[id] = strconv.FormatInt(pos, 10)
	}
	return r.meta.SetMany(ctx, MetaOrder, values)
}

// Delete removes a note and its metadata.
func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	return r.notes.Delete(ctx, id)
}

// PurgeAll removes every note and every user's collapsed-set.
func (r *NoteRepository) PurgeAll(ctx context.Context) (int64, error) {
	n, err := r.notes.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := r.userMeta.DeleteKey(ctx, UserMetaCollapsed); err != nil {
		return n, err
	}
	return n, nil
}

// Collapsed returns the set of note ids actorID has collapsed. A corrupt
// stored value reads as an empty set.
func (r *NoteRepository) Collapsed(ctx context.Context, actorID string) (map[int64]bool, error) {
	set := make(map[int64]bool)
	raw, ok, err := r.userMeta.Get(ctx, actorID, UserMetaCollapsed)
	if err != nil || !ok {
		return set, err
	}

	var ids []int64
	if err := sonic.ConfigStd.UnmarshalFromString(raw, &ids); err != nil {
		return set, nil
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// SetCollapsed replaces actorID's collapsed-set.
func (r *NoteRepository) SetCollapsed(ctx context.Context, actorID string, set map[int64]bool) error {
	if len(set) == 0 {
		return r.userMeta.Delete(ctx, actorID, UserMetaCollapsed)
	}

	ids := make([]int64, 0, len(set))
	for id, on := range set {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	raw, err := sonic.ConfigStd.MarshalToString(ids)
	if err != nil {
		return fmt.Errorf("encode collapsed set: %w", err)
	}
	return r.userMeta.Set(ctx, actorID, UserMetaCollapsed, raw)
}

func (r *NoteRepository) assemble(rec *entities.NoteRecord, meta map[string]string) *entities.Note {
	note := &entities.Note{
		ID:         rec.ID,
		Title:      rec.Title,
		OwnerID:    rec.OwnerID,
		Color:      r.defaultColor,
		Visibility: entities.ParseVisibility(meta[MetaVisibility]),
		Checklist:  []entities.TaskItem{},
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}

	if c := meta[MetaColor]; IsHexColor(c) {
		note.Color = c
	}
	if raw, ok := meta[MetaChecklist]; ok {
		note.Checklist = checklist.Decode(raw)
	}
	if pos, err := strconv.ParseInt(meta[MetaOrder], 10, 64); err == nil {
		note.OrderPosition = pos
	}
	return note
}

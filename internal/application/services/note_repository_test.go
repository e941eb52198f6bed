package services

import (
	"context"
	"testing"

	"github.com/stickyboard/core/internal/domain/access"
	"github.com/stickyboard/core/internal/domain/entities"
)

func TestIsHexColor(t *testing.T) {
	tests := []struct {
		color string
		want  bool
	}{
		{"#FFF9C4", true},
		{"#bae6fd", true},
		{"#000000", true},
		{"#fff", false},
		{"FFF9C4", false},
		{"#FFF9C", false},
		{"#FFF9C4A", false},
		{"#XYZXYZ", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			if got := IsHexColor(tt.color); got != tt.want {
				t.Fatalf("IsHexColor(%q) = %v, want %v", tt.color, got, tt.want)
			}
		})
	}
}

func TestNoteRepositoryReadsCorruptMeta(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(access.DefaultPolicy())
	id := seedNote(t, f, "alice", 4)

	f.store.meta[id][MetaColor] = "red"
	f.store.meta[id][MetaVisibility] = "everyone"
	f.store.meta[id][MetaChecklist] = "{broken"
	f.store.meta[id][MetaOrder] = "later"

	n, err := f.repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if n.Color != DefaultColor {
		t.Fatalf("Color = %q, want default", n.Color)
	}
	if n.Visibility != entities.VisibilityOnlyMe {
		t.Fatalf("Visibility = %q, want only_me", n.Visibility)
	}
	if n.Checklist == nil || len(n.Checklist) != 0 {
		t.Fatalf("Checklist = %#v, want empty", n.Checklist)
	}
	if n.OrderPosition != 0 {
		t.Fatalf("OrderPosition = %d, want 0", n.OrderPosition)
	}
}

func TestNoteRepositoryMissingMeta(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(access.DefaultPolicy())
	id := seedNote(t, f, "alice", 2)
	f.store.meta[id] = map[string]string{}

	n, err := f.repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if n.Color != DefaultColor || n.Visibility != entities.VisibilityOnlyMe || len(n.Checklist) != 0 {
		t.Fatalf("Get() with no meta = %+v", n)
	}
}

func TestNoteRepositoryCustomDefaultColor(t *testing.T) {
	store := newFakeStore()
	repo := NewNoteRepository(store, metaView{store}, userMetaView{store}, "#c7d2fe")
	n := &entities.Note{Title: "t", OwnerID: "o", Visibility: entities.VisibilityOnlyMe}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.Get(context.Background(), n.ID)
	if got.Color != "#c7d2fe" {
		t.Fatalf("Color = %q, want configured default", got.Color)
	}

	fallback := NewNoteRepository(store, metaView{store}, userMetaView{store}, "yellow")
	got, _ = fallback.Get(context.Background(), n.ID)
	if got.Color != DefaultColor {
		t.Fatalf("invalid default color not replaced, got %q", got.Color)
	}
}

func TestCollapsedSet(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(access.DefaultPolicy())

	set, err := f.repo.Collapsed(ctx, "nobody")
	if err != nil || len(set) != 0 {
		t.Fatalf("Collapsed(empty) = %v, %v", set, err)
	}

	if err := f.repo.SetCollapsed(ctx, "alice", map[int64]bool{9: true, 3: true, 5: false}); err != nil {
		t.Fatal(err)
	}
	if raw := f.store.userMeta["alice"][UserMetaCollapsed]; raw != "[3,9]" {
		t.Fatalf("stored collapsed set = %q, want [3,9]", raw)
	}

	f.store.userMeta["alice"][UserMetaCollapsed] = "not json"
	set, err = f.repo.Collapsed(ctx, "alice")
	if err != nil || len(set) != 0 {
		t.Fatalf("Collapsed(corrupt) = %v, %v", set, err)
	}

	if err := f.repo.SetCollapsed(ctx, "alice", map[int64]bool{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.store.userMeta["alice"][UserMetaCollapsed]; ok {
		t.Fatal("empty set should delete the key")
	}
}

func TestListSortsByPosition(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(access.DefaultPolicy())
	c := seedNote(t, f, "o", 30)
	a := seedNote(t, f, "o", 10)
	b := seedNote(t, f, "o", 20)

	notes, err := f.repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{a, b, c}
	for i, n := range notes {
		if n.ID != want[i] {
			t.Fatalf("List()[%d] = %d, want %d", i, n.ID, want[i])
		}
	}
}

package access

import (
	"testing"

	"github.com/stickyboard/core/internal/domain/entities"
)

func TestCanView(t *testing.T) {
	owner := entities.NewActor("owner", entities.RoleSubscriber)
	admin := entities.NewActor("admin", entities.RoleAdministrator)
	editor := entities.NewActor("editor", entities.RoleEditor)
	author := entities.NewActor("author", entities.RoleAuthor)
	// Holds the administrator role name but none of its capabilities.
	roleOnly := entities.Actor{ID: "role-only", Roles: []entities.Role{entities.RoleAdministrator}}

	note := func(v entities.Visibility) *entities.Note {
		return &entities.Note{ID: 1, OwnerID: "owner", Visibility: v}
	}

	cases := []struct {
		name  string
		actor entities.Actor
		note  *entities.Note
		allow bool
	}{
		{name: "owner only_me", actor: owner, note: note(entities.VisibilityOnlyMe), allow: true},
		{name: "owner unknown visibility", actor: owner, note: note("friends"), allow: true},
		{name: "owner empty visibility", actor: owner, note: note(""), allow: true},
		{name: "admin only_me", actor: admin, note: note(entities.VisibilityOnlyMe), allow: false},
		{name: "editor only_me", actor: editor, note: note(entities.VisibilityOnlyMe), allow: false},
		{name: "admin all_admins", actor: admin, note: note(entities.VisibilityAllAdmins), allow: true},
		{name: "editor all_admins", actor: editor, note: note(entities.VisibilityAllAdmins), allow: false},
		{name: "role without capability all_admins", actor: roleOnly, note: note(entities.VisibilityAllAdmins), allow: false},
		{name: "admin editors_and_above", actor: admin, note: note(entities.VisibilityEditorsAndAbove), allow: true},
		{name: "editor editors_and_above", actor: editor, note: note(entities.VisibilityEditorsAndAbove), allow: true},
		{name: "author editors_and_above", actor: author, note: note(entities.VisibilityEditorsAndAbove), allow: false},
		{name: "admin unknown visibility", actor: admin, note: note("everyone"), allow: false},
		{name: "anonymous editors_and_above", actor: entities.Actor{}, note: note(entities.VisibilityEditorsAndAbove), allow: false},
		{name: "anonymous vs ownerless note", actor: entities.Actor{}, note: &entities.Note{Visibility: entities.VisibilityOnlyMe}, allow: false},
		{name: "nil note", actor: admin, note: nil, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanView(tc.actor, tc.note); got != tc.allow {
				t.Fatalf("CanView(%q, %v) = %v, want %v", tc.actor.ID, tc.note, got, tc.allow)
			}
		})
	}
}

func TestPolicyCanAccessBoard(t *testing.T) {
	cases := []struct {
		name       string
		capability string
		actor      entities.Actor
		allow      bool
	}{
		{name: "default contributor", actor: entities.NewActor("c", entities.RoleContributor), allow: true},
		{name: "default subscriber", actor: entities.NewActor("s", entities.RoleSubscriber), allow: false},
		{name: "default anonymous", actor: entities.Actor{}, allow: false},
		{name: "manage_options editor", capability: "manage_options", actor: entities.NewActor("e", entities.RoleEditor), allow: false},
		{name: "manage_options admin", capability: "manage_options", actor: entities.NewActor("a", entities.RoleAdministrator), allow: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPolicy(tc.capability)
			if got := p.CanAccessBoard(tc.actor); got != tc.allow {
				t.Fatalf("CanAccessBoard(%q) with %q = %v, want %v", tc.actor.ID, p.BoardCapability, got, tc.allow)
			}
		})
	}
}

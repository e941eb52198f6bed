package access

import "github.com/stickyboard/core/internal/domain/entities"

// CapabilityAuthorizer answers edit and delete checks the way the hosting
// identity system does for any owned resource: owners need the base
// capability, everyone else needs the "others" variant.
type CapabilityAuthorizer struct{}

// CanEdit reports whether actor may change note.
func (CapabilityAuthorizer) CanEdit(actor entities.Actor, note *entities.Note) bool {
	return allowed(actor, note, entities.CapEditPosts, entities.CapEditOthersPosts)
}

// CanDelete reports whether actor may remove note.
func (CapabilityAuthorizer) CanDelete(actor entities.Actor, note *entities.Note) bool {
	return allowed(actor, note, entities.CapDeletePosts, entities.CapDeleteOthersPosts)
}

func allowed(actor entities.Actor, note *entities.Note, own, others entities.Capability) bool {
	if note == nil || actor.IsAnonymous() {
		return false
	}
	if note.IsOwnedBy(actor.ID) {
		return actor.Can(own)
	}
	return actor.Can(others)
}

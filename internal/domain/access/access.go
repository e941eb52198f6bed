package access

import "github.com/stickyboard/core/internal/domain/entities"

// CanView reports whether actor may see note. The first matching rule wins
// and anything unmatched is denied.
func CanView(actor entities.Actor, note *entities.Note) bool {
	if note == nil {
		return false
	}
	if note.IsOwnedBy(actor.ID) {
		return true
	}
	switch note.Visibility {
	case entities.VisibilityOnlyMe:
		return false
	case entities.VisibilityAllAdmins:
		return actor.Can(entities.CapManageOptions)
	case entities.VisibilityEditorsAndAbove:
		return actor.Can(entities.CapEditOthersPosts)
	default:
		return false
	}
}

// Policy holds the board-wide access rule.
type Policy struct {
	// BoardCapability gates every board operation that is not tied to a
	// single note.
	BoardCapability entities.Capability
}

// DefaultPolicy requires edit_posts to use the board.
func DefaultPolicy() Policy {
	return Policy{BoardCapability: entities.CapEditPosts}
}

// NewPolicy builds a Policy from a configured capability name, falling
// back to the default when it is blank.
func NewPolicy(capability string) Policy {
	if capability == "" {
		return DefaultPolicy()
	}
	return Policy{BoardCapability: entities.Capability(capability)}
}

// CanAccessBoard reports whether actor may use the board at all.
func (p Policy) CanAccessBoard(actor entities.Actor) bool {
	if actor.IsAnonymous() {
		return false
	}
	return actor.Can(p.BoardCapability)
}

package entities

// Role is a named bundle of capabilities.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleAuthor        Role = "author"
	RoleContributor   Role = "contributor"
	RoleSubscriber    Role = "subscriber"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Capability is a single permission an actor may hold.
type Capability string

const (
	CapManageOptions     Capability = "manage_options"
	CapEditOthersPosts   Capability = "edit_others_posts"
	CapDeleteOthersPosts Capability = "delete_others_posts"
	CapEditPosts         Capability = "edit_posts"
	CapDeletePosts       Capability = "delete_posts"
	CapRead              Capability = "read"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdministrator: {CapManageOptions, CapEditOthersPosts, CapDeleteOthersPosts, CapEditPosts, CapDeletePosts, CapRead},
	RoleEditor:        {CapEditOthersPosts, CapDeleteOthersPosts, CapEditPosts, CapDeletePosts, CapRead},
	RoleAuthor:        {CapEditPosts, CapDeletePosts, CapRead},
	RoleContributor:   {CapEditPosts, CapRead},
	RoleSubscriber:    {CapRead},
}

// Actor is whoever is making a board request.
type Actor struct {
	ID           string
	Roles        []Role
	Capabilities map[Capability]bool
}

// NewActor builds an actor whose capabilities are the union of its roles'.
func NewActor(id string, roles ...Role) Actor {
	a := Actor{
		ID:           id,
		Roles:        roles,
		Capabilities: make(map[Capability]bool),
	}
	for _, r := range roles {
		for _, c := range roleCapabilities[r] {
			a.Capabilities[c] = true
		}
	}
	return a
}

// Can reports whether the actor holds capability c.
func (a Actor) Can(c Capability) bool {
	return a.Capabilities[c]
}

// HasRole reports whether the actor was granted role r.
func (a Actor) HasRole(r Role) bool {
	for _, have := range a.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// IsAnonymous reports whether the actor carries no identity.
func (a Actor) IsAnonymous() bool {
	return a.ID == ""
}

package board

// Role represents a user's role on a board.
//
// Roles form a total order: viewer < editor < admin < owner. Every
// permission check compares against this single ordering; there are no
// per-endpoint role lists.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"

	// RoleNone is the absence of a role. It is never stored; resolution
	// returns it for users with no relationship to a board.
	RoleNone Role = ""
)

// IsValid checks if the role is a valid stored or resolved role.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Level returns the position of the role in the total order
// (higher = more authority). RoleNone is 0.
func (r Role) Level() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the role grants at least the authority of min.
// RoleNone is never at least anything.
func (r Role) AtLeast(min Role) bool {
	if r.Level() == 0 {
		return false
	}
	return r.Level() >= min.Level()
}

// IsMembershipRole reports whether the role may be stored on a
// membership row. Owner is implicit for the board creator and is never
// stored, assigned, or removed.
func (r Role) IsMembershipRole() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// MembershipRoles are the roles assignable via invite or role change.
var MembershipRoles = []Role{RoleAdmin, RoleEditor, RoleViewer}

// ParseRole parses a string to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// LinkRole is the role vocabulary offered on an invite link. It is
// deliberately distinct from the membership vocabulary: what an inviter
// offers ("join as member") is decoupled from how membership stores it
// ("editor"). The mapping is applied only at redemption time.
type LinkRole string

const (
	LinkRoleMember   LinkRole = "member"
	LinkRoleAdmin    LinkRole = "admin"
	LinkRoleObserver LinkRole = "observer"
)

// IsValid checks if the link role is valid.
func (l LinkRole) IsValid() bool {
	switch l {
	case LinkRoleMember, LinkRoleAdmin, LinkRoleObserver:
		return true
	}
	return false
}

// String returns the string representation of the link role.
func (l LinkRole) String() string {
	return string(l)
}

// MembershipRole maps the link role to the membership role granted at
// redemption: member→editor, admin→admin, observer→viewer.
func (l LinkRole) MembershipRole() Role {
	switch l {
	case LinkRoleMember:
		return RoleEditor
	case LinkRoleAdmin:
		return RoleAdmin
	case LinkRoleObserver:
		return RoleViewer
	default:
		return RoleNone
	}
}

// ParseLinkRole parses a string to a LinkRole.
func ParseLinkRole(s string) (LinkRole, bool) {
	l := LinkRole(s)
	return l, l.IsValid()
}

package board

import "testing"

func TestRoleOrdering(t *testing.T) {
	ordered := []Role{RoleViewer, RoleEditor, RoleAdmin, RoleOwner}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Level() <= ordered[i-1].Level() {
			t.Errorf("expected %s > %s in the role order", ordered[i], ordered[i-1])
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleOwner, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleOwner, false},
		{RoleEditor, RoleEditor, true},
		{RoleEditor, RoleAdmin, false},
		{RoleViewer, RoleViewer, true},
		{RoleViewer, RoleEditor, false},
		{RoleNone, RoleViewer, false},
		// RoleNone grants nothing, not even against itself.
		{RoleNone, RoleNone, false},
	}

	for _, tt := range tests {
		if got := tt.role.AtLeast(tt.min); got != tt.want {
			t.Errorf("%q.AtLeast(%q) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestRoleIsMembershipRole(t *testing.T) {
	for _, r := range MembershipRoles {
		if !r.IsMembershipRole() {
			t.Errorf("%s should be a membership role", r)
		}
	}
	if RoleOwner.IsMembershipRole() {
		t.Error("owner must never be storable as a membership role")
	}
	if RoleNone.IsMembershipRole() {
		t.Error("the absent role must not be storable")
	}
}

func TestParseRole(t *testing.T) {
	if _, ok := ParseRole("editor"); !ok {
		t.Error("editor should parse")
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Error("superuser should not parse")
	}
	if _, ok := ParseRole(""); ok {
		t.Error("empty string should not parse")
	}
}

func TestLinkRoleMapping(t *testing.T) {
	tests := []struct {
		link LinkRole
		want Role
	}{
		{LinkRoleMember, RoleEditor},
		{LinkRoleAdmin, RoleAdmin},
		{LinkRoleObserver, RoleViewer},
	}

	for _, tt := range tests {
		if got := tt.link.MembershipRole(); got != tt.want {
			t.Errorf("link role %q maps to %q, want %q", tt.link, got, tt.want)
		}
	}

	if LinkRole("owner").IsValid() {
		t.Error("owner must not be a valid link role")
	}
	if got := LinkRole("bogus").MembershipRole(); got != RoleNone {
		t.Errorf("invalid link role maps to %q, want none", got)
	}
}

package board

import (
	"testing"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

func TestNewInviteLink(t *testing.T) {
	boardID := shared.NewID()
	adminID := shared.NewID()

	link, err := NewInviteLink(boardID, LinkRoleObserver, adminID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !link.Active() {
		t.Error("new link should be active")
	}
	if link.Token() == "" {
		t.Error("new link should carry a token")
	}
	if link.IsExpired() {
		t.Error("link without expiry should never be expired")
	}

	other, err := NewInviteLink(boardID, LinkRoleObserver, adminID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.Token() == link.Token() {
		t.Error("tokens must be unique per link")
	}
}

func TestNewInviteLinkRejectsPastExpiry(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	_, err := NewInviteLink(shared.NewID(), LinkRoleMember, shared.NewID(), &past)
	if !shared.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewInviteLinkRejectsInvalidRole(t *testing.T) {
	_, err := NewInviteLink(shared.NewID(), LinkRole("editor"), shared.NewID(), nil)
	if !shared.IsValidation(err) {
		t.Errorf("expected validation error for membership-vocabulary role, got %v", err)
	}
}

func TestInviteLinkExpiry(t *testing.T) {
	future := time.Now().UTC().Add(time.Hour)
	link, err := NewInviteLink(shared.NewID(), LinkRoleMember, shared.NewID(), &future)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.IsExpired() {
		t.Error("link should not be expired before its expiry")
	}

	past := time.Now().UTC().Add(-time.Minute)
	expired := ReconstituteInviteLink(
		link.ID(), link.BoardID(), link.Token(), link.Role(),
		true, &past, link.CreatedBy(), link.CreatedAt(),
	)
	if !expired.IsExpired() {
		t.Error("link past its expiry should report expired")
	}
}

func TestInviteLinkDeactivateIdempotent(t *testing.T) {
	link, err := NewInviteLink(shared.NewID(), LinkRoleAdmin, shared.NewID(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	link.Deactivate()
	link.Deactivate()
	if link.Active() {
		t.Error("deactivated link should stay inactive")
	}
}

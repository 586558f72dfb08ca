package access_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

// fakeStore backs the gate's reader interfaces with maps.
type fakeStore struct {
	boards      map[shared.ID]*board.Board
	lists       map[shared.ID]*board.List
	memberships map[string]*board.Membership // board|user
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		boards:      make(map[shared.ID]*board.Board),
		lists:       make(map[shared.ID]*board.List),
		memberships: make(map[string]*board.Membership),
	}
}

func membershipKey(boardID, userID shared.ID) string {
	return boardID.String() + "|" + userID.String()
}

func (s *fakeStore) GetByID(_ context.Context, id shared.ID) (*board.Board, error) {
	b, ok := s.boards[id]
	if !ok {
		return nil, fmt.Errorf("%w: board", shared.ErrNotFound)
	}
	return b, nil
}

func (s *fakeStore) GetList(_ context.Context, id shared.ID) (*board.List, error) {
	l, ok := s.lists[id]
	if !ok {
		return nil, fmt.Errorf("%w: list", shared.ErrNotFound)
	}
	return l, nil
}

func (s *fakeStore) GetMembership(_ context.Context, boardID, userID shared.ID) (*board.Membership, error) {
	m, ok := s.memberships[membershipKey(boardID, userID)]
	if !ok {
		return nil, fmt.Errorf("%w: membership", shared.ErrNotFound)
	}
	return m, nil
}

func (s *fakeStore) SharesBoard(_ context.Context, userA, userB shared.ID) (bool, error) {
	for _, b := range s.boards {
		if s.onBoard(b, userA) && s.onBoard(b, userB) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) onBoard(b *board.Board, userID shared.ID) bool {
	if b.IsCreator(userID) {
		return true
	}
	_, ok := s.memberships[membershipKey(b.ID(), userID)]
	return ok
}

func (s *fakeStore) addBoard(t *testing.T, creatorID shared.ID) *board.Board {
	t.Helper()
	b, err := board.NewBoard(shared.NewID(), "test board", creatorID)
	if err != nil {
		t.Fatalf("failed to create board: %v", err)
	}
	s.boards[b.ID()] = b
	return b
}

func (s *fakeStore) addMember(t *testing.T, b *board.Board, userID shared.ID, role board.Role) {
	t.Helper()
	m, err := board.NewMembership(b.ID(), userID, role, nil)
	if err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}
	s.memberships[membershipKey(b.ID(), userID)] = m
}

func (s *fakeStore) addList(t *testing.T, b *board.Board) *board.List {
	t.Helper()
	l, err := board.NewList(b.ID(), "todo", 0)
	if err != nil {
		t.Fatalf("failed to create list: %v", err)
	}
	s.lists[l.ID()] = l
	return l
}

func newGate(s *fakeStore) *access.Gate {
	return access.NewGate(access.NewResolver(s), s, s, s)
}

func TestResolveCreatorIsAlwaysOwner(t *testing.T) {
	s := newFakeStore()
	creator := shared.NewID()
	b := s.addBoard(t, creator)
	resolver := access.NewResolver(s)

	role, err := resolver.Resolve(context.Background(), b, creator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != board.RoleOwner {
		t.Errorf("creator resolved to %q, want owner", role)
	}
}

func TestResolveMembershipRow(t *testing.T) {
	s := newFakeStore()
	b := s.addBoard(t, shared.NewID())
	member := shared.NewID()
	s.addMember(t, b, member, board.RoleEditor)
	resolver := access.NewResolver(s)

	role, err := resolver.Resolve(context.Background(), b, member)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != board.RoleEditor {
		t.Errorf("member resolved to %q, want editor", role)
	}
}

func TestResolveStrangerAndAnonymous(t *testing.T) {
	s := newFakeStore()
	b := s.addBoard(t, shared.NewID())
	resolver := access.NewResolver(s)

	role, err := resolver.Resolve(context.Background(), b, shared.NewID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != board.RoleNone {
		t.Errorf("stranger resolved to %q, want none", role)
	}

	role, err = resolver.Resolve(context.Background(), b, shared.ID{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != board.RoleNone {
		t.Errorf("anonymous resolved to %q, want none", role)
	}
}

func TestGateRoleMatrix(t *testing.T) {
	s := newFakeStore()
	creator := shared.NewID()
	b := s.addBoard(t, creator)

	users := map[board.Role]shared.ID{
		board.RoleAdmin:  shared.NewID(),
		board.RoleEditor: shared.NewID(),
		board.RoleViewer: shared.NewID(),
	}
	for role, id := range users {
		s.addMember(t, b, id, role)
	}
	users[board.RoleOwner] = creator

	gate := newGate(s)
	ctx := context.Background()

	checks := []struct {
		name    string
		check   func(context.Context, *board.Board, shared.ID) error
		allowed map[board.Role]bool
	}{
		{
			name:  "view",
			check: gate.CanView,
			allowed: map[board.Role]bool{
				board.RoleOwner: true, board.RoleAdmin: true,
				board.RoleEditor: true, board.RoleViewer: true,
			},
		},
		{
			name:  "edit",
			check: gate.CanEdit,
			allowed: map[board.Role]bool{
				board.RoleOwner: true, board.RoleAdmin: true,
				board.RoleEditor: true, board.RoleViewer: false,
			},
		},
		{
			name:  "administer",
			check: gate.CanAdminister,
			allowed: map[board.Role]bool{
				board.RoleOwner: true, board.RoleAdmin: true,
				board.RoleEditor: false, board.RoleViewer: false,
			},
		},
		{
			name:  "delete",
			check: gate.CanDelete,
			allowed: map[board.Role]bool{
				board.RoleOwner: true, board.RoleAdmin: false,
				board.RoleEditor: false, board.RoleViewer: false,
			},
		},
	}

	for _, c := range checks {
		for role, userID := range users {
			err := c.check(ctx, b, userID)
			if c.allowed[role] && err != nil {
				t.Errorf("%s should allow %s, got %v", c.name, role, err)
			}
			if !c.allowed[role] && !shared.IsForbidden(err) {
				t.Errorf("%s should deny %s with forbidden, got %v", c.name, role, err)
			}
		}
	}
}

func TestGateUnauthenticated(t *testing.T) {
	s := newFakeStore()
	b := s.addBoard(t, shared.NewID())
	gate := newGate(s)

	err := gate.CanView(context.Background(), b, shared.ID{})
	if !errors.Is(err, shared.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated, got %v", err)
	}
}

func TestGateNonMemberDeniedWithReason(t *testing.T) {
	s := newFakeStore()
	b := s.addBoard(t, shared.NewID())
	gate := newGate(s)

	err := gate.CanView(context.Background(), b, shared.NewID())
	if !shared.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() == shared.ErrForbidden.Error() {
		t.Error("denial must carry a human-readable reason")
	}
}

func TestGateCardChainWalking(t *testing.T) {
	s := newFakeStore()
	creator := shared.NewID()
	b := s.addBoard(t, creator)
	l := s.addList(t, b)
	editor := shared.NewID()
	s.addMember(t, b, editor, board.RoleEditor)

	card, err := board.NewCard(l.ID(), creator, "filed card", 0)
	if err != nil {
		t.Fatalf("failed to create card: %v", err)
	}

	gate := newGate(s)
	ctx := context.Background()

	if err := gate.CanEditCard(ctx, card, editor); err != nil {
		t.Errorf("board editor should edit a filed card, got %v", err)
	}
	if err := gate.CanAdministerCard(ctx, card, editor); !shared.IsForbidden(err) {
		t.Errorf("board editor should not administer a filed card, got %v", err)
	}
	if err := gate.CanViewCard(ctx, card, shared.NewID()); !shared.IsForbidden(err) {
		t.Errorf("stranger should not view a filed card, got %v", err)
	}
}

func TestGateInboxFallback(t *testing.T) {
	s := newFakeStore()
	userA := shared.NewID()
	userB := shared.NewID()

	card, err := board.NewInboxCard(userA, "inbox card")
	if err != nil {
		t.Fatalf("failed to create inbox card: %v", err)
	}

	gate := newGate(s)
	ctx := context.Background()

	// Creator can do everything on their own inbox card.
	if err := gate.CanEditCard(ctx, card, userA); err != nil {
		t.Errorf("creator should edit own inbox card, got %v", err)
	}
	if err := gate.CanAdministerCard(ctx, card, userA); err != nil {
		t.Errorf("creator should administer own inbox card, got %v", err)
	}

	// B shares no board with A yet.
	if err := gate.CanViewCard(ctx, card, userB); !shared.IsForbidden(err) {
		t.Errorf("user without a shared board should be denied, got %v", err)
	}

	// A and B join the same board; view and edit open up.
	b := s.addBoard(t, shared.NewID())
	s.addMember(t, b, userA, board.RoleViewer)
	s.addMember(t, b, userB, board.RoleViewer)

	if err := gate.CanViewCard(ctx, card, userB); err != nil {
		t.Errorf("user sharing a board should view the inbox card, got %v", err)
	}
	if err := gate.CanEditCard(ctx, card, userB); err != nil {
		t.Errorf("user sharing a board should edit the inbox card, got %v", err)
	}

	// Administer never widens past the creator.
	if err := gate.CanAdministerCard(ctx, card, userB); !shared.IsForbidden(err) {
		t.Errorf("non-creator should never administer an inbox card, got %v", err)
	}
}

func TestBoardForCardInbox(t *testing.T) {
	s := newFakeStore()
	card, err := board.NewInboxCard(shared.NewID(), "inbox card")
	if err != nil {
		t.Fatalf("failed to create inbox card: %v", err)
	}

	gate := newGate(s)
	if _, err := gate.BoardForCard(context.Background(), card); !shared.IsNotFound(err) {
		t.Errorf("inbox card has no board, expected not found, got %v", err)
	}
}

package access

import (
	"context"
	"fmt"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

// BoardReader loads boards for containment-chain walking.
type BoardReader interface {
	GetByID(ctx context.Context, id shared.ID) (*board.Board, error)
}

// ListReader loads lists for containment-chain walking.
type ListReader interface {
	GetList(ctx context.Context, id shared.ID) (*board.List, error)
}

// SharedBoardReader answers the inbox fallback question: do two users
// share at least one board (either side as creator or member)?
type SharedBoardReader interface {
	SharesBoard(ctx context.Context, userA, userB shared.ID) (bool, error)
}

// Gate decides "can this user do X to this object". All checks return
// nil to allow, or an error wrapping shared.ErrUnauthenticated or
// shared.ErrForbidden (with a human-readable reason) to deny. Denials
// are never silent.
//
// Board-rooted resources resolve their owning board by walking the
// containment chain (card → list → board; comment/attachment/checklist
// item → card → ...), then compare the resolved role against the
// check's minimum using the total order viewer < editor < admin <
// owner. Inbox cards (no list, no board) fall back to the relaxed
// creator/shared-board policy for view and edit, and to creator-only
// for administer and delete.
type Gate struct {
	resolver *Resolver
	boards   BoardReader
	lists    ListReader
	shared   SharedBoardReader
}

// NewGate creates a new Gate.
func NewGate(resolver *Resolver, boards BoardReader, lists ListReader, sharedBoards SharedBoardReader) *Gate {
	return &Gate{
		resolver: resolver,
		boards:   boards,
		lists:    lists,
		shared:   sharedBoards,
	}
}

// CanView allows any resolved role (minimum viewer).
func (g *Gate) CanView(ctx context.Context, b *board.Board, userID shared.ID) error {
	return g.requireBoardRole(ctx, b, userID, board.RoleViewer)
}

// CanEdit allows content mutation (minimum editor).
func (g *Gate) CanEdit(ctx context.Context, b *board.Board, userID shared.ID) error {
	return g.requireBoardRole(ctx, b, userID, board.RoleEditor)
}

// CanAdminister allows destructive/structural operations (minimum
// admin): delete lists and labels, manage membership and invite links,
// apply board-scoped card batches.
func (g *Gate) CanAdminister(ctx context.Context, b *board.Board, userID shared.ID) error {
	return g.requireBoardRole(ctx, b, userID, board.RoleAdmin)
}

// CanDelete is reserved to the owner; it gates permanent board
// deletion only.
func (g *Gate) CanDelete(ctx context.Context, b *board.Board, userID shared.ID) error {
	return g.requireBoardRole(ctx, b, userID, board.RoleOwner)
}

// CanViewCard is CanView routed through the card's containment chain,
// with the inbox fallback.
func (g *Gate) CanViewCard(ctx context.Context, c *board.Card, userID shared.ID) error {
	return g.requireCardRole(ctx, c, userID, board.RoleViewer)
}

// CanEditCard is CanEdit routed through the card's containment chain,
// with the inbox fallback.
func (g *Gate) CanEditCard(ctx context.Context, c *board.Card, userID shared.ID) error {
	return g.requireCardRole(ctx, c, userID, board.RoleEditor)
}

// CanAdministerCard is CanAdminister routed through the card's
// containment chain. There is no inbox widening: administering an
// inbox card is creator-only.
func (g *Gate) CanAdministerCard(ctx context.Context, c *board.Card, userID shared.ID) error {
	return g.requireCardRole(ctx, c, userID, board.RoleAdmin)
}

// BoardForCard walks card → list → board and returns the owning board.
// Returns shared.ErrNotFound for inbox cards, which have none.
func (g *Gate) BoardForCard(ctx context.Context, c *board.Card) (*board.Board, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: card is required", shared.ErrInvalidInput)
	}
	if c.IsInbox() {
		return nil, fmt.Errorf("%w: inbox card has no board", shared.ErrNotFound)
	}

	l, err := g.lists.GetList(ctx, *c.ListID())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve card's list: %w", err)
	}
	b, err := g.boards.GetByID(ctx, l.BoardID())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve list's board: %w", err)
	}
	return b, nil
}

func (g *Gate) requireBoardRole(ctx context.Context, b *board.Board, userID shared.ID, min board.Role) error {
	if userID.IsZero() {
		return fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}
	if b == nil {
		return fmt.Errorf("%w: board is required", shared.ErrInvalidInput)
	}

	role, err := g.resolver.Resolve(ctx, b, userID)
	if err != nil {
		return err
	}
	if role == board.RoleNone {
		return shared.Forbiddenf("you are not a member of this board")
	}
	if !role.AtLeast(min) {
		return shared.Forbiddenf("requires %s access, your role is %s", min, role)
	}
	return nil
}

func (g *Gate) requireCardRole(ctx context.Context, c *board.Card, userID shared.ID, min board.Role) error {
	if userID.IsZero() {
		return fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}
	if c == nil {
		return fmt.Errorf("%w: card is required", shared.ErrInvalidInput)
	}

	if c.IsInbox() {
		return g.requireInboxAccess(ctx, c, userID, min)
	}

	b, err := g.BoardForCard(ctx, c)
	if err != nil {
		return err
	}
	return g.requireBoardRole(ctx, b, userID, min)
}

// requireInboxAccess applies the inbox policy: the creator may do
// anything; for view and edit any user sharing a board with the
// creator is allowed ("personal inbox visible to collaborators");
// administer and delete never widen past the creator.
func (g *Gate) requireInboxAccess(ctx context.Context, c *board.Card, userID shared.ID, min board.Role) error {
	if c.CreatorID().Equals(userID) {
		return nil
	}
	if min.AtLeast(board.RoleAdmin) {
		return shared.Forbiddenf("only the card's creator can perform this action on an inbox card")
	}

	ok, err := g.shared.SharesBoard(ctx, userID, c.CreatorID())
	if err != nil {
		return fmt.Errorf("failed to check shared boards: %w", err)
	}
	if !ok {
		return shared.Forbiddenf("you do not share a board with this card's creator")
	}
	return nil
}

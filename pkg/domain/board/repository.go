package board

import (
	"context"

	"github.com/boardkit/api/pkg/domain/shared"
)

// Repository defines persistence for boards, lists, labels,
// memberships, and invite links.
//
// Concurrency contract: ChangeMembershipRole is compare-and-set — it
// succeeds only if the stored role still equals the expected one, so
// two admins changing the same membership cannot silently overwrite
// each other. GetOrCreateMembership is atomic on the unique
// (board, user) pair so concurrent invite-link redemption by the same
// user produces exactly one row and no error.
type Repository interface {
	// Board CRUD
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, id shared.ID) (*Board, error)
	Update(ctx context.Context, b *Board) error
	Delete(ctx context.Context, id shared.ID) error
	ListByWorkspace(ctx context.Context, workspaceID shared.ID) ([]*Board, error)
	// ListForUser returns boards the user created or is a member of.
	ListForUser(ctx context.Context, userID shared.ID) ([]*BoardWithRole, error)

	// List operations
	CreateList(ctx context.Context, l *List) error
	GetList(ctx context.Context, id shared.ID) (*List, error)
	UpdateList(ctx context.Context, l *List) error
	DeleteList(ctx context.Context, id shared.ID) error
	ListsByBoard(ctx context.Context, boardID shared.ID) ([]*List, error)

	// Label operations
	CreateLabels(ctx context.Context, labels []*Label) error
	GetLabel(ctx context.Context, id shared.ID) (*Label, error)
	UpdateLabel(ctx context.Context, l *Label) error
	DeleteLabel(ctx context.Context, id shared.ID) error
	LabelsByBoard(ctx context.Context, boardID shared.ID) ([]*Label, error)

	// Membership operations
	CreateMembership(ctx context.Context, m *Membership) error
	GetMembership(ctx context.Context, boardID, userID shared.ID) (*Membership, error)
	// ChangeMembershipRole updates the role only if it still equals
	// expected; returns shared.ErrConflict on a lost race and
	// shared.ErrNotFound if no row exists.
	ChangeMembershipRole(ctx context.Context, boardID, userID shared.ID, expected, next Role) error
	DeleteMembership(ctx context.Context, boardID, userID shared.ID) error
	ListMembersByBoard(ctx context.Context, boardID shared.ID) ([]*Membership, error)
	ListMembersWithUserInfo(ctx context.Context, boardID shared.ID) ([]*MemberWithUser, error)
	SearchMembersWithUserInfo(ctx context.Context, boardID shared.ID, filters MemberSearchFilters) (*MemberSearchResult, error)
	// GetOrCreateMembership inserts m unless a membership already
	// exists for its (board, user) pair; it returns the stored row and
	// whether it was created by this call.
	GetOrCreateMembership(ctx context.Context, m *Membership) (*Membership, bool, error)
	// SharesBoard reports whether two users share at least one board,
	// counting both creatorship and membership on each side.
	SharesBoard(ctx context.Context, userA, userB shared.ID) (bool, error)

	// Invite link operations
	// ReplaceInviteLink atomically deactivates any active link for the
	// board and persists l as the single active one.
	ReplaceInviteLink(ctx context.Context, l *InviteLink) error
	GetInviteLinkByToken(ctx context.Context, token string) (*InviteLink, error)
	GetActiveInviteLink(ctx context.Context, boardID shared.ID) (*InviteLink, error)
	DeactivateInviteLink(ctx context.Context, id shared.ID) error
	// DeactivateExpiredInviteLinks sweeps links whose expiry has
	// passed; returns how many were deactivated.
	DeactivateExpiredInviteLinks(ctx context.Context) (int64, error)
}

// CardRepository defines persistence for cards and their nested
// resources (comments, checklist items, attachments, label links).
type CardRepository interface {
	Create(ctx context.Context, c *Card) error
	GetByID(ctx context.Context, id shared.ID) (*Card, error)
	Update(ctx context.Context, c *Card) error
	Delete(ctx context.Context, id shared.ID) error
	ListByList(ctx context.Context, listID shared.ID) ([]*Card, error)
	ListInboxByCreator(ctx context.Context, creatorID shared.ID) ([]*Card, error)
	// GetMany returns the cards for the given IDs. A missing ID is an
	// error (shared.ErrNotFound), not a silent omission.
	GetMany(ctx context.Context, ids []shared.ID) ([]*Card, error)
	// UpdateBatch persists all updates in one transaction: either every
	// card is written or none are.
	UpdateBatch(ctx context.Context, cards []*Card) error

	// Comments
	CreateComment(ctx context.Context, c *Comment) error
	GetComment(ctx context.Context, id shared.ID) (*Comment, error)
	UpdateComment(ctx context.Context, c *Comment) error
	DeleteComment(ctx context.Context, id shared.ID) error
	ListCommentsByCard(ctx context.Context, cardID shared.ID) ([]*Comment, error)

	// Checklist items
	CreateChecklistItem(ctx context.Context, i *ChecklistItem) error
	GetChecklistItem(ctx context.Context, id shared.ID) (*ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, i *ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, id shared.ID) error
	ListChecklistByCard(ctx context.Context, cardID shared.ID) ([]*ChecklistItem, error)

	// Attachments
	CreateAttachment(ctx context.Context, a *Attachment) error
	GetAttachment(ctx context.Context, id shared.ID) (*Attachment, error)
	DeleteAttachment(ctx context.Context, id shared.ID) error
	ListAttachmentsByCard(ctx context.Context, cardID shared.ID) ([]*Attachment, error)

	// Card labels
	AttachLabel(ctx context.Context, cardID, labelID shared.ID) error
	DetachLabel(ctx context.Context, cardID, labelID shared.ID) error
	ListLabelIDsByCard(ctx context.Context, cardID shared.ID) ([]shared.ID, error)
}

// BoardWithRole pairs a board with the requesting user's effective role
// on it.
type BoardWithRole struct {
	Board *Board
	Role  Role
}

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/boardkit/api/internal/metrics"
	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

// MembershipService mutates board membership: invite, change role,
// remove. The owner role is never assignable, changeable, or removable
// through this service; it belongs implicitly to the board's creator.
type MembershipService struct {
	repo     board.Repository
	gate     *access.Gate
	resolver *access.Resolver
	activity ActivityRecorder
	logger   *logger.Logger
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(repo board.Repository, gate *access.Gate, resolver *access.Resolver, log *logger.Logger, opts ...MembershipServiceOption) *MembershipService {
	s := &MembershipService{
		repo:     repo,
		gate:     gate,
		resolver: resolver,
		logger:   log.With("service", "membership"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MembershipServiceOption is a functional option for MembershipService.
type MembershipServiceOption func(*MembershipService)

// WithMembershipActivityRecorder sets the activity recorder.
func WithMembershipActivityRecorder(recorder ActivityRecorder) MembershipServiceOption {
	return func(s *MembershipService) {
		s.activity = recorder
	}
}

// InviteMemberInput represents the input for inviting a member.
type InviteMemberInput struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,board_role"`
}

// InviteResult is the outcome of an invite. AlreadyMember is true when
// the target already held a membership (or is the creator); in that
// case Membership is nil for creators and the existing row otherwise,
// and no new row was written.
type InviteResult struct {
	Membership    *board.Membership
	AlreadyMember bool
	EffectiveRole board.Role
}

// Invite adds a user to a board at the given role. Requires admin
// access. Inviting someone who is already a member (or the creator) is
// an idempotent no-op reporting their existing effective role.
func (s *MembershipService) Invite(ctx context.Context, boardID shared.ID, inviterID shared.ID, input InviteMemberInput) (*InviteResult, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanAdminister(ctx, b, inviterID); err != nil {
		return nil, err
	}

	targetID, err := shared.IDFromString(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id format", shared.ErrValidation)
	}
	role, ok := board.ParseRole(input.Role)
	if !ok || !role.IsMembershipRole() {
		return nil, fmt.Errorf("%w: role must be one of admin, editor, viewer", shared.ErrValidation)
	}

	if b.IsCreator(targetID) {
		return &InviteResult{AlreadyMember: true, EffectiveRole: board.RoleOwner}, nil
	}

	m, err := board.NewMembership(b.ID(), targetID, role, &inviterID)
	if err != nil {
		return nil, err
	}

	stored, created, err := s.repo.GetOrCreateMembership(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	if !created {
		return &InviteResult{
			Membership:    stored,
			AlreadyMember: true,
			EffectiveRole: stored.Role(),
		}, nil
	}

	s.logger.Info("member invited",
		"board_id", b.ID().String(),
		"user_id", targetID.String(),
		"role", string(role),
	)
	metrics.MembershipChangesTotal.WithLabelValues("invited").Inc()

	event := board.NewEvent(board.EventMemberAdded, b.ID(), inviterID, targetID)
	event.Role = role
	recordActivity(ctx, s.activity, s.logger, event)

	return &InviteResult{Membership: stored, EffectiveRole: role}, nil
}

// ChangeRoleInput represents the input for changing a member's role.
type ChangeRoleInput struct {
	Role string `json:"role" validate:"required,board_role"`
}

// ChangeRole updates a member's role. Requires admin access. The
// board creator's owner role is immutable; attempting to change it is a
// conflict. The update is compare-and-set against the role the actor
// last read, so two admins racing on the same membership cannot
// silently overwrite each other.
func (s *MembershipService) ChangeRole(ctx context.Context, boardID, actorID, targetID shared.ID, input ChangeRoleInput) (*board.Membership, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanAdminister(ctx, b, actorID); err != nil {
		return nil, err
	}

	if b.IsCreator(targetID) {
		return nil, fmt.Errorf("%w: the board creator's owner role cannot be changed", shared.ErrConflict)
	}

	newRole, ok := board.ParseRole(input.Role)
	if !ok || !newRole.IsMembershipRole() {
		return nil, fmt.Errorf("%w: role must be one of admin, editor, viewer", shared.ErrValidation)
	}

	m, err := s.repo.GetMembership(ctx, b.ID(), targetID)
	if err != nil {
		return nil, err
	}

	oldRole := m.Role()
	if oldRole == newRole {
		return m, nil
	}

	if err := s.repo.ChangeMembershipRole(ctx, b.ID(), targetID, oldRole, newRole); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			metrics.MembershipRoleConflictsTotal.Inc()
			return nil, fmt.Errorf("%w: membership was modified concurrently, re-read and retry", shared.ErrConflict)
		}
		return nil, fmt.Errorf("failed to change member role: %w", err)
	}
	if err := m.ChangeRole(newRole); err != nil {
		return nil, err
	}

	s.logger.Info("member role changed",
		"board_id", b.ID().String(),
		"user_id", targetID.String(),
		"old_role", string(oldRole),
		"new_role", string(newRole),
	)
	metrics.MembershipChangesTotal.WithLabelValues("role_changed").Inc()

	event := board.NewEvent(board.EventMemberRoleChanged, b.ID(), actorID, targetID)
	event.Role = newRole
	event.OldRole = oldRole
	recordActivity(ctx, s.activity, s.logger, event)

	return m, nil
}

// Remove deletes a member from a board. Requires admin access, except
// that any member may remove themself. The board creator can never be
// removed, by anyone.
func (s *MembershipService) Remove(ctx context.Context, boardID, actorID, targetID shared.ID) error {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return err
	}

	// Self-removal (leaving the board) needs no admin rights, only a
	// resolvable identity on the board.
	if actorID.Equals(targetID) {
		if err := s.gate.CanView(ctx, b, actorID); err != nil {
			return err
		}
	} else if err := s.gate.CanAdminister(ctx, b, actorID); err != nil {
		return err
	}

	if b.IsCreator(targetID) {
		return fmt.Errorf("%w: the board creator cannot be removed", shared.ErrConflict)
	}

	if err := s.repo.DeleteMembership(ctx, b.ID(), targetID); err != nil {
		return err
	}

	s.logger.Info("member removed",
		"board_id", b.ID().String(),
		"user_id", targetID.String(),
		"self_removal", actorID.Equals(targetID),
	)
	metrics.MembershipChangesTotal.WithLabelValues("removed").Inc()

	event := board.NewEvent(board.EventMemberRemoved, b.ID(), actorID, targetID)
	recordActivity(ctx, s.activity, s.logger, event)

	return nil
}

// ListMembers lists all members of a board. Requires view access.
func (s *MembershipService) ListMembers(ctx context.Context, boardID, actorID shared.ID) ([]*board.MemberWithUser, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, b, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListMembersWithUserInfo(ctx, b.ID())
}

// SearchMembers searches board members with filtering and pagination.
// Requires view access.
func (s *MembershipService) SearchMembers(ctx context.Context, boardID, actorID shared.ID, filters board.MemberSearchFilters) (*board.MemberSearchResult, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, b, actorID); err != nil {
		return nil, err
	}

	if filters.Offset < 0 {
		filters.Offset = 0
	}
	const maxOffset = 10000
	if filters.Offset > maxOffset {
		return nil, fmt.Errorf("%w: offset exceeds maximum of %d", shared.ErrValidation, maxOffset)
	}
	if filters.Limit <= 0 {
		filters.Limit = 25
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}
	const maxSearchLength = 100
	if len(filters.Search) > maxSearchLength {
		return nil, fmt.Errorf("%w: search string exceeds maximum of %d characters", shared.ErrValidation, maxSearchLength)
	}

	return s.repo.SearchMembersWithUserInfo(ctx, b.ID(), filters)
}

// ResolveRole reports the acting user's effective role on a board.
// Requires view access, so non-members cannot probe a board they
// cannot see.
func (s *MembershipService) ResolveRole(ctx context.Context, boardID, actorID shared.ID) (board.Role, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return board.RoleNone, err
	}
	if err := s.gate.CanView(ctx, b, actorID); err != nil {
		return board.RoleNone, err
	}
	role, err := s.resolver.Resolve(ctx, b, actorID)
	if err != nil {
		return board.RoleNone, err
	}
	metrics.RoleResolutionsTotal.WithLabelValues(string(role)).Inc()
	return role, nil
}

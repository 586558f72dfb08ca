package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

func newMembershipService(repo *fakeBoardRepo, rec *capturingRecorder) *MembershipService {
	resolver, gate := newTestGate(repo)
	opts := []MembershipServiceOption{}
	if rec != nil {
		opts = append(opts, WithMembershipActivityRecorder(rec))
	}
	return NewMembershipService(repo, gate, resolver, testLogger(), opts...)
}

func TestMembershipService_Invite(t *testing.T) {
	ctx := context.Background()

	t.Run("admin invites a new member", func(t *testing.T) {
		repo := newFakeBoardRepo()
		rec := &capturingRecorder{}
		svc := newMembershipService(repo, rec)

		creator := shared.NewID()
		target := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		res, err := svc.Invite(ctx, b.ID(), creator, InviteMemberInput{
			UserID: target.String(),
			Role:   "editor",
		})
		require.NoError(t, err)
		assert.False(t, res.AlreadyMember)
		assert.Equal(t, board.RoleEditor, res.EffectiveRole)
		require.NotNil(t, res.Membership)
		assert.Equal(t, target, res.Membership.UserID())

		m, err := repo.GetMembership(ctx, b.ID(), target)
		require.NoError(t, err)
		assert.Equal(t, board.RoleEditor, m.Role())

		events := rec.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, board.EventMemberAdded, events[0].Action)
		assert.Equal(t, target, events[0].SubjectID)
	})

	t.Run("inviting an existing member is an idempotent no-op", func(t *testing.T) {
		repo := newFakeBoardRepo()
		rec := &capturingRecorder{}
		svc := newMembershipService(repo, rec)

		creator := shared.NewID()
		target := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), target, board.RoleViewer)

		res, err := svc.Invite(ctx, b.ID(), creator, InviteMemberInput{
			UserID: target.String(),
			Role:   "admin",
		})
		require.NoError(t, err)
		assert.True(t, res.AlreadyMember)
		// The stored role wins; the invite does not escalate it.
		assert.Equal(t, board.RoleViewer, res.EffectiveRole)

		m, err := repo.GetMembership(ctx, b.ID(), target)
		require.NoError(t, err)
		assert.Equal(t, board.RoleViewer, m.Role())
		assert.Empty(t, rec.recorded())
	})

	t.Run("inviting the creator reports owner without writing a row", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newMembershipService(repo, nil)

		creator := shared.NewID()
		admin := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), admin, board.RoleAdmin)

		res, err := svc.Invite(ctx, b.ID(), admin, InviteMemberInput{
			UserID: creator.String(),
			Role:   "viewer",
		})
		require.NoError(t, err)
		assert.True(t, res.AlreadyMember)
		assert.Equal(t, board.RoleOwner, res.EffectiveRole)
		assert.Nil(t, res.Membership)

		_, err = repo.GetMembership(ctx, b.ID(), creator)
		assert.True(t, shared.IsNotFound(err), "no membership row may exist for the creator")
	})

	t.Run("owner role cannot be granted by invite", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newMembershipService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		_, err := svc.Invite(ctx, b.ID(), creator, InviteMemberInput{
			UserID: shared.NewID().String(),
			Role:   "owner",
		})
		assert.True(t, shared.IsValidation(err), "got %v", err)
	})

	t.Run("editor may not invite", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newMembershipService(repo, nil)

		creator := shared.NewID()
		editor := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), editor, board.RoleEditor)

		_, err := svc.Invite(ctx, b.ID(), editor, InviteMemberInput{
			UserID: shared.NewID().String(),
			Role:   "viewer",
		})
		assert.True(t, shared.IsForbidden(err), "got %v", err)
	})
}

func TestMembershipService_ChangeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admin changes a member's role", func(t *testing.T) {
		repo := newFakeBoardRepo()
		rec := &capturingRecorder{}
		svc := newMembershipService(repo, rec)

		creator := shared.NewID()
		target := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), target, board.RoleViewer)

		m, err := svc.ChangeRole(ctx, b.ID(), creator, target, ChangeRoleInput{Role: "admin"})
		require.NoError(t, err)
		assert.Equal(t, board.RoleAdmin, m.Role())

		events := rec.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, board.EventMemberRoleChanged, events[0].Action)
		assert.Equal(t, board.RoleViewer, events[0].OldRole)
		assert.Equal(t, board.RoleAdmin, events[0].Role)
	})

	t.Run("creator's owner role is immutable", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newMembershipService(repo, nil)

		creator := shared.NewID()
		admin := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), admin, board.RoleAdmin)

		_, err := svc.ChangeRole(ctx, b.ID(), admin, creator, ChangeRoleInput{Role: "viewer"})
		assert.True(t, shared.IsConflict(err), "got %v", err)
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		repo := newFakeBoardRepo()
		rec := &capturingRecorder{}
		svc := newMembershipService(repo, rec)

		creator := shared.NewID()
		target := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), target, board.RoleEditor)

		m, err := svc.ChangeRole(ctx, b.ID(), creator, target, ChangeRoleInput{Role: "editor"})
		require.NoError(t, err)
		assert.Equal(t, board.RoleEditor, m.Role())
		assert.Empty(t, rec.recorded())
	})

	t.Run("lost race surfaces a conflict", func(t *testing.T) {
		repo := newFakeBoardRepo()

		creator := shared.NewID()
		target := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		m := mustMember(t, repo, b.ID(), target, board.RoleViewer)

		// Another admin's write lands between this actor's read and
		// write.
		require.NoError(t, m.ChangeRole(board.RoleEditor))

		hijacked := &racingRepo{fakeBoardRepo: repo, staleRole: board.RoleViewer}
		resolver, gate := newTestGate(repo)
		racy := NewMembershipService(hijacked, gate, resolver, testLogger())

		_, err := racy.ChangeRole(ctx, b.ID(), creator, target, ChangeRoleInput{Role: "admin"})
		assert.True(t, shared.IsConflict(err), "got %v", err)
	})

	t.Run("changing a non-member is not found", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newMembershipService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		_, err := svc.ChangeRole(ctx, b.ID(), creator, shared.NewID(), ChangeRoleInput{Role: "viewer"})
		assert.True(t, shared.IsNotFound(err), "got %v", err)
	})
}

// racingRepo makes GetMembership return a stale role so the subsequent
// compare-and-set write loses.
type racingRepo struct {
	*fakeBoardRepo
	staleRole board.Role
}

func (r *racingRepo) GetMembership(ctx context.Context, boardID, userID shared.ID) (*board.Membership, error) {
	m, err := r.fakeBoardRepo.GetMembership(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	return board.ReconstituteMembership(m.ID(), m.BoardID(), m.UserID(), r.staleRole, m.InvitedBy(), m.JoinedAt()), nil
}

func TestMembershipService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("admin removes a member", func(t *testing.T) {
		repo := newFakeBoardRepo()
		rec := &capturingRecorder{}
		svc := newMembershipService(repo, rec)

		creator := shared.NewID()
		target := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), target, board.RoleEditor)

		require.NoError(t, svc.Remove(ctx, b.ID(), creator, target))

		_, err := repo.GetMembership(ctx, b.ID(), target)
		assert.True(t, shared.IsNotFound(err))

		events := rec.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, board.EventMemberRemoved, events[0].Action)
	})

	t.Run("members may leave on their own", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newMembershipService(repo, nil)

		creator := shared.NewID()
		viewer := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), viewer, board.RoleViewer)

		require.NoError(t, svc.Remove(ctx, b.ID(), viewer, viewer))

		_, err := repo.GetMembership(ctx, b.ID(), viewer)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("editor may not remove others", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newMembershipService(repo, nil)

		creator := shared.NewID()
		editor := shared.NewID()
		other := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), editor, board.RoleEditor)
		mustMember(t, repo, b.ID(), other, board.RoleViewer)

		err := svc.Remove(ctx, b.ID(), editor, other)
		assert.True(t, shared.IsForbidden(err), "got %v", err)
	})

	t.Run("creator cannot be removed, even by themselves", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newMembershipService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		err := svc.Remove(ctx, b.ID(), creator, creator)
		assert.True(t, shared.IsConflict(err), "got %v", err)
	})
}

func TestMembershipService_ResolveRole(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBoardRepo()
	svc := newMembershipService(repo, nil)

	creator := shared.NewID()
	editor := shared.NewID()
	stranger := shared.NewID()
	b := mustBoard(t, repo, creator, "roadmap")
	mustMember(t, repo, b.ID(), editor, board.RoleEditor)

	role, err := svc.ResolveRole(ctx, b.ID(), creator)
	require.NoError(t, err)
	assert.Equal(t, board.RoleOwner, role)

	role, err = svc.ResolveRole(ctx, b.ID(), editor)
	require.NoError(t, err)
	assert.Equal(t, board.RoleEditor, role)

	_, err = svc.ResolveRole(ctx, b.ID(), stranger)
	assert.True(t, shared.IsForbidden(err), "got %v", err)
}

func TestMembershipService_SearchMembers(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBoardRepo()
	svc := newMembershipService(repo, nil)

	creator := shared.NewID()
	b := mustBoard(t, repo, creator, "roadmap")
	for range 3 {
		mustMember(t, repo, b.ID(), shared.NewID(), board.RoleViewer)
	}

	res, err := svc.SearchMembers(ctx, b.ID(), creator, board.MemberSearchFilters{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Members, 2)

	_, err = svc.SearchMembers(ctx, b.ID(), creator, board.MemberSearchFilters{Offset: 20000})
	assert.True(t, shared.IsValidation(err), "got %v", err)
}

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/api/internal/metrics"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

// expiredLink builds an active link whose expiry is already in the
// past, the shape a stored row takes once its deadline lapses.
func expiredLink(t *testing.T, boardID, createdBy shared.ID, expiredAt time.Time) *board.InviteLink {
	t.Helper()
	fresh, err := board.NewInviteLink(boardID, board.LinkRoleMember, createdBy, nil)
	require.NoError(t, err)
	return board.ReconstituteInviteLink(fresh.ID(), fresh.BoardID(), fresh.Token(), fresh.Role(), true, &expiredAt, fresh.CreatedBy(), fresh.CreatedAt())
}

func newInviteLinkService(repo *fakeBoardRepo, rec *capturingRecorder) *InviteLinkService {
	resolver, gate := newTestGate(repo)
	opts := []InviteLinkServiceOption{}
	if rec != nil {
		opts = append(opts, WithInviteLinkActivityRecorder(rec))
	}
	return NewInviteLinkService(repo, gate, resolver, 90*24*time.Hour, testLogger(), opts...)
}

func TestInviteLinkService_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("admin issues a link", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		link, err := svc.Issue(ctx, b.ID(), creator, IssueLinkInput{Role: "member"})
		require.NoError(t, err)
		assert.True(t, link.Active())
		assert.Equal(t, board.LinkRoleMember, link.Role())
		assert.NotEmpty(t, link.Token())
	})

	t.Run("issuing replaces the previous active link", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		first, err := svc.Issue(ctx, b.ID(), creator, IssueLinkInput{Role: "member"})
		require.NoError(t, err)
		second, err := svc.Issue(ctx, b.ID(), creator, IssueLinkInput{Role: "observer"})
		require.NoError(t, err)

		assert.NotEqual(t, first.Token(), second.Token())

		active, err := repo.GetActiveInviteLink(ctx, b.ID())
		require.NoError(t, err)
		assert.Equal(t, second.ID(), active.ID())

		stale, err := repo.GetInviteLinkByToken(ctx, first.Token())
		require.NoError(t, err)
		assert.False(t, stale.Active())
	})

	t.Run("expiry beyond the cap is rejected", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		_, err := svc.Issue(ctx, b.ID(), creator, IssueLinkInput{
			Role:      "member",
			ExpiresAt: ptrTime(time.Now().Add(365 * 24 * time.Hour)),
		})
		assert.True(t, shared.IsValidation(err), "got %v", err)
	})

	t.Run("editor may not issue", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		creator := shared.NewID()
		editor := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), editor, board.RoleEditor)

		_, err := svc.Issue(ctx, b.ID(), editor, IssueLinkInput{Role: "member"})
		assert.True(t, shared.IsForbidden(err), "got %v", err)
	})
}

func TestInviteLinkService_Revoke(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBoardRepo()
	svc := newInviteLinkService(repo, nil)

	creator := shared.NewID()
	b := mustBoard(t, repo, creator, "roadmap")

	link, err := svc.Issue(ctx, b.ID(), creator, IssueLinkInput{Role: "member"})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, b.ID(), creator))

	stored, err := repo.GetInviteLinkByToken(ctx, link.Token())
	require.NoError(t, err)
	assert.False(t, stored.Active())

	// Revoking again is a no-op.
	require.NoError(t, svc.Revoke(ctx, b.ID(), creator))
}

func TestInviteLinkService_Redeem(t *testing.T) {
	ctx := context.Background()

	issue := func(t *testing.T, repo *fakeBoardRepo, svc *InviteLinkService, b *board.Board, creator shared.ID, role string) *board.InviteLink {
		t.Helper()
		link, err := svc.Issue(ctx, b.ID(), creator, IssueLinkInput{Role: role})
		require.NoError(t, err)
		return link
	}

	t.Run("redemption joins at the mapped role", func(t *testing.T) {
		tests := []struct {
			linkRole string
			want     board.Role
		}{
			{"member", board.RoleEditor},
			{"admin", board.RoleAdmin},
			{"observer", board.RoleViewer},
		}

		for _, tt := range tests {
			t.Run(tt.linkRole, func(t *testing.T) {
				repo := newFakeBoardRepo()
				rec := &capturingRecorder{}
				svc := newInviteLinkService(repo, rec)

				creator := shared.NewID()
				joiner := shared.NewID()
				b := mustBoard(t, repo, creator, "roadmap")
				link := issue(t, repo, svc, b, creator, tt.linkRole)

				res, err := svc.Redeem(ctx, link.Token(), joiner)
				require.NoError(t, err)
				assert.Equal(t, b.ID(), res.BoardID)
				assert.Equal(t, tt.want, res.Role)
				assert.False(t, res.AlreadyMember)

				m, err := repo.GetMembership(ctx, b.ID(), joiner)
				require.NoError(t, err)
				assert.Equal(t, tt.want, m.Role())

				events := rec.recorded()
				require.Len(t, events, 1)
				assert.True(t, events[0].ViaLink)
			})
		}
	})

	t.Run("double redemption keeps the original role", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		creator := shared.NewID()
		joiner := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		link := issue(t, repo, svc, b, creator, "observer")

		first, err := svc.Redeem(ctx, link.Token(), joiner)
		require.NoError(t, err)
		require.False(t, first.AlreadyMember)

		// A new link at a higher role does not escalate the stored one.
		upgraded := issue(t, repo, svc, b, creator, "admin")
		second, err := svc.Redeem(ctx, upgraded.Token(), joiner)
		require.NoError(t, err)
		assert.True(t, second.AlreadyMember)
		assert.Equal(t, board.RoleViewer, second.Role)
	})

	t.Run("creator redeeming their own link", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		link := issue(t, repo, svc, b, creator, "member")

		res, err := svc.Redeem(ctx, link.Token(), creator)
		require.NoError(t, err)
		assert.True(t, res.AlreadyMember)
		assert.Equal(t, board.RoleOwner, res.Role)

		_, err = repo.GetMembership(ctx, b.ID(), creator)
		assert.True(t, shared.IsNotFound(err), "no membership row may exist for the creator")
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		before := testutil.ToFloat64(metrics.InviteRedemptionsTotal.WithLabelValues("not_found"))
		_, err := svc.Redeem(ctx, "bogus", shared.NewID())
		assert.True(t, shared.IsNotFound(err), "got %v", err)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.InviteRedemptionsTotal.WithLabelValues("not_found")))
	})

	t.Run("store failure does not count as not found", func(t *testing.T) {
		repo := newFakeBoardRepo()
		repo.linkErr = errors.New("connection reset by peer")
		svc := newInviteLinkService(repo, nil)

		before := testutil.ToFloat64(metrics.InviteRedemptionsTotal.WithLabelValues("not_found"))
		_, err := svc.Redeem(ctx, "whatever", shared.NewID())
		require.Error(t, err)
		assert.False(t, shared.IsNotFound(err), "got %v", err)
		assert.Equal(t, before, testutil.ToFloat64(metrics.InviteRedemptionsTotal.WithLabelValues("not_found")))
	})

	t.Run("revoked token is gone", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		link := issue(t, repo, svc, b, creator, "member")
		require.NoError(t, svc.Revoke(ctx, b.ID(), creator))

		_, err := svc.Redeem(ctx, link.Token(), shared.NewID())
		assert.True(t, errors.Is(err, shared.ErrGone), "got %v", err)
	})

	t.Run("expired token is rejected and the link deactivated", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		link := expiredLink(t, b.ID(), creator, time.Now().UTC().Add(-time.Hour))
		require.NoError(t, repo.ReplaceInviteLink(ctx, link))

		_, err := svc.Redeem(ctx, link.Token(), shared.NewID())
		assert.True(t, errors.Is(err, shared.ErrExpired), "got %v", err)

		stored, err := repo.GetInviteLinkByToken(ctx, link.Token())
		require.NoError(t, err)
		assert.False(t, stored.Active())
	})

	t.Run("anonymous redemption is unauthenticated", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newInviteLinkService(repo, nil)

		_, err := svc.Redeem(ctx, "whatever", shared.ID{})
		assert.True(t, errors.Is(err, shared.ErrUnauthenticated), "got %v", err)
	})
}

func TestInviteLinkService_SweepExpired(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBoardRepo()
	svc := newInviteLinkService(repo, nil)

	creator := shared.NewID()
	expired := expiredLink(t, mustBoard(t, repo, creator, "a").ID(), creator, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, repo.ReplaceInviteLink(ctx, expired))

	live, err := board.NewInviteLink(mustBoard(t, repo, creator, "b").ID(), board.LinkRoleMember, creator, ptrTime(time.Now().Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceInviteLink(ctx, live))

	n, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := repo.GetInviteLinkByToken(ctx, live.Token())
	require.NoError(t, err)
	assert.True(t, stored.Active())
}

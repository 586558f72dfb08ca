package app

import (
	"context"
	"fmt"
	"time"

	"github.com/boardkit/api/internal/metrics"
	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

// InviteLinkService manages the shareable join token of a board. Each
// board has at most one active link; issuing a new one replaces the
// old. Tokens carry a link role (member, admin, observer) that is
// mapped to a membership role only when redeemed.
type InviteLinkService struct {
	repo      board.Repository
	gate      *access.Gate
	resolver  *access.Resolver
	activity  ActivityRecorder
	maxExpiry time.Duration
	logger    *logger.Logger
}

// NewInviteLinkService creates a new InviteLinkService.
func NewInviteLinkService(repo board.Repository, gate *access.Gate, resolver *access.Resolver, maxExpiry time.Duration, log *logger.Logger, opts ...InviteLinkServiceOption) *InviteLinkService {
	s := &InviteLinkService{
		repo:      repo,
		gate:      gate,
		resolver:  resolver,
		maxExpiry: maxExpiry,
		logger:    log.With("service", "invitelink"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InviteLinkServiceOption is a functional option for InviteLinkService.
type InviteLinkServiceOption func(*InviteLinkService)

// WithInviteLinkActivityRecorder sets the activity recorder.
func WithInviteLinkActivityRecorder(recorder ActivityRecorder) InviteLinkServiceOption {
	return func(s *InviteLinkService) {
		s.activity = recorder
	}
}

// IssueLinkInput represents the input for issuing an invite link.
type IssueLinkInput struct {
	Role      string     `json:"role" validate:"required,link_role"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Issue creates or replaces the board's single active invite link.
// Requires admin access. Any previously active link is deactivated in
// the same write.
func (s *InviteLinkService) Issue(ctx context.Context, boardID, adminID shared.ID, input IssueLinkInput) (*board.InviteLink, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanAdminister(ctx, b, adminID); err != nil {
		return nil, err
	}

	role, ok := board.ParseLinkRole(input.Role)
	if !ok {
		return nil, fmt.Errorf("%w: role must be one of member, admin, observer", shared.ErrValidation)
	}
	if input.ExpiresAt != nil && s.maxExpiry > 0 {
		if input.ExpiresAt.After(time.Now().UTC().Add(s.maxExpiry)) {
			return nil, fmt.Errorf("%w: expiry exceeds the maximum of %s", shared.ErrValidation, s.maxExpiry)
		}
	}

	link, err := board.NewInviteLink(b.ID(), role, adminID, input.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceInviteLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to issue invite link: %w", err)
	}

	s.logger.Info("invite link issued",
		"board_id", b.ID().String(),
		"link_id", link.ID().String(),
		"role", string(role),
	)
	return link, nil
}

// Revoke deactivates the board's active invite link. Requires admin
// access. A board with no active link is a no-op.
func (s *InviteLinkService) Revoke(ctx context.Context, boardID, adminID shared.ID) error {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if err := s.gate.CanAdminister(ctx, b, adminID); err != nil {
		return err
	}

	link, err := s.repo.GetActiveInviteLink(ctx, b.ID())
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}

	if err := s.repo.DeactivateInviteLink(ctx, link.ID()); err != nil {
		return fmt.Errorf("failed to revoke invite link: %w", err)
	}

	s.logger.Info("invite link revoked",
		"board_id", b.ID().String(),
		"link_id", link.ID().String(),
	)
	return nil
}

// Get returns the board's active invite link. Requires admin access:
// the token itself is the secret, so only admins may read it back.
func (s *InviteLinkService) Get(ctx context.Context, boardID, adminID shared.ID) (*board.InviteLink, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanAdminister(ctx, b, adminID); err != nil {
		return nil, err
	}
	return s.repo.GetActiveInviteLink(ctx, b.ID())
}

// RedeemResult is the outcome of redeeming an invite link.
type RedeemResult struct {
	BoardID       shared.ID
	Role          board.Role
	AlreadyMember bool
}

// Redeem joins the acting user to the link's board at the mapped
// membership role. An unknown token is NotFound, a revoked one is
// Gone, and an expired one is Expired (and is deactivated as a side
// effect). Redeeming while already a member is an idempotent no-op
// reporting the existing effective role. Concurrent double-submission
// by the same user produces exactly one membership row.
func (s *InviteLinkService) Redeem(ctx context.Context, token string, userID shared.ID) (*RedeemResult, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", shared.ErrValidation)
	}

	link, err := s.repo.GetInviteLinkByToken(ctx, token)
	if err != nil {
		// Only a genuine miss counts as not_found; store failures
		// surface as-is without skewing the counter.
		if shared.IsNotFound(err) {
			metrics.InviteRedemptionsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}

	if !link.Active() {
		metrics.InviteRedemptionsTotal.WithLabelValues("revoked").Inc()
		return nil, fmt.Errorf("%w: invite link has been revoked", shared.ErrGone)
	}
	if link.IsExpired() {
		// Lazy sweep: the first redemption attempt past expiry retires
		// the link.
		if err := s.repo.DeactivateInviteLink(ctx, link.ID()); err != nil {
			s.logger.Warn("failed to deactivate expired invite link",
				"link_id", link.ID().String(),
				"error", err,
			)
		}
		metrics.InviteRedemptionsTotal.WithLabelValues("expired").Inc()
		return nil, fmt.Errorf("%w: invite link has expired", shared.ErrExpired)
	}

	b, err := s.repo.GetByID(ctx, link.BoardID())
	if err != nil {
		return nil, err
	}

	if b.IsCreator(userID) {
		metrics.InviteRedemptionsTotal.WithLabelValues("already_member").Inc()
		return &RedeemResult{BoardID: b.ID(), Role: board.RoleOwner, AlreadyMember: true}, nil
	}

	m, err := board.NewMembership(b.ID(), userID, link.Role().MembershipRole(), nil)
	if err != nil {
		return nil, err
	}

	stored, created, err := s.repo.GetOrCreateMembership(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to join board: %w", err)
	}
	if !created {
		metrics.InviteRedemptionsTotal.WithLabelValues("already_member").Inc()
		return &RedeemResult{BoardID: b.ID(), Role: stored.Role(), AlreadyMember: true}, nil
	}

	s.logger.Info("invite link redeemed",
		"board_id", b.ID().String(),
		"user_id", userID.String(),
		"role", string(stored.Role()),
	)
	metrics.InviteRedemptionsTotal.WithLabelValues("joined").Inc()

	event := board.NewEvent(board.EventMemberAdded, b.ID(), userID, userID)
	event.Role = stored.Role()
	event.ViaLink = true
	recordActivity(ctx, s.activity, s.logger, event)

	return &RedeemResult{BoardID: b.ID(), Role: stored.Role()}, nil
}

// SweepExpired deactivates every active link whose expiry has passed.
// Called periodically by the background worker.
func (s *InviteLinkService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateExpiredInviteLinks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired invite links: %w", err)
	}
	if n > 0 {
		metrics.InviteLinksSweptTotal.Add(float64(n))
		s.logger.Info("expired invite links swept", "count", n)
	}
	return n, nil
}

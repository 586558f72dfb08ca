package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

func membershipKey(boardID, userID shared.ID) string {
	return boardID.String() + "|" + userID.String()
}

// fakeBoardRepo is an in-memory board.Repository for service tests.
type fakeBoardRepo struct {
	mu          sync.Mutex
	boards      map[shared.ID]*board.Board
	lists       map[shared.ID]*board.List
	labels      map[shared.ID]*board.Label
	memberships map[string]*board.Membership
	links       map[shared.ID]*board.InviteLink

	// linkErr, when set, is returned from token lookups to simulate
	// a failing store.
	linkErr error
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{
		boards:      make(map[shared.ID]*board.Board),
		lists:       make(map[shared.ID]*board.List),
		labels:      make(map[shared.ID]*board.Label),
		memberships: make(map[string]*board.Membership),
		links:       make(map[shared.ID]*board.InviteLink),
	}
}

func (r *fakeBoardRepo) Create(_ context.Context, b *board.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boards[b.ID()] = b
	return nil
}

func (r *fakeBoardRepo) GetByID(_ context.Context, id shared.ID) (*board.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[id]
	if !ok {
		return nil, fmt.Errorf("%w: board", shared.ErrNotFound)
	}
	return b, nil
}

func (r *fakeBoardRepo) Update(_ context.Context, b *board.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boards[b.ID()]; !ok {
		return fmt.Errorf("%w: board", shared.ErrNotFound)
	}
	r.boards[b.ID()] = b
	return nil
}

func (r *fakeBoardRepo) Delete(_ context.Context, id shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.boards, id)
	return nil
}

func (r *fakeBoardRepo) ListByWorkspace(_ context.Context, workspaceID shared.ID) ([]*board.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.Board
	for _, b := range r.boards {
		if b.WorkspaceID().Equals(workspaceID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBoardRepo) ListForUser(_ context.Context, userID shared.ID) ([]*board.BoardWithRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.BoardWithRole
	for _, b := range r.boards {
		if b.CreatorID().Equals(userID) {
			out = append(out, &board.BoardWithRole{Board: b, Role: board.RoleOwner})
			continue
		}
		if m, ok := r.memberships[membershipKey(b.ID(), userID)]; ok {
			out = append(out, &board.BoardWithRole{Board: b, Role: m.Role()})
		}
	}
	return out, nil
}

func (r *fakeBoardRepo) CreateList(_ context.Context, l *board.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[l.ID()] = l
	return nil
}

func (r *fakeBoardRepo) GetList(_ context.Context, id shared.ID) (*board.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[id]
	if !ok {
		return nil, fmt.Errorf("%w: list", shared.ErrNotFound)
	}
	return l, nil
}

func (r *fakeBoardRepo) UpdateList(_ context.Context, l *board.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[l.ID()] = l
	return nil
}

func (r *fakeBoardRepo) DeleteList(_ context.Context, id shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lists, id)
	return nil
}

func (r *fakeBoardRepo) ListsByBoard(_ context.Context, boardID shared.ID) ([]*board.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.List
	for _, l := range r.lists {
		if l.BoardID().Equals(boardID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeBoardRepo) CreateLabels(_ context.Context, labels []*board.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range labels {
		r.labels[l.ID()] = l
	}
	return nil
}

func (r *fakeBoardRepo) GetLabel(_ context.Context, id shared.ID) (*board.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.labels[id]
	if !ok {
		return nil, fmt.Errorf("%w: label", shared.ErrNotFound)
	}
	return l, nil
}

func (r *fakeBoardRepo) UpdateLabel(_ context.Context, l *board.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels[l.ID()] = l
	return nil
}

func (r *fakeBoardRepo) DeleteLabel(_ context.Context, id shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.labels, id)
	return nil
}

func (r *fakeBoardRepo) LabelsByBoard(_ context.Context, boardID shared.ID) ([]*board.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.Label
	for _, l := range r.labels {
		if l.BoardID().Equals(boardID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeBoardRepo) CreateMembership(_ context.Context, m *board.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := membershipKey(m.BoardID(), m.UserID())
	if _, ok := r.memberships[k]; ok {
		return fmt.Errorf("%w: membership", shared.ErrAlreadyExists)
	}
	r.memberships[k] = m
	return nil
}

func (r *fakeBoardRepo) GetMembership(_ context.Context, boardID, userID shared.ID) (*board.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[membershipKey(boardID, userID)]
	if !ok {
		return nil, fmt.Errorf("%w: membership", shared.ErrNotFound)
	}
	return m, nil
}

func (r *fakeBoardRepo) ChangeMembershipRole(_ context.Context, boardID, userID shared.ID, expected, next board.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[membershipKey(boardID, userID)]
	if !ok {
		return fmt.Errorf("%w: membership", shared.ErrNotFound)
	}
	if m.Role() != expected {
		return fmt.Errorf("%w: membership role changed concurrently", shared.ErrConflict)
	}
	return m.ChangeRole(next)
}

func (r *fakeBoardRepo) DeleteMembership(_ context.Context, boardID, userID shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := membershipKey(boardID, userID)
	if _, ok := r.memberships[k]; !ok {
		return fmt.Errorf("%w: membership", shared.ErrNotFound)
	}
	delete(r.memberships, k)
	return nil
}

func (r *fakeBoardRepo) ListMembersByBoard(_ context.Context, boardID shared.ID) ([]*board.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.Membership
	for _, m := range r.memberships {
		if m.BoardID().Equals(boardID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeBoardRepo) ListMembersWithUserInfo(ctx context.Context, boardID shared.ID) ([]*board.MemberWithUser, error) {
	members, _ := r.ListMembersByBoard(ctx, boardID)
	out := make([]*board.MemberWithUser, 0, len(members))
	for _, m := range members {
		out = append(out, &board.MemberWithUser{Membership: m, Name: "user " + m.UserID().String()[:8]})
	}
	return out, nil
}

func (r *fakeBoardRepo) SearchMembersWithUserInfo(ctx context.Context, boardID shared.ID, filters board.MemberSearchFilters) (*board.MemberSearchResult, error) {
	all, _ := r.ListMembersWithUserInfo(ctx, boardID)
	var filtered []*board.MemberWithUser
	for _, m := range all {
		if filters.Search == "" || strings.Contains(strings.ToLower(m.Name), strings.ToLower(filters.Search)) {
			filtered = append(filtered, m)
		}
	}
	total := len(filtered)
	if filters.Offset >= len(filtered) {
		filtered = nil
	} else {
		filtered = filtered[filters.Offset:]
	}
	if filters.Limit > 0 && len(filtered) > filters.Limit {
		filtered = filtered[:filters.Limit]
	}
	return &board.MemberSearchResult{Members: filtered, Total: total}, nil
}

func (r *fakeBoardRepo) GetOrCreateMembership(_ context.Context, m *board.Membership) (*board.Membership, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := membershipKey(m.BoardID(), m.UserID())
	if existing, ok := r.memberships[k]; ok {
		return existing, false, nil
	}
	r.memberships[k] = m
	return m, true, nil
}

func (r *fakeBoardRepo) SharesBoard(_ context.Context, userA, userB shared.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	onBoard := func(b *board.Board, u shared.ID) bool {
		if b.CreatorID().Equals(u) {
			return true
		}
		_, ok := r.memberships[membershipKey(b.ID(), u)]
		return ok
	}
	for _, b := range r.boards {
		if onBoard(b, userA) && onBoard(b, userB) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBoardRepo) ReplaceInviteLink(_ context.Context, l *board.InviteLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.links {
		if existing.BoardID().Equals(l.BoardID()) && existing.Active() {
			existing.Deactivate()
		}
	}
	r.links[l.ID()] = l
	return nil
}

func (r *fakeBoardRepo) GetInviteLinkByToken(_ context.Context, token string) (*board.InviteLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.linkErr != nil {
		return nil, r.linkErr
	}
	for _, l := range r.links {
		if l.Token() == token {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: invite link", shared.ErrNotFound)
}

func (r *fakeBoardRepo) GetActiveInviteLink(_ context.Context, boardID shared.ID) (*board.InviteLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.BoardID().Equals(boardID) && l.Active() {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: invite link", shared.ErrNotFound)
}

func (r *fakeBoardRepo) DeactivateInviteLink(_ context.Context, id shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok {
		return fmt.Errorf("%w: invite link", shared.ErrNotFound)
	}
	l.Deactivate()
	return nil
}

func (r *fakeBoardRepo) DeactivateExpiredInviteLinks(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.links {
		if l.Active() && l.IsExpired() {
			l.Deactivate()
			n++
		}
	}
	return n, nil
}

// fakeCardRepo is an in-memory board.CardRepository for service tests.
type fakeCardRepo struct {
	mu          sync.Mutex
	cards       map[shared.ID]*board.Card
	comments    map[shared.ID]*board.Comment
	checklist   map[shared.ID]*board.ChecklistItem
	attachments map[shared.ID]*board.Attachment
	cardLabels  map[string]bool
	batchErr    error
	batchCalls  int
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{
		cards:       make(map[shared.ID]*board.Card),
		comments:    make(map[shared.ID]*board.Comment),
		checklist:   make(map[shared.ID]*board.ChecklistItem),
		attachments: make(map[shared.ID]*board.Attachment),
		cardLabels:  make(map[string]bool),
	}
}

func (r *fakeCardRepo) Create(_ context.Context, c *board.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[c.ID()] = c
	return nil
}

func (r *fakeCardRepo) GetByID(_ context.Context, id shared.ID) (*board.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return nil, fmt.Errorf("%w: card", shared.ErrNotFound)
	}
	return c, nil
}

func (r *fakeCardRepo) Update(_ context.Context, c *board.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[c.ID()]; !ok {
		return fmt.Errorf("%w: card", shared.ErrNotFound)
	}
	r.cards[c.ID()] = c
	return nil
}

func (r *fakeCardRepo) Delete(_ context.Context, id shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cards, id)
	return nil
}

func (r *fakeCardRepo) ListByList(_ context.Context, listID shared.ID) ([]*board.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.Card
	for _, c := range r.cards {
		if c.ListID() != nil && c.ListID().Equals(listID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) ListInboxByCreator(_ context.Context, creatorID shared.ID) ([]*board.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.Card
	for _, c := range r.cards {
		if c.IsInbox() && c.CreatorID().Equals(creatorID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) GetMany(_ context.Context, ids []shared.ID) ([]*board.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*board.Card, 0, len(ids))
	for _, id := range ids {
		c, ok := r.cards[id]
		if !ok {
			return nil, fmt.Errorf("%w: card %s", shared.ErrNotFound, id)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCardRepo) UpdateBatch(_ context.Context, cards []*board.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	if r.batchErr != nil {
		return r.batchErr
	}
	for _, c := range cards {
		r.cards[c.ID()] = c
	}
	return nil
}

func (r *fakeCardRepo) CreateComment(_ context.Context, c *board.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[c.ID()] = c
	return nil
}

func (r *fakeCardRepo) GetComment(_ context.Context, id shared.ID) (*board.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("%w: comment", shared.ErrNotFound)
	}
	return c, nil
}

func (r *fakeCardRepo) UpdateComment(_ context.Context, c *board.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[c.ID()] = c
	return nil
}

func (r *fakeCardRepo) DeleteComment(_ context.Context, id shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, id)
	return nil
}

func (r *fakeCardRepo) ListCommentsByCard(_ context.Context, cardID shared.ID) ([]*board.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.Comment
	for _, c := range r.comments {
		if c.CardID().Equals(cardID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) CreateChecklistItem(_ context.Context, i *board.ChecklistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checklist[i.ID()] = i
	return nil
}

func (r *fakeCardRepo) GetChecklistItem(_ context.Context, id shared.ID) (*board.ChecklistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.checklist[id]
	if !ok {
		return nil, fmt.Errorf("%w: checklist item", shared.ErrNotFound)
	}
	return i, nil
}

func (r *fakeCardRepo) UpdateChecklistItem(_ context.Context, i *board.ChecklistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checklist[i.ID()] = i
	return nil
}

func (r *fakeCardRepo) DeleteChecklistItem(_ context.Context, id shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checklist, id)
	return nil
}

func (r *fakeCardRepo) ListChecklistByCard(_ context.Context, cardID shared.ID) ([]*board.ChecklistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.ChecklistItem
	for _, i := range r.checklist {
		if i.CardID().Equals(cardID) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) CreateAttachment(_ context.Context, a *board.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attachments[a.ID()] = a
	return nil
}

func (r *fakeCardRepo) GetAttachment(_ context.Context, id shared.ID) (*board.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attachments[id]
	if !ok {
		return nil, fmt.Errorf("%w: attachment", shared.ErrNotFound)
	}
	return a, nil
}

func (r *fakeCardRepo) DeleteAttachment(_ context.Context, id shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attachments, id)
	return nil
}

func (r *fakeCardRepo) ListAttachmentsByCard(_ context.Context, cardID shared.ID) ([]*board.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*board.Attachment
	for _, a := range r.attachments {
		if a.CardID().Equals(cardID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) AttachLabel(_ context.Context, cardID, labelID shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cardLabels[cardID.String()+"|"+labelID.String()] = true
	return nil
}

func (r *fakeCardRepo) DetachLabel(_ context.Context, cardID, labelID shared.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cardLabels, cardID.String()+"|"+labelID.String())
	return nil
}

func (r *fakeCardRepo) ListLabelIDsByCard(_ context.Context, cardID shared.ID) ([]shared.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shared.ID
	for k := range r.cardLabels {
		parts := strings.SplitN(k, "|", 2)
		if parts[0] == cardID.String() {
			id, err := shared.IDFromString(parts[1])
			if err != nil {
				continue
			}
			out = append(out, id)
		}
	}
	return out, nil
}

// capturingRecorder collects activity events recorded by services.
type capturingRecorder struct {
	mu     sync.Mutex
	events []board.Event
	err    error
}

func (r *capturingRecorder) Record(_ context.Context, e board.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *capturingRecorder) recorded() []board.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]board.Event(nil), r.events...)
}

func newTestGate(repo *fakeBoardRepo) (*access.Resolver, *access.Gate) {
	resolver := access.NewResolver(repo)
	return resolver, access.NewGate(resolver, repo, repo, repo)
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

func mustBoard(t testingT, repo *fakeBoardRepo, creatorID shared.ID, name string) *board.Board {
	b, err := board.NewBoard(shared.NewID(), name, creatorID)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return b
}

func mustMember(t testingT, repo *fakeBoardRepo, boardID, userID shared.ID, role board.Role) *board.Membership {
	m, err := board.NewMembership(boardID, userID, role, nil)
	if err != nil {
		t.Fatalf("NewMembership() error = %v", err)
	}
	if err := repo.CreateMembership(context.Background(), m); err != nil {
		t.Fatalf("CreateMembership() error = %v", err)
	}
	return m
}

func ptrTime(t time.Time) *time.Time { return &t }

// testingT is the subset of *testing.T the helpers need.
type testingT interface {
	Fatalf(format string, args ...any)
}

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

type batchFixture struct {
	repo    *fakeBoardRepo
	cards   *fakeCardRepo
	svc     *BatchService
	creator shared.ID
	board   *board.Board
	todo    *board.List
	doing   *board.List
}

func newBatchFixture(t *testing.T) *batchFixture {
	t.Helper()
	repo := newFakeBoardRepo()
	cards := newFakeCardRepo()
	_, gate := newTestGate(repo)
	svc := NewBatchService(repo, cards, gate, testLogger())

	creator := shared.NewID()
	b := mustBoard(t, repo, creator, "roadmap")

	todo, err := board.NewList(b.ID(), "todo", 0)
	require.NoError(t, err)
	require.NoError(t, repo.CreateList(context.Background(), todo))

	doing, err := board.NewList(b.ID(), "doing", 1)
	require.NoError(t, err)
	require.NoError(t, repo.CreateList(context.Background(), doing))

	return &batchFixture{repo: repo, cards: cards, svc: svc, creator: creator, board: b, todo: todo, doing: doing}
}

func (f *batchFixture) card(t *testing.T, l *board.List, name string, position int) *board.Card {
	t.Helper()
	c, err := board.NewCard(l.ID(), f.creator, name, position)
	require.NoError(t, err)
	require.NoError(t, f.cards.Create(context.Background(), c))
	return c
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestBatchService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("moves, repositions, and status changes land together", func(t *testing.T) {
		f := newBatchFixture(t)
		c1 := f.card(t, f.todo, "one", 0)
		c2 := f.card(t, f.todo, "two", 1)
		c3 := f.card(t, f.doing, "three", 0)

		updated, err := f.svc.Apply(ctx, f.creator, ApplyBatchInput{Updates: []CardUpdate{
			{CardID: c1.ID().String(), ListID: strPtr(f.doing.ID().String()), Position: intPtr(1)},
			{CardID: c2.ID().String(), Position: intPtr(0)},
			{CardID: c3.ID().String(), Status: strPtr("done")},
		}})
		require.NoError(t, err)
		assert.Len(t, updated, 3)
		assert.Equal(t, 1, f.cards.batchCalls)

		moved, err := f.cards.GetByID(ctx, c1.ID())
		require.NoError(t, err)
		require.NotNil(t, moved.ListID())
		assert.Equal(t, f.doing.ID(), *moved.ListID())
		assert.Equal(t, 1, moved.Position())

		repositioned, err := f.cards.GetByID(ctx, c2.ID())
		require.NoError(t, err)
		assert.Equal(t, 0, repositioned.Position())

		done, err := f.cards.GetByID(ctx, c3.ID())
		require.NoError(t, err)
		assert.Equal(t, board.CardStatusDone, done.Status())
	})

	t.Run("admin access on the board is required", func(t *testing.T) {
		f := newBatchFixture(t)
		c := f.card(t, f.todo, "one", 0)

		editor := shared.NewID()
		mustMember(t, f.repo, f.board.ID(), editor, board.RoleEditor)

		_, err := f.svc.Apply(ctx, editor, ApplyBatchInput{Updates: []CardUpdate{
			{CardID: c.ID().String(), Position: intPtr(5)},
		}})
		assert.True(t, shared.IsForbidden(err), "got %v", err)
		assert.Equal(t, 0, f.cards.batchCalls)
	})

	t.Run("batch spanning boards is rejected whole", func(t *testing.T) {
		f := newBatchFixture(t)
		c1 := f.card(t, f.todo, "one", 0)

		other := mustBoard(t, f.repo, f.creator, "other")
		otherList, err := board.NewList(other.ID(), "inbox", 0)
		require.NoError(t, err)
		require.NoError(t, f.repo.CreateList(ctx, otherList))
		c2 := f.card(t, otherList, "elsewhere", 0)

		_, err = f.svc.Apply(ctx, f.creator, ApplyBatchInput{Updates: []CardUpdate{
			{CardID: c1.ID().String(), Position: intPtr(1)},
			{CardID: c2.ID().String(), Position: intPtr(1)},
		}})
		assert.True(t, shared.IsValidation(err), "got %v", err)
		assert.Equal(t, 0, f.cards.batchCalls)
	})

	t.Run("inbox card in a batch is rejected", func(t *testing.T) {
		f := newBatchFixture(t)
		inbox, err := board.NewInboxCard(f.creator, "note")
		require.NoError(t, err)
		require.NoError(t, f.cards.Create(ctx, inbox))

		_, err = f.svc.Apply(ctx, f.creator, ApplyBatchInput{Updates: []CardUpdate{
			{CardID: inbox.ID().String(), Position: intPtr(0)},
		}})
		assert.True(t, shared.IsValidation(err), "got %v", err)
	})

	t.Run("unknown card aborts the batch", func(t *testing.T) {
		f := newBatchFixture(t)
		c := f.card(t, f.todo, "one", 0)

		_, err := f.svc.Apply(ctx, f.creator, ApplyBatchInput{Updates: []CardUpdate{
			{CardID: c.ID().String(), Position: intPtr(1)},
			{CardID: shared.NewID().String(), Position: intPtr(2)},
		}})
		assert.True(t, shared.IsNotFound(err), "got %v", err)
		assert.Equal(t, 0, f.cards.batchCalls)

		untouched, err := f.cards.GetByID(ctx, c.ID())
		require.NoError(t, err)
		assert.Equal(t, 0, untouched.Position())
	})

	t.Run("duplicate card in one batch is rejected", func(t *testing.T) {
		f := newBatchFixture(t)
		c := f.card(t, f.todo, "one", 0)

		_, err := f.svc.Apply(ctx, f.creator, ApplyBatchInput{Updates: []CardUpdate{
			{CardID: c.ID().String(), Position: intPtr(1)},
			{CardID: c.ID().String(), Position: intPtr(2)},
		}})
		assert.True(t, shared.IsValidation(err), "got %v", err)
	})

	t.Run("target list on another board is rejected", func(t *testing.T) {
		f := newBatchFixture(t)
		c := f.card(t, f.todo, "one", 0)

		other := mustBoard(t, f.repo, f.creator, "other")
		foreign, err := board.NewList(other.ID(), "foreign", 0)
		require.NoError(t, err)
		require.NoError(t, f.repo.CreateList(ctx, foreign))

		_, err = f.svc.Apply(ctx, f.creator, ApplyBatchInput{Updates: []CardUpdate{
			{CardID: c.ID().String(), ListID: strPtr(foreign.ID().String())},
		}})
		assert.True(t, shared.IsValidation(err), "got %v", err)
	})

	t.Run("empty batch is invalid", func(t *testing.T) {
		f := newBatchFixture(t)
		_, err := f.svc.Apply(ctx, f.creator, ApplyBatchInput{})
		assert.True(t, shared.IsValidation(err), "got %v", err)
	})

	t.Run("write failure surfaces without partial results", func(t *testing.T) {
		f := newBatchFixture(t)
		c := f.card(t, f.todo, "one", 0)
		f.cards.batchErr = errors.New("deadlock detected")

		_, err := f.svc.Apply(ctx, f.creator, ApplyBatchInput{Updates: []CardUpdate{
			{CardID: c.ID().String(), Position: intPtr(3)},
		}})
		require.Error(t, err)
		assert.Equal(t, 1, f.cards.batchCalls)
	})
}

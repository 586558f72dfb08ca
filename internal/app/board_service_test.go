package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

func newBoardService(repo *fakeBoardRepo) *BoardService {
	_, gate := newTestGate(repo)
	return NewBoardService(repo, nil, gate, testLogger())
}

func TestBoardService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("creator updates settings", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newBoardService(repo)

		creator := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")

		updated, err := svc.Update(ctx, b.ID(), creator, UpdateBoardInput{Name: strPtr("q3 roadmap")})
		require.NoError(t, err)
		assert.Equal(t, "q3 roadmap", updated.Name())
	})

	t.Run("admin member updates settings", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newBoardService(repo)

		creator := shared.NewID()
		admin := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), admin, board.RoleAdmin)

		updated, err := svc.Update(ctx, b.ID(), admin, UpdateBoardInput{Background: strPtr("sunset.png")})
		require.NoError(t, err)
		assert.Equal(t, "sunset.png", updated.Background())
	})

	// Board settings are structural, so editors stop at the gate even
	// though they may change content freely.
	t.Run("editor may not update settings", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newBoardService(repo)

		creator := shared.NewID()
		editor := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), editor, board.RoleEditor)

		_, err := svc.Update(ctx, b.ID(), editor, UpdateBoardInput{Name: strPtr("hijacked")})
		assert.True(t, shared.IsForbidden(err), "got %v", err)

		stored, err := repo.GetByID(ctx, b.ID())
		require.NoError(t, err)
		assert.Equal(t, "roadmap", stored.Name())
	})

	t.Run("viewer may not update settings", func(t *testing.T) {
		repo := newFakeBoardRepo()
		svc := newBoardService(repo)

		creator := shared.NewID()
		viewer := shared.NewID()
		b := mustBoard(t, repo, creator, "roadmap")
		mustMember(t, repo, b.ID(), viewer, board.RoleViewer)

		_, err := svc.Update(ctx, b.ID(), viewer, UpdateBoardInput{Visibility: strPtr("public")})
		assert.True(t, shared.IsForbidden(err), "got %v", err)
	})
}

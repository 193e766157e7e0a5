package service

import (
	"context"
	"testing"

	"github.com/TeeMe/round-service/internal/dto"
	"github.com/TeeMe/round-service/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func cachedUser(id uuid.UUID) model.CachedUser {
	return model.CachedUser{
		ID: id,
		Username: "golfer",
		DisplayName: "Golfer",
	}
}

func TestRoundService_Create_Validation(t *testing.T) {
	env := newTestEnv()
	svc := newRoundService(zap.NewNop(), env.repo, nil)
	ctx := context.Background()

	authorID := uuid.New()
	require.NoError(t, env.userCache.Create(ctx, cachedUser(authorID)))

	tests := []struct {
		name    string
		input   dto.CreateRoundRequest
		wantErr error
	}{
		{
			name: "non-numeric score is rejected",
			input: dto.CreateRoundRequest{Title: "Pebble Creek", Score: "abc", Holes: "18", GreensInRegulation: "12"},
			wantErr: ErrScoreMustBeANumber,
		},
		{
			name: "non-numeric holes is rejected",
			input: dto.CreateRoundRequest{Title: "Pebble Creek", Score: "72", Holes: "all", GreensInRegulation: "12"},
			wantErr: ErrHolesMustBeANumber,
		},
		{
			name: "non-numeric greens is rejected",
			input: dto.CreateRoundRequest{Title: "Pebble Creek", Score: "72", Holes: "18", GreensInRegulation: "few"},
			wantErr: ErrGreensInRegulationMustBeANumber,
		},
		{
			name: "more greens in regulation than holes is rejected",
			input: dto.CreateRoundRequest{Title: "Pebble Creek", Score: "72", Holes: "18", GreensInRegulation: "20"},
			wantErr: ErrGreensInRegulationUnreasonable,
		},
		{
			name: "zero holes is rejected",
			input: dto.CreateRoundRequest{Title: "Pebble Creek", Score: "72", Holes: "0", GreensInRegulation: "0"},
			wantErr: ErrHolesUnreasonable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, authorID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// nothing may reach the store when validation fails
	assert.Empty(t, env.rounds.rounds)

	createdRound, err := svc.Create(ctx, authorID, dto.CreateRoundRequest{
		Title: "Pebble Creek",
		Score: "72",
		Holes: "18",
		GreensInRegulation: "12",
	})
	require.NoError(t, err)
	assert.Equal(t, 72, createdRound.Score)
	assert.Equal(t, 18, createdRound.Holes)
	assert.Equal(t, 12, createdRound.GreensInRegulation)
	assert.Len(t, env.rounds.rounds, 1)
}

func TestRoundService_Create_SnapshotsAuthorProfile(t *testing.T) {
	env := newTestEnv()
	svc := newRoundService(zap.NewNop(), env.repo, nil)
	ctx := context.Background()

	authorID := uuid.New()
	require.NoError(t, env.userCache.Create(ctx, cachedUser(authorID)))

	createdRound, err := svc.Create(ctx, authorID, validRoundInput())
	require.NoError(t, err)
	assert.Equal(t, "golfer", createdRound.AuthorUsername)
	assert.Equal(t, "Golfer", createdRound.AuthorDisplayName)

	// a later profile change must not rewrite the snapshot on the existing round
	require.NoError(t, env.userCache.Update(ctx, authorID, map[string]interface{}{"username": "eagle_hunter"}))

	stored, err := svc.FindByID(ctx, createdRound.ID)
	require.NoError(t, err)
	assert.Equal(t, "golfer", stored.AuthorUsername)
}

func TestRoundService_Create_Unauthenticated(t *testing.T) {
	env := newTestEnv()
	svc := newRoundService(zap.NewNop(), env.repo, nil)

	_, err := svc.Create(context.Background(), uuid.Nil, validRoundInput())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, env.rounds.rounds)
}

func TestRoundService_Delete_OwnershipEnforced(t *testing.T) {
	env := newTestEnv()
	svc := newRoundService(zap.NewNop(), env.repo, nil)
	ctx := context.Background()

	authorID := uuid.New()
	strangerID := uuid.New()
	require.NoError(t, env.userCache.Create(ctx, cachedUser(authorID)))

	createdRound, err := svc.Create(ctx, authorID, validRoundInput())
	require.NoError(t, err)

	err = svc.Delete(ctx, strangerID, createdRound.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// the round must remain retrievable after the denied delete
	stored, err := svc.FindByID(ctx, createdRound.ID)
	require.NoError(t, err)
	assert.Equal(t, createdRound.ID, stored.ID)

	require.NoError(t, svc.Delete(ctx, authorID, createdRound.ID))
	_, err = svc.FindByID(ctx, createdRound.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoundService_Delete_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := newRoundService(zap.NewNop(), env.repo, nil)

	err := svc.Delete(context.Background(), uuid.New(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoundService_Like_Idempotent(t *testing.T) {
	env := newTestEnv()
	svc := newRoundService(zap.NewNop(), env.repo, nil)
	ctx := context.Background()

	authorID := uuid.New()
	viewerID := uuid.New()
	require.NoError(t, env.userCache.Create(ctx, cachedUser(authorID)))

	createdRound, err := svc.Create(ctx, authorID, validRoundInput())
	require.NoError(t, err)

	// liking twice leaves the ledger as liking once would
	require.NoError(t, svc.Like(ctx, createdRound.ID, viewerID, false))
	require.NoError(t, svc.Like(ctx, createdRound.ID, viewerID, false))
	assert.Len(t, env.likes.likes, 1)
	assert.True(t, svc.IsLiked(ctx, createdRound.ID, viewerID))

	// unliking twice is equally idempotent
	require.NoError(t, svc.Like(ctx, createdRound.ID, viewerID, true))
	require.NoError(t, svc.Like(ctx, createdRound.ID, viewerID, true))
	assert.Empty(t, env.likes.likes)
	assert.False(t, svc.IsLiked(ctx, createdRound.ID, viewerID))
}

func TestRoundService_Like_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := newRoundService(zap.NewNop(), env.repo, nil)

	err := svc.Like(context.Background(), 404, uuid.New(), false)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Two viewers liking concurrently both compute "previous count + 1" and the
// overwrite loses one increment. That is the documented last-write-wins
// behavior, and the reconciler is what repairs it from the ledger.
func TestRoundService_UpdateLikes_LastWriteWinsLosesIncrement(t *testing.T) {
	env := newTestEnv()
	svc := newRoundService(zap.NewNop(), env.repo, nil)
	ctx := context.Background()

	authorID := uuid.New()
	viewerA := uuid.New()
	viewerB := uuid.New()
	require.NoError(t, env.userCache.Create(ctx, cachedUser(authorID)))

	createdRound, err := svc.Create(ctx, authorID, validRoundInput())
	require.NoError(t, err)

	// both viewers observed likes=0, so both write likes=1
	require.NoError(t, svc.Like(ctx, createdRound.ID, viewerA, false))
	require.NoError(t, svc.UpdateLikes(ctx, viewerA, createdRound.ID, 1))
	require.NoError(t, svc.Like(ctx, createdRound.ID, viewerB, false))
	require.NoError(t, svc.UpdateLikes(ctx, viewerB, createdRound.ID, 1))

	stored, err := env.rounds.FindByID(ctx, createdRound.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Likes, "one increment is lost by design")

	count, err := env.likes.CountLikes(ctx, createdRound.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "the ledger stays authoritative")

	require.NoError(t, env.rounds.ReconcileLikes(ctx))
	repaired, err := env.rounds.FindByID(ctx, createdRound.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), repaired.Likes)
}

func TestValidateRound(t *testing.T) {
	score, holes, greens, err := validateRound(dto.CreateRoundRequest{
		Title: "Pebble Creek",
		Score: " 72 ",
		Holes: "9",
		GreensInRegulation: "5",
	})
	require.NoError(t, err)
	assert.Equal(t, 72, score)
	assert.Equal(t, 9, holes)
	assert.Equal(t, 5, greens)
}

func validRoundInput() dto.CreateRoundRequest {
	return dto.CreateRoundRequest{
		Title: "Pebble Creek",
		Score: "72",
		Holes: "18",
		GreensInRegulation: "12",
	}
}

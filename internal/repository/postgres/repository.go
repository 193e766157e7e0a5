package postgres

import (
	"context"

	"github.com/TeeMe/round-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const MAX_LIMIT = 50

func maxLimit(limit *int) {
	if *limit > MAX_LIMIT || *limit <= 0 {
		*limit = MAX_LIMIT
	}
}

type Round interface {
	Create(ctx context.Context, round model.Round) (*model.Round, error)
	FindByID(ctx context.Context, id int64) (*model.Round, error)
	FindAuthorRounds(ctx context.Context, authorID uuid.UUID, limit int, offset int) ([]*model.Round, error)
	FindAllAuthorRounds(ctx context.Context, authorID uuid.UUID) ([]*model.Round, error)
	FindAll(ctx context.Context) ([]*model.Round, error)
	Delete(ctx context.Context, id int64) error
	UpdateLikes(ctx context.Context, id int64, likes int64) error
	ReconcileLikes(ctx context.Context) error
}

type Like interface {
	SetLiked(ctx context.Context, roundID int64, userID uuid.UUID, liked bool) error
	IsLiked(ctx context.Context, roundID int64, userID uuid.UUID) (bool, error)
	CountLikes(ctx context.Context, roundID int64) (int64, error)
	FindUserLikes(ctx context.Context, userID uuid.UUID, limit int, offset int) ([]*model.Round, error)
}

type UserCache interface {
	Create(ctx context.Context, cachedUser model.CachedUser) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
}

type PostgresRepository struct {
	Round
	Like
	UserCache
}

func New(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		Round: newRoundRepo(db),
		Like: newLikeRepo(db),
		UserCache: newUserCacheRepo(db),
	}
}

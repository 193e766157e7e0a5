package service

import (
	"context"

	"github.com/TeeMe/round-service/internal/dto"
	"github.com/TeeMe/round-service/internal/model"
	"github.com/TeeMe/round-service/internal/rabbitmq"
	"github.com/TeeMe/round-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MAX_LIMIT = 50

func maxLimit(limit *int) {
	if *limit > MAX_LIMIT || *limit <= 0 {
		*limit = MAX_LIMIT
	}
}

type Round interface {
	Create(ctx context.Context, authorID uuid.UUID, input dto.CreateRoundRequest) (*model.Round, error)
	FindByID(ctx context.Context, id int64) (*model.Round, error)
	FindAuthorRounds(ctx context.Context, authorID uuid.UUID, limit int, offset int) ([]*model.Round, error)
	FindUserLikes(ctx context.Context, userID uuid.UUID, limit int, offset int) ([]*model.Round, error)
	Delete(ctx context.Context, callerID uuid.UUID, roundID int64) error
	Like(ctx context.Context, roundID int64, userID uuid.UUID, unlike bool) error
	IsLiked(ctx context.Context, roundID int64, userID uuid.UUID) bool
	UpdateLikes(ctx context.Context, callerID uuid.UUID, roundID int64, likes int64) error
	StartReconcileLikes(ctx context.Context)
}

type Feed interface {
	Global(ctx context.Context) ([]model.FeedItem, error)
	ByCourse(ctx context.Context, authorID uuid.UUID) ([]*model.CourseGroup, error)
	StartConsuming(ctx context.Context)
}

type UserCache interface {
	CreateOrGet(ctx context.Context, id uuid.UUID, accessToken string) (*model.CachedUser, error)
	Create(ctx context.Context, cachedUser model.CachedUser) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
	StartConsuming(ctx context.Context)
}

type Service struct {
	Round
	Feed
	UserCache
}

func New(logger *zap.Logger, repo *repository.Repository, rabbitmq *rabbitmq.MQConn) *Service {
	return &Service{
		Round: newRoundService(logger, repo, rabbitmq),
		Feed: newFeedService(logger, repo, rabbitmq),
		UserCache: newUserCacheService(logger, repo, rabbitmq),
	}
}

func (s *Service) StartConsumeAll(ctx context.Context) {
	go s.Feed.StartConsuming(ctx)
	go s.UserCache.StartConsuming(ctx)
}

package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/TeeMe/round-service/internal/dto"
	"github.com/TeeMe/round-service/internal/model"
	"github.com/TeeMe/round-service/internal/rabbitmq"
	"github.com/TeeMe/round-service/internal/repository"
	"github.com/TeeMe/round-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultReconcileInterval = time.Minute * 5

type roundService struct {
	logger *zap.Logger
	repo *repository.Repository
	rabbitmq *rabbitmq.MQConn
}

func newRoundService(logger *zap.Logger, repo *repository.Repository, rabbitmq *rabbitmq.MQConn) Round {
	return &roundService{
		logger: logger,
		repo: repo,
		rabbitmq: rabbitmq,
	}
}

// validateRound parses the free-form numeric fields and rejects the request
// before anything reaches the store.
func validateRound(input dto.CreateRoundRequest) (score int, holes int, greens int, err error) {
	score, err = strconv.Atoi(strings.TrimSpace(input.Score))
	if err != nil {
		return 0, 0, 0, ErrScoreMustBeANumber
	}

	holes, err = strconv.Atoi(strings.TrimSpace(input.Holes))
	if err != nil {
		return 0, 0, 0, ErrHolesMustBeANumber
	}

	greens, err = strconv.Atoi(strings.TrimSpace(input.GreensInRegulation))
	if err != nil {
		return 0, 0, 0, ErrGreensInRegulationMustBeANumber
	}

	if holes < 1 || holes > 18 {
		return 0, 0, 0, ErrHolesUnreasonable
	}

	// you cannot hit more greens in regulation than holes played
	if greens < 0 || greens > holes {
		return 0, 0, 0, ErrGreensInRegulationUnreasonable
	}

	return score, holes, greens, nil
}

func (s *roundService) Create(ctx context.Context, authorID uuid.UUID, input dto.CreateRoundRequest) (*model.Round, error) {
	if authorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	score, holes, greens, err := validateRound(input)
	if err != nil {
		return nil, err
	}

	author, err := s.repo.Postgres.UserCache.FindByID(ctx, authorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUnauthenticated
		}

		s.logger.Sugar().Errorf("failed to find cached author(%s): %s", authorID.String(), err.Error())
		return nil, ErrInternal
	}

	round := model.Round{
		AuthorID: authorID,
		AuthorUsername: author.Username,
		AuthorDisplayName: author.DisplayName,
		Title: strings.TrimSpace(input.Title),
		Score: score,
		Holes: holes,
		GreensInRegulation: greens,
	}

	createdRound, err := s.repo.Postgres.Round.Create(ctx, round)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) round: %s", authorID.String(), err.Error())
		return nil, ErrInternal
	}

	s.invalidateAuthorRounds(ctx, authorID)

	if s.rabbitmq != nil {
		msg := dto.MQRoundCreatedMsg{
			RoundID: createdRound.ID,
			UserID: createdRound.AuthorID,
			Title: createdRound.Title,
			CreatedAt: createdRound.CreatedAt,
		}
		msgJSON, err := json.Marshal(msg)
		if err != nil {
			s.logger.Sugar().Errorf("failed to marshal round-created message: %s", err.Error())
		} else if err := s.rabbitmq.PublishJSON(ctx, rabbitmq.ROUND_CREATED_QUEUE, msgJSON); err != nil {
			s.logger.Sugar().Errorf("failed to publish round-created message: %s", err.Error())
		}
	}

	return createdRound, nil
}

func (s *roundService) FindByID(ctx context.Context, id int64) (*model.Round, error) {
	cachedRound, err := redisrepo.Get[model.Round](s.repo.Redis.Default, ctx, redisrepo.RoundKey(id))
	if err == nil && cachedRound != nil {
		return cachedRound, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get round(%d) from redis: %s", id, err.Error())
	}

	round, err := s.repo.Postgres.Round.FindByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}

		s.logger.Sugar().Errorf("failed to find round(%d) from postgres: %s", id, err.Error())
		return nil, ErrRemoteUnavailable
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.RoundKey(id), round, time.Hour); err != nil {
		s.logger.Sugar().Errorf("failed to set round(%d) in redis: %s", id, err.Error())
	}

	return round, nil
}

func (s *roundService) FindAuthorRounds(ctx context.Context, authorID uuid.UUID, limit int, offset int) ([]*model.Round, error) {
	maxLimit(&limit)

	cachedRounds, err := redisrepo.GetMany[model.Round](s.repo.Redis.Default, ctx, redisrepo.AuthorRoundsKey(authorID.String(), limit, offset))
	if err == nil {
		return cachedRounds, nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get author(%s) rounds from redis: %s", authorID.String(), err.Error())
	}

	rounds, err := s.repo.Postgres.Round.FindAuthorRounds(ctx, authorID, limit, offset)
	if err != nil && err != pgx.ErrNoRows {
		s.logger.Sugar().Errorf("failed to find author(%s) rounds from postgres: %s", authorID.String(), err.Error())
		return nil, ErrRemoteUnavailable
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.AuthorRoundsKey(authorID.String(), limit, offset), rounds, time.Hour); err != nil {
		s.logger.Sugar().Errorf("failed to set author(%s) rounds in redis: %s", authorID.String(), err.Error())
	}

	return rounds, nil
}

func (s *roundService) FindUserLikes(ctx context.Context, userID uuid.UUID, limit int, offset int) ([]*model.Round, error) {
	maxLimit(&limit)

	cachedRounds, err := redisrepo.GetMany[model.Round](s.repo.Redis.Default, ctx, redisrepo.UserLikesKey(userID.String(), limit, offset))
	if err == nil {
		return cachedRounds, nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get user(%s) likes from redis: %s", userID.String(), err.Error())
	}

	rounds, err := s.repo.Postgres.Like.FindUserLikes(ctx, userID, limit, offset)
	if err != nil && err != pgx.ErrNoRows {
		s.logger.Sugar().Errorf("failed to get user(%s) likes from postgres: %s", userID.String(), err.Error())
		return nil, ErrRemoteUnavailable
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.UserLikesKey(userID.String(), limit, offset), rounds, time.Hour); err != nil {
		s.logger.Sugar().Errorf("failed to set user(%s) likes in redis: %s", userID.String(), err.Error())
	}

	return rounds, nil
}

func (s *roundService) Delete(ctx context.Context, callerID uuid.UUID, roundID int64) error {
	if callerID == uuid.Nil {
		return ErrUnauthenticated
	}

	round, err := s.repo.Postgres.Round.FindByID(ctx, roundID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}

		s.logger.Sugar().Errorf("failed to find round(%d) from postgres: %s", roundID, err.Error())
		return ErrRemoteUnavailable
	}

	if round.AuthorID != callerID {
		return ErrPermissionDenied
	}

	if err := s.repo.Postgres.Round.Delete(ctx, roundID); err != nil {
		s.logger.Sugar().Errorf("failed to delete round(%d): %s", roundID, err.Error())
		return ErrRemoteUnavailable
	}

	if err := s.repo.Redis.Default.Del(ctx, redisrepo.RoundKey(roundID)).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete round(%d) from redis: %s", roundID, err.Error())
	}
	s.invalidateAuthorRounds(ctx, callerID)

	return nil
}

// Like sets or clears the viewer's ledger entry. The denormalized counter on
// the round is written separately through UpdateLikes; the two calls are
// intentionally independent (see pkg/optimistic).
func (s *roundService) Like(ctx context.Context, roundID int64, userID uuid.UUID, unlike bool) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}

	if _, err := s.repo.Postgres.Round.FindByID(ctx, roundID); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}

		s.logger.Sugar().Errorf("failed to find round(%d) from postgres: %s", roundID, err.Error())
		return ErrRemoteUnavailable
	}

	if err := s.repo.Postgres.Like.SetLiked(ctx, roundID, userID, !unlike); err != nil {
		s.logger.Sugar().Errorf("failed to set user(%s) like on round(%d): %s", userID.String(), roundID, err.Error())
		return ErrRemoteUnavailable
	}

	keys, err := s.repo.Redis.Default.Keys(ctx, "user:"+userID.String()+"-likes:*").Result()
	if err == nil && len(keys) > 0 {
		if err := s.repo.Redis.Default.Del(ctx, keys...).Err(); err != nil {
			s.logger.Sugar().Errorf("failed to invalidate user(%s) likes cache: %s", userID.String(), err.Error())
		}
	}

	return nil
}

func (s *roundService) IsLiked(ctx context.Context, roundID int64, userID uuid.UUID) bool {
	liked, err := s.repo.Postgres.Like.IsLiked(ctx, roundID, userID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check user(%s) like on round(%d): %s", userID.String(), roundID, err.Error())
		return false
	}

	return liked
}

// UpdateLikes overwrites the denormalized counter with a caller-computed value.
// Last write wins: concurrent likers can race and one increment can be lost,
// which the periodic reconciler later repairs from the ledger.
func (s *roundService) UpdateLikes(ctx context.Context, callerID uuid.UUID, roundID int64, likes int64) error {
	if callerID == uuid.Nil {
		return ErrUnauthenticated
	}

	if likes < 0 {
		likes = 0
	}

	if _, err := s.repo.Postgres.Round.FindByID(ctx, roundID); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}

		s.logger.Sugar().Errorf("failed to find round(%d) from postgres: %s", roundID, err.Error())
		return ErrRemoteUnavailable
	}

	if err := s.repo.Postgres.Round.UpdateLikes(ctx, roundID, likes); err != nil {
		s.logger.Sugar().Errorf("failed to update likes on round(%d): %s", roundID, err.Error())
		return ErrRemoteUnavailable
	}

	if err := s.repo.Redis.Default.Del(ctx, redisrepo.RoundKey(roundID)).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete round(%d) from redis: %s", roundID, err.Error())
	}

	return nil
}

// StartReconcileLikes periodically rewrites every counter from the ledger
// cardinality, closing the window left by partial like failures.
func (s *roundService) StartReconcileLikes(ctx context.Context) {
	interval := viper.GetDuration("likes.reconcile-interval")
	if interval <= 0 {
		interval = defaultReconcileInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.repo.Postgres.Round.ReconcileLikes(ctx); err != nil {
				s.logger.Sugar().Errorf("failed to reconcile like counts: %s", err.Error())
			}
		}
	}
}

func (s *roundService) invalidateAuthorRounds(ctx context.Context, authorID uuid.UUID) {
	keys, err := s.repo.Redis.Default.Keys(ctx, "author:"+authorID.String()+"-rounds:*").Result()
	if err != nil {
		s.logger.Sugar().Errorf("failed to list author(%s) rounds cache keys: %s", authorID.String(), err.Error())
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := s.repo.Redis.Default.Del(ctx, keys...).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to invalidate author(%s) rounds cache: %s", authorID.String(), err.Error())
	}
}

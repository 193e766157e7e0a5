package service

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"github.com/TeeMe/round-service/internal/model"
	"github.com/TeeMe/round-service/internal/rabbitmq"
	"github.com/TeeMe/round-service/internal/repository"
	"github.com/TeeMe/round-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultPromoInterval = 4

type feedService struct {
	logger *zap.Logger
	repo *repository.Repository
	rabbitmq *rabbitmq.MQConn
	promoInterval int

	fetchSeq   atomic.Uint64
	appliedSeq atomic.Uint64
}

func newFeedService(logger *zap.Logger, repo *repository.Repository, rabbitmq *rabbitmq.MQConn) Feed {
	promoInterval := viper.GetInt("feed.promo-interval")
	if promoInterval <= 0 {
		promoInterval = defaultPromoInterval
	}

	return &feedService{
		logger: logger,
		repo: repo,
		rabbitmq: rabbitmq,
		promoInterval: promoInterval,
	}
}

func (s *feedService) Global(ctx context.Context) ([]model.FeedItem, error) {
	rounds, err := s.fetchGlobal(ctx)
	if err != nil {
		return nil, err
	}

	return assembleFeed(rounds, s.promoInterval), nil
}

// fetchGlobal reads the whole feed in recency order and refreshes the
// last-known-good copy in redis. Fetches are sequenced: a response that was
// superseded by a newer completed fetch must not overwrite the cached feed.
func (s *feedService) fetchGlobal(ctx context.Context) ([]*model.Round, error) {
	seq := s.fetchSeq.Add(1)

	rounds, err := s.repo.Postgres.Round.FindAll(ctx)
	if err != nil {
		s.logger.Sugar().Errorf("failed to fetch global feed from postgres: %s", err.Error())

		cached, cacheErr := redisrepo.GetMany[model.Round](s.repo.Redis.Default, ctx, redisrepo.GlobalFeedKey())
		if cacheErr != nil {
			return nil, ErrRemoteUnavailable
		}

		return cached, nil
	}

	if !s.advanceApplied(seq) {
		// a newer fetch has already landed; serve its result instead of this stale one
		cached, cacheErr := redisrepo.GetMany[model.Round](s.repo.Redis.Default, ctx, redisrepo.GlobalFeedKey())
		if cacheErr == nil {
			return cached, nil
		}

		return rounds, nil
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.GlobalFeedKey(), rounds, 0); err != nil {
		s.logger.Sugar().Errorf("failed to cache global feed in redis: %s", err.Error())
	}

	return rounds, nil
}

func (s *feedService) advanceApplied(seq uint64) bool {
	for {
		current := s.appliedSeq.Load()
		if seq <= current {
			return false
		}
		if s.appliedSeq.CompareAndSwap(current, seq) {
			return true
		}
	}
}

// assembleFeed interleaves one promotional slot after every interval-th round.
// No slot ever precedes the first round and no slot appears when fewer than
// interval rounds exist.
func assembleFeed(rounds []*model.Round, interval int) []model.FeedItem {
	if interval <= 0 {
		interval = defaultPromoInterval
	}

	items := make([]model.FeedItem, 0, len(rounds)+len(rounds)/interval)
	for i, round := range rounds {
		items = append(items, model.FeedItem{Kind: model.FeedItemRound, Round: round})

		position := i + 1
		if position%interval == 0 {
			items = append(items, model.FeedItem{Kind: model.FeedItemPromo, Promo: &model.PromoSlot{Position: position}})
		}
	}

	return items
}

func (s *feedService) ByCourse(ctx context.Context, authorID uuid.UUID) ([]*model.CourseGroup, error) {
	if authorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	rounds, err := s.repo.Postgres.Round.FindAllAuthorRounds(ctx, authorID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to fetch author(%s) rounds for course view: %s", authorID.String(), err.Error())
		return nil, ErrRemoteUnavailable
	}

	return groupByCourse(rounds), nil
}

// groupByCourse buckets rounds by course name, groups sorted by name
// ascending, rounds inside keeping their recency order. Stats are computed
// here and nowhere persisted.
func groupByCourse(rounds []*model.Round) []*model.CourseGroup {
	buckets := make(map[string][]*model.Round)
	for _, round := range rounds {
		buckets[round.Title] = append(buckets[round.Title], round)
	}

	courses := make([]string, 0, len(buckets))
	for course := range buckets {
		courses = append(courses, course)
	}
	sort.Strings(courses)

	groups := make([]*model.CourseGroup, 0, len(courses))
	for _, course := range courses {
		grouped := buckets[course]

		best := grouped[0].Score
		sum := 0
		for _, round := range grouped {
			if round.Score < best {
				best = round.Score
			}
			sum += round.Score
		}

		average := math.Round(float64(sum)/float64(len(grouped))*100) / 100

		groups = append(groups, &model.CourseGroup{
			Course: course,
			BestScore: best,
			AverageScore: average,
			TotalRounds: len(grouped),
			Rounds: grouped,
		})
	}

	return groups
}

// StartConsuming refreshes the cached global feed whenever a round is created
// anywhere. The refresh is coarse-grained: the whole feed is re-fetched and
// re-cached. The consumer stops when the context is cancelled.
func (s *feedService) StartConsuming(ctx context.Context) {
	queue := rabbitmq.ROUND_CREATED_QUEUE
	msgs, err := s.rabbitmq.Consume(queue)
	if err != nil {
		s.logger.Sugar().Fatalf("failed to start consuming from queue(%s): %s", queue, err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			if _, err := s.fetchGlobal(ctx); err != nil {
				s.logger.Sugar().Errorf("failed to refresh global feed: %s", err.Error())
				msg.Nack(false, true)
				continue
			}

			msg.Ack(false)
		}
	}
}

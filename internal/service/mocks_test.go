package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/TeeMe/round-service/internal/model"
	"github.com/TeeMe/round-service/internal/repository"
	"github.com/TeeMe/round-service/internal/repository/postgres"
	"github.com/TeeMe/round-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// in-memory stand-ins for the postgres repos, mirroring their semantics

type mockRoundRepo struct {
	mu     sync.Mutex
	rounds map[int64]*model.Round
	nextID int64
	ledger *mockLikeRepo

	findAllErr error
}

func newMockRoundRepo() *mockRoundRepo {
	return &mockRoundRepo{
		rounds: make(map[int64]*model.Round),
	}
}

func (m *mockRoundRepo) Create(ctx context.Context, round model.Round) (*model.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	round.ID = m.nextID
	round.Likes = 0
	round.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	m.rounds[round.ID] = &round
	return &round, nil
}

func (m *mockRoundRepo) FindByID(ctx context.Context, id int64) (*model.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, exists := m.rounds[id]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	copied := *round
	return &copied, nil
}

func (m *mockRoundRepo) FindAuthorRounds(ctx context.Context, authorID uuid.UUID, limit int, offset int) ([]*model.Round, error) {
	return m.sorted(func(r *model.Round) bool { return r.AuthorID == authorID }), nil
}

func (m *mockRoundRepo) FindAllAuthorRounds(ctx context.Context, authorID uuid.UUID) ([]*model.Round, error) {
	return m.sorted(func(r *model.Round) bool { return r.AuthorID == authorID }), nil
}

func (m *mockRoundRepo) FindAll(ctx context.Context) ([]*model.Round, error) {
	if m.findAllErr != nil {
		return nil, m.findAllErr
	}
	return m.sorted(func(*model.Round) bool { return true }), nil
}

func (m *mockRoundRepo) sorted(match func(*model.Round) bool) []*model.Round {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rounds []*model.Round
	for _, round := range m.rounds {
		if match(round) {
			copied := *round
			rounds = append(rounds, &copied)
		}
	}
	for i := 0; i < len(rounds); i++ {
		for j := i + 1; j < len(rounds); j++ {
			if rounds[j].CreatedAt.After(rounds[i].CreatedAt) {
				rounds[i], rounds[j] = rounds[j], rounds[i]
			}
		}
	}
	return rounds
}

func (m *mockRoundRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rounds, id)
	return nil
}

func (m *mockRoundRepo) UpdateLikes(ctx context.Context, id int64, likes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, exists := m.rounds[id]
	if !exists {
		return pgx.ErrNoRows
	}
	round.Likes = likes
	return nil
}

func (m *mockRoundRepo) ReconcileLikes(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, round := range m.rounds {
		var count int64
		for key := range m.ledger.likes {
			if key.roundID == id {
				count++
			}
		}
		round.Likes = count
	}
	return nil
}

type ledgerKey struct {
	roundID int64
	userID  uuid.UUID
}

type mockLikeRepo struct {
	mu     sync.Mutex
	likes  map[ledgerKey]struct{}
	rounds *mockRoundRepo
}

func newMockLikeRepo(rounds *mockRoundRepo) *mockLikeRepo {
	m := &mockLikeRepo{
		likes: make(map[ledgerKey]struct{}),
		rounds: rounds,
	}
	rounds.ledger = m
	return m
}

func (m *mockLikeRepo) SetLiked(ctx context.Context, roundID int64, userID uuid.UUID, liked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ledgerKey{roundID: roundID, userID: userID}
	if liked {
		m.likes[key] = struct{}{}
	} else {
		delete(m.likes, key)
	}
	return nil
}

func (m *mockLikeRepo) IsLiked(ctx context.Context, roundID int64, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, liked := m.likes[ledgerKey{roundID: roundID, userID: userID}]
	return liked, nil
}

func (m *mockLikeRepo) CountLikes(ctx context.Context, roundID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for key := range m.likes {
		if key.roundID == roundID {
			count++
		}
	}
	return count, nil
}

func (m *mockLikeRepo) FindUserLikes(ctx context.Context, userID uuid.UUID, limit int, offset int) ([]*model.Round, error) {
	m.mu.Lock()
	var ids []int64
	for key := range m.likes {
		if key.userID == userID {
			ids = append(ids, key.roundID)
		}
	}
	m.mu.Unlock()

	var rounds []*model.Round
	for _, id := range ids {
		round, err := m.rounds.FindByID(context.Background(), id)
		if err == nil {
			rounds = append(rounds, round)
		}
	}
	return rounds, nil
}

type mockUserCacheRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.CachedUser
}

func newMockUserCacheRepo() *mockUserCacheRepo {
	return &mockUserCacheRepo{
		users: make(map[uuid.UUID]*model.CachedUser),
	}
}

func (m *mockUserCacheRepo) Create(ctx context.Context, cachedUser model.CachedUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[cachedUser.ID] = &cachedUser
	return nil
}

func (m *mockUserCacheRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[id]
	if !exists {
		return pgx.ErrNoRows
	}
	if username, ok := updates["username"].(string); ok {
		user.Username = username
	}
	if displayName, ok := updates["display_name"].(string); ok {
		user.DisplayName = displayName
	}
	return nil
}

func (m *mockUserCacheRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[id]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

// mockRedis is a map-backed redisrepo.Default

type mockRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockRedis() *mockRedis {
	return &mockRedis{
		data: make(map[string]string),
	}
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.SetJSON(ctx, key, value, ttl)
}

func (m *mockRedis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(valueJSON)
	return nil
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, exists := m.data[key]
	if !exists {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if _, exists := m.data[key]; exists {
			delete(m.data, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func (m *mockRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

func (m *mockRedis) Decr(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

func (m *mockRedis) IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

func (m *mockRedis) DecrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

func (m *mockRedis) Keys(ctx context.Context, pattern string) *redis.StringSliceCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return redis.NewStringSliceResult(keys, nil)
}

type testEnv struct {
	repo      *repository.Repository
	rounds    *mockRoundRepo
	likes     *mockLikeRepo
	userCache *mockUserCacheRepo
	rdb       *mockRedis
}

func newTestEnv() *testEnv {
	rounds := newMockRoundRepo()
	likes := newMockLikeRepo(rounds)
	userCache := newMockUserCacheRepo()
	rdb := newMockRedis()

	return &testEnv{
		repo: &repository.Repository{
			Postgres: &postgres.PostgresRepository{
				Round: rounds,
				Like: likes,
				UserCache: userCache,
			},
			Redis: &redisrepo.RedisRepository{
				Default: rdb,
			},
		},
		rounds: rounds,
		likes: likes,
		userCache: userCache,
		rdb: rdb,
	}
}

// Package optimistic makes like toggles feel instantaneous for a viewer while
// the round store stays authoritative. A toggle flips local state synchronously
// and issues two independent remote writes; a failed counter write rolls the
// local state back exactly once.
package optimistic

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RemoteStore is the pair of independent remote mutations behind a like
// toggle: the denormalized counter overwrite on the round and the ledger
// entry set/clear. The two calls may complete out of order or partially fail.
type RemoteStore interface {
	UpdateLikeCount(ctx context.Context, roundID int64, newCount int64) error
	SetLiked(ctx context.Context, roundID int64, liked bool) error
}

type Phase int

const (
	Unliked Phase = iota
	Liked
	Reverting
)

type LikeState struct {
	Liked bool
	Count int64
	Phase Phase
}

type entryKey struct {
	roundID  int64
	viewerID uuid.UUID
}

type entry struct {
	liked bool
	count int64
	phase Phase
	// token of the newest counter write issued for this entry. A completion
	// carrying an older token belongs to a superseded toggle and is ignored.
	token uint64
}

type Coordinator struct {
	store   RemoteStore
	logger  *zap.Logger
	execute func(func())

	mu      sync.Mutex
	entries map[entryKey]*entry
}

type Option func(*Coordinator)

// WithExecutor routes completion callbacks through the caller's designated
// update loop. The default executes them inline on the remote call's goroutine.
func WithExecutor(execute func(func())) Option {
	return func(c *Coordinator) {
		c.execute = execute
	}
}

func New(store RemoteStore, logger *zap.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store: store,
		logger: logger,
		execute: func(f func()) { f() },
		entries: make(map[entryKey]*entry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Track seeds local state for a (round, viewer) pair from server data, e.g.
// after a feed fetch.
func (c *Coordinator) Track(roundID int64, viewerID uuid.UUID, liked bool, count int64) {
	key := entryKey{roundID: roundID, viewerID: viewerID}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		e = &entry{}
		c.entries[key] = e
	}

	e.liked = liked
	e.count = count
	e.phase = phaseFor(liked)
}

func (c *Coordinator) State(roundID int64, viewerID uuid.UUID) LikeState {
	key := entryKey{roundID: roundID, viewerID: viewerID}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		return LikeState{}
	}

	return LikeState{Liked: e.liked, Count: e.count, Phase: e.phase}
}

// Toggle flips the viewer's like on a round. The local flag and count change
// before any remote confirmation; the returned state is what the UI should
// show immediately. Remote writes run to completion on their own goroutines
// and never block the caller.
func (c *Coordinator) Toggle(ctx context.Context, roundID int64, viewerID uuid.UUID) LikeState {
	key := entryKey{roundID: roundID, viewerID: viewerID}

	c.mu.Lock()
	e, exists := c.entries[key]
	if !exists {
		e = &entry{}
		c.entries[key] = e
	}

	e.token++
	token := e.token

	if e.liked {
		e.liked = false
		e.count--
	} else {
		e.liked = true
		e.count++
	}
	if e.count < 0 {
		e.count = 0
	}
	e.phase = phaseFor(e.liked)

	liked := e.liked
	count := e.count
	c.mu.Unlock()

	go func() {
		err := c.store.UpdateLikeCount(ctx, roundID, count)
		c.execute(func() {
			c.completeCountWrite(key, token, err)
		})
	}()

	go func() {
		err := c.store.SetLiked(ctx, roundID, liked)
		c.execute(func() {
			if err != nil {
				// ledger divergence is tolerated here; the server-side
				// reconciler repairs the counter from the ledger later
				c.logger.Sugar().Errorf("failed to set liked(%t) on round(%d) for user(%s): %s", liked, roundID, viewerID.String(), err.Error())
			}
		})
	}()

	return LikeState{Liked: liked, Count: count, Phase: phaseFor(liked)}
}

// completeCountWrite resolves a counter write. On failure the optimistic
// change is reverted exactly once, from the flag state at callback time: a
// completion whose token was superseded by a newer toggle is discarded, so a
// like-then-unlike before the first failure callback never double-adjusts.
func (c *Coordinator) completeCountWrite(key entryKey, token uint64, err error) {
	if err == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		return
	}

	if token != e.token {
		c.logger.Sugar().Debugf("ignoring stale like completion for round(%d)", key.roundID)
		return
	}

	c.logger.Sugar().Errorf("failed to update like count on round(%d): %s", key.roundID, err.Error())

	e.phase = Reverting
	if e.liked {
		e.liked = false
		e.count--
	} else {
		e.liked = true
		e.count++
	}
	if e.count < 0 {
		e.count = 0
	}
	e.phase = phaseFor(e.liked)

	// the revert consumes the token so nothing can revert this entry again
	e.token++
}

func phaseFor(liked bool) Phase {
	if liked {
		return Liked
	}

	return Unliked
}

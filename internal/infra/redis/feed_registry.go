package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"dadam-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// FeedRegistry is a Redis-aware implementation of app.FeedRegistry.
// Notes:
//   - Feeds still live in a local map so broadcasts stay in-process.
//   - Redis carries a liveness marker per quiz with open feeds, which other
//     instances and operators can inspect.
//   - Fan-out across instances would need a pub/sub channel next to this.
type FeedRegistry struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	feeds  map[int64]*app.Feed
}

func NewFeedRegistry(client *redis.Client, ttl time.Duration) *FeedRegistry {
	return &FeedRegistry{
		client: client,
		ttl:    ttl,
		feeds:  make(map[int64]*app.Feed),
	}
}

func (r *FeedRegistry) GetOrCreate(quizID int64) *app.Feed {
	r.mu.Lock()
	defer r.mu.Unlock()
	if feed, ok := r.feeds[quizID]; ok {
		return feed
	}
	feed := app.NewFeed(quizID)
	r.feeds[quizID] = feed
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(quizID), "1", r.ttl).Err()
	return feed
}

func (r *FeedRegistry) Get(quizID int64) (*app.Feed, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	feed, ok := r.feeds[quizID]
	return feed, ok
}

func (r *FeedRegistry) DeleteIfEmpty(quizID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	feed, ok := r.feeds[quizID]
	if !ok {
		return
	}
	if feed.IsEmpty() {
		delete(r.feeds, quizID)
		_ = r.client.Del(context.Background(), r.key(quizID)).Err()
	}
}

func (r *FeedRegistry) key(quizID int64) string {
	return "quiz:feed:" + strconv.FormatInt(quizID, 10)
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"dadam-quiz-service/internal/app"
	"dadam-quiz-service/internal/domain"
	"github.com/golang/glog"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizCache caches quizzes in Redis and falls back to the store on a miss.
// Quizzes are immutable and stored as JSON under quiz:{id}. Which quiz is
// current is always asked of the store, since the seed command and other
// instances create quizzes without going through this cache. Redis failures
// degrade to store reads.
type QuizCache struct {
	client *redis.Client
	store  app.QuizStore
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuizCache(client *redis.Client, store app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		store:  store,
		ttl:    ttl,
	}
}

func (c *QuizCache) CreateQuiz(ctx context.Context, q domain.Quiz) (domain.Quiz, error) {
	created, err := c.store.CreateQuiz(ctx, q)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.put(ctx, created)
	return created, nil
}

func (c *QuizCache) GetQuiz(ctx context.Context, id int64) (domain.Quiz, error) {
	if quiz, ok := c.cached(ctx, id); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizKey(id), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.cached(ctx, id); ok {
			return quiz, nil
		}
		quiz, err := c.store.GetQuiz(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.put(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// LatestQuiz collapses concurrent lookups into one store read and writes the
// result through to quiz:{id}.
func (c *QuizCache) LatestQuiz(ctx context.Context) (domain.Quiz, error) {
	result, err, _ := c.sf.Do(latestFlight, func() (interface{}, error) {
		quiz, err := c.store.LatestQuiz(ctx)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.put(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) cached(ctx context.Context, id int64) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, quizKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			glog.Warningf("redis: read quiz %d: %v", id, err)
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		glog.Warningf("redis: decode quiz %d: %v", id, err)
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) put(ctx context.Context, quiz domain.Quiz) {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, quizKey(quiz.ID), raw, c.ttlWithJitter()).Err(); err != nil {
		glog.Warningf("redis: write quiz %d: %v", quiz.ID, err)
	}
}

const latestFlight = "latest"

func quizKey(id int64) string {
	return "quiz:" + strconv.FormatInt(id, 10)
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"dadam-quiz-service/internal/app"
	"dadam-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

const latestKey = "latest"

// QuizCache caches quizzes by id with TTL to avoid repeated DB hits. Quizzes
// are immutable. Which quiz is current is always asked of the store, since
// quizzes may be created by other processes.
type QuizCache struct {
	store app.QuizStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.RWMutex
	cache map[int64]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(store app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		store: store,
		ttl:   ttl,
		clock: time.Now,
		cache: make(map[int64]cachedQuiz),
	}
}

func (c *QuizCache) CreateQuiz(ctx context.Context, q domain.Quiz) (domain.Quiz, error) {
	created, err := c.store.CreateQuiz(ctx, q)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.put(created)
	return created, nil
}

func (c *QuizCache) GetQuiz(ctx context.Context, id int64) (domain.Quiz, error) {
	if quiz, ok := c.lookup(id); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		if quiz, ok := c.lookup(id); ok {
			return quiz, nil
		}
		quiz, err := c.store.GetQuiz(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.put(quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// LatestQuiz collapses concurrent lookups into one store read and primes the
// by-id cache with the result.
func (c *QuizCache) LatestQuiz(ctx context.Context) (domain.Quiz, error) {
	result, err, _ := c.sf.Do(latestKey, func() (interface{}, error) {
		quiz, err := c.store.LatestQuiz(ctx)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.put(quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) lookup(id int64) (domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (c *QuizCache) put(quiz domain.Quiz) {
	c.mu.Lock()
	c.cache[quiz.ID] = cachedQuiz{quiz: quiz, expiresAt: c.clock().Add(c.ttlWithJitter())}
	c.mu.Unlock()
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

package app

import (
	"sync"

	"dadam-quiz-service/internal/domain"
)

// Feed fans out revealed results of one quiz to its subscribers.
type Feed struct {
	quizID      int64
	mu          sync.Mutex
	latest      int
	subscribers map[chan domain.QuizResults]struct{}
}

// NewFeed is exported for infrastructure layers that track feeds.
func NewFeed(quizID int64) *Feed {
	return &Feed{
		quizID:      quizID,
		subscribers: make(map[chan domain.QuizResults]struct{}),
	}
}

// IsEmpty reports whether the feed has no subscribers.
func (f *Feed) IsEmpty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers) == 0
}

// subscribe registers a channel. It receives nothing until the next publish.
func (f *Feed) subscribe() (<-chan domain.QuizResults, func()) {
	ch := make(chan domain.QuizResults, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// publish delivers results to every subscriber. Selections only accumulate, so
// a snapshot with fewer entries than one already sent is stale and dropped.
func (f *Feed) publish(results domain.QuizResults) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(results.Details) < f.latest {
		return
	}
	f.latest = len(results.Details)

	for ch := range f.subscribers {
		select {
		case ch <- results:
		default:
			// Slow subscriber: replace its oldest pending snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- results
		}
	}
}

func (f *Feed) QuizID() int64 {
	return f.quizID
}

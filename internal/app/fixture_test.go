package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dadam-quiz-service/internal/app"
	"dadam-quiz-service/internal/domain"
	"dadam-quiz-service/internal/infra/memory"
)

const (
	mom int64 = 101
	dad int64 = 102
	kid int64 = 103
)

// stepClock advances one second per reading so creation order is strict.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 11, 13, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	store     *memory.Store
	questions *app.QuestionService
	answers   *app.AnswerService
	quizzes   *app.QuizService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := newStepClock()
	store := memory.NewStore()
	for _, u := range []domain.User{
		{ID: mom, Name: "Mom", FamilyRole: "MOTHER", FamilyCode: "FAM123"},
		{ID: dad, Name: "Dad", FamilyRole: "FATHER", FamilyCode: "FAM123"},
		{ID: kid, Name: "Minji", FamilyRole: "DAUGHTER", FamilyCode: "FAM123"},
	} {
		if _, err := store.PutUser(ctx, u); err != nil {
			t.Fatalf("put user: %v", err)
		}
	}
	return &fixture{
		store:     store,
		questions: app.NewQuestionService(store).WithClock(clock.Now),
		answers:   app.NewAnswerService(store, store, store).WithClock(clock.Now),
		quizzes:   app.NewQuizService(memory.NewQuizCache(store, time.Minute), store, store, memory.NewFeedRegistry()).WithClock(clock.Now),
	}
}

func (f *fixture) createQuiz(t *testing.T, correct domain.Option) domain.Quiz {
	t.Helper()
	quiz, err := f.quizzes.CreateQuiz(context.Background(), domain.Quiz{
		QuestionContent: "What is Mom's favourite food?",
		OptionA:         "Kimchi stew",
		OptionB:         "Bibimbap",
		OptionC:         "Tteokbokki",
		OptionD:         "Japchae",
		CorrectAnswer:   correct,
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return quiz
}

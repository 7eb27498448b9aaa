package app

import (
	"context"
	"time"

	"dadam-quiz-service/internal/domain"
)

// QuestionStore persists daily questions and their day assignments.
type QuestionStore interface {
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	GetQuestion(ctx context.Context, id int64) (domain.Question, error)
	// LatestQuestion returns the most recently created question.
	LatestQuestion(ctx context.Context) (domain.Question, error)
	CountQuestions(ctx context.Context) (int, error)
	// AssignQuestion fails with domain.ErrDuplicate when the day is taken.
	AssignQuestion(ctx context.Context, a domain.QuestionAssignment) error
	AssignedQuestion(ctx context.Context, day time.Time) (domain.Question, bool, error)
}

// AnswerStore persists answers. CreateAnswer must reject a second answer for
// the same (question, user) pair with domain.ErrDuplicate.
type AnswerStore interface {
	AnswerExists(ctx context.Context, questionID, userID int64) (bool, error)
	CreateAnswer(ctx context.Context, a domain.Answer) (domain.Answer, error)
	// ListAnswers is ordered by creation time, oldest first.
	ListAnswers(ctx context.Context, questionID int64) ([]domain.Answer, error)
}

// QuizStore loads quiz content (from cache/backing store).
type QuizStore interface {
	CreateQuiz(ctx context.Context, q domain.Quiz) (domain.Quiz, error)
	GetQuiz(ctx context.Context, id int64) (domain.Quiz, error)
	LatestQuiz(ctx context.Context) (domain.Quiz, error)
}

// SelectionStore persists quiz selections. CreateSelection must reject a second
// selection for the same (quiz, user) pair with domain.ErrDuplicate.
type SelectionStore interface {
	SelectionExists(ctx context.Context, quizID, userID int64) (bool, error)
	CreateSelection(ctx context.Context, s domain.QuizSelection) (domain.QuizSelection, error)
	// ListSelections is ordered by creation time, oldest first.
	ListSelections(ctx context.Context, quizID int64) ([]domain.QuizSelection, error)
}

// UserStore reads family member records owned by the profile service.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetUsers(ctx context.Context, ids []int64) (map[int64]domain.User, error)
}

// FeedRegistry abstracts how result feeds are tracked (in-memory, Redis, etc).
type FeedRegistry interface {
	GetOrCreate(quizID int64) *Feed
	Get(quizID int64) (*Feed, bool)
	DeleteIfEmpty(quizID int64)
}

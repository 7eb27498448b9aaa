package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"dadam-quiz-service/internal/domain"
)

const initialQuestionContent = "가족과 함께한 가장 즐거웠던 여행은 무엇인가요?"

// QuestionService resolves the question of the day.
type QuestionService struct {
	questions QuestionStore
	now       func() time.Time
}

func NewQuestionService(questions QuestionStore) *QuestionService {
	return &QuestionService{questions: questions, now: time.Now}
}

// WithClock replaces the timestamp source, for deterministic tests.
func (s *QuestionService) WithClock(now func() time.Time) *QuestionService {
	s.now = now
	return s
}

// CurrentQuestion returns the question assigned to date's calendar day, or the
// most recently created question when the day has no assignment.
func (s *QuestionService) CurrentQuestion(ctx context.Context, date time.Time) (domain.Question, error) {
	q, _, err := s.ResolveQuestion(ctx, date)
	return q, err
}

// ResolveQuestion is CurrentQuestion that also reports whether the question
// came from an assignment for date rather than the latest-created fallback.
func (s *QuestionService) ResolveQuestion(ctx context.Context, date time.Time) (domain.Question, bool, error) {
	q, ok, err := s.questions.AssignedQuestion(ctx, Day(date))
	if err != nil {
		return domain.Question{}, false, err
	}
	if ok {
		return q, true, nil
	}
	q, err = s.questions.LatestQuestion(ctx)
	return q, false, err
}

// QuestionByID is used to validate answer submissions.
func (s *QuestionService) QuestionByID(ctx context.Context, id int64) (domain.Question, error) {
	return s.questions.GetQuestion(ctx, id)
}

func (s *QuestionService) CreateQuestion(ctx context.Context, content string, category domain.Category) (domain.Question, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Question{}, domain.ErrEmptyContent
	}
	if !category.Valid() {
		return domain.Question{}, domain.ErrInvalidCategory
	}
	return s.questions.CreateQuestion(ctx, domain.Question{
		Content:   content,
		Category:  category,
		CreatedAt: s.now(),
	})
}

// AssignQuestion pins an existing question to a calendar day. A day holds at
// most one question.
func (s *QuestionService) AssignQuestion(ctx context.Context, date time.Time, questionID int64) error {
	if _, err := s.questions.GetQuestion(ctx, questionID); err != nil {
		return err
	}
	err := s.questions.AssignQuestion(ctx, domain.QuestionAssignment{Date: Day(date), QuestionID: questionID})
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.ErrDateAlreadyAssigned
	}
	return err
}

// EnsureInitialQuestion seeds a single question into an empty store.
func (s *QuestionService) EnsureInitialQuestion(ctx context.Context) (bool, error) {
	n, err := s.questions.CountQuestions(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateQuestion(ctx, initialQuestionContent, domain.CategoryTravel); err != nil {
		return false, err
	}
	return true, nil
}

// Day truncates t to midnight UTC of its own calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

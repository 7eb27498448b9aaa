package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"dadam-quiz-service/internal/domain"
	"github.com/golang/glog"
)

// AnswerService records free-text answers, one per user per question.
type AnswerService struct {
	questions QuestionStore
	answers   AnswerStore
	users     UserStore
	now       func() time.Time
}

func NewAnswerService(questions QuestionStore, answers AnswerStore, users UserStore) *AnswerService {
	return &AnswerService{questions: questions, answers: answers, users: users, now: time.Now}
}

// WithClock replaces the timestamp source, for deterministic tests.
func (s *AnswerService) WithClock(now func() time.Time) *AnswerService {
	s.now = now
	return s
}

// CreateAnswer validates and stores userID's answer to questionID.
func (s *AnswerService) CreateAnswer(ctx context.Context, questionID, userID int64, content string) (domain.Answer, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Answer{}, domain.ErrEmptyContent
	}
	if _, err := s.questions.GetQuestion(ctx, questionID); err != nil {
		return domain.Answer{}, err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return domain.Answer{}, err
	}

	exists, err := s.answers.AnswerExists(ctx, questionID, userID)
	if err != nil {
		return domain.Answer{}, err
	}
	if exists {
		return domain.Answer{}, domain.ErrAlreadyAnswered
	}

	// The store's unique key on (question, user) decides concurrent races.
	answer, err := s.answers.CreateAnswer(ctx, domain.Answer{
		QuestionID: questionID,
		UserID:     userID,
		Content:    content,
		CreatedAt:  s.now(),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.Answer{}, domain.ErrAlreadyAnswered
	}
	if err != nil {
		return domain.Answer{}, err
	}
	glog.V(2).Infof("user %d answered question %d", userID, questionID)
	return answer, nil
}

// ListAnswers returns every answer to questionID, oldest first.
func (s *AnswerService) ListAnswers(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	answers, err := s.answers.ListAnswers(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	return answers, nil
}

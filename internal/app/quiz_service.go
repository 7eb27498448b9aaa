package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"dadam-quiz-service/internal/domain"
	"github.com/golang/glog"
)

// QuizService contains the daily quiz use cases.
type QuizService struct {
	quizzes    QuizStore
	selections SelectionStore
	users      UserStore
	feeds      FeedRegistry
	now        func() time.Time
}

func NewQuizService(quizzes QuizStore, selections SelectionStore, users UserStore, feeds FeedRegistry) *QuizService {
	return &QuizService{
		quizzes:    quizzes,
		selections: selections,
		users:      users,
		feeds:      feeds,
		now:        time.Now,
	}
}

// WithClock replaces the timestamp source, for deterministic tests.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// CurrentQuiz returns the most recently created quiz.
func (s *QuizService) CurrentQuiz(ctx context.Context) (domain.Quiz, error) {
	return s.quizzes.LatestQuiz(ctx)
}

func (s *QuizService) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	for _, field := range []string{quiz.QuestionContent, quiz.OptionA, quiz.OptionB, quiz.OptionC, quiz.OptionD} {
		if strings.TrimSpace(field) == "" {
			return domain.Quiz{}, domain.ErrEmptyContent
		}
	}
	if !quiz.CorrectAnswer.Valid() {
		return domain.Quiz{}, domain.ErrInvalidOption
	}
	quiz.ID = 0
	quiz.CreatedAt = s.now()
	return s.quizzes.CreateQuiz(ctx, quiz)
}

// SubmitSelection records userID's choice for quizID. A user selects at most
// once per quiz and correctness is fixed at this point.
func (s *QuizService) SubmitSelection(ctx context.Context, quizID, userID int64, selectedOption string) (domain.QuizSelection, error) {
	option, err := domain.ParseOption(selectedOption)
	if err != nil {
		return domain.QuizSelection{}, err
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizSelection{}, err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return domain.QuizSelection{}, err
	}

	exists, err := s.selections.SelectionExists(ctx, quizID, userID)
	if err != nil {
		return domain.QuizSelection{}, err
	}
	if exists {
		return domain.QuizSelection{}, domain.ErrAlreadyParticipated
	}

	selection, err := s.selections.CreateSelection(ctx, domain.QuizSelection{
		QuizID:         quiz.ID,
		UserID:         userID,
		SelectedOption: option,
		IsCorrect:      option == quiz.CorrectAnswer,
		CreatedAt:      s.now(),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.QuizSelection{}, domain.ErrAlreadyParticipated
	}
	if err != nil {
		return domain.QuizSelection{}, err
	}

	glog.V(2).Infof("user %d selected %s on quiz %d (correct=%v)", userID, option, quizID, selection.IsCorrect)
	s.publish(ctx, quizID)
	return selection, nil
}

// CurrentQuizView returns the current quiz as seen by userID. Answer key and
// other participants' choices stay hidden until userID has participated.
func (s *QuizService) CurrentQuizView(ctx context.Context, userID int64) (domain.QuizView, error) {
	quiz, err := s.quizzes.LatestQuiz(ctx)
	if err != nil {
		return domain.QuizView{}, err
	}
	selections, err := s.selections.ListSelections(ctx, quiz.ID)
	if err != nil {
		return domain.QuizView{}, err
	}
	users, err := s.users.GetUsers(ctx, participantIDs(selections))
	if err != nil {
		return domain.QuizView{}, err
	}
	return buildQuizView(quiz, selections, users, userID), nil
}

// Subscribe returns a channel that receives revealed results for a quiz.
// Only participants may subscribe. The caller must invoke the returned cancel
// function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, quizID, userID int64) (<-chan domain.QuizResults, func(), error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, nil, err
	}
	participated, err := s.selections.SelectionExists(ctx, quizID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !participated {
		return nil, nil, domain.ErrNotParticipated
	}

	// Register before reading, so a selection committed meanwhile is published
	// to this channel. Snapshots only grow, so the feed drops whichever of the
	// two arrives stale.
	feed := s.feeds.GetOrCreate(quizID)
	ch, unsubscribe := feed.subscribe()
	cancel := func() {
		unsubscribe()
		s.feeds.DeleteIfEmpty(quizID)
	}
	initial, err := s.results(ctx, quizID)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	feed.publish(initial)
	return ch, cancel, nil
}

func (s *QuizService) publish(ctx context.Context, quizID int64) {
	feed, ok := s.feeds.Get(quizID)
	if !ok {
		return
	}
	results, err := s.results(ctx, quizID)
	if err != nil {
		glog.Warningf("quiz %d: skip results broadcast: %v", quizID, err)
		return
	}
	feed.publish(results)
}

func (s *QuizService) results(ctx context.Context, quizID int64) (domain.QuizResults, error) {
	selections, err := s.selections.ListSelections(ctx, quizID)
	if err != nil {
		return domain.QuizResults{}, err
	}
	users, err := s.users.GetUsers(ctx, participantIDs(selections))
	if err != nil {
		return domain.QuizResults{}, err
	}
	return domain.QuizResults{
		QuizID:    quizID,
		Details:   selectionDetails(selections, users, true),
		UpdatedAt: s.now(),
	}, nil
}

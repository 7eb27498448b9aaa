package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dadam-quiz-service/internal/domain"
)

type pairKey struct {
	parentID int64
	userID   int64
}

// Store is an in-memory entity store. A single mutex makes every
// check-then-insert atomic, and the pair indexes play the role of the unique
// constraints a database would enforce.
type Store struct {
	mu sync.RWMutex

	nextID int64

	users       map[int64]domain.User
	questions   map[int64]domain.Question
	assignments map[time.Time]int64
	answers     map[int64]domain.Answer
	answerKeys  map[pairKey]int64
	quizzes     map[int64]domain.Quiz
	selections  map[int64]domain.QuizSelection
	selKeys     map[pairKey]int64
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]domain.User),
		questions:   make(map[int64]domain.Question),
		assignments: make(map[time.Time]int64),
		answers:     make(map[int64]domain.Answer),
		answerKeys:  make(map[pairKey]int64),
		quizzes:     make(map[int64]domain.Quiz),
		selections:  make(map[int64]domain.QuizSelection),
		selKeys:     make(map[pairKey]int64),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// PutUser inserts or replaces a user. Users are owned by the profile service;
// this exists for seeding and tests.
func (s *Store) PutUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	} else if u.ID > s.nextID {
		s.nextID = u.ID
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) GetUsers(_ context.Context, ids []int64) (map[int64]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *Store) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.id()
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) GetQuestion(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *Store) LatestQuestion(_ context.Context) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest domain.Question
	found := false
	for _, q := range s.questions {
		if !found || newer(q.CreatedAt, q.ID, latest.CreatedAt, latest.ID) {
			latest, found = q, true
		}
	}
	if !found {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return latest, nil
}

func (s *Store) CountQuestions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}

func (s *Store) AssignQuestion(_ context.Context, a domain.QuestionAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[a.QuestionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	if _, taken := s.assignments[a.Date]; taken {
		return domain.ErrDuplicate
	}
	s.assignments[a.Date] = a.QuestionID
	return nil
}

func (s *Store) AssignedQuestion(_ context.Context, day time.Time) (domain.Question, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.assignments[day]
	if !ok {
		return domain.Question{}, false, nil
	}
	q, ok := s.questions[id]
	return q, ok, nil
}

func (s *Store) AnswerExists(_ context.Context, questionID, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.answerKeys[pairKey{questionID, userID}]
	return ok, nil
}

func (s *Store) CreateAnswer(_ context.Context, a domain.Answer) (domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{a.QuestionID, a.UserID}
	if _, ok := s.answerKeys[key]; ok {
		return domain.Answer{}, domain.ErrDuplicate
	}
	a.ID = s.id()
	s.answers[a.ID] = a
	s.answerKeys[key] = a.ID
	return a, nil
}

func (s *Store) ListAnswers(_ context.Context, questionID int64) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Answer, 0)
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[j].CreatedAt, out[j].ID, out[i].CreatedAt, out[i].ID)
	})
	return out, nil
}

func (s *Store) CreateQuiz(_ context.Context, q domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.id()
	s.quizzes[q.ID] = q
	return q, nil
}

func (s *Store) GetQuiz(_ context.Context, id int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return q, nil
}

func (s *Store) LatestQuiz(_ context.Context) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest domain.Quiz
	found := false
	for _, q := range s.quizzes {
		if !found || newer(q.CreatedAt, q.ID, latest.CreatedAt, latest.ID) {
			latest, found = q, true
		}
	}
	if !found {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return latest, nil
}

func (s *Store) SelectionExists(_ context.Context, quizID, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selKeys[pairKey{quizID, userID}]
	return ok, nil
}

func (s *Store) CreateSelection(_ context.Context, sel domain.QuizSelection) (domain.QuizSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{sel.QuizID, sel.UserID}
	if _, ok := s.selKeys[key]; ok {
		return domain.QuizSelection{}, domain.ErrDuplicate
	}
	sel.ID = s.id()
	s.selections[sel.ID] = sel
	s.selKeys[key] = sel.ID
	return sel, nil
}

func (s *Store) ListSelections(_ context.Context, quizID int64) ([]domain.QuizSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizSelection, 0)
	for _, sel := range s.selections {
		if sel.QuizID == quizID {
			out = append(out, sel)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[j].CreatedAt, out[j].ID, out[i].CreatedAt, out[i].ID)
	})
	return out, nil
}

// newer orders by creation time, then by id for records created in the same instant.
func newer(at time.Time, id int64, thanAt time.Time, thanID int64) bool {
	if !at.Equal(thanAt) {
		return at.After(thanAt)
	}
	return id > thanID
}

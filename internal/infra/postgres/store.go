package postgres

import (
	"context"
	"errors"
	"time"

	"dadam-quiz-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	pkgerrors "github.com/pkg/errors"
)

const uniqueViolation = "23505"

// Store persists entities in Postgres. Uniqueness of answers and selections
// per user is enforced by table constraints, see migrations.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// PutUser upserts a user row. Ids are issued by the profile service; this
// exists for seeding.
func (s *Store) PutUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == 0 {
		return domain.User{}, pkgerrors.New("put user: id is required")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, family_role, family_code, avatar_url) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, family_role = EXCLUDED.family_role,
			family_code = EXCLUDED.family_code, avatar_url = EXCLUDED.avatar_url`,
		u.ID, u.Name, u.FamilyRole, u.FamilyCode, u.AvatarURL)
	if err != nil {
		return domain.User{}, pkgerrors.Wrap(err, "put user")
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, family_role, family_code, avatar_url FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.FamilyRole, &u.FamilyCode, &u.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, pkgerrors.Wrap(err, "get user")
	}
	return u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []int64) (map[int64]domain.User, error) {
	out := make(map[int64]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, family_role, family_code, avatar_url FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "get users")
	}
	defer rows.Close()
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.FamilyRole, &u.FamilyCode, &u.AvatarURL); err != nil {
			return nil, pkgerrors.Wrap(err, "scan user")
		}
		out[u.ID] = u
	}
	return out, pkgerrors.Wrap(rows.Err(), "get users")
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO questions (content, category, created_at) VALUES ($1, $2, $3) RETURNING id`,
		q.Content, string(q.Category), q.CreatedAt,
	).Scan(&q.ID)
	if err != nil {
		return domain.Question{}, pkgerrors.Wrap(err, "create question")
	}
	return q, nil
}

func (s *Store) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	return s.scanQuestion(s.pool.QueryRow(ctx,
		`SELECT id, content, category, created_at FROM questions WHERE id = $1`, id))
}

func (s *Store) LatestQuestion(ctx context.Context) (domain.Question, error) {
	return s.scanQuestion(s.pool.QueryRow(ctx,
		`SELECT id, content, category, created_at FROM questions ORDER BY created_at DESC, id DESC LIMIT 1`))
}

func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&n); err != nil {
		return 0, pkgerrors.Wrap(err, "count questions")
	}
	return n, nil
}

func (s *Store) AssignQuestion(ctx context.Context, a domain.QuestionAssignment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO question_assignments (assigned_date, question_id) VALUES ($1, $2)`, a.Date, a.QuestionID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return pkgerrors.Wrap(err, "assign question")
}

func (s *Store) AssignedQuestion(ctx context.Context, day time.Time) (domain.Question, bool, error) {
	q, err := s.scanQuestion(s.pool.QueryRow(ctx,
		`SELECT q.id, q.content, q.category, q.created_at
		FROM question_assignments a JOIN questions q ON q.id = a.question_id
		WHERE a.assigned_date = $1`, day))
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return domain.Question{}, false, nil
	}
	if err != nil {
		return domain.Question{}, false, err
	}
	return q, true, nil
}

func (s *Store) scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q        domain.Question
		category string
	)
	err := row.Scan(&q.ID, &q.Content, &category, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, pkgerrors.Wrap(err, "load question")
	}
	q.Category = domain.Category(category)
	return q, nil
}

func (s *Store) AnswerExists(ctx context.Context, questionID, userID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM answers WHERE question_id = $1 AND user_id = $2)`, questionID, userID,
	).Scan(&exists)
	return exists, pkgerrors.Wrap(err, "answer exists")
}

func (s *Store) CreateAnswer(ctx context.Context, a domain.Answer) (domain.Answer, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO answers (question_id, user_id, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		a.QuestionID, a.UserID, a.Content, a.CreatedAt,
	).Scan(&a.ID)
	if isUniqueViolation(err) {
		return domain.Answer{}, domain.ErrDuplicate
	}
	if err != nil {
		return domain.Answer{}, pkgerrors.Wrap(err, "create answer")
	}
	return a, nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question_id, user_id, content, created_at FROM answers
		WHERE question_id = $1 ORDER BY created_at ASC, id ASC`, questionID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list answers")
	}
	defer rows.Close()
	answers := make([]domain.Answer, 0)
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Content, &a.CreatedAt); err != nil {
			return nil, pkgerrors.Wrap(err, "scan answer")
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "list answers")
	}
	return answers, nil
}

func (s *Store) CreateQuiz(ctx context.Context, q domain.Quiz) (domain.Quiz, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO quizzes (question_content, option_a, option_b, option_c, option_d, correct_answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		q.QuestionContent, q.OptionA, q.OptionB, q.OptionC, q.OptionD, string(q.CorrectAnswer), q.CreatedAt,
	).Scan(&q.ID)
	if err != nil {
		return domain.Quiz{}, pkgerrors.Wrap(err, "create quiz")
	}
	return q, nil
}

const quizColumns = `id, question_content, option_a, option_b, option_c, option_d, correct_answer, created_at`

func (s *Store) GetQuiz(ctx context.Context, id int64) (domain.Quiz, error) {
	return s.scanQuiz(s.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
}

func (s *Store) LatestQuiz(ctx context.Context) (domain.Quiz, error) {
	return s.scanQuiz(s.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC, id DESC LIMIT 1`))
}

func (s *Store) scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		q       domain.Quiz
		correct string
	)
	err := row.Scan(&q.ID, &q.QuestionContent, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &correct, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, pkgerrors.Wrap(err, "load quiz")
	}
	q.CorrectAnswer = domain.Option(correct)
	return q, nil
}

func (s *Store) SelectionExists(ctx context.Context, quizID, userID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quiz_selections WHERE quiz_id = $1 AND user_id = $2)`, quizID, userID,
	).Scan(&exists)
	return exists, pkgerrors.Wrap(err, "selection exists")
}

func (s *Store) CreateSelection(ctx context.Context, sel domain.QuizSelection) (domain.QuizSelection, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO quiz_selections (quiz_id, user_id, selected_option, is_correct, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sel.QuizID, sel.UserID, string(sel.SelectedOption), sel.IsCorrect, sel.CreatedAt,
	).Scan(&sel.ID)
	if isUniqueViolation(err) {
		return domain.QuizSelection{}, domain.ErrDuplicate
	}
	if err != nil {
		return domain.QuizSelection{}, pkgerrors.Wrap(err, "create selection")
	}
	return sel, nil
}

func (s *Store) ListSelections(ctx context.Context, quizID int64) ([]domain.QuizSelection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, user_id, selected_option, is_correct, created_at FROM quiz_selections
		WHERE quiz_id = $1 ORDER BY created_at ASC, id ASC`, quizID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list selections")
	}
	defer rows.Close()
	selections := make([]domain.QuizSelection, 0)
	for rows.Next() {
		var (
			sel    domain.QuizSelection
			option string
		)
		if err := rows.Scan(&sel.ID, &sel.QuizID, &sel.UserID, &option, &sel.IsCorrect, &sel.CreatedAt); err != nil {
			return nil, pkgerrors.Wrap(err, "scan selection")
		}
		sel.SelectedOption = domain.Option(option)
		selections = append(selections, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "list selections")
	}
	return selections, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

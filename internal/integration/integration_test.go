package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"dadam-quiz-service/internal/app"
	"dadam-quiz-service/internal/domain"
	"dadam-quiz-service/internal/infra/postgres"
	pgmigrations "dadam-quiz-service/internal/infra/postgres/migrations"
	infraredis "dadam-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

const (
	mom int64 = 1
	dad int64 = 2
	kid int64 = 3
)

type stack struct {
	store     *postgres.Store
	questions *app.QuestionService
	answers   *app.AnswerService
	quizzes   *app.QuizService
}

func TestQuizRevealEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := setupStack(t, ctx)

	quiz, err := s.quizzes.CreateQuiz(ctx, domain.Quiz{
		QuestionContent: "What is Mom's favourite food?",
		OptionA:         "Kimchi stew",
		OptionB:         "Bibimbap",
		OptionC:         "Tteokbokki",
		OptionD:         "Japchae",
		CorrectAnswer:   domain.OptionB,
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	if _, err := s.quizzes.SubmitSelection(ctx, quiz.ID, mom, "B"); err != nil {
		t.Fatalf("mom select: %v", err)
	}
	if _, err := s.quizzes.SubmitSelection(ctx, quiz.ID, dad, "A"); err != nil {
		t.Fatalf("dad select: %v", err)
	}
	if _, err := s.quizzes.SubmitSelection(ctx, quiz.ID, mom, "C"); !errors.Is(err, domain.ErrAlreadyParticipated) {
		t.Fatalf("expected already participated, got %v", err)
	}

	view, err := s.quizzes.CurrentQuizView(ctx, mom)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.ID != quiz.ID || view.ParticipantCount != 2 || view.CorrectAnswer == nil || *view.CorrectAnswer != domain.OptionB {
		t.Fatalf("unexpected participant view %+v", view)
	}
	if len(view.SelectionDetails) != 2 || view.SelectionDetails[0].UserID != mom || *view.SelectionDetails[1].IsCorrect {
		t.Fatalf("unexpected details %+v", view.SelectionDetails)
	}

	hidden, err := s.quizzes.CurrentQuizView(ctx, kid)
	if err != nil {
		t.Fatalf("kid view: %v", err)
	}
	if hidden.HasParticipated || hidden.CorrectAnswer != nil || hidden.ParticipantCount != 2 {
		t.Fatalf("expected gated view for kid, got %+v", hidden)
	}
}

func TestConcurrentSelectionsStoreOne(t *testing.T) {
	ctx := context.Background()
	s := setupStack(t, ctx)

	quiz, err := s.quizzes.CreateQuiz(ctx, domain.Quiz{
		QuestionContent: "Where did we go camping?",
		OptionA:         "Sokcho",
		OptionB:         "Gapyeong",
		OptionC:         "Jeju",
		OptionD:         "Gyeongju",
		CorrectAnswer:   domain.OptionC,
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	const attempts = 12
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.quizzes.SubmitSelection(ctx, quiz.ID, kid, "C")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyParticipated):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one stored selection, got %d", ok)
	}
	selections, _ := s.store.ListSelections(ctx, quiz.ID)
	if len(selections) != 1 {
		t.Fatalf("expected one row, got %d", len(selections))
	}
}

func TestAnswersAndDailyQuestion(t *testing.T) {
	ctx := context.Background()
	s := setupStack(t, ctx)

	created, err := s.questions.EnsureInitialQuestion(ctx)
	if err != nil || !created {
		t.Fatalf("expected initial question, got created=%v err=%v", created, err)
	}
	initial, err := s.questions.CurrentQuestion(ctx, time.Now())
	if err != nil || initial.Category != domain.CategoryTravel {
		t.Fatalf("expected travel fallback question, got %+v (%v)", initial, err)
	}

	pinned, err := s.questions.CreateQuestion(ctx, "What are you grateful for?", domain.CategoryFamily)
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	day := time.Date(2025, 11, 13, 0, 0, 0, 0, time.UTC)
	if err := s.questions.AssignQuestion(ctx, day, pinned.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.questions.AssignQuestion(ctx, day, initial.ID); !errors.Is(err, domain.ErrDateAlreadyAssigned) {
		t.Fatalf("expected date conflict, got %v", err)
	}
	got, err := s.questions.CurrentQuestion(ctx, day.Add(20*time.Hour))
	if err != nil || got.ID != pinned.ID {
		t.Fatalf("expected pinned question %d, got %+v (%v)", pinned.ID, got, err)
	}

	if _, err := s.answers.CreateAnswer(ctx, pinned.ID, dad, "My family"); err != nil {
		t.Fatalf("dad answer: %v", err)
	}
	if _, err := s.answers.CreateAnswer(ctx, pinned.ID, mom, "Sunny weekends"); err != nil {
		t.Fatalf("mom answer: %v", err)
	}
	if _, err := s.answers.CreateAnswer(ctx, pinned.ID, dad, "Again"); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
	answers, err := s.answers.ListAnswers(ctx, pinned.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(answers) != 2 || answers[0].UserID != dad || answers[1].UserID != mom {
		t.Fatalf("expected dad then mom, got %+v", answers)
	}
}

func setupStack(t *testing.T, ctx context.Context) *stack {
	t.Helper()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	t.Cleanup(pgCleanup)
	redisURL, redisCleanup := startRedis(t, ctx)
	t.Cleanup(redisCleanup)

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	t.Cleanup(pool.Close)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	store := postgres.NewStore(pool)
	for _, u := range []domain.User{
		{ID: mom, Name: "Mom", FamilyRole: "MOTHER", FamilyCode: "FAM123"},
		{ID: dad, Name: "Dad", FamilyRole: "FATHER", FamilyCode: "FAM123"},
		{ID: kid, Name: "Minji", FamilyRole: "DAUGHTER", FamilyCode: "FAM123"},
	} {
		if _, err := store.PutUser(ctx, u); err != nil {
			t.Fatalf("put user: %v", err)
		}
	}

	return &stack{
		store:     store,
		questions: app.NewQuestionService(store),
		answers:   app.NewAnswerService(store, store, store),
		quizzes: app.NewQuizService(
			infraredis.NewQuizCache(redisClient, store, 5*time.Minute),
			store, store,
			infraredis.NewFeedRegistry(redisClient, 5*time.Minute),
		),
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "dadam", "POSTGRES_PASSWORD": "dadampass", "POSTGRES_DB": "dadam"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://dadam:dadampass@%s:%s/dadam?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	return fmt.Sprintf("redis://%s:%s", host, port.Port()), func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

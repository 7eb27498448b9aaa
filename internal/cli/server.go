package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dadam-quiz-service/internal/app"
	"dadam-quiz-service/internal/config"
	"dadam-quiz-service/internal/domain"
	"dadam-quiz-service/internal/infra/memory"
	"dadam-quiz-service/internal/infra/postgres"
	rediscache "dadam-quiz-service/internal/infra/redis"
	transport "dadam-quiz-service/internal/transport/http"
	"github.com/golang/glog"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// store is everything the services need from persistence, plus user upserts
// for seeding.
type store interface {
	app.QuestionStore
	app.AnswerStore
	app.QuizStore
	app.SelectionStore
	app.UserStore
	PutUser(ctx context.Context, u domain.User) (domain.User, error)
}

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	secret := cfg.Auth.JWTSecret
	if env := os.Getenv("JWT_SECRET"); env != "" {
		secret = env
	}
	if secret == "" {
		return errors.New("jwt secret not configured (auth.jwtSecret or JWT_SECRET)")
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	backing, closeStore, err := openStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeStore()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var quizzes app.QuizStore
	var feeds app.FeedRegistry
	if redisClient != nil {
		quizzes = rediscache.NewQuizCache(redisClient, backing, quizTTL)
		feeds = rediscache.NewFeedRegistry(redisClient, config.TTLDuration(cfg.Feed.TTL, 10*time.Minute))
	} else {
		quizzes = memory.NewQuizCache(backing, quizTTL)
		feeds = memory.NewFeedRegistry()
	}

	services := transport.Services{
		Questions: app.NewQuestionService(backing),
		Answers:   app.NewAnswerService(backing, backing, backing),
		Quizzes:   app.NewQuizService(quizzes, backing, backing, feeds),
	}

	if cfg.Seed || cfg.Postgres.URL == "" {
		if err := seedDemo(ctx, backing, services.Questions, services.Quizzes); err != nil {
			return errors.Wrap(err, "seed demo data")
		}
	}

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(services, transport.NewAuthenticator(secret)),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		glog.Infof("starting dadam quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Errorf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		glog.Info("shutting down server...")
	case <-ctx.Done():
		glog.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore returns Postgres when configured, otherwise an in-memory store.
func openStore(ctx context.Context, cfg config.Config, withMigrations bool) (store, func(), error) {
	if cfg.Postgres.URL == "" {
		glog.Warning("postgres url not configured, data lives in memory only")
		return memory.NewStore(), func() {}, nil
	}
	if withMigrations {
		if err := runMigrations(ctx, cfg); err != nil {
			return nil, nil, err
		}
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect postgres")
	}
	return postgres.NewStore(pool), pool.Close, nil
}

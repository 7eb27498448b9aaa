package cli

import (
	"context"
	"errors"

	"dadam-quiz-service/internal/app"
	"dadam-quiz-service/internal/config"
	"dadam-quiz-service/internal/domain"
	"dadam-quiz-service/internal/infra/memory"
	"github.com/golang/glog"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads demo family members, a question and a quiz into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users, question and quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return pkgerrors.Wrap(err, "load config")
			}
			if cfg.Postgres.URL == "" {
				return errNoPostgres
			}
			backing, closeStore, err := openStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer closeStore()
			return seedDemo(ctx, backing,
				app.NewQuestionService(backing),
				app.NewQuizService(backing, backing, backing, memory.NewFeedRegistry()))
		},
	}
}

var demoFamily = []domain.User{
	{ID: 1, Name: "엄마", FamilyRole: "MOTHER", FamilyCode: "DADAM1"},
	{ID: 2, Name: "아빠", FamilyRole: "FATHER", FamilyCode: "DADAM1"},
	{ID: 3, Name: "민지", FamilyRole: "DAUGHTER", FamilyCode: "DADAM1"},
	{ID: 4, Name: "준호", FamilyRole: "SON", FamilyCode: "DADAM1"},
}

var demoQuiz = domain.Quiz{
	QuestionContent: "엄마가 가장 좋아하는 음식은?",
	OptionA:         "김치찌개",
	OptionB:         "비빔밥",
	OptionC:         "떡볶이",
	OptionD:         "잡채",
	CorrectAnswer:   domain.OptionB,
}

// seedDemo is idempotent: users are upserted, the question and quiz are only
// created when none exist.
func seedDemo(ctx context.Context, users store, questions *app.QuestionService, quizzes *app.QuizService) error {
	for _, u := range demoFamily {
		if _, err := users.PutUser(ctx, u); err != nil {
			return pkgerrors.Wrapf(err, "put user %d", u.ID)
		}
	}

	created, err := questions.EnsureInitialQuestion(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, "initial question")
	}
	if created {
		glog.Info("seeded initial question")
	}

	_, err = quizzes.CurrentQuiz(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		quiz, err := quizzes.CreateQuiz(ctx, demoQuiz)
		if err != nil {
			return pkgerrors.Wrap(err, "demo quiz")
		}
		glog.Infof("seeded quiz %d", quiz.ID)
	case err != nil:
		return err
	}
	return nil
}

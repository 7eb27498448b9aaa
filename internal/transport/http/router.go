package http

import (
	"net/http"
	"os"

	"dadam-quiz-service/internal/app"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Questions *app.QuestionService
	Answers   *app.AnswerService
	Quizzes   *app.QuizService
}

// NewRouter wires the REST API and the results websocket behind auth, CORS
// and access logging.
func NewRouter(svc Services, auth *Authenticator) http.Handler {
	questions := NewQuestionHandler(svc.Questions, svc.Answers)
	quizzes := NewQuizHandler(svc.Quizzes)
	results := NewWSHandler(svc.Quizzes)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware)
	api.HandleFunc("/questions", questions.CurrentQuestion).Methods(http.MethodGet)
	api.HandleFunc("/questions/{questionId}/answers", questions.ListAnswers).Methods(http.MethodGet)
	api.HandleFunc("/questions/{questionId}/answers", questions.CreateAnswer).Methods(http.MethodPost)
	api.HandleFunc("/quizzes/current", quizzes.CurrentQuiz).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{quizId}/select", quizzes.Select).Methods(http.MethodPost)

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(auth.Middleware)
	ws.HandleFunc("/quizzes/{quizId}/results", results.ServeWS).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	return handlers.LoggingHandler(os.Stderr, cors(r))
}

package http

import (
	"net/http"

	"dadam-quiz-service/internal/app"
)

// QuizHandler serves the daily quiz.
type QuizHandler struct {
	quizzes *app.QuizService
}

func NewQuizHandler(quizzes *app.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

type selectRequest struct {
	SelectedOption string `json:"selectedOption" validate:"required"`
}

// CurrentQuiz handles GET /quizzes/current. What the caller sees depends on
// whether they already selected.
func (h *QuizHandler) CurrentQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	view, err := h.quizzes.CurrentQuizView(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) Select(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req selectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.quizzes.SubmitSelection(r.Context(), quizID, userID, req.SelectedOption); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "created", "selection recorded")
}

package http

import (
	"fmt"
	"net/http"
	"time"

	"dadam-quiz-service/internal/app"
	"dadam-quiz-service/internal/domain"
)

const dateLayout = "2006-01-02"

// QuestionHandler serves daily questions and their answers.
type QuestionHandler struct {
	questions *app.QuestionService
	answers   *app.AnswerService
	now       func() time.Time
}

func NewQuestionHandler(questions *app.QuestionService, answers *app.AnswerService) *QuestionHandler {
	return &QuestionHandler{questions: questions, answers: answers, now: time.Now}
}

// questionResponse carries assignedDate only when the question was assigned
// to the requested day; it is null for the latest-question fallback.
type questionResponse struct {
	domain.Question
	AssignedDate *string `json:"assignedDate"`
}

type createAnswerRequest struct {
	Content string `json:"content" validate:"required"`
}

// CurrentQuestion handles GET /questions?date=YYYY-MM-DD.
func (h *QuestionHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := caller(w, r); !ok {
		return
	}
	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, fmt.Errorf("date must be YYYY-MM-DD: %w", domain.ErrInvalidArgument))
			return
		}
		date = parsed
	}

	question, assigned, err := h.questions.ResolveQuestion(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := questionResponse{Question: question}
	if assigned {
		day := date.Format(dateLayout)
		resp.AssignedDate = &day
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QuestionHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	if _, ok := caller(w, r); !ok {
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		writeError(w, err)
		return
	}
	answers, err := h.answers.ListAnswers(r.Context(), questionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

func (h *QuestionHandler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createAnswerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	answer, err := h.answers.CreateAnswer(r.Context(), questionID, userID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

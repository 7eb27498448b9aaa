package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"dadam-quiz-service/internal/app"
	"dadam-quiz-service/internal/domain"
	"dadam-quiz-service/internal/infra/memory"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

const (
	mom int64 = 101
	dad int64 = 102
	kid int64 = 103
)

type testEnv struct {
	server   *httptest.Server
	store    *memory.Store
	services Services
	tokens   map[int64]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, u := range []domain.User{
		{ID: mom, Name: "Mom", FamilyRole: "MOTHER", FamilyCode: "FAM123"},
		{ID: dad, Name: "Dad", FamilyRole: "FATHER", FamilyCode: "FAM123"},
		{ID: kid, Name: "Minji", FamilyRole: "DAUGHTER", FamilyCode: "FAM123"},
	} {
		if _, err := store.PutUser(ctx, u); err != nil {
			t.Fatalf("put user: %v", err)
		}
	}
	services := Services{
		Questions: app.NewQuestionService(store),
		Answers:   app.NewAnswerService(store, store, store),
		Quizzes:   app.NewQuizService(memory.NewQuizCache(store, time.Minute), store, store, memory.NewFeedRegistry()),
	}
	server := httptest.NewServer(NewRouter(services, NewAuthenticator(testSecret)))
	t.Cleanup(server.Close)
	tokens := map[int64]string{}
	for _, id := range []int64{mom, dad, kid} {
		tokens[id] = tokenFor(t, id)
	}
	return &testEnv{server: server, store: store, services: services, tokens: tokens}
}

func (e *testEnv) createQuiz(t *testing.T) domain.Quiz {
	t.Helper()
	quiz, err := e.services.Quizzes.CreateQuiz(context.Background(), domain.Quiz{
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
	return quiz
}

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func tokenFor(t *testing.T, userID int64) string {
	return mintToken(t, testSecret, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
}

// do sends an authenticated request and decodes a JSON body into out when non-nil.
func (e *testEnv) do(t *testing.T, method, path string, userID int64, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dadam-quiz-service/internal/domain"
	"github.com/golang/glog"
)

// HTTPMessage is the body of every non-2xx response.
type HTTPMessage struct {
	Status  int    `json:"status"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		glog.Warningf("encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, typ, message string) {
	writeJSON(w, status, HTTPMessage{Status: status, Type: typ, Message: message})
}

// writeError maps domain error kinds onto HTTP statuses. Anything unclassified
// is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeMessage(w, http.StatusBadRequest, "badrequest", err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		writeMessage(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "notfound", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeMessage(w, http.StatusConflict, "conflict", err.Error())
	default:
		glog.Errorf("internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "error", "internal server error")
	}
}

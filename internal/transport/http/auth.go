package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const userIDClaim = "user_id"

var errInvalidToken = errors.New("invalid or missing token")

type ctxKey struct{}

// Authenticator verifies HMAC-signed bearer tokens and puts the caller's user
// id on the request context.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// UserID validates token and returns its user_id claim.
func (a *Authenticator) UserID(token string) (int64, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithJSONNumber())
	if err != nil || !parsed.Valid {
		return 0, errInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}
	raw, ok := claims[userIDClaim].(json.Number)
	if !ok {
		return 0, errInvalidToken
	}
	id, err := raw.Int64()
	if err != nil || id <= 0 {
		return 0, errInvalidToken
	}
	return id, nil
}

// Middleware rejects requests without a valid token. Browsers cannot set
// headers on websocket dials, so the token query parameter is accepted too.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		userID, err := a.UserID(token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

// UserIDFromContext returns the authenticated caller.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/server/auth"
)

type ctxKey string

const (
	accountIDKey ctxKey = "accountID"
	requestIDKey ctxKey = "requestID"
)

// requestLogger tags every request with a correlation id and logs method and
// path (no bodies, no tokens).
func (s *Server) requestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		s.logger.Info(ctx, "request", "method", r.Method, "path", r.URL.Path, "request_id", requestID)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAccount validates the bearer token and puts the account id on the
// request context.
func (s *Server) requireAccount(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}

		accountID, err := auth.GetAccountIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next(w, r.WithContext(ctx))
	}
}

// accountFromContext returns the authenticated account id, or 0 when the
// handler is reached without the middleware (tests only).
func accountFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(accountIDKey).(int64)
	return id
}

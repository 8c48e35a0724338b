package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
)

// contextKey is unexported so no other package can collide with userKey.
type contextKey string

const userKey contextKey = "user"

// UserLookup resolves the subject of a verified token to a stored user.
// *service.AuthService satisfies it.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth is the access gate for every protected route.
//
// It reads the bearer token, verifies it, loads the user it names and stores
// that *model.User in the request context. Any failure to identify the caller
// (no header, bad token, expired token, user since removed) ends the request
// with 401. It never answers 403: ownership is a service-layer decision.
func RequireAuth(tokens *TokenService, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				logger.Debug("rejected token", slog.String("reason", err.Error()))
				writeUnauthorized(w)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					writeUnauthorized(w)
					return
				}
				logger.Error("loading authenticated user",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
				writeError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user. Handler tests use it to skip
// the token round trip.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the caller stored by RequireAuth.
//
// Returns (nil, false) outside of a RequireAuth-protected route.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "authentication_required", "valid authentication required")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}

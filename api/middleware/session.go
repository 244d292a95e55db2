package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/oryclothing/ory-backend/api/responses"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

const maxSessionIDLen = 64

// Session reads the caller-supplied session identifier and injects it into
// the request context. Missing identifiers are minted so anonymous browsing
// still gets a stable cart; the assigned value is echoed back to the client.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			if len(sessionID) > maxSessionIDLen {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "session identifier too long"))
				return
			}

			w.Header().Set(sessionIDHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests where the caller did not send a session
// identifier of their own. Cart mutations need a stable identity across
// requests, a freshly minted one would silently operate on an empty cart.
func RequireSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get(sessionIDHeader)) == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "X-Session-Id header required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

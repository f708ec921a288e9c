package middleware

import (
	"context"
	"net/http"
	"strings"

	"resort/pkg/auth"
	apperrors "resort/pkg/errors"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type actorKey struct{}

// ActorResolver loads the current state of the user a token was issued to,
// so deleted users and role changes take effect before the token expires.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID int64) (model.Actor, error)
}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}

// Authenticate attaches the bearer token's actor to the request context.
// Requests without an Authorization header pass through anonymously; a
// malformed or expired token is rejected with 401.
func Authenticate(parser auth.TokenParser, resolver ActorResolver, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeAuthError(w, r, log, apperrors.Unauthorized("Authorization header must be 'Bearer <token>'"))
				return
			}

			claims, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				log.FromContext(r.Context()).Warn("Rejected bearer token", "error", err)
				writeAuthError(w, r, log, apperrors.Unauthorized("Could not validate credentials"))
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				writeAuthError(w, r, log, apperrors.Unauthorized("Could not validate credentials"))
				return
			}

			actor, err := resolver.ResolveActor(r.Context(), userID)
			if err != nil {
				if apperrors.HasCode(err, apperrors.CodeNotFound) {
					err = apperrors.Unauthorized("Could not validate credentials")
				}
				writeAuthError(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireActor rejects anonymous requests with 401.
func RequireActor(next httprouter.Handle, log *logger.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			writeAuthError(w, r, log, apperrors.Unauthorized("Not authenticated"))
			return
		}
		next(w, r, ps)
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next httprouter.Handle, log *logger.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			writeAuthError(w, r, log, apperrors.Unauthorized("Not authenticated"))
			return
		}
		if !actor.IsAdmin() {
			writeAuthError(w, r, log, apperrors.Forbidden("Administrator role required"))
			return
		}
		next(w, r, ps)
	}
}

func writeAuthError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.FromContext(r.Context()).Error("failed to write error response", "middleware", "auth", "operation", "WriteError", "error", writeErr)
	}
}

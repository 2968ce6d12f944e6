package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/gearshare/internal/auth"
	inHttp "github.com/Alturino/gearshare/internal/http"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/otel"
)

func bearerToken(r *http.Request) string {
	authorization := r.Header.Get(inHttp.KeyHeaderAuthorization)
	if len(authorization) < len(inHttp.ValueBearerPrefix) ||
		!strings.EqualFold(authorization[:len(inHttp.ValueBearerPrefix)], inHttp.ValueBearerPrefix) {
		return ""
	}
	return strings.TrimSpace(authorization[len(inHttp.ValueBearerPrefix):])
}

// Auth rejects requests without a valid bearer token and attaches the verified claims otherwise.
func Auth(verifier *auth.Verifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Auth")
			defer span.End()

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Auth").Logger()

			logger = logger.With().Str(log.KeyProcess, "verifying token").Logger()
			logger.Trace().Msg("verifying token")
			claims, err := verifier.Verify(c, bearerToken(r))
			if err != nil {
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, err)
				return
			}
			logger = logger.With().
				Str(log.KeyUserID, claims.Subject).
				Str(log.KeyRole, claims.Role).
				Logger()
			logger.Trace().Msg("verified token")

			c = auth.AttachClaims(r.Context(), claims)
			c = logger.WithContext(c)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and lets anonymous requests through.
func OptionalAuth(verifier *auth.Verifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := verifier.TryDecode(r.Context(), bearerToken(r))
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}
			c := auth.AttachClaims(r.Context(), *claims)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

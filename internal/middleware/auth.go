package middleware

import (
	"net/http"
	"strings"

	"github.com/hongminglow/finance-tracker/internal/auth"
	"github.com/hongminglow/finance-tracker/internal/http/respond"
	applog "github.com/hongminglow/finance-tracker/internal/log"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// verified session in the request context for handlers to pass on.
func RequireAuth(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer`)
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		session, err := tokens.Parse(tokenStr)
		if err != nil {
			applog.FromContext(r.Context()).Debug("rejected token", applog.FieldError, err)
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := auth.WithSession(r.Context(), session)
		ctx = applog.IntoContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, session.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

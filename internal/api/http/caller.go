package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

type callerContextKey string

const (
	callerKey     callerContextKey = "caller"
	privilegedKey callerContextKey = "privileged"
)

// identifyCaller reads X-Caller-Uid and the optional bearer token. Requests
// without a uid are rejected.
func (s *Server) identifyCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("X-Caller-Uid"))
		uid, err := strconv.Atoi(raw)
		if raw == "" || err != nil || uid < 0 {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-Caller-Uid header required")
			return
		}
		caller := lock.Caller{UID: uid, Credential: extractToken(r)}
		ctx := context.WithValue(r.Context(), callerKey, caller)
		if s.privilege != nil && s.privilege.IsPrivileged(caller.Credential) {
			ctx = context.WithValue(ctx, privilegedKey, true)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isPrivileged(r.Context()) {
			respondError(w, http.StatusForbidden, "FORBIDDEN", "privileged token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}

func callerFromContext(ctx context.Context) (lock.Caller, bool) {
	c, ok := ctx.Value(callerKey).(lock.Caller)
	return c, ok
}

func isPrivileged(ctx context.Context) bool {
	v, _ := ctx.Value(privilegedKey).(bool)
	return v
}

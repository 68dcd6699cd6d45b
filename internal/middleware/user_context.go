package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const userKey ctxKey = "user"

// UserHeader identifica al operador que planifica los apareamientos.
const UserHeader = "X-User"

// UserContext:
// - Si viene header X-User => ese es el usuario del request.
// - Si no, se usa defaultUser (instalación de un solo operador).
// No hay autenticación: el usuario solo se registra en created_by.
func UserContext(defaultUser string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := strings.TrimSpace(r.Header.Get(UserHeader))
			if user == "" {
				user = defaultUser
			}
			if user == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (string, bool) {
	v := ctx.Value(userKey)
	if v == nil {
		return "", false
	}
	u, ok := v.(string)
	return u, ok
}

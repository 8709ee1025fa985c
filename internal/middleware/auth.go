package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/biztalbox/avaya-food-ordering/internal/auth"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	tableKey  contextKey = "table"
)

// Authenticate requires a valid session token in the Authorization header.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
				return
			}

			claims, err := auth.ValidateToken(secret, parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLocation only lets through requests whose {location} path value
// is one of locations.
func RequireLocation(locations ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := r.PathValue("location")
			for _, l := range locations {
				if strings.EqualFold(loc, l) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		})
	}
}

// RequireTable gates a route on the ?q= table number. Without it the client
// must prompt for the number, signalled by 428.
func RequireTable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimSpace(r.URL.Query().Get("q"))
		if table == "" {
			writeJSON(w, http.StatusPreconditionRequired, map[string]string{"error": "table number required"})
			return
		}
		ctx := context.WithValue(r.Context(), tableKey, table)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// TableFromContext returns the table number set by RequireTable.
func TableFromContext(ctx context.Context) string {
	table, _ := ctx.Value(tableKey).(string)
	return table
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

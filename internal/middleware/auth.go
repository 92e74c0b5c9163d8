package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quickdate/admin-api/internal/models"
)

type contextKey string

const AdminEmailKey contextKey = "adminEmail"

// SessionCookie is the httpOnly cookie carrying the admin JWT.
const SessionCookie = "admin_session"

// TokenVerifier validates a session token and returns the admin email.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AccountChecker confirms the admin account still exists and is enabled.
type AccountChecker interface {
	Check(ctx context.Context, email string) error
}

// AdminAuth validates the admin session from the cookie or the Authorization
// header, then confirms the account is still active.
func AdminAuth(verifier TokenVerifier, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("authentication required"))
				return
			}

			email, err := verifier.Verify(tokenString)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("invalid or expired session"))
				return
			}

			if accounts != nil {
				if err := accounts.Check(r.Context(), email); err != nil {
					writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("account not active"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), AdminEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// GetAdminEmail extracts the authenticated admin's email from context.
func GetAdminEmail(ctx context.Context) string {
	email, ok := ctx.Value(AdminEmailKey).(string)
	if !ok {
		return ""
	}
	return email
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

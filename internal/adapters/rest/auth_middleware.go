package rest

import (
	"context"
	"listing-organizer/internal/core/domain"
	"net/http"
	"strings"
)

type contextKey string

const credentialKey = contextKey("credential")

// AuthMiddleware собирает учетные данные из X-User-ID и Authorization: Bearer.
// Токен не проверяется здесь, его проверяет внешний API при каждом вызове.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			WriteJSONError(w, http.StatusUnauthorized, "X-User-ID header is missing")
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			WriteJSONError(w, http.StatusUnauthorized, "Bearer token is missing")
			return
		}

		cred := domain.Credential{UserID: userID, Token: strings.TrimSpace(token)}
		ctx := context.WithValue(r.Context(), credentialKey, cred)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func credentialFromRequest(r *http.Request) domain.Credential {
	cred, _ := r.Context().Value(credentialKey).(domain.Credential)
	return cred
}

package auth

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/relay/core/response"
)

// RequireAuth wraps next so it only runs for requests carrying a valid
// bearer token. The verified user ID is placed on the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := s.VerifyToken(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

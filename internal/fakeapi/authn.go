package fakeapi

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// authn rejects requests without a valid access token the way the backend
// does, with a 401 and a "detail" body.
func (s *Server) authn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

		c, err := s.signer.verify(raw, tokenTypeAccess, s.now())
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		u := s.userByID(c.UserID)
		if u == nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	}
}

func currentUser(r *http.Request) *User {
	u, _ := r.Context().Value(ctxKey{}).(*User)
	return u
}

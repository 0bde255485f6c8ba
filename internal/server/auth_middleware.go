package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenAuth admits spectators presenting a shared token, either as the
// "token" query parameter or as a bearer Authorization header. An empty
// Token admits everyone.
type TokenAuth struct {
	Token string
}

func (a TokenAuth) Authorize(r *http.Request) error {
	if a.Token == "" {
		return nil
	}
	token := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); token == "" && strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

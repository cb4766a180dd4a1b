package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

func basicAuth(credentials BasicAuth, next http.Handler) http.Handler {
	expectedUsername := sha256.Sum256([]byte(credentials.Username))
	expectedPassword := sha256.Sum256([]byte(credentials.Password))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if ok {
			usernameHash := sha256.Sum256([]byte(username))
			passwordHash := sha256.Sum256([]byte(password))

			usernameMatch := subtle.ConstantTimeCompare(usernameHash[:], expectedUsername[:]) == 1
			passwordMatch := subtle.ConstantTimeCompare(passwordHash[:], expectedPassword[:]) == 1

			if usernameMatch && passwordMatch {
				next.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="metrics", charset="UTF-8"`)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	})
}

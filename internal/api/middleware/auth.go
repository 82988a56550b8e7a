package middleware

import (
	"net/http"

	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/utils"
	"github.com/sirupsen/logrus"
)

// Auth verifies the bearer token and stores the caller's identity in the
// request context.
func Auth(tokens *identity.Service, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, err := identity.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				utils.WriteError(w, log, err)
				return
			}
			id, err := tokens.Verify(token)
			if err != nil {
				utils.WriteError(w, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	tokens := identity.NewService("test-secret")
	log, _ := test.NewNullLogger()

	var seen identity.Identity
	h := Auth(tokens, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.FromContext(r.Context())
		require.NoError(t, err)
		seen = id
	}))

	token, err := tokens.Issue(identity.Identity{UserID: 4, HashedEmail: "h"})
	require.NoError(t, err)

	for _, tc := range []struct {
		header string
		status int
		body   string
	}{
		{"", http.StatusUnauthorized, `{"error":"missing token"}`},
		{"Token " + token, http.StatusUnauthorized, `{"error":"missing token"}`},
		{"Bearer nope", http.StatusUnauthorized, `{"error":"invalid token"}`},
		{"Bearer " + token, http.StatusOK, ""},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, tc.header)
		if tc.body != "" {
			assert.JSONEq(t, tc.body, rec.Body.String())
		}
	}
	assert.Equal(t, uint(4), seen.UserID)
}

func TestLoggerRecordsStatus(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, http.StatusTeapot, hook.LastEntry().Data["status"])
	assert.Equal(t, "/health", hook.LastEntry().Data["path"])
}

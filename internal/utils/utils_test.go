package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeShapes(t *testing.T) {
	party := regexp.MustCompile(`^[A-Z]{6}$`)
	group := regexp.MustCompile(`^[A-Z0-9]{4}$`)
	for i := 0; i < 200; i++ {
		p, err := NewPartyCode()
		require.NoError(t, err)
		assert.Regexp(t, party, p)

		g, err := NewGroupCode()
		require.NoError(t, err)
		assert.Regexp(t, group, g)
	}
}

func TestWriteErrorMasksInternalErrors(t *testing.T) {
	log, hook := test.NewNullLogger()

	rec := httptest.NewRecorder()
	WriteError(rec, log, apperr.Internal(errors.New("pq: connection refused"), "database error"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Error)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	rec = httptest.NewRecorder()
	WriteError(rec, log, apperr.NotFound("group not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "group not found", body.Error)
	assert.Len(t, hook.Entries, 1)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	err := DecodeJSON(req, &dst)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "a", dst.Name)
}

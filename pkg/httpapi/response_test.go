package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/pkg/httpapi"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", serrors.Validation("EMPTY_NAME", "name is required"), http.StatusBadRequest},
		{"conflict surfaces as 400", serrors.Conflict("DUP", "already exists"), http.StatusBadRequest},
		{"not found", serrors.NotFound("SOP_NOT_FOUND", "sop not found"), http.StatusNotFound},
		{"unauthorized", serrors.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", serrors.ErrForbidden, http.StatusForbidden},
		{"invalid identity", serrors.ErrInvalidIdentity, http.StatusForbidden},
		{"wrapped keeps kind", errors.Wrap(serrors.NotFound("X", "x"), "loading"), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, httpapi.StatusOf(tc.err))
		})
	}
}

func TestError_DoesNotLeakUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	httpapi.Error(rec, errors.New("pq: secret internal detail"))

	var env httpapi.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	assert.False(t, env.IsSuccess)
	assert.Equal(t, "internal server error", env.ErrorMessage)
}

func TestError_SurfacesCodedMessageVerbatim(t *testing.T) {
	rec := httptest.NewRecorder()
	httpapi.Error(rec, serrors.Validation("WEAK_PASSWORD", "Password does not meet the configured policy"))

	var env httpapi.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	assert.Equal(t, "Password does not meet the configured policy", env.ErrorMessage)
}

func TestOk(t *testing.T) {
	rec := httptest.NewRecorder()
	httpapi.Ok(rec, map[string]string{"id": "1"}, "done")

	var env httpapi.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.IsSuccess)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.Equal(t, "done", env.SuccessMessage)
}

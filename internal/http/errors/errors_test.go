package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailCopies(t *testing.T) {
	e := ErrBadRequest.WithDetail("state")
	assert.Equal(t, "state", e.Detail)
	assert.Empty(t, ErrBadRequest.Detail)
}

func TestFromError(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", ErrNotFound)
	assert.Same(t, ErrNotFound, FromError(wrapped))

	cause := stderrors.New("boom")
	got := FromError(cause)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.ErrorIs(t, got, cause)
}

func TestWriteErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrBadGateway.WithCause(stderrors.New("upstream said 500: secret body")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UPSTREAM_ERROR", body["code"])
	assert.NotContains(t, rec.Body.String(), "secret body")
}

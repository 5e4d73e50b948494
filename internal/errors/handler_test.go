package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capitalforge/internal/ingest"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.Default(), false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleErrorAPIError(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/abc", nil)

	h.HandleError(rec, req, ErrSnapshotNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "SNAPSHOT_NOT_FOUND", body["error_code"])
	assert.Equal(t, "/api/snapshots/abc", body["instance"])
}

func TestHandleErrorFileRead(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", nil)

	err := fmt.Errorf("decoding upload: %w", &ingest.FileReadError{Format: "csv", Err: fmt.Errorf("bad quoting")})
	h.HandleError(rec, req, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeFileRead, body["type"])
	assert.Equal(t, "csv", body["format"])
}

func TestHandleErrorNoHeader(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", nil)

	h.HandleError(rec, req, &ingest.NoHeaderFoundError{Sheet: "Sheet1"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeNoHeader, body["type"])
	assert.Equal(t, "Sheet1", body["sheet"])
}

func TestHandleErrorUnknown(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	h.HandleError(rec, req, fmt.Errorf("something odd"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
}

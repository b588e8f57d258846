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

type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.errors = append(l.errors, msg) }

func TestNormalize(t *testing.T) {
	sentinel := stderrors.New("not in catalog")
	notFound := NewActivityNotFoundError("Chess Club", sentinel)

	t.Run("wrapped standard error is unwrapped", func(t *testing.T) {
		got := Normalize(fmt.Errorf("signup: %w", notFound))
		assert.Same(t, notFound, got)
		assert.True(t, stderrors.Is(got, sentinel))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := Normalize(stderrors.New("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.Equal(t, "boom", got.Details)
	})
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeActivityNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrCodeValidationFailed))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeStorageFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus("SOMETHING_ELSE"))
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewStorageFailedError("append", stderrors.New("conn reset")))
	assert.True(t, IsCode(err, ErrCodeStorageFailed))
	assert.False(t, IsCode(err, ErrCodeActivityNotFound))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeStorageFailed))
}

func TestErrorHandler_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
		wantWarn   bool
	}{
		{
			name:       "activity not found",
			err:        NewActivityNotFoundError("Nonexistent Club", nil),
			wantStatus: http.StatusNotFound,
			wantDetail: "Activity not found",
			wantWarn:   true,
		},
		{
			name:       "validation",
			err:        NewValidationFailedError("email query parameter is required"),
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "email query parameter is required",
			wantWarn:   true,
		},
		{
			name:       "storage",
			err:        NewStorageFailedError("list", stderrors.New("dial tcp: refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "Activity storage unavailable",
		},
		{
			name:       "unexpected error hides details",
			err:        stderrors.New("secret connection string"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			h := NewErrorHandler(log)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/activities/x/signup", nil)
			stdErr := h.HandleHTTPError(rec, req, tt.err)
			require.NotNil(t, stdErr)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDetail, body.Detail)

			if tt.wantWarn {
				assert.Len(t, log.warns, 1)
				assert.Empty(t, log.errors)
			} else {
				assert.Len(t, log.errors, 1)
				assert.Empty(t, log.warns)
			}
		})
	}
}

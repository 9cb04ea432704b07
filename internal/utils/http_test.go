package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.NewValidationError("sale_price", "must not be negative"), http.StatusUnprocessableEntity},
		{"wrapped not found", fmt.Errorf("failed to load: %w", domain.ErrNotFound), http.StatusNotFound},
		{"partial", domain.ErrPartialAnalysis, http.StatusConflict},
		{"other", fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err, "Failed to save", zerolog.Nop())
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestWriteError_ValidationBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, domain.NewValidationError("down_payment_percent", "must be a fraction between 0 and 1"), "x", zerolog.Nop())

	var body struct {
		Error  string              `json:"error"`
		Fields []domain.FieldError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "down_payment_percent", body.Fields[0].Field)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader("{not json"))
	var v map[string]interface{}
	err := DecodeJSON(r, &v)
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "body", ve.Errors[0].Field)
}

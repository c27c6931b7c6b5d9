package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStreamRequest(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := ValidateStreamRequest(testHandler)

	tests := []struct {
		name           string
		queryString    string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid datastar parameter",
			queryString:    "datastar=" + url.QueryEscape(`{"status":"waiting"}`),
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
		},
		{
			name:           "no parameters",
			queryString:    "",
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
		},
		{
			name:           "invalid parameter",
			queryString:    "invalid=test",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid parameter",
		},
		{
			name:           "valid and invalid parameters mixed",
			queryString:    "datastar=" + url.QueryEscape(`{"status":"waiting"}`) + "&invalid=test",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid parameter",
		},
		{
			name:           "datastar parameter too large",
			queryString:    "datastar=" + strings.Repeat("a", 8193),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Datastar state too large",
		},
		{
			name:           "query string too large",
			queryString:    "datastar=" + strings.Repeat("a", 10001),
			expectedStatus: http.StatusRequestURITooLong,
			expectedBody:   "Query string too large",
		},
		{
			name:           "multiple datastar values",
			queryString:    "datastar=value1&datastar=value2",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid datastar parameter",
		},
		{
			name:           "malformed query string",
			queryString:    "datastar=%",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid query parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/sse/rooms/r1?"+tt.queryString, nil)
			w := httptest.NewRecorder()

			handler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestValidateStreamRequestSignals(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := ValidateStreamRequest(testHandler)

	t.Run("empty datastar parameter", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sse/rooms/r1?datastar=", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("a full client state echo passes", func(t *testing.T) {
		stateJSON := `{"status":"in-game","scoreboard":[],"secondsLeft":42,"image":"","word":"","roundNumber":3,"drawer":"Pixel","lastGuess":null,"endReason":""}`
		req := httptest.NewRequest("GET", "/sse/rooms/r1?datastar="+url.QueryEscape(stateJSON), nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown signal names are rejected", func(t *testing.T) {
		injected := `{"status":"waiting","maliciousSignal":"hack"}`
		req := httptest.NewRequest("GET", "/sse/rooms/r1?datastar="+url.QueryEscape(injected), nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid signal in datastar")
	})

	t.Run("invalid JSON is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sse/rooms/r1?datastar=%7Binvalid%20json", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid datastar JSON")
	})
}

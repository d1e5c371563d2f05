package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouter_HealthEndpoint(t *testing.T) {
	router := newRouter(context.Background(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestNewRouter_WebhookAnalyze_Accepted(t *testing.T) {
	// With a nil pipeline the goroutine returns without analyzing.
	router := newRouter(context.Background(), nil)

	payload, _ := json.Marshal(map[string]string{"document": "Deal Name: Test Deal"})
	req := httptest.NewRequest(http.MethodPost, "/webhook/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp["status"])

	// Give the goroutine time to execute the nil check path.
	time.Sleep(10 * time.Millisecond)
}

func TestNewRouter_WebhookAnalyze_MissingDocument(t *testing.T) {
	router := newRouter(context.Background(), nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/analyze", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "document is required")
}

func TestNewRouter_WebhookAnalyze_InvalidJSON(t *testing.T) {
	router := newRouter(context.Background(), nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/analyze", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := newRouter(context.Background(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/webhook/analyze", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

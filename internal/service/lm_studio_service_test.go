package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fadilmartias/invest-analyzer/internal/invest"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lmStudioFor(srv *httptest.Server) *LMStudioService {
	return &LMStudioService{
		BaseURL: srv.URL,
		Model:   "openai/gpt-oss-20b",
		client:  resty.New().SetBaseURL(srv.URL),
	}
}

func TestCompleteReturnsAssistantText(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	svc := lmStudioFor(srv)
	text, err := svc.Complete(context.Background(), "evalúa esta historia", invest.CompleteOptions{
		Temperature: 0.3,
		MaxTokens:   800,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	assert.Equal(t, "openai/gpt-oss-20b", gotBody["model"])
	assert.EqualValues(t, 0.3, gotBody["temperature"])
}

func TestCompleteTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	svc := lmStudioFor(srv)
	_, err := svc.Complete(context.Background(), "hola", invest.CompleteOptions{Timeout: 50 * time.Millisecond})
	assert.ErrorIs(t, err, invest.ErrTimeout)
}

func TestCompleteUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := lmStudioFor(srv)
	_, err := svc.Complete(context.Background(), "hola", invest.CompleteOptions{})
	assert.ErrorIs(t, err, invest.ErrUnreachable)
}

func TestCompleteNon200IsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := lmStudioFor(srv)
	_, err := svc.Complete(context.Background(), "hola", invest.CompleteOptions{})
	assert.ErrorIs(t, err, invest.ErrUnreachable)
}

func TestCompleteEmptyContentIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	svc := lmStudioFor(srv)
	_, err := svc.Complete(context.Background(), "hola", invest.CompleteOptions{})
	assert.ErrorIs(t, err, invest.ErrMalformedResponse)
}

func TestConnectKeepsConfiguredModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"otro-modelo"},{"id":"openai/gpt-oss-20b"}]}`))
	}))
	defer srv.Close()

	svc := lmStudioFor(srv)
	model, err := svc.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-oss-20b", model)
}

func TestConnectFallsBackToLoadedModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"qwen2.5-7b-instruct"}]}`))
	}))
	defer srv.Close()

	svc := lmStudioFor(srv)
	model, err := svc.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5-7b-instruct", model)
	assert.Equal(t, "qwen2.5-7b-instruct", svc.Model)
}

func TestConnectUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := lmStudioFor(srv)
	_, err := svc.Connect(context.Background())
	assert.ErrorIs(t, err, invest.ErrUnreachable)
}

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlerag/internal/domain"
)

const keyEnv = "ARTICLERAG_TEST_CHAT_KEY"

var passages = []domain.Passage{
	{ID: 4, Text: "Le Mali a rompu avec Paris.", Title: "Sahel", Author: "A. Dupont", Date: "mars 2023"},
	{ID: 9, Text: "Les prix du pétrole montent.", Title: "Énergie"},
}

func newTestClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	t.Setenv(keyEnv, "sk-chat")
	c, err := NewClient(Config{BaseURL: url, APIKeyEnv: keyEnv, Model: "gpt-test", MaxRetries: retries})
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv(keyEnv, "")
	_, err := NewClient(Config{APIKeyEnv: keyEnv})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestPrompt_PassagesInOrder(t *testing.T) {
	p := Prompt("Pourquoi ?", passages)

	first := strings.Index(p, "[1] Sahel / A. Dupont (mars 2023)")
	second := strings.Index(p, "[2] Énergie\n")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.True(t, strings.HasSuffix(p, "Question: Pourquoi ?\n"))
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-chat", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "Le Mali a rompu avec Paris.")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Parce que.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	answer, err := newTestClient(t, srv.URL, 0).Generate(context.Background(), "Pourquoi ?", passages)
	require.NoError(t, err)
	assert.Equal(t, "Parce que.", answer)
}

func TestGenerate_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	answer, err := newTestClient(t, srv.URL, 1).Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad request", http.StatusBadRequest, `{"error":"context too long"}`, "context too long"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"garbage", http.StatusOK, `not json`, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, 2).Generate(context.Background(), "q", passages)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

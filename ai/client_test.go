package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(ClientConfig{})
	assert.Error(t, err)
}

func TestOpenAIClientComplete(t *testing.T) {
	t.Run("sends bearer token and JSON response format", func(t *testing.T) {
		var got openAIRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
		}))
		defer srv.Close()

		c, err := NewOpenAIClient(ClientConfig{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "test-model"})
		require.NoError(t, err)

		out, err := c.Complete(context.Background(), CompletionRequest{
			Messages:  []ChatMessage{{Role: "user", Content: "hi"}},
			JSON:      true,
			MaxTokens: 100,
		})
		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, out)
		assert.Equal(t, "test-model", got.Model)
		require.NotNil(t, got.ResponseFormat)
		assert.Equal(t, "json_object", got.ResponseFormat.Type)
		assert.Equal(t, 100, got.MaxTokens)
	})

	t.Run("plain request omits response format", func(t *testing.T) {
		var raw map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
		}))
		defer srv.Close()

		c, err := NewOpenAIClient(ClientConfig{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)
		out, err := c.Complete(context.Background(), CompletionRequest{Messages: []ChatMessage{{Role: "user", Content: "hi"}}})
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
		assert.NotContains(t, raw, "response_format")
		assert.Equal(t, defaultModel, raw["model"])
	})

	t.Run("API error message is surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
		}))
		defer srv.Close()

		c, err := NewOpenAIClient(ClientConfig{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)
		_, err = c.Complete(context.Background(), CompletionRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		c, err := NewOpenAIClient(ClientConfig{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)
		_, err = c.Complete(context.Background(), CompletionRequest{})
		assert.Error(t, err)
	})

	t.Run("timeout is enforced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		c, err := NewOpenAIClient(ClientConfig{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)
		_, err = c.Complete(context.Background(), CompletionRequest{})
		assert.Error(t, err)
	})
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GroqClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:      "gsk_test",
		BaseURL:     server.URL,
		Model:       "llama3-8b-8192",
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	return client
}

func TestChatCompletion(t *testing.T) {
	var gotReq map[string]interface{}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"The mean revenue is 1090.25."}}]}`))
	})

	answer, err := client.ChatCompletion(context.Background(), "You analyze data.", "What is the mean revenue?")
	require.NoError(t, err)
	assert.Equal(t, "The mean revenue is 1090.25.", answer)

	assert.Equal(t, "llama3-8b-8192", gotReq["model"])
	assert.InDelta(t, 0.7, gotReq["temperature"].(float64), 1e-9)
	assert.InDelta(t, 1024, gotReq["max_tokens"].(float64), 1e-9)

	messages := gotReq["messages"].([]interface{})
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You analyze data.", first["content"])
}

func TestChatCompletion_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key"}}`))
	})

	_, err := client.ChatCompletion(context.Background(), "sys", "question")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}

func TestChatCompletion_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	})

	_, err := client.ChatCompletion(context.Background(), "sys", "question")
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.ChatCompletion(context.Background(), "sys", "question")
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(Config{Model: "llama3-8b-8192"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestChatCompletion_MissingModel(t *testing.T) {
	client, err := NewClient(Config{APIKey: "gsk_test"})
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), "sys", "question")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

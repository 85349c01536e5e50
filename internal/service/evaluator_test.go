package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeshin_backend/internal/config"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvaluation_ValidJSON(t *testing.T) {
	ev, err := ParseEvaluation(`{"Passed":"Yes","Feedback":"Nice work","Ratings of related topics":{"arrays":80,"hash table":140},"score":85}`)
	require.NoError(t, err)

	assert.True(t, ev.Passed)
	assert.Equal(t, "Nice work", ev.Feedback)
	assert.Equal(t, map[string]float64{"arrays": 80, "hash table": 100}, ev.Ratings)
	require.NotNil(t, ev.Score)
	assert.Equal(t, 85.0, *ev.Score)
}

func TestParseEvaluation_RepairsBraces(t *testing.T) {
	cases := map[string]string{
		"surrounding text": "Here is the result:\n```json\n{\"Passed\":\"No\",\"Feedback\":\"ok\",\"Ratings of related topics\":{\"arrays\":30},\"score\":30}\n```",
		"missing closing":  `{"Passed":"No","Feedback":"ok","Ratings of related topics":{"arrays":30},"score":30`,
		"missing inner":    `{"Passed":"No","Feedback":"ok","Ratings of related topics":{"arrays":30,"score":30}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			ev, err := ParseEvaluation(reply)
			require.NoError(t, err)
			assert.False(t, ev.Passed)
			assert.Equal(t, 30.0, ev.Ratings["arrays"])
		})
	}
}

func TestParseEvaluation_Invalid(t *testing.T) {
	_, err := ParseEvaluation("I cannot grade this.")
	assert.ErrorIs(t, err, ErrInvalidEvaluation)

	_, err = ParseEvaluation(`{"Passed": Yes}`)
	assert.ErrorIs(t, err, ErrInvalidEvaluation)
}

func TestBalanceBraces(t *testing.T) {
	assert.Equal(t, `{"a":{"b":1}}`, balanceBraces(`{"a":{"b":1}`))
	assert.Equal(t, `{{"a":1}}`, balanceBraces(`{"a":1}}`))
	assert.Equal(t, `{}`, balanceBraces(`{}`))
}

func TestStaticEvaluator(t *testing.T) {
	e := NewStaticEvaluator(60)

	ev, err := e.Evaluate(context.Background(), Submission{Code: "return 1", Topics: []string{"arrays", "graphs"}})
	require.NoError(t, err)
	assert.True(t, ev.Passed)
	assert.Equal(t, map[string]float64{"arrays": 60, "graphs": 60}, ev.Ratings)

	ev, err = e.Evaluate(context.Background(), Submission{Code: "  ", Topics: []string{"arrays"}})
	require.NoError(t, err)
	assert.False(t, ev.Passed)
	assert.Equal(t, 0.0, ev.Ratings["arrays"])
	assert.Equal(t, 0.0, *ev.Score)
}

func newTestOpenAIEvaluator(t *testing.T, handler http.HandlerFunc) *OpenAIEvaluator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = server.URL + "/v1"
	return newOpenAIEvaluator(openai.NewClientWithConfig(clientCfg), "gpt-4o-mini", 5*time.Second)
}

func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
}

func TestOpenAIEvaluator_Evaluate(t *testing.T) {
	var prompt string
	e := newTestOpenAIEvaluator(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req openai.ChatCompletionRequest
		json.Unmarshal(body, &req)
		if len(req.Messages) > 0 {
			prompt = req.Messages[0].Content
		}
		chatReply(w, `{"Passed":"Yes","Feedback":"Good","Ratings of related topics":{"arrays":75},"score":70}`)
	})

	ev, err := e.Evaluate(context.Background(), Submission{
		ProblemTitle: "Two Sum",
		Code:         "def two_sum(): pass",
		Topics:       []string{"arrays", "hash table"},
	})
	require.NoError(t, err)
	assert.True(t, ev.Passed)
	assert.Equal(t, 75.0, ev.Ratings["arrays"])
	assert.True(t, strings.Contains(prompt, "Two Sum"))
	assert.True(t, strings.Contains(prompt, "arrays, hash table"))
}

func TestOpenAIEvaluator_ServerError(t *testing.T) {
	e := newTestOpenAIEvaluator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "boom", "type": "server_error"},
		})
	})

	_, err := e.Evaluate(context.Background(), Submission{Code: "x"})
	assert.ErrorIs(t, err, ErrEvaluatorUnavailable)
}

func TestOpenAIEvaluator_UnparseableReply(t *testing.T) {
	e := newTestOpenAIEvaluator(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, "Sorry, I cannot help with that.")
	})

	_, err := e.Evaluate(context.Background(), Submission{Code: "x"})
	assert.ErrorIs(t, err, ErrInvalidEvaluation)
}

func TestNewOpenAIEvaluator_RequiresKey(t *testing.T) {
	_, err := NewOpenAIEvaluator(config.AIConfig{Model: "gpt-4o-mini"})
	assert.Error(t, err)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeshin_backend/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

const evaluationPrompt = `You are an experienced programming mentor. Review the student's solution the way a
patient teacher would in a one-to-one session: acknowledge what they did well, suggest concrete
improvements without giving away the answer, and point out what to study next.

Score the solution from 0 to 100:
- 0-20: does not run or is far from a correct solution
- 21-40: right idea with major defects
- 41-60: solves the problem with room to improve efficiency or style
- 61-80: efficient and well written
- 81-100: excellent, optimal and clear
An empty submission scores 0.

Rate the student's mastery of EVERY related topic listed below from 0 to 100, each exactly once.

Reply with valid JSON only, no extra text:
{
  "Passed": "Yes" or "No",
  "Feedback": "your feedback to the student",
  "Ratings of related topics": {"<topic>": <integer 0-100>, ...},
  "score": <integer 0-100>
}

Problem: %s

%s

Student's solution:
%s

Related topics: %s`

// OpenAIEvaluator 通过 OpenAI 兼容接口评测代码
type OpenAIEvaluator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIEvaluator(cfg config.AIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai.api_key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return newOpenAIEvaluator(openai.NewClientWithConfig(clientCfg), cfg.Model, cfg.Timeout), nil
}

func newOpenAIEvaluator(client *openai.Client, model string, timeout time.Duration) *OpenAIEvaluator {
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIEvaluator{client: client, model: model, timeout: timeout}
}

func (e *OpenAIEvaluator) Evaluate(ctx context.Context, sub Submission) (*Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf(evaluationPrompt,
		sub.ProblemTitle,
		sub.ProblemDescription,
		sub.Code,
		strings.Join(sub.Topics, ", "),
	)
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: 2048,
		Temperature:         0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluatorUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrEvaluatorUnavailable)
	}
	return ParseEvaluation(resp.Choices[0].Message.Content)
}

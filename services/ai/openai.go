// Package aisvc relays prompts to a hosted OpenAI-compatible
// chat-completion endpoint.
package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core"
)

type (
	completionRequest struct {
		Model       string             `json:"model"`
		Messages    []core.ChatMessage `json:"messages"`
		MaxTokens   int                `json:"max_tokens,omitempty"`
		Temperature float64            `json:"temperature,omitempty"`
	}

	completionResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	openAIService struct {
		conf   core.AIConfig
		client *http.Client
	}
)

var _ core.CompletionService = (*openAIService)(nil)

func NewOpenAIService(conf *core.Config) *openAIService {
	return &openAIService{
		conf:   conf.AI,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (svc *openAIService) Complete(ctx context.Context, messages []core.ChatMessage) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       svc.conf.Model,
		Messages:    messages,
		MaxTokens:   svc.conf.MaxTokens,
		Temperature: svc.conf.Temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.conf.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+svc.conf.APIKey)

	res, err := svc.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling completion endpoint")
	}
	defer func() { _ = res.Body.Close() }()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return "", core.ErrAIRateLimited
	case res.StatusCode == http.StatusPaymentRequired:
		return "", core.ErrAIQuotaExceeded
	case res.StatusCode < 200 || res.StatusCode > 299:
		return "", &core.AIStatusError{StatusCode: res.StatusCode}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading completion response")
	}
	var cr completionResponse
	if err = json.Unmarshal(data, &cr); err != nil {
		return "", errors.Wrap(err, "decoding completion response")
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

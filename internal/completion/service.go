// Package completion issues single-message chat completions to an OpenAI compatible API.
package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/apperror"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/circuitbreak"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/config"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/prometheus"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type CompletionClient struct {
	Client         *openai.Client
	Model          string
	CircuitBreaker *gobreaker.CircuitBreaker[string]
}

// NewClient builds a client from config.Conf.
func NewClient() *CompletionClient {
	return NewClientWithOptions(
		config.Conf.OpenAIAPIKey,
		config.Conf.OpenAIBaseURL,
		config.Conf.OpenAIModel,
		time.Duration(config.Conf.OpenAITimeout)*time.Second,
	)
}

func NewClientWithOptions(apiKey, baseURL, model string, timeout time.Duration) *CompletionClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}

	client := openai.NewClient(opts...)

	return &CompletionClient{
		Client:         &client,
		Model:          model,
		CircuitBreaker: newCompletionCircuitBreaker(),
	}
}

func newCompletionCircuitBreaker() *gobreaker.CircuitBreaker[string] {
	settings := gobreaker.Settings{
		Name:     "CompletionClient",
		Interval: time.Duration(config.Conf.OpenAIIntervalCB) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.Conf.OpenAIConsecutiveFailuresCB
		},
		OnStateChange: func(name string, fromState, toState gobreaker.State) {
			logging.Logger.Info("Circuit state changed",
				zap.String("service", name),
				zap.String("from", fromState.String()),
				zap.String("to", toState.String()),
			)

			if toState == gobreaker.StateOpen {
				circuitbreak.TriggerError(circuitbreak.CompletionService)
			}
		},
		IsSuccessful: isBreakerSuccess,
	}

	return gobreaker.NewCircuitBreaker[string](settings)
}

// isBreakerSuccess keeps caller mistakes (4xx, empty answers, cancellation) from
// tripping the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, apperror.ErrEmptyCompletion) || errors.Is(err, context.Canceled) {
		return true
	}

	var upstreamErr *apperror.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode >= http.StatusBadRequest && upstreamErr.StatusCode < http.StatusInternalServerError
	}

	return false
}

// Complete sends prompt as the only user message and returns the trimmed content of
// the first choice. Failures are reported as *apperror.UpstreamError or
// apperror.ErrEmptyCompletion; the request is never retried.
func (completionClient *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := completionClient.CircuitBreaker.Execute(func() (string, error) {
		return completionClient.doCompletionRequest(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &apperror.UpstreamError{StatusCode: http.StatusServiceUnavailable, Err: err}
		}

		return "", err
	}

	return result, nil
}

func (completionClient *CompletionClient) doCompletionRequest(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		logging.Logger.Warn("[doCompletionRequest] Context already canceled before starting request",
			zap.Error(ctx.Err()),
		)

		return "", ctx.Err()
	}

	start := time.Now()

	resp, err := completionClient.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(completionClient.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})

	prometheus.CompletionLatency.WithLabelValues(completionClient.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		logging.Logger.Error("[doCompletionRequest] Completion request failed",
			zap.String("model", completionClient.Model),
			zap.String("error", err.Error()),
		)

		return "", toUpstreamError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperror.ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", apperror.ErrEmptyCompletion
	}

	return content, nil
}

func toUpstreamError(ctx context.Context, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &apperror.UpstreamError{StatusCode: apiErr.StatusCode, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &apperror.UpstreamError{StatusCode: http.StatusGatewayTimeout, Err: err}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	return &apperror.UpstreamError{StatusCode: http.StatusBadGateway, Err: err}
}

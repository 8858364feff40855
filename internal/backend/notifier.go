// Package backend notifies the external processing backend that a call needs to be
// processed again. Notifications are fire and forget.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type Notification struct {
	CallID string `json:"callId"`
}

type Notifier interface {
	Notify(ctx context.Context, callID string) error
}

type HTTPNotifier struct {
	Client *http.Client
	URL    string
	Token  string
}

func NewHTTPNotifier(url, token string) *HTTPNotifier {
	return &HTTPNotifier{
		Client: &http.Client{},
		URL:    url,
		Token:  token,
	}
}

// Notify posts the call id. The response status is not inspected.
func (httpNotifier *HTTPNotifier) Notify(ctx context.Context, callID string) error {
	body, err := json.Marshal(Notification{CallID: callID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, httpNotifier.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build processing request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if httpNotifier.Token != "" {
		req.Header.Set("Authorization", "Bearer "+httpNotifier.Token)
	}

	resp, err := httpNotifier.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call processing backend: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)

		err := resp.Body.Close()
		if err != nil {
			logging.Logger.Warn("[Notify] Failed to close response body", zap.String("error", err.Error()))
		}
	}()

	logging.Logger.Debug("[Notify] Processing backend responded",
		zap.String("call_id", callID),
		zap.Int("status", resp.StatusCode),
	)

	return nil
}

// MessageSender is satisfied by *kafka.Producer.
type MessageSender interface {
	SendMessage(topic string, key, value []byte) (int32, int64, error)
}

type KafkaNotifier struct {
	Sender MessageSender
	Topic  string
}

func NewKafkaNotifier(sender MessageSender, topic string) *KafkaNotifier {
	return &KafkaNotifier{Sender: sender, Topic: topic}
}

// Notify publishes the call id keyed by itself so that all requests for one call
// land on the same partition.
func (kafkaNotifier *KafkaNotifier) Notify(ctx context.Context, callID string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	body, err := json.Marshal(Notification{CallID: callID})
	if err != nil {
		return err
	}

	_, _, err = kafkaNotifier.Sender.SendMessage(kafkaNotifier.Topic, []byte(callID), body)
	if err != nil {
		return fmt.Errorf("failed to publish reprocess request: %w", err)
	}

	return nil
}

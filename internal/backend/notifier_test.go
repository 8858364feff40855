package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPNotifierPostsCallID(t *testing.T) {
	type captured struct {
		method string
		auth   string
		body   string
	}

	requests := make(chan captured, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- captured{method: r.Method, auth: r.Header.Get("Authorization"), body: string(body)}

		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewHTTPNotifier(server.URL, "secret").Notify(context.Background(), "c1")
	require.NoError(t, err)

	got := <-requests
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "Bearer secret", got.auth)
	require.JSONEq(t, `{"callId":"c1"}`, got.body)
}

func TestHTTPNotifierTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewHTTPNotifier(url, "").Notify(context.Background(), "c1")
	require.Error(t, err)
}

type fakeSender struct {
	topic string
	key   string
	value string
	err   error
}

func (f *fakeSender) SendMessage(topic string, key, value []byte) (int32, int64, error) {
	f.topic = topic
	f.key = string(key)
	f.value = string(value)

	return 0, 1, f.err
}

func TestKafkaNotifierPublishesKeyedMessage(t *testing.T) {
	sender := &fakeSender{}

	err := NewKafkaNotifier(sender, "call-reprocess").Notify(context.Background(), "c1")
	require.NoError(t, err)

	require.Equal(t, "call-reprocess", sender.topic)
	require.Equal(t, "c1", sender.key)
	require.JSONEq(t, `{"callId":"c1"}`, sender.value)
}

func TestKafkaNotifierWrapsSendError(t *testing.T) {
	errBroker := errors.New("broker unavailable")

	err := NewKafkaNotifier(&fakeSender{err: errBroker}, "call-reprocess").Notify(context.Background(), "c1")
	require.ErrorIs(t, err, errBroker)
}

type recordingNotifier struct {
	calls chan string
	ctxs  chan context.Context
}

func (r *recordingNotifier) Notify(ctx context.Context, callID string) error {
	r.ctxs <- ctx
	r.calls <- callID

	return nil
}

func TestDispatcherRunsDetachedFromRequest(t *testing.T) {
	notifier := &recordingNotifier{calls: make(chan string, 1), ctxs: make(chan context.Context, 1)}

	dispatcher, err := NewDispatcher(notifier, "http", 1, time.Second)
	require.NoError(t, err)

	defer dispatcher.Release(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, dispatcher.Dispatch(ctx, "c1"))
	cancel()

	select {
	case callID := <-notifier.calls:
		require.Equal(t, "c1", callID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}

	notifyCtx := <-notifier.ctxs
	_, hasDeadline := notifyCtx.Deadline()
	require.True(t, hasDeadline)
}

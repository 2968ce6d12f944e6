package listener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/gearshare/internal/constants"
	"github.com/Alturino/gearshare/order/pkg/response"
)

func TestHandlePostsWebhook(t *testing.T) {
	var mu sync.Mutex
	received := []response.Event{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		event := response.Event{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	event := response.Event{Type: "order.created", OrderID: uuid.New(), To: "pending"}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	l := NewListener(nil, NewWebhook(srv.URL, time.Second))
	require.NoError(t, l.Handle(context.Background(), string(payload)))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, event.OrderID, received[0].OrderID)
}

func TestHandleWebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	l := NewListener(nil, NewWebhook(srv.URL, time.Second))
	assert.Error(t, l.Handle(context.Background(), `{"type":"order.created"}`))
}

func TestHandleRejectsGarbage(t *testing.T) {
	l := NewListener(nil, nil)
	assert.Error(t, l.Handle(context.Background(), "not json"))
	assert.NoError(t, l.Handle(context.Background(), `{"type":"order.created"}`))
}

func TestStartDrainsUntilClosed(t *testing.T) {
	hits := make(chan struct{}, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
	}))
	defer srv.Close()

	messages := make(chan *redis.Message, 2)
	messages <- &redis.Message{Channel: constants.ChannelOrderEvents, Payload: `{"type":"order.created"}`}
	messages <- &redis.Message{Channel: constants.ChannelOrderEvents, Payload: `{"type":"order.confirmed"}`}
	close(messages)

	done := make(chan struct{})
	go func() {
		NewListener(messages, NewWebhook(srv.URL, time.Second)).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop after channel closed")
	}
	assert.Len(t, hits, 2)
}

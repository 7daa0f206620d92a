package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Olprog59/go-crudstarter/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lokiPushRequest struct {
	Streams []struct {
		Stream map[string]string `json:"stream"`
		Values [][]string        `json:"values"`
	} `json:"streams"`
}

type lokiServer struct {
	*httptest.Server
	mu     sync.Mutex
	bodies [][]byte
}

func newLokiServer(t *testing.T) *lokiServer {
	t.Helper()
	s := &lokiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/push", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		s.mu.Lock()
		s.bodies = append(s.bodies, body)
		s.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *lokiServer) requests() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.bodies...)
}

// lines decodes every pushed log line in order
func (s *lokiServer) lines(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, body := range s.requests() {
		var req lokiPushRequest
		require.NoError(t, json.Unmarshal(body, &req))
		for _, stream := range req.Streams {
			for _, v := range stream.Values {
				require.Len(t, v, 2)
				var line map[string]any
				require.NoError(t, json.Unmarshal([]byte(v[1]), &line))
				out = append(out, line)
			}
		}
	}
	return out
}

func TestLokiHandler(t *testing.T) {
	server := newLokiServer(t)

	labels := map[string]string{"app": "test"}
	handler := logging.NewLokiHandler(server.URL, labels, 1, slog.LevelInfo)
	defer handler.Close()

	slog.New(handler).Info("hello, loki", "key", "value")
	require.NoError(t, handler.Close())

	bodies := server.requests()
	require.Len(t, bodies, 1)

	var pushReq lokiPushRequest
	require.NoError(t, json.Unmarshal(bodies[0], &pushReq))
	require.Len(t, pushReq.Streams, 1)
	stream := pushReq.Streams[0]

	assert.Equal(t, labels, stream.Stream)
	require.Len(t, stream.Values, 1)
	assert.NotEmpty(t, stream.Values[0][0])

	lines := server.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "hello, loki", lines[0]["msg"])
	assert.Equal(t, "value", lines[0]["key"])
}

func TestLokiHandler_Batching(t *testing.T) {
	server := newLokiServer(t)

	handler := logging.NewLokiHandler(server.URL, nil, 2, slog.LevelInfo)
	defer handler.Close()
	logger := slog.New(handler)

	logger.Info("message 1")
	assert.Empty(t, server.requests(), "first entry must stay in the batch")

	// the second entry fills the batch and flushes synchronously
	logger.Info("message 2")
	require.Len(t, server.requests(), 1)

	lines := server.lines(t)
	require.Len(t, lines, 2)
	assert.Equal(t, "message 1", lines[0]["msg"])
	assert.Equal(t, "message 2", lines[1]["msg"])
}

func TestLokiHandler_AttrsAndGroups(t *testing.T) {
	server := newLokiServer(t)

	handler := logging.NewLokiHandler(server.URL, nil, 10, slog.LevelInfo)
	logger := slog.New(handler).
		With("entity", "pizzas").
		WithGroup("store").
		With("op", "insert")

	logger.Error("write failed", "err", errors.New("disk full"), slog.Group("pool", "open", 3))
	require.NoError(t, handler.Close())

	lines := server.lines(t)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "pizzas", line["entity"])
	assert.Equal(t, "insert", line["store.op"])
	assert.Equal(t, "disk full", line["store.err"])
	assert.EqualValues(t, 3, line["store.pool.open"])
}

func TestLokiHandler_LevelFilter(t *testing.T) {
	server := newLokiServer(t)

	handler := logging.NewLokiHandler(server.URL, nil, 1, slog.LevelWarn)
	logger := slog.New(handler)

	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, handler.Close())

	lines := server.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
}

func TestLokiHandler_UnreachableServerDoesNotFail(t *testing.T) {
	server := newLokiServer(t)
	url := server.URL
	server.Close()

	handler := logging.NewLokiHandler(url, nil, 0, slog.LevelInfo)
	done := make(chan error, 1)
	go func() {
		done <- handler.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "lost", 0))
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Handle blocked on an unreachable server")
	}
	assert.NoError(t, handler.Close())
}

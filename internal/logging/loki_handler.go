package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const lokiFlushInterval = 5 * time.Second

// LokiHandler is a slog.Handler that pushes JSON lines to Loki over HTTP.
// Entries are batched and flushed when the batch is full, on a timer, and on Close.
// Handlers derived with WithAttrs or WithGroup share the same batch.
type LokiHandler struct {
	sink   *lokiSink
	level  slog.Leveler
	attrs  []slog.Attr // pre-resolved, keys already carry the group prefix
	prefix string      // group path, "a.b." form
}

type lokiSink struct {
	url       string
	labels    map[string]string
	client    *http.Client
	errOut    io.Writer
	batchSize int

	mu         sync.Mutex
	batch      []lokiEntry
	flushTimer *time.Timer
	closed     bool
}

type lokiEntry struct {
	timestamp time.Time
	line      string
}

type lokiPushRequest struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// NewLokiHandler creates a handler that sends logs to Loki / Crée un handler qui envoie les logs à Loki
// url: Loki base URL (e.g., "http://localhost:3100")
// labels: static stream labels (e.g., {"app": "go-crudstarter"})
// batchSize: entries per push, 0 sends every entry immediately
func NewLokiHandler(url string, labels map[string]string, batchSize int, level slog.Leveler) *LokiHandler {
	if labels == nil {
		labels = make(map[string]string)
	}
	if level == nil {
		level = slog.LevelInfo
	}

	sink := &lokiSink{
		url:       strings.TrimSuffix(url, "/") + "/loki/api/v1/push",
		labels:    labels,
		client:    &http.Client{Timeout: 5 * time.Second},
		errOut:    os.Stderr,
		batchSize: batchSize,
		batch:     make([]lokiEntry, 0, batchSize),
	}
	if batchSize > 0 {
		sink.flushTimer = time.AfterFunc(lokiFlushInterval, sink.periodicFlush)
	}

	return &LokiHandler{sink: sink, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *LokiHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle queues the record as one JSON line / Met l'entrée en file comme une ligne JSON
func (h *LokiHandler) Handle(_ context.Context, r slog.Record) error {
	logData := make(map[string]any, 3+len(h.attrs)+r.NumAttrs())
	logData["time"] = r.Time.Format(time.RFC3339Nano)
	logData["level"] = r.Level.String()
	logData["msg"] = r.Message

	for _, a := range h.attrs {
		logData[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(logData, h.prefix, a)
		return true
	})

	line, err := json.Marshal(logData)
	if err != nil {
		return fmt.Errorf("failed to marshal log to JSON: %w", err)
	}

	if h.sink.add(lokiEntry{timestamp: r.Time, line: string(line)}) {
		return h.sink.flush()
	}
	return nil
}

// WithAttrs returns a handler that adds attrs to every record / Retourne un handler qui ajoute attrs à chaque entrée
func (h *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	resolved := make(map[string]any, len(attrs))
	for _, a := range attrs {
		addAttr(resolved, h.prefix, a)
	}

	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(resolved))
	next.attrs = append(next.attrs, h.attrs...)
	for k, v := range resolved {
		next.attrs = append(next.attrs, slog.Any(k, v))
	}
	return &next
}

// WithGroup returns a handler that qualifies later keys with name / Retourne un handler qui préfixe les clés suivantes
func (h *LokiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// Close flushes pending entries and stops the timer / Vide les entrées en attente et arrête le timer
func (h *LokiHandler) Close() error {
	return h.sink.close()
}

// addAttr flattens groups into dotted keys
func addAttr(dst map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			addAttr(dst, p, ga)
		}
		return
	}
	if err, ok := a.Value.Any().(error); ok {
		dst[prefix+a.Key] = err.Error()
		return
	}
	dst[prefix+a.Key] = a.Value.Any()
}

// add appends an entry and reports whether the batch should be flushed now
func (s *lokiSink) add(e lokiEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = append(s.batch, e)
	return s.batchSize == 0 || len(s.batch) >= s.batchSize
}

// flush sends all batched logs to Loki
func (s *lokiSink) flush() error {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return nil
	}
	entries := make([]lokiEntry, len(s.batch))
	copy(entries, s.batch)
	s.batch = s.batch[:0]
	s.mu.Unlock()

	values := make([][]string, len(entries))
	for i, entry := range entries {
		// Loki expects [timestamp_in_nanoseconds, log_line]
		values[i] = []string{strconv.FormatInt(entry.timestamp.UnixNano(), 10), entry.line}
	}

	return s.push(lokiPushRequest{
		Streams: []lokiStream{{Stream: s.labels, Values: values}},
	})
}

// push never fails the caller when Loki is down; problems go to errOut
func (s *lokiSink) push(req lokiPushRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		fmt.Fprintf(s.errOut, "loki: push failed: %v\n", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		fmt.Fprintf(s.errOut, "loki: push rejected with %d: %s\n", resp.StatusCode, msg)
	}
	return nil
}

func (s *lokiSink) periodicFlush() {
	_ = s.flush()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && s.flushTimer != nil {
		s.flushTimer.Reset(lokiFlushInterval)
	}
}

func (s *lokiSink) close() error {
	s.mu.Lock()
	s.closed = true
	if s.flushTimer != nil {
		s.flushTimer.Stop()
	}
	s.mu.Unlock()
	return s.flush()
}

package logging

import (
	"context"
	"log/slog"
)

// multiHandler writes to both console and Loki.
type multiHandler struct {
	consoleHandler slog.Handler
	lokiHandler    slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.consoleHandler.Enabled(ctx, level) || h.lokiHandler.Enabled(ctx, level)
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.consoleHandler.Enabled(ctx, record.Level) {
		if err := h.consoleHandler.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	// Loki failures are reported by the handler itself
	if h.lokiHandler.Enabled(ctx, record.Level) {
		_ = h.lokiHandler.Handle(ctx, record)
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &multiHandler{
		consoleHandler: h.consoleHandler.WithAttrs(attrs),
		lokiHandler:    h.lokiHandler.WithAttrs(attrs),
	}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	return &multiHandler{
		consoleHandler: h.consoleHandler.WithGroup(name),
		lokiHandler:    h.lokiHandler.WithGroup(name),
	}
}

type ctxKey struct{}

// WithRequestID stores the request ID for later log records / Stocke l'ID de requête pour les logs suivants
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any / Retourne l'ID de requête du contexte
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// ContextHandler adds the request_id attribute to records logged with a request context.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps next / Enveloppe next
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: next}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

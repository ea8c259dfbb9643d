package logging

import (
	"context"
	"log/slog"
	"time"

	"msgboard/internal/domain/model"
)

// RequestIDKey is the attribute lifted into LogEntry.RequestID.
const RequestIDKey = "request_id"

// Sink accepts log entries without blocking the caller.
type Sink interface {
	Offer(entry model.LogEntry) bool
}

// TeeHandler hands every record to base and a copy of it to sink.
type TeeHandler struct {
	base   slog.Handler
	sink   Sink
	attrs  []slog.Attr
	prefix string
}

func NewTeeHandler(base slog.Handler, sink Sink) *TeeHandler {
	return &TeeHandler{base: base, sink: sink}
}

func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.base.Handle(ctx, r)

	entry := model.LogEntry{
		Timestamp: r.Time.UTC(),
		Level:     levelName(r.Level),
		Message:   r.Message,
	}
	attrs := map[string]any{}
	for _, a := range h.attrs {
		flatten(attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(attrs, h.prefix, a)
		return true
	})
	if id, ok := attrs[RequestIDKey].(string); ok {
		entry.RequestID = id
		delete(attrs, RequestIDKey)
	}
	if len(attrs) > 0 {
		entry.Attrs = attrs
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	h.sink.Offer(entry)
	return err
}

func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.base = h.base.WithAttrs(attrs)
	c.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *TeeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.base = h.base.WithGroup(name)
	c.prefix = h.prefix + name + "."
	return &c
}

func flatten(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			flatten(dst, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	switch v.Kind() {
	case slog.KindTime:
		dst[prefix+a.Key] = v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindDuration:
		dst[prefix+a.Key] = v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			dst[prefix+a.Key] = err.Error()
			return
		}
		dst[prefix+a.Key] = v.Any()
	default:
		dst[prefix+a.Key] = v.Any()
	}
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return model.LogLevelError
	case l >= slog.LevelWarn:
		return model.LogLevelWarn
	case l >= slog.LevelInfo:
		return model.LogLevelInfo
	default:
		return model.LogLevelDebug
	}
}

var _ slog.Handler = (*TeeHandler)(nil)

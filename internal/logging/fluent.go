package logging

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Poster is the part of *fluent.Fluent the handler needs
type Poster interface {
	Post(tag string, message interface{}) error
}

// FluentHandler is a slog.Handler that posts flat records to Fluent Bit.
// The tag is the lowercase level name; the client adds its prefix.
type FluentHandler struct {
	client   Poster
	minLevel slog.Level
	attrs    map[string]interface{}
	group    string
}

// NewFluentHandler creates a handler that drops records below minLevel
func NewFluentHandler(client Poster, minLevel slog.Level) *FluentHandler {
	return &FluentHandler{client: client, minLevel: minLevel, attrs: map[string]interface{}{}}
}

func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]interface{}, len(h.attrs)+r.NumAttrs()+3)
	for k, v := range h.attrs {
		data[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(data, h.group, a)
		return true
	})

	level := strings.ToLower(r.Level.String())
	data["level"] = level
	data["message"] = r.Message
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	data["timestamp"] = ts.UTC().Format(time.RFC3339Nano)

	return h.client.Post(level, data)
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		addAttr(next.attrs, h.group, a)
	}
	return next
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.group = joinKey(h.group, name)
	return next
}

func (h *FluentHandler) clone() *FluentHandler {
	attrs := make(map[string]interface{}, len(h.attrs))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	return &FluentHandler{client: h.client, minLevel: h.minLevel, attrs: attrs, group: h.group}
}

// addAttr flattens groups into dotted keys
func addAttr(data map[string]interface{}, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			addAttr(data, joinKey(prefix, a.Key), ga)
		}
		return
	}
	if a.Key == "" {
		return
	}

	key := joinKey(prefix, a.Key)
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			data[key] = err.Error()
			return
		}
		data[key] = v.Any()
	case slog.KindDuration:
		data[key] = v.Duration().String()
	case slog.KindTime:
		data[key] = v.Time().UTC().Format(time.RFC3339Nano)
	default:
		data[key] = v.Any()
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}

package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/funcraft/mcauth/internals/merrors"
)

// sensitiveKeys are attribute keys whose values are never written
var sensitiveKeys = map[string]bool{
	"access_token":   true,
	"accesstoken":    true,
	"refresh_token":  true,
	"refreshtoken":   true,
	"token":          true,
	"device_code":    true,
	"identity_token": true,
	"identitytoken":  true,
	"authorization":  true,
	"rps_ticket":     true,
	"xbl_token":      true,
	"xsts_token":     true,
	"body":           true,
}

// RedactHandler masks token material before records reach the wrapped handler
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler wraps h
func NewRedactHandler(h slog.Handler) *RedactHandler {
	return &RedactHandler{handler: h}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, merrors.RedactTokens(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(clean)}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, merrors.Redacted)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		clean := make([]any, len(group))
		for i, ga := range group {
			clean[i] = redactAttr(ga)
		}
		return slog.Group(a.Key, clean...)
	case slog.KindString:
		return slog.String(a.Key, merrors.RedactTokens(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, merrors.RedactTokens(err.Error()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
)

// SuppressFilter drops records matching any configured pattern. It sits at
// the handler boundary so callers never need to know what is filtered.
type SuppressFilter struct {
	patterns  atomic.Pointer[[]string]
	dropCount atomic.Uint64
}

func NewSuppressFilter(patterns []string) *SuppressFilter {
	f := &SuppressFilter{}
	f.SetPatterns(patterns)
	return f
}

// SetPatterns replaces the pattern list. Empty patterns are ignored.
func (f *SuppressFilter) SetPatterns(patterns []string) {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			lowered = append(lowered, strings.ToLower(p))
		}
	}
	f.patterns.Store(&lowered)
}

func (f *SuppressFilter) Patterns() []string {
	return append([]string(nil), *f.patterns.Load()...)
}

// Dropped is the number of records suppressed so far.
func (f *SuppressFilter) Dropped() uint64 {
	return f.dropCount.Load()
}

// Matches reports whether text contains any pattern.
func (f *SuppressFilter) Matches(text string) bool {
	patterns := *f.patterns.Load()
	if len(patterns) == 0 || text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Wrap returns a handler that consults the filter before delegating.
func (f *SuppressFilter) Wrap(next slog.Handler) slog.Handler {
	return &filterHandler{next: next, filter: f}
}

type filterHandler struct {
	next   slog.Handler
	filter *SuppressFilter
}

func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *filterHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.filter.Matches(r.Message) {
		h.filter.dropCount.Add(1)
		return nil
	}
	suppressed := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Value.Kind() == slog.KindString && h.filter.Matches(a.Value.String()) {
			suppressed = true
			return false
		}
		return true
	})
	if suppressed {
		h.filter.dropCount.Add(1)
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filterHandler{next: h.next.WithAttrs(attrs), filter: h.filter}
}

func (h *filterHandler) WithGroup(name string) slog.Handler {
	return &filterHandler{next: h.next.WithGroup(name), filter: h.filter}
}

package pos

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志；Enabled 返回 false，调用方不会格式化消息。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger 设置 pos 使用的日志。默认不输出任何日志；传入 nil 恢复默认。
//
// 使用的级别：
//   - [slog.LevelDebug]: 测量高度、页数等排版诊断
//   - [slog.LevelWarn]: 可恢复的问题（logo 缺失、字体回退）
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志，可并发调用。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// forwardHandler 每次调用都转发给当前的 Logger()，使之后的 SetLogger 对已创建的渲染器同样生效。
type forwardHandler struct {
	wrap func(slog.Handler) slog.Handler
}

func (h forwardHandler) current() slog.Handler {
	hd := Logger().Handler()
	if h.wrap != nil {
		hd = h.wrap(hd)
	}
	return hd
}

func (h forwardHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.current().Enabled(ctx, level)
}

func (h forwardHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

func (h forwardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.then(func(hd slog.Handler) slog.Handler { return hd.WithAttrs(attrs) })
}

func (h forwardHandler) WithGroup(name string) slog.Handler {
	return h.then(func(hd slog.Handler) slog.Handler { return hd.WithGroup(name) })
}

func (h forwardHandler) then(next func(slog.Handler) slog.Handler) forwardHandler {
	prev := h.wrap
	return forwardHandler{wrap: func(hd slog.Handler) slog.Handler {
		if prev != nil {
			hd = prev(hd)
		}
		return next(hd)
	}}
}

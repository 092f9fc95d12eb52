// Package slogsink forwards log/slog records to log2sql in the Python
// logging.LogRecord shape the store expects.
package slogsink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jacobmartinez3d/log2sql/pkg/clock"
)

// Submitter receives one converted record per slog call.
type Submitter interface {
	Submit(ctx context.Context, record map[string]any, username string) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, record map[string]any, username string) error

func (f SubmitterFunc) Submit(ctx context.Context, record map[string]any, username string) error {
	return f(ctx, record, username)
}

// Options configures a Handler.
type Options struct {
	// Level is the minimum level forwarded. Defaults to slog.LevelInfo.
	Level slog.Leveler
	// Name fills the logger name column. Defaults to "root".
	Name string
	// AddSource fills pathname, filename, module, funcName and lineno.
	AddSource bool
	// Clock is used for relativeCreated. Defaults to the wall clock.
	Clock clock.Clock
}

// Handler is a slog.Handler that submits every enabled record for one user.
type Handler struct {
	submitter Submitter
	username  string
	opts      Options
	start     time.Time
	process   int
	procName  string

	attrs  []slog.Attr
	groups []string
}

// NewHandler creates a handler submitting records as username.
func NewHandler(submitter Submitter, username string, opts *Options) *Handler {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Level == nil {
		o.Level = slog.LevelInfo
	}
	if o.Name == "" {
		o.Name = "root"
	}
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	return &Handler{
		submitter: submitter,
		username:  username,
		opts:      o,
		start:     o.Clock.Now(),
		process:   os.Getpid(),
		procName:  filepath.Base(os.Args[0]),
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	created := r.Time
	if created.IsZero() {
		created = h.opts.Clock.Now()
	}

	record := map[string]any{
		"levelno":         LevelNo(r.Level),
		"levelname":       LevelName(r.Level),
		"msg":             r.Message,
		"created":         clock.EpochSeconds(created),
		"msecs":           float64(created.Nanosecond()/int(time.Microsecond)) / 1000,
		"relativeCreated": float64(created.Sub(h.start).Microseconds()) / 1000,
		"name":            h.opts.Name,
		"process":         h.process,
		"processName":     h.procName,
	}

	if h.opts.AddSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		file := filepath.Base(f.File)
		record["pathname"] = f.File
		record["filename"] = file
		record["module"] = strings.TrimSuffix(file, filepath.Ext(file))
		record["funcName"] = shortFuncName(f.Function)
		record["lineno"] = f.Line
	}

	args := make(map[string]any)
	for _, a := range h.attrs {
		addAttr(args, a)
	}
	target := args
	for _, g := range h.groups {
		next, ok := target[g].(map[string]any)
		if !ok {
			next = make(map[string]any)
			target[g] = next
		}
		target = next
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(target, a)
		return true
	})
	pruneEmpty(args)
	if len(args) > 0 {
		record["args"] = args
	}

	return h.submitter.Submit(ctx, record, h.username)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.groups = append([]string{}, h.groups...)
	if len(h.groups) == 0 {
		h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
		return &h2
	}
	// Attributes added inside a group are nested under it.
	nested := slog.Attr{Key: h.groups[len(h.groups)-1], Value: slog.GroupValue(attrs...)}
	for i := len(h.groups) - 2; i >= 0; i-- {
		nested = slog.Attr{Key: h.groups[i], Value: slog.GroupValue(nested)}
	}
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), nested)
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}

// LevelNo maps a slog level onto the Python numeric scale: DEBUG 10, INFO 20,
// WARNING 30, ERROR 40, linear in between.
func LevelNo(l slog.Level) int {
	return 20 + int(l)*10/4
}

// LevelName returns the Python level name for l, or "Level N" when l does not
// fall on a named level.
func LevelName(l slog.Level) string {
	switch n := LevelNo(l); n {
	case 10:
		return "DEBUG"
	case 20:
		return "INFO"
	case 30:
		return "WARNING"
	case 40:
		return "ERROR"
	case 50:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Level %d", n)
	}
}

func addAttr(dst map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		if len(group) == 0 {
			return
		}
		target := dst
		if a.Key != "" {
			sub, ok := dst[a.Key].(map[string]any)
			if !ok {
				sub = make(map[string]any)
				dst[a.Key] = sub
			}
			target = sub
		}
		for _, ga := range group {
			addAttr(target, ga)
		}
	case slog.KindTime:
		dst[a.Key] = v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		dst[a.Key] = v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			dst[a.Key] = err.Error()
			return
		}
		dst[a.Key] = v.Any()
	default:
		dst[a.Key] = v.Any()
	}
}

func pruneEmpty(m map[string]any) {
	for k, v := range m {
		sub, ok := v.(map[string]any)
		if !ok {
			continue
		}
		pruneEmpty(sub)
		if len(sub) == 0 {
			delete(m, k)
		}
	}
}

func shortFuncName(fn string) string {
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.Index(fn, "."); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}

package logger

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"

	"github.com/fatih/color"
)

type CustomHandlerOpts struct {
	SlogOpts slog.HandlerOptions
}

// CustomHandler prints one colored line per record followed by the
// attributes as indented JSON.
type CustomHandler struct {
	opts  slog.HandlerOptions
	l     *log.Logger
	attrs []slog.Attr
	group string
}

func NewCustomHandler(out io.Writer, opts CustomHandlerOpts) *CustomHandler {
	return &CustomHandler{
		opts: opts.SlogOpts,
		l:    log.New(out, "", 0),
	}
}

func (ch *CustomHandler) Enabled(_ context.Context, l slog.Level) bool {
	min := slog.LevelInfo
	if ch.opts.Level != nil {
		min = ch.opts.Level.Level()
	}
	return l >= min
}

func (ch *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch r.Level {
	case slog.LevelDebug:
		level = color.WhiteString(level)
	case slog.LevelInfo:
		level = color.GreenString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	default:
		level = color.HiWhiteString(level)
	}
	timeStr := r.Time.Format("[15:04:05]")
	message := color.HiWhiteString(r.Message)

	if len(ch.attrs) == 0 && r.NumAttrs() == 0 {
		ch.l.Println(timeStr, level, message)
		return nil
	}
	fields := make(map[string]interface{}, len(ch.attrs)+r.NumAttrs())
	for _, a := range ch.attrs {
		fields[a.Key] = jsonValue(a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[ch.qualify(a.Key)] = jsonValue(a.Value)
		return true
	})
	j, err := json.MarshalIndent(fields, "", " ")
	if err != nil {
		return err
	}
	ch.l.Println(timeStr, level, message, color.WhiteString(string(j)))
	return nil
}

func (ch *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *ch
	next.attrs = make([]slog.Attr, 0, len(ch.attrs)+len(attrs))
	next.attrs = append(next.attrs, ch.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: ch.qualify(a.Key), Value: a.Value})
	}
	return &next
}

func (ch *CustomHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return ch
	}
	next := *ch
	next.group = ch.qualify(name)
	return &next
}

func (ch *CustomHandler) qualify(key string) string {
	if ch.group == "" {
		return key
	}
	return ch.group + "." + key
}

// jsonValue turns v into something encoding/json renders readably.
func jsonValue(v slog.Value) interface{} {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindGroup:
		group := make(map[string]interface{}, len(v.Group()))
		for _, a := range v.Group() {
			group[a.Key] = jsonValue(a.Value)
		}
		return group
	case slog.KindAny:
		switch a := v.Any().(type) {
		case error:
			return a.Error()
		case []byte:
			return string(a)
		}
	}
	return v.Any()
}

// NewHandler picks the handler for env: JSON lines in production, the
// colored console handler anywhere else.
func NewHandler(out io.Writer, level slog.Leveler, production bool) slog.Handler {
	opts := slog.HandlerOptions{Level: level}
	if production {
		return slog.NewJSONHandler(out, &opts)
	}
	return NewCustomHandler(out, CustomHandlerOpts{SlogOpts: opts})
}

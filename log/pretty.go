package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of the pretty text handler.
// Styles render plain text when the output does not support color.
type palette struct {
	key    lipgloss.Style
	text   lipgloss.Style
	number lipgloss.Style
	truth  lipgloss.Style
	lie    lipgloss.Style
	period lipgloss.Style
	stamp  lipgloss.Style
	msg    lipgloss.Style
	levels map[Level]lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:    color("8"),
		text:   color("6"),
		number: color("3"),
		truth:  color("2"),
		lie:    color("1"),
		period: color("5"),
		stamp:  color("4"),
		msg:    r.NewStyle().Bold(true),
		levels: map[Level]lipgloss.Style{
			LevelTrace: color("8"),
			LevelDebug: color("4"),
			LevelInfo:  color("2"),
			LevelWarn:  color("3").Bold(true),
			LevelError: color("1").Bold(true),
		},
	}
}

// level returns the style of the nearest named level at or below l.
func (p palette) level(l Level) lipgloss.Style {
	switch {
	case l >= LevelError:
		return p.levels[LevelError]
	case l >= LevelWarn:
		return p.levels[LevelWarn]
	case l >= LevelInfo:
		return p.levels[LevelInfo]
	case l >= LevelDebug:
		return p.levels[LevelDebug]
	default:
		return p.levels[LevelTrace]
	}
}

// prettyTextHandler writes one styled line per record:
//
//	[time] LEVEL [source] message key=value ...
type prettyTextHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	palette    palette
	mu         *sync.Mutex
	w          io.Writer
	prefix     string // dotted group path of subsequent attributes
	attrs      []byte // attributes added with WithAttrs, already rendered
}

func newPrettyTextHandler(
	w io.Writer,
	formatTime FormatTime,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{
		opts:       *opts,
		formatTime: formatTime,
		palette:    makePalette(w),
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if ts := h.formatTime(r.Time); ts != "" {
			buf.WriteString(h.palette.stamp.Render(ts))
			buf.WriteByte(' ')
		}
	}

	level := Level(r.Level)
	buf.WriteString(h.palette.level(level).Render(
		fmt.Sprintf("%-5s", strings.ToUpper(level.String())),
	))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			buf.WriteByte(' ')
			buf.WriteString(h.palette.key.Render(
				src.File + ":" + strconv.Itoa(src.Line),
			))
		}
	}

	buf.WriteByte(' ')
	buf.WriteString(h.palette.msg.Render(r.Message))

	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	buf := bytes.NewBuffer(append([]byte(nil), h.attrs...))

	for _, a := range attrs {
		h.writeAttr(buf, h.prefix, a)
	}

	c := *h
	c.attrs = buf.Bytes()

	return &c
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// writeAttr renders a as " key=value". Group values are flattened with
// dotted keys.
func (h *prettyTextHandler) writeAttr(
	buf *bytes.Buffer,
	prefix string,
	a slog.Attr,
) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, prefix, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.palette.key.Render(prefix + a.Key))
	buf.WriteByte('=')
	h.writeValue(buf, a.Value)
}

func (h *prettyTextHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	p := h.palette

	switch v.Kind() {
	case slog.KindString:
		buf.WriteString(p.text.Render(v.String()))

	case slog.KindInt64:
		buf.WriteString(p.number.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(p.number.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(p.number.Render(
			strconv.FormatFloat(v.Float64(), 'g', -1, 64),
		))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(p.truth.Render("true"))
		} else {
			buf.WriteString(p.lie.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(p.period.Render(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(p.stamp.Render(h.formatValueTime(v)))

	default:
		if err, ok := v.Any().(error); ok {
			buf.WriteString(p.lie.Render(err.Error()))

			return
		}

		buf.WriteString(p.text.Render(v.String()))
	}
}

func (h *prettyTextHandler) formatValueTime(v slog.Value) string {
	if ts := h.formatTime(v.Time()); ts != "" {
		return ts
	}

	return v.Time().String()
}

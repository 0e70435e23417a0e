package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// DefaultMaxValueLen задает предел длины строкового атрибута по умолчанию.
// Длинные значения появляются, когда в лог попадает фрагмент загруженного файла.
const DefaultMaxValueLen = 256

// TruncatedSuffix дописывается к обрезанному значению.
const TruncatedSuffix = "…(truncated)"

// TruncatingHandler - обертка для slog.Handler, которая обрезает длинные строковые значения
type TruncatingHandler struct {
	handler slog.Handler
	maxLen  int
}

// NewTruncatingHandler создает новый обработчик с обрезкой значений.
// Если maxLen <= 0, используется DefaultMaxValueLen.
func NewTruncatingHandler(handler slog.Handler, maxLen int) *TruncatingHandler {
	if maxLen <= 0 {
		maxLen = DefaultMaxValueLen
	}
	return &TruncatingHandler{
		handler: handler,
		maxLen:  maxLen,
	}
}

// truncate обрезает строку по границе руны
func (h *TruncatingHandler) truncate(s string) string {
	if utf8.RuneCountInString(s) <= h.maxLen {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == h.maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	b.WriteString(TruncatedSuffix)
	return b.String()
}

// Enabled реализует интерфейс slog.Handler
func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *TruncatingHandler) Handle(ctx context.Context, record slog.Record) error {
	// Clone() не копирует атрибуты в пригодном для изменения виде,
	// поэтому собираем новую запись с теми же временем, уровнем и PC.
	r := slog.NewRecord(record.Time, record.Level, h.truncate(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(slog.Attr{
			Key:   a.Key,
			Value: h.truncateValue(a.Value),
		})
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	truncated := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		truncated[i] = slog.Attr{
			Key:   attr.Key,
			Value: h.truncateValue(attr.Value),
		}
	}
	return &TruncatingHandler{
		handler: h.handler.WithAttrs(truncated),
		maxLen:  h.maxLen,
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{
		handler: h.handler.WithGroup(name),
		maxLen:  h.maxLen,
	}
}

// truncateValue рекурсивно обрезает значения атрибутов
func (h *TruncatingHandler) truncateValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(h.truncate(value.String()))
	case slog.KindAny:
		// ошибки парсера содержат фрагменты входного файла
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(h.truncate(err.Error()))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		truncated := make([]slog.Attr, len(group))
		for i, attr := range group {
			truncated[i] = slog.Attr{
				Key:   attr.Key,
				Value: h.truncateValue(attr.Value),
			}
		}
		return slog.GroupValue(truncated...)
	default:
		return value
	}
}

// ParseLevel переводит строковый уровень из конфигурации в slog.Level.
// Неизвестные значения дают LevelInfo.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger создает slog.Logger с заданным уровнем и форматом ("json" или "text")
// и обрезкой длинных значений.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(NewTruncatingHandler(handler, DefaultMaxValueLen))
}

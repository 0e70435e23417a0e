package services

import (
	"strings"
	"testing"

	"chat-viewer/internal/domain"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestSplitParagraphs(t *testing.T) {
	t.Run("текст без пустой строки дает один абзац", func(t *testing.T) {
		got := SplitParagraphs("one\ntwo\nthree")
		assert.Equal(t, []domain.Paragraph{{Lines: []string{"one", "two", "three"}}}, got)
	})

	t.Run("N пустых строк дают N+1 абзац", func(t *testing.T) {
		for n := 0; n < 5; n++ {
			parts := make([]string, n+1)
			for i := range parts {
				parts[i] = "p"
			}
			got := SplitParagraphs(strings.Join(parts, "\n\n"))
			assert.Len(t, got, n+1)
		}
	})

	t.Run("одиночные переносы сохраняются внутри абзаца", func(t *testing.T) {
		got := SplitParagraphs("Hello\nthere\n\nWorld")
		assert.Equal(t, []domain.Paragraph{
			{Lines: []string{"Hello", "there"}},
			{Lines: []string{"World"}},
		}, got)
	})

	t.Run("пробелы не схлопываются", func(t *testing.T) {
		got := SplitParagraphs("  indented   text  ")
		assert.Equal(t, []string{"  indented   text  "}, got[0].Lines)
	})

	t.Run("повторное разбиение абзацев идемпотентно", func(t *testing.T) {
		text := "a\n\nb\nc\n\n\n\nd\n\n\ne"
		for _, p := range SplitParagraphs(text) {
			joined := strings.Join(p.Lines, LineSeparator)
			again := SplitParagraphs(joined)
			assert.Equal(t, []domain.Paragraph{p}, again)
		}
	})

	t.Run("пустой текст дает один пустой абзац", func(t *testing.T) {
		assert.Equal(t, []domain.Paragraph{{Lines: []string{""}}}, SplitParagraphs(""))
	})
}

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		name string
		size *int64
		want string
	}{
		{"2048 байт", int64Ptr(2048), "2kb"},
		{"0 байт", int64Ptr(0), "0kb"},
		{"размер неизвестен", nil, "size unknown"},
		{"округление вниз", int64Ptr(1535), "1kb"},
		{"округление вверх", int64Ptr(1536), "2kb"},
		{"меньше половины килобайта", int64Ptr(100), "0kb"},
		{"мегабайт", int64Ptr(1 << 20), "1024kb"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatFileSize(tc.size))
		})
	}
}

func TestAttachmentCountLabel(t *testing.T) {
	assert.Equal(t, "0 Attachments", AttachmentCountLabel(0))
	assert.Equal(t, "1 Attachment", AttachmentCountLabel(1))
	assert.Equal(t, "2 Attachments", AttachmentCountLabel(2))
	assert.Equal(t, "11 Attachments", AttachmentCountLabel(11))
}

func TestSenderPresentation(t *testing.T) {
	t.Run("человек", func(t *testing.T) {
		assert.Equal(t, "H", AvatarLetter(domain.SenderHuman))
		assert.Equal(t, "Human", SenderLabel(domain.SenderHuman))
	})

	t.Run("любой другой отправитель", func(t *testing.T) {
		for _, s := range []domain.Sender{"assistant", "system", "", "HUMAN"} {
			assert.Equal(t, "A", AvatarLetter(s))
			assert.Equal(t, "Assistant", SenderLabel(s))
		}
	})
}

func TestToggleLabels(t *testing.T) {
	assert.Equal(t, "Show content", ContentToggleLabel(false))
	assert.Equal(t, "Hide content", ContentToggleLabel(true))
	assert.NotEqual(t, Chevron(false), Chevron(true))
}

func TestTerminalSafe(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"обычный текст", "hello, мир", "hello, мир"},
		{"табуляция и перевод строки сохраняются", "a\tb\nc", "a\tb\nc"},
		{"ANSI-последовательность", "\x1b[31mred\x1b[0m", "�[31mred�[0m"},
		{"OSC-последовательность", "\x1b]0;title\x07", "�]0;title�"},
		{"возврат каретки и C1", "a\rb\u009bc", "a�b�c"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TerminalSafe(tc.input))
		})
	}
}

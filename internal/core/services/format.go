package services

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"chat-viewer/internal/domain"
)

const (
	// ParagraphSeparator разделяет абзацы в тексте сообщения.
	ParagraphSeparator = "\n\n"
	// LineSeparator разделяет строки внутри абзаца.
	LineSeparator = "\n"

	AvatarHuman     = "H"
	AvatarAssistant = "A"
	LabelHuman      = "Human"
	LabelAssistant  = "Assistant"

	SizeUnknown = "size unknown"

	ShowContentLabel = "Show content"
	HideContentLabel = "Hide content"

	ChevronCollapsed = "▸"
	ChevronExpanded  = "▾"

	// ControlReplacement выводится в терминал вместо управляющего символа.
	ControlReplacement = '\uFFFD'
)

// SplitParagraphs делит текст на абзацы по пустой строке, а абзацы на строки.
// Пробелы и одиночные переводы строк сохраняются как есть.
func SplitParagraphs(text string) []domain.Paragraph {
	parts := strings.Split(text, ParagraphSeparator)
	paragraphs := make([]domain.Paragraph, 0, len(parts))
	for _, p := range parts {
		paragraphs = append(paragraphs, domain.Paragraph{Lines: strings.Split(p, LineSeparator)})
	}
	return paragraphs
}

// FormatFileSize выводит размер в килобайтах, округленных до целого, например "2kb".
// nil означает, что размер неизвестен.
func FormatFileSize(size *int64) string {
	if size == nil {
		return SizeUnknown
	}
	return fmt.Sprintf("%dkb", int64(math.Round(float64(*size)/1024)))
}

// AttachmentCountLabel возвращает подпись вида "1 Attachment" или "3 Attachments".
func AttachmentCountLabel(n int) string {
	if n == 1 {
		return "1 Attachment"
	}
	return fmt.Sprintf("%d Attachments", n)
}

// AvatarLetter возвращает однобуквенный аватар отправителя.
func AvatarLetter(s domain.Sender) string {
	if s.IsHuman() {
		return AvatarHuman
	}
	return AvatarAssistant
}

// SenderLabel возвращает подпись отправителя.
func SenderLabel(s domain.Sender) string {
	if s.IsHuman() {
		return LabelHuman
	}
	return LabelAssistant
}

// Chevron возвращает индикатор состояния переключателя.
func Chevron(expanded bool) string {
	if expanded {
		return ChevronExpanded
	}
	return ChevronCollapsed
}

// ContentToggleLabel возвращает подпись переключателя содержимого вложения.
func ContentToggleLabel(expanded bool) string {
	if expanded {
		return HideContentLabel
	}
	return ShowContentLabel
}

// TerminalSafe заменяет управляющие символы, кроме табуляции и перевода строки,
// на ControlReplacement, чтобы escape-последовательности из файла не доходили
// до терминала.
func TerminalSafe(s string) string {
	if strings.IndexFunc(s, isUnsafeControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return ControlReplacement
		}
		return r
	}, s)
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t' && r != '\n'
}

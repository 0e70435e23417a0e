package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"chat-viewer/internal/domain"
)

const (
	// ExportName задает название разговора после конвертации.
	ExportName = "Chat Export"
	// PreviewTextLimit задает, сколько символов текста показывается в превью.
	PreviewTextLimit = 100
	// PreviewSenderWidth задает ширину колонки отправителя в превью.
	PreviewSenderWidth = 9

	previewTimeLayout = "2006-01-02T15:04:05.999999-07:00"
)

// ConvertService готовит экспорт к просмотру: оставляет только нужные поля
// и упорядочивает сообщения по времени создания.
type ConvertService struct{}

// NewConvertService создает новый экземпляр ConvertService.
func NewConvertService() *ConvertService {
	return &ConvertService{}
}

// Convert возвращает новый разговор. Исходный разговор не изменяется.
//
// Очистка полей происходит уже при разборе: модель хранит только текст,
// отправителя, время и сведения о вложениях. Здесь сообщения копируются,
// сортируются (устойчиво) и получают новый заголовок.
func (s *ConvertService) Convert(conv *domain.Conversation) *domain.Conversation {
	messages := make([]domain.Message, len(conv.Messages))
	for i, msg := range conv.Messages {
		messages[i] = copyMessage(msg)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	out := &domain.Conversation{
		Name:     ExportName,
		Messages: messages,
	}
	if len(messages) > 0 {
		out.CreatedAt = messages[0].CreatedAt
		out.UpdatedAt = messages[len(messages)-1].UpdatedAt
	}
	return out
}

func copyMessage(msg domain.Message) domain.Message {
	cp := msg
	if msg.Attachments != nil {
		cp.Attachments = make([]domain.Attachment, len(msg.Attachments))
		copy(cp.Attachments, msg.Attachments)
	}
	if msg.Files != nil {
		cp.Files = make([]domain.FileRef, len(msg.Files))
		copy(cp.Files, msg.Files)
	}
	return cp
}

// PreviewLine форматирует сообщение для хронологического превью:
// "время | отправитель | начало текста".
func PreviewLine(msg domain.Message) string {
	timestamp, sender, text := PreviewParts(msg)
	return fmt.Sprintf("%s | %s | %s", timestamp, sender, text)
}

// PreviewParts возвращает колонки строки превью по отдельности
// (отправитель уже дополнен пробелами до PreviewSenderWidth).
func PreviewParts(msg domain.Message) (timestamp, sender, text string) {
	text = TerminalSafe(msg.Text)
	if runes := []rune(text); len(runes) > PreviewTextLimit {
		text = string(runes[:PreviewTextLimit]) + "..."
	}
	return msg.CreatedAt.Format(previewTimeLayout),
		runewidth.FillRight(TerminalSafe(string(msg.Sender)), PreviewSenderWidth),
		text
}

// PreviewSeparator возвращает разделитель строк превью.
func PreviewSeparator() string {
	return strings.Repeat("-", 120)
}

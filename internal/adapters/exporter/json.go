package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"chat-viewer/internal/domain"
	"chat-viewer/internal/ports"
)

// exportDTO повторяет формат файла экспорта, который читает парсер.
type exportDTO struct {
	Name         string       `json:"name"`
	CreatedAt    *string      `json:"created_at"`
	UpdatedAt    *string      `json:"updated_at"`
	ChatMessages []messageDTO `json:"chat_messages"`
}

type messageDTO struct {
	Text        string          `json:"text"`
	Sender      string          `json:"sender"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   *string         `json:"updated_at,omitempty"`
	Attachments []attachmentDTO `json:"attachments,omitempty"`
	Files       []fileDTO       `json:"files,omitempty"`
}

type attachmentDTO struct {
	FileName         string  `json:"file_name"`
	FileType         string  `json:"file_type,omitempty"`
	FileSize         *int64  `json:"file_size,omitempty"`
	ExtractedContent *string `json:"extracted_content,omitempty"`
}

type fileDTO struct {
	FileName string `json:"file_name"`
}

// JSONExporter записывает разговор в формате файла экспорта.
type JSONExporter struct{}

var _ ports.ConversationExporter = (*JSONExporter)(nil)

// NewJSONExporter создает новый экземпляр JSONExporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// ExportConversation записывает разговор с отступами в два пробела.
func (e *JSONExporter) ExportConversation(w io.Writer, conv *domain.Conversation) error {
	if conv == nil {
		return fmt.Errorf("нечего экспортировать: разговор пуст")
	}

	dto := exportDTO{
		Name:         conv.Name,
		CreatedAt:    formatOptionalTime(conv.CreatedAt),
		UpdatedAt:    formatOptionalTime(conv.UpdatedAt),
		ChatMessages: make([]messageDTO, 0, len(conv.Messages)),
	}

	for _, msg := range conv.Messages {
		m := messageDTO{
			Text:      msg.Text,
			Sender:    string(msg.Sender),
			CreatedAt: msg.CreatedAt.Format(time.RFC3339Nano),
			UpdatedAt: formatOptionalTime(msg.UpdatedAt),
		}
		for _, att := range msg.Attachments {
			m.Attachments = append(m.Attachments, attachmentDTO{
				FileName:         att.FileName,
				FileType:         att.FileType,
				FileSize:         att.FileSize,
				ExtractedContent: att.ExtractedContent,
			})
		}
		for _, f := range msg.Files {
			m.Files = append(m.Files, fileDTO(f))
		}
		dto.ChatMessages = append(dto.ChatMessages, m)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(dto); err != nil {
		return fmt.Errorf("не удалось записать JSON: %w", err)
	}
	return nil
}

func formatOptionalTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

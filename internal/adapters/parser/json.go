package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"chat-viewer/internal/domain"
	"chat-viewer/internal/ports"
)

// wireConversation повторяет формат файла экспорта. Указатели отличают
// отсутствующие поля от пустых значений.
type wireConversation struct {
	Name         *string        `json:"name"`
	CreatedAt    *string        `json:"created_at"`
	UpdatedAt    *string        `json:"updated_at"`
	ChatMessages *[]wireMessage `json:"chat_messages"`
}

type wireMessage struct {
	Sender      *string           `json:"sender"`
	Text        *string           `json:"text"`
	CreatedAt   *string           `json:"created_at"`
	UpdatedAt   *string           `json:"updated_at"`
	Attachments *[]wireAttachment `json:"attachments"`
	Files       *[]wireFile       `json:"files"`
}

type wireAttachment struct {
	FileName         *string  `json:"file_name"`
	FileType         *string  `json:"file_type"`
	FileSize         *float64 `json:"file_size"`
	ExtractedContent *string  `json:"extracted_content"`
}

type wireFile struct {
	FileName string `json:"file_name"`
}

// Форматы времени, которые встречаются в экспортах. Время без зоны считается UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// utf8BOM встречается в начале файлов, сохраненных редакторами Windows.
var utf8BOM = []byte("\xef\xbb\xbf")

// JsonParser реализует интерфейс Parser для файлов экспорта в формате JSON.
// Проверка формата выполняется один раз здесь, чтобы рендерер работал
// только с корректной моделью.
type JsonParser struct{}

// NewJsonParser создает новый экземпляр JsonParser.
func NewJsonParser() ports.Parser {
	return &JsonParser{}
}

// Parse преобразует срез байт с JSON в проверенную структуру Conversation.
// Ошибки оборачивают domain.ErrMalformedJSON или domain.ErrInvalidShape.
func (p *JsonParser) Parse(data []byte) (*domain.Conversation, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}

	var wire wireConversation
	if err := json.Unmarshal(data, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: field %q has unexpected type %s", domain.ErrInvalidShape, typeErr.Field, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidShape, err)
	}

	return convertConversation(&wire)
}

func convertConversation(wire *wireConversation) (*domain.Conversation, error) {
	if wire.ChatMessages == nil {
		return nil, fmt.Errorf("%w: chat_messages is missing", domain.ErrInvalidShape)
	}

	conv := &domain.Conversation{}
	if wire.Name != nil {
		conv.Name = *wire.Name
	}

	var err error
	if conv.CreatedAt, err = parseOptionalTimestamp(wire.CreatedAt, "created_at"); err != nil {
		return nil, err
	}
	if conv.UpdatedAt, err = parseOptionalTimestamp(wire.UpdatedAt, "updated_at"); err != nil {
		return nil, err
	}

	conv.Messages = make([]domain.Message, 0, len(*wire.ChatMessages))
	for i, wm := range *wire.ChatMessages {
		msg, err := convertMessage(&wm, fmt.Sprintf("chat_messages[%d]", i))
		if err != nil {
			return nil, err
		}
		conv.Messages = append(conv.Messages, msg)
	}

	return conv, nil
}

func convertMessage(wm *wireMessage, path string) (domain.Message, error) {
	var msg domain.Message

	if wm.Sender == nil {
		return msg, fmt.Errorf("%w: %s.sender is missing", domain.ErrInvalidShape, path)
	}
	if wm.Text == nil {
		return msg, fmt.Errorf("%w: %s.text is missing", domain.ErrInvalidShape, path)
	}
	if wm.CreatedAt == nil {
		return msg, fmt.Errorf("%w: %s.created_at is missing", domain.ErrInvalidShape, path)
	}

	msg.Sender = domain.Sender(*wm.Sender)
	msg.Text = *wm.Text

	var err error
	if msg.CreatedAt, err = parseTimestamp(*wm.CreatedAt, path+".created_at"); err != nil {
		return msg, err
	}
	if msg.UpdatedAt, err = parseOptionalTimestamp(wm.UpdatedAt, path+".updated_at"); err != nil {
		return msg, err
	}

	if wm.Attachments != nil {
		for j, wa := range *wm.Attachments {
			att, err := convertAttachment(&wa, fmt.Sprintf("%s.attachments[%d]", path, j))
			if err != nil {
				return msg, err
			}
			msg.Attachments = append(msg.Attachments, att)
		}
	}

	if wm.Files != nil {
		for _, wf := range *wm.Files {
			msg.Files = append(msg.Files, domain.FileRef{FileName: wf.FileName})
		}
	}

	return msg, nil
}

func convertAttachment(wa *wireAttachment, path string) (domain.Attachment, error) {
	var att domain.Attachment

	if wa.FileName == nil {
		return att, fmt.Errorf("%w: %s.file_name is missing", domain.ErrInvalidShape, path)
	}
	att.FileName = *wa.FileName
	if wa.FileType != nil {
		att.FileType = *wa.FileType
	}

	if wa.FileSize != nil {
		if *wa.FileSize < 0 || math.IsNaN(*wa.FileSize) {
			return att, fmt.Errorf("%w: %s.file_size must be non-negative", domain.ErrInvalidShape, path)
		}
		size := int64(math.Round(*wa.FileSize))
		att.FileSize = &size
	}

	if wa.ExtractedContent != nil {
		content := *wa.ExtractedContent
		att.ExtractedContent = &content
	}

	return att, nil
}

func parseOptionalTimestamp(value *string, path string) (time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return time.Time{}, nil
	}
	return parseTimestamp(*value, path)
}

func parseTimestamp(value, path string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s has invalid timestamp %q", domain.ErrInvalidShape, path, value)
}

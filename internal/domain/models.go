package domain

import (
	"errors"
	"time"
)

// ErrMalformedJSON возвращается, когда содержимое файла не является корректным JSON.
var ErrMalformedJSON = errors.New("malformed json")

// ErrInvalidShape возвращается, когда JSON корректен, но не соответствует формату экспорта
// (например, отсутствует chat_messages).
var ErrInvalidShape = errors.New("invalid conversation shape")

// SenderHuman задает значение поля sender для сообщений человека.
const SenderHuman Sender = "human"

// Sender обозначает автора сообщения. Любое значение, кроме SenderHuman, считается собеседником.
type Sender string

// IsHuman сообщает, написано ли сообщение человеком.
func (s Sender) IsHuman() bool {
	return s == SenderHuman
}

// Conversation представляет корневую структуру файла экспорта.
// После загрузки не изменяется.
type Conversation struct {
	Name      string
	CreatedAt time.Time // нулевое значение, если в файле нет created_at
	UpdatedAt time.Time
	Messages  []Message
}

// Message представляет одно сообщение в разговоре.
type Message struct {
	Sender      Sender
	Text        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Attachments []Attachment
	Files       []FileRef
}

// Attachment представляет файл, приложенный к сообщению.
type Attachment struct {
	FileName string
	FileType string
	// FileSize равен nil, если размер в экспорте отсутствует.
	FileSize *int64
	// ExtractedContent равен nil, если извлеченного текста нет.
	ExtractedContent *string
}

// HasContent сообщает, есть ли у вложения непустой извлеченный текст.
func (a Attachment) HasContent() bool {
	return a.ExtractedContent != nil && *a.ExtractedContent != ""
}

// FileRef описывает ссылку на файл без содержимого (поле files экспорта).
type FileRef struct {
	FileName string
}

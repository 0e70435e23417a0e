package ports

import (
	"io"

	"chat-viewer/internal/domain"
)

// DataSource определяет интерфейс для получения исходных данных разговора.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для парсинга файла экспорта.
type Parser interface {
	// Parse преобразует сырые данные в проверенную модель разговора.
	Parse(data []byte) (*domain.Conversation, error)
}

// Renderer строит дерево отображения разговора с учетом состояния представления.
type Renderer interface {
	Render(conv *domain.Conversation, state *domain.ViewState) *domain.Document
}

// Exporter определяет интерфейс для вывода готового документа.
type Exporter interface {
	Export(w io.Writer, doc *domain.Document) error
}

// ConversationExporter выводит сам разговор (а не его отображение),
// например, в XLSX или в очищенный JSON.
type ConversationExporter interface {
	ExportConversation(w io.Writer, conv *domain.Conversation) error
}

package exporter

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"chat-viewer/internal/domain"
	"chat-viewer/internal/ports"
)

// DefaultContentMaxHeightPx задает высоту блока содержимого вложения по умолчанию.
const DefaultContentMaxHeightPx = 500

//go:embed templates/*.html
var templatesFS embed.FS

// PageData содержит данные страницы просмотрщика.
type PageData struct {
	// Document равен nil, пока файл не загружен или если загрузка не удалась.
	Document *domain.Document
	FileName string
	Error    string
}

type pageView struct {
	PageData
	MaxHeight int
}

type standaloneView struct {
	Document  *domain.Document
	MaxHeight int
}

// HTMLExporter выводит документ в HTML. Все данные из файла экранируются шаблонизатором.
type HTMLExporter struct {
	tmpl      *template.Template
	maxHeight int
}

var _ ports.Exporter = (*HTMLExporter)(nil)

// NewHTMLExporter создает новый экземпляр HTMLExporter.
func NewHTMLExporter(contentMaxHeightPx int) (*HTMLExporter, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать HTML-шаблоны: %w", err)
	}
	if contentMaxHeightPx <= 0 {
		contentMaxHeightPx = DefaultContentMaxHeightPx
	}
	return &HTMLExporter{tmpl: tmpl, maxHeight: contentMaxHeightPx}, nil
}

// Export записывает самостоятельную HTML-страницу с разговором. Документ строится
// RenderService.RenderStandalone, иначе свернутые секции откроются пустыми.
func (e *HTMLExporter) Export(w io.Writer, doc *domain.Document) error {
	if doc == nil {
		return fmt.Errorf("нечего экспортировать: документ пуст")
	}
	return e.tmpl.ExecuteTemplate(w, "standalone", standaloneView{Document: doc, MaxHeight: e.maxHeight})
}

// RenderPage записывает интерактивную страницу просмотрщика.
func (e *HTMLExporter) RenderPage(w io.Writer, data PageData) error {
	return e.tmpl.ExecuteTemplate(w, "page", pageView{PageData: data, MaxHeight: e.maxHeight})
}

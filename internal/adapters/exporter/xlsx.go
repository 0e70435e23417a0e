package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"chat-viewer/internal/domain"
	"chat-viewer/internal/ports"
)

const (
	// MessagesSheet задает имя листа со списком сообщений.
	MessagesSheet = "Messages"
	// AttachmentsSheet задает имя листа со списком вложений.
	AttachmentsSheet = "Attachments"

	xlsxPreviewLimit = 200
)

// XLSXExporter записывает оглавление разговора в книгу Excel.
type XLSXExporter struct {
	loc *time.Location
}

var _ ports.ConversationExporter = (*XLSXExporter)(nil)

// NewXLSXExporter создает новый экземпляр XLSXExporter. Время выводится в loc
// (nil означает UTC).
func NewXLSXExporter(loc *time.Location) *XLSXExporter {
	if loc == nil {
		loc = time.UTC
	}
	return &XLSXExporter{loc: loc}
}

// ExportConversation записывает книгу с листами Messages и Attachments.
func (e *XLSXExporter) ExportConversation(w io.Writer, conv *domain.Conversation) (err error) {
	if conv == nil {
		return fmt.Errorf("нечего экспортировать: разговор пуст")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("не удалось закрыть книгу: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", MessagesSheet); err != nil {
		return fmt.Errorf("не удалось создать лист %s: %w", MessagesSheet, err)
	}
	if _, err := f.NewSheet(AttachmentsSheet); err != nil {
		return fmt.Errorf("не удалось создать лист %s: %w", AttachmentsSheet, err)
	}

	if err := writeRow(f, MessagesSheet, 1, "#", "Sender", "Created", "Text", "Attachments"); err != nil {
		return err
	}
	if err := writeRow(f, AttachmentsSheet, 1, "Message #", "File name", "File type", "Size", "Has content"); err != nil {
		return err
	}

	attRow := 2
	for i, msg := range conv.Messages {
		created := ""
		if !msg.CreatedAt.IsZero() {
			created = msg.CreatedAt.In(e.loc).Format("2006-01-02 15:04:05")
		}
		if err := writeRow(f, MessagesSheet, i+2,
			i+1, string(msg.Sender), created, previewText(msg.Text), len(msg.Attachments)); err != nil {
			return err
		}

		for _, att := range msg.Attachments {
			var size any = ""
			if att.FileSize != nil {
				size = *att.FileSize
			}
			if err := writeRow(f, AttachmentsSheet, attRow,
				i+1, att.FileName, att.FileType, size, att.HasContent()); err != nil {
				return err
			}
			attRow++
		}
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("не удалось записать книгу: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("не удалось записать ячейку %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= xlsxPreviewLimit {
		return text
	}
	return string(runes[:xlsxPreviewLimit]) + "..."
}

package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"chat-viewer/internal/core/services"
	"chat-viewer/internal/domain"
	"chat-viewer/internal/ports"
)

const (
	// DefaultConsoleWidth используется, если ширина не задана.
	DefaultConsoleWidth = 100
	// DefaultContentLines задает высоту окна содержимого вложения в строках.
	DefaultContentLines = 20

	textIndent    = "  "
	cardIndent    = "   "
	contentIndent = "      "
	contentGutter = "│ "
	fileIcon      = "📄"
)

// ConsoleOptions задает параметры вывода в терминал.
type ConsoleOptions struct {
	Width        int
	ContentLines int
	// ContentOffsets хранит смещение прокрутки каждого раскрытого блока содержимого.
	ContentOffsets map[domain.AttachmentPath]int
	// Selected отмечает выбранное сообщение и вложение (для TUI).
	// Selected.Message < 0 означает отсутствие выбора.
	Selected domain.AttachmentPath
}

// DefaultConsoleOptions возвращает параметры без выделения.
func DefaultConsoleOptions() ConsoleOptions {
	return ConsoleOptions{
		Width:        DefaultConsoleWidth,
		ContentLines: DefaultContentLines,
		Selected:     domain.AttachmentPath{Message: -1, Attachment: -1},
	}
}

type consoleStyles struct {
	title     lipgloss.Style
	faint     lipgloss.Style
	human     lipgloss.Style
	assistant lipgloss.Style
	toggle    lipgloss.Style
	selected  lipgloss.Style
}

func newConsoleStyles() consoleStyles {
	return consoleStyles{
		title:     lipgloss.NewStyle().Bold(true),
		faint:     lipgloss.NewStyle().Faint(true),
		human:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")),
		toggle:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}

// ConsoleExporter выводит документ как текст для терминала.
// Текст сообщений и содержимое вложений выводятся без стилей и без
// схлопывания пробелов; переносятся только строки шире терминала.
type ConsoleExporter struct {
	opts   ConsoleOptions
	styles consoleStyles
}

var _ ports.Exporter = (*ConsoleExporter)(nil)

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter(opts ConsoleOptions) *ConsoleExporter {
	if opts.Width <= 0 {
		opts.Width = DefaultConsoleWidth
	}
	if opts.ContentLines <= 0 {
		opts.ContentLines = DefaultContentLines
	}
	return &ConsoleExporter{opts: opts, styles: newConsoleStyles()}
}

// Export записывает документ в w.
func (e *ConsoleExporter) Export(w io.Writer, doc *domain.Document) error {
	text, _ := e.Render(doc)
	_, err := io.WriteString(w, text)
	return err
}

// Render возвращает текст документа и номер первой строки каждой панели.
func (e *ConsoleExporter) Render(doc *domain.Document) (string, []int) {
	if doc == nil {
		return "", nil
	}

	var lines []string
	add := func(s ...string) { lines = append(lines, s...) }

	add(e.styles.title.Render(services.TerminalSafe(doc.Title)))
	add(e.styles.faint.Render("Created: " + doc.CreatedAt))
	add(strings.Repeat("═", e.opts.Width))

	offsets := make([]int, 0, len(doc.Panels))
	for _, p := range doc.Panels {
		add("")
		offsets = append(offsets, len(lines))
		add(e.renderPanel(p)...)
	}

	return strings.Join(lines, "\n") + "\n", offsets
}

func (e *ConsoleExporter) renderPanel(p domain.Panel) []string {
	var lines []string

	marker := " "
	if p.Index == e.opts.Selected.Message {
		marker = e.styles.selected.Render("›")
	}
	label := e.styles.assistant
	if p.Human {
		label = e.styles.human
	}
	lines = append(lines, fmt.Sprintf("%s[%s] %s  %s",
		marker, p.Avatar, label.Render(p.Label), e.styles.faint.Render(p.Timestamp)))

	width := e.opts.Width - len(textIndent)
	for i, para := range p.Paragraphs {
		if i > 0 {
			lines = append(lines, "")
		}
		for _, line := range para.Lines {
			for _, wrapped := range wrapLine(line, width) {
				lines = append(lines, textIndent+wrapped)
			}
		}
	}

	if p.Attachments != nil {
		lines = append(lines, "")
		lines = append(lines, textIndent+e.styles.toggle.Render(p.Attachments.Chevron+" "+p.Attachments.Label))
		for _, c := range p.Attachments.Cards {
			lines = append(lines, e.renderCard(p.Index, c)...)
		}
	}

	return lines
}

func (e *ConsoleExporter) renderCard(message int, c domain.Card) []string {
	path := domain.AttachmentPath{Message: message, Attachment: c.Index}

	marker := " "
	if path == e.opts.Selected {
		marker = e.styles.selected.Render("›")
	}
	lines := []string{fmt.Sprintf("%s%s %s %s", cardIndent+marker, fileIcon, services.TerminalSafe(c.FileName), e.styles.faint.Render("("+c.Size+")"))}

	if c.Content == nil {
		return lines
	}
	lines = append(lines, contentIndent+e.styles.toggle.Render(c.Content.Chevron+" "+c.Content.ToggleLabel))
	if !c.Content.Expanded {
		return lines
	}

	var body []string
	for _, line := range strings.Split(c.Content.Text, "\n") {
		body = append(body, wrapLine(line, e.contentWidth())...)
	}

	start, end := ContentWindow(len(body), e.opts.ContentOffsets[path], e.opts.ContentLines)
	for _, line := range body[start:end] {
		lines = append(lines, contentIndent+contentGutter+line)
	}
	if len(body) > e.opts.ContentLines {
		lines = append(lines, contentIndent+e.styles.faint.Render(
			fmt.Sprintf("lines %d-%d of %d", start+1, end, len(body))))
	}

	return lines
}

// ContentLineCount возвращает число строк содержимого вложения после переноса.
func (e *ConsoleExporter) ContentLineCount(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		n += len(wrapLine(line, e.contentWidth()))
	}
	return n
}

func (e *ConsoleExporter) contentWidth() int {
	return e.opts.Width - len(contentIndent) - runewidth.StringWidth(contentGutter)
}

// ContentWindow возвращает границы видимого окна высотой height для текста
// из total строк при смещении offset. Смещение ограничивается допустимым диапазоном.
func ContentWindow(total, offset, height int) (start, end int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	maxOffset := total - height
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	return offset, offset + height
}

// wrapLine переносит строку по ширине терминала. Перенос делается после
// последнего пробела, помещающегося в строку, или посреди слова, если пробела нет.
// Управляющие символы заменяются, остальные символы не теряются.
func wrapLine(s string, width int) []string {
	s = services.TerminalSafe(s)
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	var lines []string
	runes := []rune(s)
	for len(runes) > 0 {
		i := 0
		currentWidth := 0
		lastSpace := -1
		for i < len(runes) {
			runeWidth := runewidth.RuneWidth(runes[i])
			if currentWidth+runeWidth > width {
				break
			}
			if runes[i] == ' ' {
				lastSpace = i
			}
			currentWidth += runeWidth
			i++
		}
		if i == len(runes) {
			lines = append(lines, string(runes))
			break
		}
		if i == 0 {
			// символ шире всей строки
			i = 1
		}
		cut := i
		if lastSpace > 0 {
			cut = lastSpace + 1
		}
		lines = append(lines, string(runes[:cut]))
		runes = runes[cut:]
	}
	return lines
}

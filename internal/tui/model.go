// Package tui реализует интерактивный просмотр разговора в терминале.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chat-viewer/internal/adapters/exporter"
	"chat-viewer/internal/core/services"
	"chat-viewer/internal/domain"
)

var (
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

const footerHeight = 2

// Model описывает полноэкранный просмотр разговора с теми же переключателями, что и в браузере.
type Model struct {
	conv         *domain.Conversation
	renderer     *services.RenderService
	state        *domain.ViewState
	selected     domain.AttachmentPath
	offsets      map[domain.AttachmentPath]int
	contentLines int

	viewport     viewport.Model
	panelOffsets []int
	width        int
	height       int
	ready        bool
}

// New создает модель. Выбрано первое сообщение, все секции свернуты.
func New(conv *domain.Conversation, renderer *services.RenderService, contentLines int) *Model {
	if contentLines <= 0 {
		contentLines = exporter.DefaultContentLines
	}
	m := &Model{
		conv:         conv,
		renderer:     renderer,
		state:        domain.NewViewState(),
		selected:     domain.AttachmentPath{Message: -1, Attachment: -1},
		offsets:      make(map[domain.AttachmentPath]int),
		contentLines: contentLines,
	}
	if conv != nil && len(conv.Messages) > 0 {
		m.selected.Message = 0
	}
	return m
}

// Run запускает программу в альтернативном экране терминала.
func Run(conv *domain.Conversation, renderer *services.RenderService, contentLines int) error {
	_, err := tea.NewProgram(New(conv, renderer, contentLines), tea.WithAltScreen()).Run()
	return err
}

// Init реализует tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update реализует tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "tab":
			m.selectMessage(1)
			return m, nil

		case "shift+tab":
			m.selectMessage(-1)
			return m, nil

		case "enter", " ", "space":
			m.toggleAttachments()
			return m, nil

		case "n":
			m.selectAttachment(1)
			return m, nil

		case "p":
			m.selectAttachment(-1)
			return m, nil

		case "c":
			m.toggleContent()
			return m, nil

		case "]":
			m.scrollContent(1)
			return m, nil

		case "[":
			m.scrollContent(-1)
			return m, nil

		case "r":
			m.state.Reset()
			m.offsets = make(map[domain.AttachmentPath]int)
			m.selected.Attachment = -1
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.refresh()
	}

	// j/k, стрелки и листание обрабатывает viewport
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View реализует tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.conv == nil || len(m.conv.Messages) == 0 {
		return m.viewport.View() + "\nNo messages to display. Press q to exit."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	footer := fmt.Sprintf(" %d/%d │ tab next │ enter attachments │ n/p file │ c content │ [/] scroll content │ r reset │ q exit",
		m.selected.Message+1, len(m.conv.Messages))
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}

// State возвращает текущее состояние представления.
func (m *Model) State() *domain.ViewState {
	return m.state
}

// Selected возвращает выбранное сообщение и вложение (-1, если не выбрано).
func (m *Model) Selected() domain.AttachmentPath {
	return m.selected
}

// ContentOffset возвращает смещение прокрутки блока содержимого.
func (m *Model) ContentOffset(path domain.AttachmentPath) int {
	return m.offsets[path]
}

func (m *Model) exporter() *exporter.ConsoleExporter {
	return exporter.NewConsoleExporter(exporter.ConsoleOptions{
		Width:          m.viewport.Width,
		ContentLines:   m.contentLines,
		ContentOffsets: m.offsets,
		Selected:       m.selected,
	})
}

// refresh перестраивает содержимое viewport по текущему состоянию.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	doc := m.renderer.Render(m.conv, m.state)
	text, offsets := m.exporter().Render(doc)
	m.viewport.SetContent(text)
	m.panelOffsets = offsets
}

func (m *Model) selectMessage(delta int) {
	if m.conv == nil || len(m.conv.Messages) == 0 {
		return
	}
	n := len(m.conv.Messages)
	m.selected = domain.AttachmentPath{Message: (m.selected.Message + delta + n) % n, Attachment: -1}
	m.refresh()
	if m.selected.Message < len(m.panelOffsets) {
		m.viewport.SetYOffset(m.panelOffsets[m.selected.Message])
	}
}

func (m *Model) selectedMessage() *domain.Message {
	if m.conv == nil || m.selected.Message < 0 || m.selected.Message >= len(m.conv.Messages) {
		return nil
	}
	return &m.conv.Messages[m.selected.Message]
}

func (m *Model) toggleAttachments() {
	msg := m.selectedMessage()
	if msg == nil || len(msg.Attachments) == 0 {
		return
	}
	if m.state.ToggleAttachments(m.selected.Message) {
		m.selected.Attachment = 0
	} else {
		m.selected.Attachment = -1
	}
	m.refresh()
}

func (m *Model) selectAttachment(delta int) {
	msg := m.selectedMessage()
	if msg == nil || !m.state.AttachmentsExpanded(m.selected.Message) {
		return
	}
	n := len(msg.Attachments)
	if m.selected.Attachment < 0 {
		m.selected.Attachment = 0
	} else {
		m.selected.Attachment = (m.selected.Attachment + delta + n) % n
	}
	m.refresh()
}

func (m *Model) selectedAttachment() *domain.Attachment {
	msg := m.selectedMessage()
	if msg == nil || !m.state.AttachmentsExpanded(m.selected.Message) ||
		m.selected.Attachment < 0 || m.selected.Attachment >= len(msg.Attachments) {
		return nil
	}
	return &msg.Attachments[m.selected.Attachment]
}

func (m *Model) toggleContent() {
	att := m.selectedAttachment()
	if att == nil || !att.HasContent() {
		return
	}
	m.state.ToggleContent(m.selected.Message, m.selected.Attachment)
	m.refresh()
}

func (m *Model) scrollContent(delta int) {
	att := m.selectedAttachment()
	if att == nil || !m.state.ContentExpanded(m.selected.Message, m.selected.Attachment) {
		return
	}

	maxOffset := m.exporter().ContentLineCount(*att.ExtractedContent) - m.contentLines
	offset := m.offsets[m.selected] + delta
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	m.offsets[m.selected] = offset
	m.refresh()
}

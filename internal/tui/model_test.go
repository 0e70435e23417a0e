package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-viewer/internal/core/services"
	"chat-viewer/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func testConversation() *domain.Conversation {
	var content []string
	for i := 1; i <= 12; i++ {
		content = append(content, fmt.Sprintf("content row %d", i))
	}
	return &domain.Conversation{
		Name: "TUI test",
		Messages: []domain.Message{
			{
				Sender: domain.SenderHuman,
				Text:   "question",
				Attachments: []domain.Attachment{
					{FileName: "long.txt", ExtractedContent: ptr(strings.Join(content, "\n"))},
					{FileName: "empty.bin"},
				},
			},
			{Sender: "assistant", Text: "answer"},
		},
	}
}

func newModel(t *testing.T) *Model {
	t.Helper()
	formatter, err := services.NewTimeFormatter("en-US", "UTC")
	require.NoError(t, err)
	m := New(testConversation(), services.NewRenderService(formatter), 5)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestModel(t *testing.T) {
	t.Run("starts collapsed with the first message selected", func(t *testing.T) {
		m := newModel(t)
		assert.Equal(t, domain.AttachmentPath{Message: 0, Attachment: -1}, m.Selected())
		view := m.View()
		assert.Contains(t, view, "TUI test")
		assert.Contains(t, view, "▸ 2 Attachments")
		assert.NotContains(t, view, "long.txt")
		assert.Contains(t, view, " 1/2 ")
	})

	t.Run("before the first resize", func(t *testing.T) {
		formatter, err := services.NewTimeFormatter("en-US", "UTC")
		require.NoError(t, err)
		m := New(testConversation(), services.NewRenderService(formatter), 5)
		assert.Equal(t, "Loading...", m.View())
	})

	t.Run("tab cycles messages", func(t *testing.T) {
		m := newModel(t)
		press(m, "tab")
		assert.Equal(t, 1, m.Selected().Message)
		press(m, "tab")
		assert.Equal(t, 0, m.Selected().Message)
		press(m, "shift+tab")
		assert.Equal(t, 1, m.Selected().Message)
	})

	t.Run("enter toggles attachments of the selected message", func(t *testing.T) {
		m := newModel(t)
		press(m, "enter")
		assert.True(t, m.State().AttachmentsExpanded(0))
		assert.Equal(t, 0, m.Selected().Attachment)
		assert.Contains(t, m.View(), "long.txt")

		press(m, "enter")
		assert.False(t, m.State().AttachmentsExpanded(0))
		assert.Equal(t, -1, m.Selected().Attachment)
	})

	t.Run("message without attachments ignores enter", func(t *testing.T) {
		m := newModel(t)
		press(m, "tab", "enter")
		assert.False(t, m.State().AttachmentsExpanded(1))
	})

	t.Run("content toggle and scrolling", func(t *testing.T) {
		m := newModel(t)
		press(m, "enter", "c")
		path := domain.AttachmentPath{Message: 0, Attachment: 0}
		assert.True(t, m.State().ContentExpanded(0, 0))
		view := m.View()
		assert.Contains(t, view, "content row 1")
		assert.NotContains(t, view, "content row 6")

		press(m, "]", "]")
		assert.Equal(t, 2, m.ContentOffset(path))
		assert.Contains(t, m.View(), "content row 7")

		// смещение ограничено концом текста: 12 строк, окно 5
		press(m, "]", "]", "]", "]", "]", "]", "]", "]")
		assert.Equal(t, 7, m.ContentOffset(path))

		press(m, "[")
		assert.Equal(t, 6, m.ContentOffset(path))
	})

	t.Run("attachment without content cannot be expanded", func(t *testing.T) {
		m := newModel(t)
		press(m, "enter", "n")
		assert.Equal(t, 1, m.Selected().Attachment)
		press(m, "c")
		assert.False(t, m.State().ContentExpanded(0, 1))
		press(m, "p")
		assert.Equal(t, 0, m.Selected().Attachment)
	})

	t.Run("reset collapses everything", func(t *testing.T) {
		m := newModel(t)
		press(m, "enter", "c", "]", "r")
		assert.False(t, m.State().AttachmentsExpanded(0))
		assert.False(t, m.State().ContentExpanded(0, 0))
		assert.Equal(t, 0, m.ContentOffset(domain.AttachmentPath{Message: 0, Attachment: 0}))
	})

	t.Run("q quits", func(t *testing.T) {
		m := newModel(t)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("empty conversation", func(t *testing.T) {
		formatter, err := services.NewTimeFormatter("en-US", "UTC")
		require.NoError(t, err)
		m := New(&domain.Conversation{Name: "empty"}, services.NewRenderService(formatter), 5)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
		press(m, "tab", "enter", "c")
		assert.Contains(t, m.View(), "No messages to display")
	})
}

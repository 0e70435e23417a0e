package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-viewer/internal/core/services"
	"chat-viewer/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func testConversation() *domain.Conversation {
	return &domain.Conversation{
		Name:      "Project <notes>",
		CreatedAt: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		Messages: []domain.Message{
			{
				Sender:    domain.SenderHuman,
				Text:      "Hello\nsecond line\n\nnew   paragraph",
				CreatedAt: time.Date(2024, 1, 2, 15, 5, 0, 0, time.UTC),
				Attachments: []domain.Attachment{
					{FileName: "notes.txt", FileType: "text/plain", FileSize: ptr(int64(2048)), ExtractedContent: ptr("line one\n    indented <b>two</b>")},
					{FileName: "image.png"},
				},
			},
			{
				Sender:    "assistant",
				Text:      "<script>alert(1)</script>",
				CreatedAt: time.Date(2024, 1, 2, 15, 6, 0, 0, time.UTC),
			},
		},
	}
}

func renderDocument(t *testing.T, conv *domain.Conversation, state *domain.ViewState) *domain.Document {
	t.Helper()
	formatter, err := services.NewTimeFormatter("en-US", "UTC")
	require.NoError(t, err)
	return services.NewRenderService(formatter).Render(conv, state)
}

func renderStandalone(t *testing.T, conv *domain.Conversation, state *domain.ViewState) *domain.Document {
	t.Helper()
	formatter, err := services.NewTimeFormatter("en-US", "UTC")
	require.NoError(t, err)
	return services.NewRenderService(formatter).RenderStandalone(conv, state)
}

func expandedState(conv *domain.Conversation) *domain.ViewState {
	state := domain.NewViewState()
	state.ExpandAll(conv)
	return state
}

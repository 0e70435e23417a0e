package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXExporter(t *testing.T) {
	conv := testConversation()
	var buf bytes.Buffer
	require.NoError(t, NewXLSXExporter(nil).ExportConversation(&buf, conv))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MessagesSheet, AttachmentsSheet}, f.GetSheetList())

	rows, err := f.GetRows(MessagesSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(conv.Messages)+1)
	assert.Equal(t, []string{"#", "Sender", "Created", "Text", "Attachments"}, rows[0])
	assert.Equal(t, "human", rows[1][1])
	assert.Equal(t, "2024-01-02 15:05:00", rows[1][2])
	assert.Equal(t, "2", rows[1][4])
	assert.Equal(t, "assistant", rows[2][1])

	atts, err := f.GetRows(AttachmentsSheet)
	require.NoError(t, err)
	require.Len(t, atts, 3)
	assert.Equal(t, "notes.txt", atts[1][1])
	assert.Equal(t, "2048", atts[1][3])
	assert.Equal(t, "TRUE", atts[1][4])
	assert.Equal(t, "image.png", atts[2][1])
	assert.Equal(t, "FALSE", atts[2][4])
}

func TestPreviewText(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, previewText(short))

	long := make([]rune, xlsxPreviewLimit+10)
	for i := range long {
		long[i] = 'ж'
	}
	got := []rune(previewText(string(long)))
	assert.Len(t, got, xlsxPreviewLimit+3)
}

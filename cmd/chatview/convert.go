package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chat-viewer/internal/adapters/exporter"
	"chat-viewer/internal/adapters/parser"
	"chat-viewer/internal/adapters/source"
	"chat-viewer/internal/core/services"
	"chat-viewer/internal/domain"
	"chat-viewer/internal/pkg/term"
)

var (
	previewTime  = color.New(color.FgCyan)
	previewHuman = color.New(color.FgGreen, color.Bold)
	previewOther = color.New(color.FgYellow, color.Bold)
)

// newConvertCmd создает команду очистки и сортировки файла экспорта.
func newConvertCmd(_ *app) *cobra.Command {
	var opts struct {
		Force bool
	}

	cmd := &cobra.Command{
		Use:   "convert <input.json> <output.json>",
		Short: "Sort messages chronologically and strip unneeded fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]

			if err := confirmOverwrite(output, opts.Force); err != nil {
				return err
			}

			conv, err := loadConversation(input)
			if err != nil {
				return err
			}
			converted := services.NewConvertService().Convert(conv)

			var buf bytes.Buffer
			if err := exporter.NewJSONExporter().ExportConversation(&buf, converted); err != nil {
				return err
			}
			if err := verifyExport(buf.Bytes()); err != nil {
				return err
			}

			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			printPreview(cmd.OutOrStdout(), converted, output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite the output file without asking")
	return cmd
}

// verifyExport проверяет, что результат снова читается как экспорт разговора.
func verifyExport(data []byte) error {
	raw, err := source.NewMemorySource(data).Fetch()
	if err != nil {
		return err
	}
	if _, err := parser.NewJsonParser().Parse(raw); err != nil {
		return fmt.Errorf("converted export does not parse back: %w", err)
	}
	return nil
}

// confirmOverwrite спрашивает разрешение на перезапись существующего файла.
func confirmOverwrite(path string, force bool) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) || force {
		return nil
	}

	t := term.NewTerminal()
	if !t.IsInteractive() {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	ok, err := t.Confirm(fmt.Sprintf("%s already exists. Overwrite?", path))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("aborted")
	}
	return nil
}

// printPreview выводит хронологическое превью сообщений.
func printPreview(w io.Writer, conv *domain.Conversation, output string) {
	fmt.Fprintf(w, "Total messages: %d\n", len(conv.Messages))
	fmt.Fprintf(w, "\nSanitized and sorted messages saved to: %s\n", output)
	fmt.Fprintln(w, "\nPreview of chronological order:")
	fmt.Fprintln(w, services.PreviewSeparator())

	for _, msg := range conv.Messages {
		fmt.Fprintln(w, colorizePreview(msg))
		fmt.Fprintln(w, services.PreviewSeparator())
	}
}

// colorizePreview раскрашивает время и отправителя строки превью.
func colorizePreview(msg domain.Message) string {
	timestamp, sender, text := services.PreviewParts(msg)
	senderColor := previewOther
	if msg.Sender.IsHuman() {
		senderColor = previewHuman
	}
	return previewTime.Sprint(timestamp) + " | " + senderColor.Sprint(sender) + " | " + text
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chat-viewer/internal/adapters/exporter"
)

// newExportCmd создает команду выгрузки оглавления разговора в XLSX.
func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file> <output.xlsx>",
		Short: "Export a message index to an Excel workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := loadConversation(args[0])
			if err != nil {
				return err
			}
			renderer, err := a.renderer()
			if err != nil {
				return err
			}

			xlsx := exporter.NewXLSXExporter(renderer.Formatter().Location())
			err = writeOutput(args[1], func(w io.Writer) error {
				return xlsx.ExportConversation(w, conv)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(conv.Messages), args[1])
			return nil
		},
	}
}

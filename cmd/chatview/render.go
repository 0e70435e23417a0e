package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chat-viewer/internal/adapters/exporter"
	"chat-viewer/internal/domain"
	"chat-viewer/internal/pkg/term"
	"chat-viewer/internal/ports"
)

// newRenderCmd создает команду вывода разговора в HTML или текст.
func newRenderCmd(a *app) *cobra.Command {
	var opts struct {
		Format string
		Expand string
		Output string
		Width  int
	}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a conversation export as HTML or terminal text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := loadConversation(args[0])
			if err != nil {
				return err
			}
			state, err := viewState(conv, opts.Expand)
			if err != nil {
				return err
			}
			renderer, err := a.renderer()
			if err != nil {
				return err
			}

			var (
				exp ports.Exporter
				doc *domain.Document
			)
			switch opts.Format {
			case "html":
				exp, err = exporter.NewHTMLExporter(a.cfg.Display.ContentMaxHeightPx)
				if err != nil {
					return err
				}
				doc = renderer.RenderStandalone(conv, state)
			case "text":
				consoleOpts := exporter.DefaultConsoleOptions()
				consoleOpts.Width = opts.Width
				if consoleOpts.Width <= 0 {
					consoleOpts.Width = term.NewTerminal().Width()
				}
				consoleOpts.ContentLines = a.cfg.Display.ContentLines
				exp = exporter.NewConsoleExporter(consoleOpts)
				doc = renderer.Render(conv, state)
			default:
				return fmt.Errorf("--format must be one of: text, html")
			}

			if opts.Output == "" || opts.Output == "-" {
				return exp.Export(cmd.OutOrStdout(), doc)
			}
			return writeOutput(opts.Output, func(w io.Writer) error {
				return exp.Export(w, doc)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "Output format: text or html")
	cmd.Flags().StringVarP(&opts.Expand, "expand", "e", "none", "Expand sections: all or none")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().IntVarP(&opts.Width, "width", "w", 0, "Text width (default terminal width)")
	return cmd
}

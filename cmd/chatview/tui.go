package main

import (
	"github.com/spf13/cobra"

	"chat-viewer/internal/tui"
)

// newTUICmd создает команду интерактивного просмотра.
func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <file>",
		Short: "Browse a conversation export interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := loadConversation(args[0])
			if err != nil {
				return err
			}
			renderer, err := a.renderer()
			if err != nil {
				return err
			}
			return tui.Run(conv, renderer, a.cfg.Display.ContentLines)
		},
	}
}

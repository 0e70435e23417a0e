package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"chat-viewer/internal/adapters/parser"
	"chat-viewer/internal/adapters/source"
	"chat-viewer/internal/core/services"
	"chat-viewer/internal/domain"
	applog "chat-viewer/internal/log"
	"chat-viewer/internal/pkg/config"
)

// app хранит общее состояние команд: конфигурацию и глобальные флаги.
type app struct {
	configPath string
	locale     string
	timezone   string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "chatview",
		Short:         "View and convert chat conversation exports",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultConfigFile, "Path to config.yml")
	rootCmd.PersistentFlags().StringVar(&a.locale, "locale", "", "Locale for timestamps (BCP 47, e.g. en-US, de-DE)")
	rootCmd.PersistentFlags().StringVar(&a.timezone, "tz", "", "IANA timezone for timestamps (default from config)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newRenderCmd(a),
		newTUICmd(a),
		newConvertCmd(a),
		newExportCmd(a),
	)
	return rootCmd
}

// init загружает конфигурацию и настраивает логгер. Логи CLI идут в stderr,
// чтобы не смешиваться с выводом команд.
func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.locale != "" {
		cfg.Display.Locale = a.locale
	}
	if a.timezone != "" {
		cfg.Display.Timezone = a.timezone
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	slog.SetDefault(applog.NewLogger(os.Stderr, cfg.Logging.Level, "text"))
	a.cfg = cfg
	return nil
}

// renderer создает рендерер с локалью и часовым поясом из конфигурации и флагов.
func (a *app) renderer() (*services.RenderService, error) {
	formatter, err := services.NewTimeFormatter(a.cfg.Display.Locale, a.cfg.Display.Timezone)
	if err != nil {
		return nil, err
	}
	return services.NewRenderService(formatter), nil
}

// loadConversation читает и разбирает файл экспорта.
func loadConversation(path string) (*domain.Conversation, error) {
	data, err := source.NewFileSource(path).Fetch()
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	conv, err := parser.NewJsonParser().Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	slog.Debug("Разговор загружен", "path", path, "message_count", len(conv.Messages))
	return conv, nil
}

// writeOutput создает файл и записывает в него результат write. Если запись
// или закрытие не удались, недописанный файл удаляется.
func writeOutput(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return write(f)
}

// viewState возвращает состояние представления для флага --expand.
func viewState(conv *domain.Conversation, expand string) (*domain.ViewState, error) {
	state := domain.NewViewState()
	switch expand {
	case "", "none":
	case "all":
		state.ExpandAll(conv)
	default:
		return nil, fmt.Errorf("--expand must be one of: all, none")
	}
	return state, nil
}

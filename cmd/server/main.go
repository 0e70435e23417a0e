package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"chat-viewer/internal/adapters/exporter"
	"chat-viewer/internal/adapters/parser"
	"chat-viewer/internal/cache"
	"chat-viewer/internal/core/services"
	applog "chat-viewer/internal/log"
	"chat-viewer/internal/pkg/config"
	"chat-viewer/internal/server"
	"chat-viewer/internal/server/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	configPath := flag.String("config", config.DefaultConfigFile, "Path to config.yml")
	flag.Parse()

	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера
	slog.SetDefault(applog.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format))

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Инициализация зависимостей
	formatter, err := services.NewTimeFormatter(cfg.Display.Locale, cfg.Display.Timezone)
	if err != nil {
		return fmt.Errorf("failed to create time formatter: %w", err)
	}
	renderer := services.NewRenderService(formatter)

	htmlExporter, err := exporter.NewHTMLExporter(cfg.Display.ContentMaxHeightPx)
	if err != nil {
		return fmt.Errorf("failed to create html exporter: %w", err)
	}

	sessionStore := server.NewSessionStore(cfg.Sessions.TTL)
	cacheStore := cache.NewCacheStore()
	loader := usecase.NewLoadConversationUseCase(parser.NewJsonParser(), cacheStore, cfg.Cache.TTL)

	// 5. Создание HTTP-сервера
	srv, err := server.New(cfg, loader, renderer, sessionStore, cacheStore, htmlExporter)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()
	srv.StartCleanup(appCtx)

	// 6. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting server", "addr", cfg.Address(), "locale", formatter.Locale(), "timezone", formatter.Location().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("Signal received, shutting down...")
	case <-serverDone:
		return fmt.Errorf("server stopped unexpectedly")
	}

	// Сначала останавливаем тикеры очистки
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("Application exited gracefully")
	return nil
}

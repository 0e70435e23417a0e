// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Server содержит конфигурацию HTTP-сервера
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadSizeMB int           `yaml:"max_upload_size_mb"`
}

// Sessions содержит конфигурацию сессий просмотра
type Sessions struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Cache содержит конфигурацию кэша разобранных файлов
type Cache struct {
	TTL time.Duration `yaml:"ttl"`
}

// Display содержит настройки отображения
type Display struct {
	// Locale используется, если браузер не прислал Accept-Language.
	Locale string `yaml:"locale"`
	// Timezone содержит имя IANA или "Local".
	Timezone string `yaml:"timezone"`
	// ContentMaxHeightPx ограничивает высоту блока с содержимым вложения в HTML.
	ContentMaxHeightPx int `yaml:"content_max_height_px"`
	// ContentLines ограничивает высоту того же блока в терминале.
	ContentLines int `yaml:"content_lines"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Config содержит конфигурацию приложения
type Config struct {
	Server   Server   `yaml:"server"`
	Sessions Sessions `yaml:"sessions"`
	Cache    Cache    `yaml:"cache"`
	Display  Display  `yaml:"display"`
	Logging  Logging  `yaml:"logging"`
}

// defaultConfig возвращает конфигурацию со значениями по умолчанию
func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadSizeMB: DefaultMaxUploadSizeMB,
		},
		Sessions: Sessions{
			TTL:             DefaultSessionTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Cache: Cache{
			TTL: DefaultCacheTTL,
		},
		Display: Display{
			Locale:             DefaultLocale,
			Timezone:           DefaultTimezone,
			ContentMaxHeightPx: DefaultContentMaxHeightPx,
			ContentLines:       DefaultContentLines,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Default возвращает конфигурацию по умолчанию без чтения файлов и окружения.
func Default() *Config {
	return defaultConfig()
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем YAML-файл
// (если он есть), затем .env и переменные окружения.
func LoadConfig(path string) (*Config, error) {
	// .env необязателен, переменные окружения могут быть заданы напрямую
	_ = godotenv.Load()

	if path == "" {
		path = DefaultConfigFile
	}

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}

	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла поверх cfg.
// Отсутствие файла не является ошибкой.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return nil
}

// loadFromEnv накладывает переменные окружения CHATVIEW_* поверх cfg
func loadFromEnv(cfg *Config) error {
	if v := getEnv("CHATVIEW_HOST", ""); v != "" {
		cfg.Server.Host = v
	}
	if v := getEnv("CHATVIEW_PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый CHATVIEW_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := getEnv("CHATVIEW_MAX_UPLOAD_MB", ""); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый CHATVIEW_MAX_UPLOAD_MB: %w", err)
		}
		cfg.Server.MaxUploadSizeMB = size
	}
	if v := getEnv("CHATVIEW_SESSION_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("недопустимый CHATVIEW_SESSION_TTL: %w", err)
		}
		cfg.Sessions.TTL = d
	}
	if v := getEnv("CHATVIEW_CACHE_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("недопустимый CHATVIEW_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}
	cfg.Display.Locale = getEnv("CHATVIEW_LOCALE", cfg.Display.Locale)
	cfg.Display.Timezone = getEnv("CHATVIEW_TIMEZONE", cfg.Display.Timezone)
	cfg.Logging.Level = getEnv("CHATVIEW_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("CHATVIEW_LOG_FORMAT", cfg.Logging.Format)

	return nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxUploadBytes возвращает лимит размера загружаемого файла в байтах
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadSizeMB) << 20
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server.read_timeout, write_timeout и idle_timeout должны быть положительными")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}

	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb должно быть положительным")
	}

	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("sessions.ttl должно быть положительным")
	}

	if c.Sessions.CleanupInterval <= 0 {
		return fmt.Errorf("sessions.cleanup_interval должно быть положительным")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl должно быть положительным")
	}

	if c.Display.ContentMaxHeightPx <= 0 {
		return fmt.Errorf("display.content_max_height_px должно быть положительным")
	}

	if c.Display.ContentLines <= 0 {
		return fmt.Errorf("display.content_lines должно быть положительным")
	}

	if c.Display.Timezone != "" && c.Display.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
			return fmt.Errorf("display.timezone: неизвестный часовой пояс %q", c.Display.Timezone)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format должен быть одним из: json, text")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

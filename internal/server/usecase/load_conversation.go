package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chat-viewer/internal/adapters/source"
	"chat-viewer/internal/cache"
	"chat-viewer/internal/domain"
	"chat-viewer/internal/ports"
)

// LoadConversationUseCase инкапсулирует загрузку файла экспорта:
// чтение, поиск в кэше по хешу содержимого и разбор.
type LoadConversationUseCase struct {
	parser     ports.Parser
	cacheStore *cache.CacheStore
	cacheTTL   time.Duration
}

// NewLoadConversationUseCase создает новый экземпляр LoadConversationUseCase.
func NewLoadConversationUseCase(parser ports.Parser, cacheStore *cache.CacheStore, cacheTTL time.Duration) *LoadConversationUseCase {
	return &LoadConversationUseCase{
		parser:     parser,
		cacheStore: cacheStore,
		cacheTTL:   cacheTTL,
	}
}

// Load читает данные из источника и возвращает разобранный разговор.
// Частичный результат не возвращается никогда: либо разговор, либо ошибка.
func (uc *LoadConversationUseCase) Load(ctx context.Context, src ports.DataSource) (*domain.Conversation, error) {
	data, err := src.Fetch()
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл: %w", err)
	}

	hash := cache.CalculateHash(data)
	if item, found := uc.cacheStore.Get(hash); found {
		slog.Debug("Попадание в кэш", "hash", hash)
		return item.Conversation, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conv, err := uc.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать файл: %w", err)
	}

	uc.cacheStore.Put(hash, conv, uc.cacheTTL)
	slog.Info("Разговор разобран и кэширован",
		"hash", hash,
		"message_count", len(conv.Messages),
		"ttl", uc.cacheTTL.String(),
	)

	return conv, nil
}

// UserMessage переводит ошибку загрузки в сообщение для пользователя.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrMalformedJSON):
		return "Error parsing JSON file: " + rootCause(err)
	case errors.Is(err, domain.ErrInvalidShape):
		return "Not a conversation export: " + rootCause(err)
	case errors.Is(err, source.ErrTooLarge):
		return "Error reading file: the file is too large"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Loading was interrupted, please select the file again"
	default:
		return "Error reading file: " + rootCause(err)
	}
}

// rootCause отбрасывает служебные префиксы обертки и оставляет исходное описание.
func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil || next == domain.ErrMalformedJSON || next == domain.ErrInvalidShape {
			return err.Error()
		}
		err = next
	}
}

package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-viewer/internal/domain"
	"chat-viewer/internal/ports"
)

var (
	// ErrSessionNotFound возвращается, если сессии нет или она просрочена.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoConversation возвращается при переключении, когда разговор не загружен.
	ErrNoConversation = errors.New("no conversation loaded")
	// ErrIndexOutOfRange возвращается, если путь переключателя не существует
	// в загруженном разговоре.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Session хранит состояние просмотра одного браузера: загруженный разговор,
// раскрытые секции и последняя ошибка загрузки.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time // Для автоматической очистки

	mu           sync.Mutex
	fileName     string
	conversation *domain.Conversation
	state        *domain.ViewState
	errorMessage string
	timezone     string
}

// Snapshot содержит согласованный срез сессии для вывода страницы.
type Snapshot struct {
	FileName string
	Document *domain.Document
	Error    string
}

// Replace заменяет разговор целиком; состояние представления сбрасывается.
func (s *Session) Replace(conv *domain.Conversation, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversation = conv
	s.fileName = fileName
	s.state = domain.NewViewState()
	s.errorMessage = ""
}

// Fail сохраняет ошибку загрузки. Ранее показанный разговор убирается,
// чтобы ошибка никогда не соседствовала со старыми данными.
func (s *Session) Fail(fileName, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversation = nil
	s.fileName = fileName
	s.state = domain.NewViewState()
	s.errorMessage = message
}

// SetTimezone запоминает часовой пояс браузера.
func (s *Session) SetTimezone(tz string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timezone = tz
}

// Timezone возвращает часовой пояс браузера (пустая строка, если неизвестен).
func (s *Session) Timezone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timezone
}

// HasConversation сообщает, загружен ли разговор.
func (s *Session) HasConversation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation != nil
}

// ToggleAttachments переключает секцию вложений сообщения.
func (s *Session) ToggleAttachments(message int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversation == nil {
		return false, ErrNoConversation
	}
	if message < 0 || message >= len(s.conversation.Messages) ||
		len(s.conversation.Messages[message].Attachments) == 0 {
		return false, ErrIndexOutOfRange
	}
	return s.state.ToggleAttachments(message), nil
}

// ToggleContent переключает блок содержимого вложения.
func (s *Session) ToggleContent(message, attachment int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversation == nil {
		return false, ErrNoConversation
	}
	if message < 0 || message >= len(s.conversation.Messages) {
		return false, ErrIndexOutOfRange
	}
	atts := s.conversation.Messages[message].Attachments
	if attachment < 0 || attachment >= len(atts) || !atts[attachment].HasContent() {
		return false, ErrIndexOutOfRange
	}
	return s.state.ToggleContent(message, attachment), nil
}

// CollapseAll сворачивает все секции.
func (s *Session) CollapseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reset()
}

// ExpandAll раскрывает все секции и все блоки с содержимым.
func (s *Session) ExpandAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ExpandAll(s.conversation)
}

// Render строит документ под блокировкой сессии.
func (s *Session) Render(renderer ports.Renderer) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		FileName: s.fileName,
		Document: renderer.Render(s.conversation, s.state),
		Error:    s.errorMessage,
	}
}

// SessionStore управляет хранением и извлечением сессий
type SessionStore struct {
	sessions map[string]*Session
	ttl      time.Duration
	mutex    sync.RWMutex
}

// NewSessionStore создает новый экземпляр SessionStore
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create создает новую пустую сессию
func (ss *SessionStore) Create() *Session {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ss.ttl),
		state:     domain.NewViewState(),
	}
	ss.sessions[session.ID] = session
	return session
}

// Get извлекает сессию по ее ID и продлевает срок ее жизни
func (ss *SessionStore) Get(id string) (*Session, error) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	session, exists := ss.sessions[id]
	now := time.Now()
	if !exists || now.After(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}

	session.ExpiresAt = now.Add(ss.ttl)
	return session, nil
}

// Delete удаляет сессию
func (ss *SessionStore) Delete(id string) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()
	delete(ss.sessions, id)
}

// Len возвращает количество сессий, включая еще не удаленные просроченные.
func (ss *SessionStore) Len() int {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	return len(ss.sessions)
}

// CleanupExpired удаляет просроченные сессии из хранилища
func (ss *SessionStore) CleanupExpired() {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	now := time.Now()
	for id, session := range ss.sessions {
		if now.After(session.ExpiresAt) {
			delete(ss.sessions, id)
		}
	}
}

// StartCleanupTicker запускает тикер для периодической очистки просроченных сессий
func (ss *SessionStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ss.CleanupExpired()
			}
		}
	}()
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chat-viewer/internal/adapters/exporter"
	"chat-viewer/internal/adapters/source"
	"chat-viewer/internal/cache"
	"chat-viewer/internal/core/services"
	"chat-viewer/internal/domain"
	"chat-viewer/internal/pkg/config"
	"chat-viewer/internal/ports"
	"chat-viewer/internal/server/usecase"
)

// SessionCookie задает имя cookie с идентификатором сессии просмотра.
const SessionCookie = "chatview_session"

// multipartMemory ограничивает, сколько данных формы держать в памяти до записи во временный файл.
const multipartMemory = 32 << 20

// ConversationLoader определяет интерфейс для варианта использования, который загружает разговор.
type ConversationLoader interface {
	Load(ctx context.Context, src ports.DataSource) (*domain.Conversation, error)
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	loader     ConversationLoader
	renderer   *services.RenderService
	sessions   *SessionStore
	cacheStore *cache.CacheStore
	html       *exporter.HTMLExporter
}

// New создает новый экземпляр Server
func New(
	cfg *config.Config,
	loader ConversationLoader,
	renderer *services.RenderService,
	sessions *SessionStore,
	cacheStore *cache.CacheStore,
	html *exporter.HTMLExporter,
) (*Server, error) {
	if cfg == nil || loader == nil || renderer == nil || sessions == nil || cacheStore == nil || html == nil {
		return nil, fmt.Errorf("не все зависимости сервера заданы")
	}

	s := &Server{
		cfg:        cfg,
		loader:     loader,
		renderer:   renderer,
		sessions:   sessions,
		cacheStore: cacheStore,
		html:       html,
	}

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Страница просмотрщика
	chiRouter.Get("/", s.handlePage)
	chiRouter.Post("/upload", s.handleUpload)
	chiRouter.Post("/reset", s.handleCollapseAll)
	chiRouter.Post("/expand", s.handleExpandAll)
	chiRouter.Post("/messages/{msg}/attachments/toggle", s.handleToggleAttachments)
	chiRouter.Post("/messages/{msg}/attachments/{att}/content/toggle", s.handleToggleContent)

	// Маршруты API
	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Post("/render", s.handleAPIRender)
		r.Get("/session", s.handleAPISession)
	})

	return chiRouter
}

// Handler возвращает обработчик маршрутов (используется в тестах).
func (s *Server) Handler() http.Handler {
	return s.HTTPServer.Handler
}

// StartCleanup запускает тикеры очистки просроченных сессий и элементов кэша.
// Тикеры останавливаются с отменой ctx.
func (s *Server) StartCleanup(ctx context.Context) {
	s.sessions.StartCleanupTicker(ctx, s.cfg.Sessions.CleanupInterval)
	s.cacheStore.StartCleanupTicker(ctx, s.cfg.Sessions.CleanupInterval)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}

// session возвращает сессию из cookie. Если create, отсутствующая сессия создается.
func (s *Server) session(w http.ResponseWriter, r *http.Request, create bool) (*Session, error) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		session, err := s.sessions.Get(c.Value)
		if err == nil {
			return session, nil
		}
		// просроченная сессия удаляется сразу, не дожидаясь тикера очистки
		s.sessions.Delete(c.Value)
		if !create {
			http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
		}
	}
	if !create {
		return nil, ErrSessionNotFound
	}

	session := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.cfg.Sessions.TTL.Seconds()),
	})
	return session, nil
}

// rendererFor возвращает рендерер с локалью браузера и заданным часовым поясом.
func (s *Server) rendererFor(r *http.Request, timezone string) *services.RenderService {
	formatter := s.renderer.Formatter().WithAcceptLanguage(r.Header.Get("Accept-Language"))
	if withTZ, err := formatter.WithLocation(timezone); err == nil {
		formatter = withTZ
	} else {
		slog.Debug("Неизвестный часовой пояс браузера", "tz", timezone, "error", err)
	}
	return s.renderer.WithFormatter(formatter)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := exporter.PageData{}
	if session, err := s.session(w, r, false); err == nil {
		snap := session.Render(s.rendererFor(r, session.Timezone()))
		data = exporter.PageData{Document: snap.Document, FileName: snap.FileName, Error: snap.Error}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.html.RenderPage(w, data); err != nil {
		slog.Error("Не удалось вывести страницу", "error", err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	session, _ := s.session(w, r, true)

	// форма разбирается внутри loadFromForm с ограничением размера
	conv, fileName, err := s.loadFromForm(w, r)
	if tz := r.FormValue("tz"); tz != "" {
		session.SetTimezone(tz)
	}
	if err != nil {
		slog.Warn("Не удалось загрузить разговор", "file", fileName, "error", err)
		session.Fail(fileName, usecase.UserMessage(err))
	} else {
		session.Replace(conv, fileName)
		slog.Info("Разговор загружен", "file", fileName, "message_count", len(conv.Messages))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loadFromForm читает файл из поля "file" multipart-формы и загружает разговор.
func (s *Server) loadFromForm(w http.ResponseWriter, r *http.Request) (*domain.Conversation, string, error) {
	maxBytes := s.cfg.MaxUploadBytes()
	// запас на служебные части формы
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("не удалось разобрать форму: %w", source.ErrTooLarge)
		}
		return nil, "", fmt.Errorf("не удалось разобрать форму: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("не удалось получить файл из формы: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	conv, err := s.loader.Load(r.Context(), source.NewReaderSource(file, header.Filename, maxBytes))
	return conv, header.Filename, err
}

func (s *Server) handleToggleAttachments(w http.ResponseWriter, r *http.Request) {
	msg, err := strconv.Atoi(chi.URLParam(r, "msg"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	session, err := s.session(w, r, false)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if _, err := session.ToggleAttachments(msg); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/#message-%d", msg), http.StatusSeeOther)
}

func (s *Server) handleToggleContent(w http.ResponseWriter, r *http.Request) {
	msg, errMsg := strconv.Atoi(chi.URLParam(r, "msg"))
	att, errAtt := strconv.Atoi(chi.URLParam(r, "att"))
	if errMsg != nil || errAtt != nil {
		http.NotFound(w, r)
		return
	}
	session, err := s.session(w, r, false)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if _, err := session.ToggleContent(msg, att); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/#message-%d-attachment-%d", msg, att), http.StatusSeeOther)
}

func (s *Server) handleCollapseAll(w http.ResponseWriter, r *http.Request) {
	session, ok := s.loadedSession(w, r)
	if !ok {
		return
	}
	session.CollapseAll()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	session, ok := s.loadedSession(w, r)
	if !ok {
		return
	}
	session.ExpandAll()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loadedSession возвращает сессию с загруженным разговором или отвечает 404.
func (s *Server) loadedSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session, err := s.session(w, r, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if !session.HasConversation() {
		http.Error(w, ErrNoConversation.Error(), http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// handleAPIRender загружает файл без сессии и возвращает документ в JSON.
func (s *Server) handleAPIRender(w http.ResponseWriter, r *http.Request) {
	conv, fileName, err := s.loadFromForm(w, r)
	if err != nil {
		slog.Warn("Не удалось загрузить разговор через API", "file", fileName, "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": usecase.UserMessage(err)})
		return
	}

	state := domain.NewViewState()
	switch r.URL.Query().Get("expand") {
	case "", "none":
	case "all":
		state.ExpandAll(conv)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expand must be one of: all, none"})
		return
	}

	doc := s.rendererFor(r, r.FormValue("tz")).Render(conv, state)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(w, r, false)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	snap := session.Render(s.rendererFor(r, session.Timezone()))
	if snap.Document == nil {
		msg := snap.Error
		if msg == "" {
			msg = ErrNoConversation.Error()
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, snap.Document)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Не удалось записать JSON-ответ", "error", err)
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-viewer/internal/adapters/exporter"
	"chat-viewer/internal/adapters/parser"
	"chat-viewer/internal/cache"
	"chat-viewer/internal/domain"
	"chat-viewer/internal/pkg/config"
	"chat-viewer/internal/ports"
	"chat-viewer/internal/server/usecase"
)

const validExport = `{
  "name": "Trip planning",
  "created_at": "2024-03-01T09:00:00Z",
  "chat_messages": [
    {"sender": "human", "text": "Plan a trip\n\nTo <Rome>", "created_at": "2024-03-01T09:00:00Z",
     "attachments": [
       {"file_name": "itinerary.txt", "file_size": 3072, "extracted_content": "Day 1\n  Colosseum"},
       {"file_name": "photo.jpg"}
     ]},
    {"sender": "assistant", "text": "Sure!", "created_at": "2024-03-01T09:00:05Z"}
  ]
}`

type mockLoader struct{ mock.Mock }

func (m *mockLoader) Load(ctx context.Context, src ports.DataSource) (*domain.Conversation, error) {
	args := m.Called(ctx, src)
	if res := args.Get(0); res != nil {
		return res.(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "localhost"
	cfg.Server.MaxUploadSizeMB = 1
	return cfg
}

func newTestServer(t *testing.T, loader ConversationLoader) *Server {
	t.Helper()
	return newTestServerWithSessions(t, loader, NewSessionStore(time.Hour))
}

func newTestServerWithSessions(t *testing.T, loader ConversationLoader, sessions *SessionStore) *Server {
	t.Helper()
	cfg := testConfig()
	if loader == nil {
		loader = usecase.NewLoadConversationUseCase(parser.NewJsonParser(), cache.NewCacheStore(), time.Minute)
	}
	html, err := exporter.NewHTMLExporter(cfg.Display.ContentMaxHeightPx)
	require.NoError(t, err)

	srv, err := New(cfg, loader, testRenderer(t), sessions, cache.NewCacheStore(), html)
	require.NoError(t, err)
	return srv
}

// browser возвращает клиент с cookie, который следует перенаправлениям, как браузер.
func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var b bytes.Buffer
	writer := multipart.NewWriter(&b)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &b, writer.FormDataContentType()
}

func upload(t *testing.T, client *http.Client, baseURL, fileName, content string) string {
	t.Helper()
	body, contentType := multipartBody(t, fileName, []byte(content), map[string]string{"tz": "UTC"})
	resp, err := client.Post(baseURL+"/upload", contentType, body)
	require.NoError(t, err)
	return readBody(t, resp)
}

func post(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Post(url, "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	return resp.StatusCode, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_New(t *testing.T) {
	_, err := New(testConfig(), nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestServer_Viewer(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).Handler())
	defer ts.Close()

	t.Run("empty page", func(t *testing.T) {
		resp, err := browser(t).Get(ts.URL + "/")
		require.NoError(t, err)
		page := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, page, `action="/upload"`)
		assert.NotContains(t, page, `class="panel`)
	})

	t.Run("upload and toggle", func(t *testing.T) {
		client := browser(t)
		page := upload(t, client, ts.URL, "trip.json", validExport)

		assert.Contains(t, page, "<h1>Trip planning</h1>")
		assert.Contains(t, page, "Created: 3/1/2024, 9:00:00 AM")
		assert.Contains(t, page, "<p>To &lt;Rome&gt;</p>")
		assert.Contains(t, page, "▸ 2 Attachments")
		assert.NotContains(t, page, "itinerary.txt")

		status, page := post(t, client, ts.URL+"/messages/0/attachments/toggle")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, page, "▾ 2 Attachments")
		assert.Contains(t, page, "itinerary.txt")
		assert.Contains(t, page, "3kb")
		assert.Contains(t, page, "size unknown")
		assert.Contains(t, page, "▸ Show content")
		assert.NotContains(t, page, "Colosseum")

		status, page = post(t, client, ts.URL+"/messages/0/attachments/0/content/toggle")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, page, "▾ Hide content")
		assert.Contains(t, page, "Day 1\n  Colosseum")

		// двойное переключение возвращает исходный вид
		_, page = post(t, client, ts.URL+"/messages/0/attachments/0/content/toggle")
		assert.NotContains(t, page, "Colosseum")
		_, page = post(t, client, ts.URL+"/messages/0/attachments/toggle")
		assert.NotContains(t, page, "itinerary.txt")
	})

	t.Run("out of range toggles return 404", func(t *testing.T) {
		client := browser(t)
		upload(t, client, ts.URL, "trip.json", validExport)

		for _, path := range []string{
			"/messages/1/attachments/toggle",
			"/messages/7/attachments/toggle",
			"/messages/x/attachments/toggle",
			"/messages/0/attachments/1/content/toggle",
			"/messages/0/attachments/5/content/toggle",
		} {
			status, _ := post(t, client, ts.URL+path)
			assert.Equal(t, http.StatusNotFound, status, path)
		}
	})

	t.Run("toggle without session returns 404", func(t *testing.T) {
		status, _ := post(t, browser(t), ts.URL+"/messages/0/attachments/toggle")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("malformed json shows an error and clears the conversation", func(t *testing.T) {
		client := browser(t)
		upload(t, client, ts.URL, "trip.json", validExport)

		page := upload(t, client, ts.URL, "broken.json", "{not valid json")
		assert.Contains(t, page, `role="alert">Error parsing JSON file:`)
		assert.NotContains(t, page, "Trip planning")
		assert.NotContains(t, page, `class="panel`)
	})

	t.Run("valid json with wrong shape", func(t *testing.T) {
		page := upload(t, browser(t), ts.URL, "other.json", `{"foo": 1}`)
		assert.Contains(t, page, "Not a conversation export:")
	})

	t.Run("upload without a file", func(t *testing.T) {
		client := browser(t)
		body, contentType := multipartBody(t, "", nil, map[string]string{"tz": "UTC"})
		resp, err := client.Post(ts.URL+"/upload", contentType, body)
		require.NoError(t, err)
		assert.Contains(t, readBody(t, resp), "Error reading file:")
	})

	t.Run("file over the limit", func(t *testing.T) {
		big := `{"name":"` + strings.Repeat("x", 1<<20) + `","chat_messages":[]}`
		page := upload(t, browser(t), ts.URL, "big.json", big)
		assert.Contains(t, page, "Error reading file: the file is too large")
	})

	t.Run("reload resets state", func(t *testing.T) {
		client := browser(t)
		upload(t, client, ts.URL, "trip.json", validExport)
		_, page := post(t, client, ts.URL+"/messages/0/attachments/toggle")
		require.Contains(t, page, "itinerary.txt")

		page = upload(t, client, ts.URL, "trip.json", validExport)
		assert.NotContains(t, page, "itinerary.txt")
	})

	t.Run("expand all and collapse all", func(t *testing.T) {
		client := browser(t)
		upload(t, client, ts.URL, "trip.json", validExport)

		_, page := post(t, client, ts.URL+"/expand")
		assert.Contains(t, page, "Colosseum")

		_, page = post(t, client, ts.URL+"/reset")
		assert.NotContains(t, page, "itinerary.txt")
		assert.Contains(t, page, "Trip planning")
	})

	t.Run("expand and collapse need a loaded conversation", func(t *testing.T) {
		status, _ := post(t, browser(t), ts.URL+"/expand")
		assert.Equal(t, http.StatusNotFound, status)

		client := browser(t)
		upload(t, client, ts.URL, "bad.json", "{not valid json")
		status, _ = post(t, client, ts.URL+"/reset")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("locale follows Accept-Language", func(t *testing.T) {
		client := browser(t)
		upload(t, client, ts.URL, "trip.json", validExport)

		req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
		require.NoError(t, err)
		req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Contains(t, readBody(t, resp), "Created: 1.3.2024, 09:00:00")
	})
}

func TestServer_ExpiredSession(t *testing.T) {
	sessions := NewSessionStore(50 * time.Millisecond)
	ts := httptest.NewServer(newTestServerWithSessions(t, nil, sessions).Handler())
	defer ts.Close()

	client := browser(t)
	page := upload(t, client, ts.URL, "trip.json", validExport)
	require.Contains(t, page, "Trip planning")
	require.Equal(t, 1, sessions.Len())

	time.Sleep(100 * time.Millisecond)

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	page = readBody(t, resp)

	assert.NotContains(t, page, "Trip planning")
	assert.Equal(t, 0, sessions.Len(), "просроченная сессия удалена без тикера очистки")

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "cookie просроченной сессии сбрасывается")
}

func TestServer_API(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).Handler())
	defer ts.Close()

	render := func(t *testing.T, query, fileName, content string) (*http.Response, []byte) {
		body, contentType := multipartBody(t, fileName, []byte(content), map[string]string{"tz": "UTC"})
		resp, err := http.Post(ts.URL+"/api/v1/render"+query, contentType, body)
		require.NoError(t, err)
		return resp, []byte(readBody(t, resp))
	}

	t.Run("collapsed render", func(t *testing.T) {
		resp, body := render(t, "", "trip.json", validExport)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var doc domain.Document
		require.NoError(t, json.Unmarshal(body, &doc))
		assert.Equal(t, "Trip planning", doc.Title)
		require.Len(t, doc.Panels, 2)
		assert.Equal(t, "H", doc.Panels[0].Avatar)
		assert.Equal(t, "A", doc.Panels[1].Avatar)
		require.NotNil(t, doc.Panels[0].Attachments)
		assert.Equal(t, "2 Attachments", doc.Panels[0].Attachments.Label)
		assert.Empty(t, doc.Panels[0].Attachments.Cards)
		assert.Nil(t, doc.Panels[1].Attachments)
	})

	t.Run("expanded render", func(t *testing.T) {
		resp, body := render(t, "?expand=all", "trip.json", validExport)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var doc domain.Document
		require.NoError(t, json.Unmarshal(body, &doc))
		cards := doc.Panels[0].Attachments.Cards
		require.Len(t, cards, 2)
		assert.Equal(t, "3kb", cards[0].Size)
		assert.Equal(t, "Day 1\n  Colosseum", cards[0].Content.Text)
		assert.Equal(t, "size unknown", cards[1].Size)
		assert.Nil(t, cards[1].Content)
	})

	t.Run("invalid expand value", func(t *testing.T) {
		resp, _ := render(t, "?expand=some", "trip.json", validExport)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, body := render(t, "", "broken.json", "{not valid json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp map[string]string
		require.NoError(t, json.Unmarshal(body, &errResp))
		assert.True(t, strings.HasPrefix(errResp["error"], "Error parsing JSON file:"))
	})

	t.Run("session endpoint", func(t *testing.T) {
		client := browser(t)

		resp, err := client.Get(ts.URL + "/api/v1/session")
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		upload(t, client, ts.URL, "trip.json", validExport)
		resp, err = client.Get(ts.URL + "/api/v1/session")
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"title":"Trip planning"`)
	})
}

func TestServer_UsesLoader(t *testing.T) {
	loader := new(mockLoader)
	conv := &domain.Conversation{Name: "From loader", Messages: []domain.Message{{Sender: domain.SenderHuman, Text: "hi"}}}
	loader.On("Load", mock.Anything, mock.Anything).Return(conv, nil).Once()

	ts := httptest.NewServer(newTestServer(t, loader).Handler())
	defer ts.Close()

	page := upload(t, browser(t), ts.URL, "any.json", "ignored")
	assert.Contains(t, page, "From loader")
	loader.AssertExpectations(t)
}

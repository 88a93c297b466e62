package web_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"column/internal/domain"
	"column/internal/service"
	"column/internal/storage"
	"column/internal/web"
)

type fixture struct {
	server *web.Server
	editor *service.EditorService
	store  *storage.FileStore
	hub    *web.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	hub := web.NewHub(log)
	editor := service.NewEditorService(store, domain.DefaultStorageKey, hub, log)
	srv := web.New(web.Deps{
		Editor: editor,
		View:   service.NewViewService(store, domain.DefaultStorageKey, log),
		Ingest: service.NewImageIngest(editor, 1<<20, log),
		Store:  store,
		Hub:    hub,
		Log:    log,
	})
	return &fixture{server: srv, editor: editor, store: store, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path string, form url.Values, asJSON bool) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if asJSON {
		req.Header.Set("Accept", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

type documentResponse struct {
	Blocks     []map[string]any `json:"blocks"`
	SelectedID string           `json:"selectedId"`
	Version    uint64           `json:"version"`
}

func decodeDocument(t *testing.T, rec *httptest.ResponseRecorder) documentResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var doc documentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func TestEditPage(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := html.Parse(rec.Body)
	require.NoError(t, err)
	editable := cascadia.MustCompile("#column p[contenteditable]").MatchAll(doc)
	require.Len(t, editable, 1)
	assert.Len(t, cascadia.MustCompile("#column .selected").MatchAll(doc), 1)
	assert.Len(t, cascadia.MustCompile(`aside input[name="value"]`).MatchAll(doc), 12)
	assert.NotNil(t, cascadia.MustCompile(`form[action="/submit"]`).MatchFirst(doc))
}

func TestAddBlock(t *testing.T) {
	f := newFixture(t)

	doc := decodeDocument(t, f.do(t, http.MethodPost, "/blocks", url.Values{"type": {"divider"}}, true))
	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, "divider", doc.Blocks[1]["type"])
	assert.Equal(t, doc.Blocks[2]["id"], doc.SelectedID)

	doc = decodeDocument(t, f.do(t, http.MethodPost, "/blocks",
		url.Values{"type": {"link"}, "url": {"go.dev"}}, true))
	require.Len(t, doc.Blocks, 5)
	assert.Equal(t, "go.dev", doc.Blocks[3]["content"])
	assert.Equal(t, "go.dev", doc.Blocks[3]["url"])

	// browsers are sent back to the editor
	rec := f.do(t, http.MethodPost, "/blocks", url.Values{"type": {"text"}, "content": {"hi"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAddBlock_BadInput(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/blocks", url.Values{"type": {"video"}}, true).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/blocks", url.Values{"type": {"link"}}, true).Code)
	assert.Equal(t, uint64(0), f.editor.Version())
}

func TestSplitContentAndStyle(t *testing.T) {
	f := newFixture(t)
	first := f.editor.Snapshot().SelectedID()

	rec := f.do(t, http.MethodPost, "/blocks/"+first+"/style",
		url.Values{"format": {"list-item"}, "color": {"#F00"}}, true)
	decodeDocument(t, rec)

	doc := decodeDocument(t, f.do(t, http.MethodPost, "/blocks/"+first+"/split",
		url.Values{"content": {"item one"}}, true))
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "item one", doc.Blocks[0]["content"])
	second := doc.Blocks[1]
	assert.Equal(t, second["id"], doc.SelectedID)
	style := second["style"].(map[string]any)
	assert.Equal(t, "list-item", style["format"])
	assert.Equal(t, "#ff0000", style["color"])

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/blocks/"+first+"/style",
		url.Values{"fontSize": {"100"}}, true).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/blocks/"+first+"/style",
		url.Values{"color": {"blue"}}, true).Code)
}

func TestToggle(t *testing.T) {
	f := newFixture(t)
	id := f.editor.Snapshot().SelectedID()
	toggle := func(field, value string) map[string]any {
		doc := decodeDocument(t, f.do(t, http.MethodPost, "/blocks/"+id+"/toggle",
			url.Values{"field": {field}, "value": {value}}, true))
		return doc.Blocks[0]["style"].(map[string]any)
	}

	assert.Equal(t, "heading2", toggle("format", "h2")["format"])
	assert.Equal(t, "paragraph", toggle("format", "heading2")["format"])
	assert.Equal(t, "italic", toggle("fontStyle", "italic")["fontStyle"])
	assert.Equal(t, "normal", toggle("fontStyle", "italic")["fontStyle"])

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/blocks/"+id+"/toggle",
		url.Values{"field": {"fontSize"}, "value": {"12"}}, true).Code)
}

func TestTypedTextAppliedBeforeAction(t *testing.T) {
	f := newFixture(t)
	id := f.editor.Snapshot().SelectedID()

	doc := decodeDocument(t, f.do(t, http.MethodPost, "/blocks/"+id+"/toggle", url.Values{
		"field": {"fontWeight"}, "value": {"bold"},
		"typedBlock": {id}, "typedContent": {"typed before bold"},
	}, true))
	assert.Equal(t, "typed before bold", doc.Blocks[0]["content"])
	assert.Equal(t, "bold", doc.Blocks[0]["style"].(map[string]any)["fontWeight"])

	// without typedContent the block is left alone
	doc = decodeDocument(t, f.do(t, http.MethodPost, "/blocks/"+id+"/style",
		url.Values{"fontSize": {"20"}, "typedBlock": {id}}, true))
	assert.Equal(t, "typed before bold", doc.Blocks[0]["content"])

	rec := f.do(t, http.MethodPost, "/submit", url.Values{
		"typedBlock": {id}, "typedContent": {"last words"},
	}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	payload, found, err := f.store.Load(context.Background(), domain.DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, found)
	blocks, err := domain.DecodeString(payload)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "last words", blocks[0].(domain.TextBlock).Content)
}

func TestEditPage_FormsSubmitThroughEvents(t *testing.T) {
	f := newFixture(t)
	body := f.do(t, http.MethodGet, "/", nil, false).Body.String()
	assert.NotContains(t, body, "this.form.submit()")
	assert.Contains(t, body, "typedContent")
}

func TestSelect(t *testing.T) {
	f := newFixture(t)
	first := f.editor.Snapshot().SelectedID()
	decodeDocument(t, f.do(t, http.MethodPost, "/blocks", url.Values{"type": {"text"}}, true))

	doc := decodeDocument(t, f.do(t, http.MethodPost, "/blocks/"+first+"/select", nil, true))
	assert.Equal(t, first, doc.SelectedID)
}

func TestSubmitAndView(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/view", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No content found")
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/column", nil, true).Code)

	id := f.editor.Snapshot().SelectedID()
	f.do(t, http.MethodPost, "/blocks/"+id+"/content", url.Values{"content": {"<b>Hello</b>\n  world"}}, true)
	f.do(t, http.MethodPost, "/blocks", url.Values{"type": {"text"}}, true) // blank, dropped

	rec = f.do(t, http.MethodPost, "/submit", nil, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/view", rec.Header().Get("Location"))

	rec = f.do(t, http.MethodGet, "/api/column", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	blocks, err := domain.DecodeString(rec.Body.String())
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	rec = f.do(t, http.MethodGet, "/view", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := html.Parse(rec.Body)
	require.NoError(t, err)
	p := cascadia.MustCompile("section.column > p").MatchFirst(doc)
	require.NotNil(t, p)
	require.NotNil(t, p.FirstChild)
	assert.Equal(t, "<b>Hello</b>\n  world", p.FirstChild.Data)
	assert.Empty(t, cascadia.MustCompile("[contenteditable]").MatchAll(doc))
}

func TestSubmitJSON(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/submit", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var ev service.SavedEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, service.SavedEvent{Key: domain.DefaultStorageKey, Blocks: 1}, ev)
}

func TestImageUpload(t *testing.T) {
	f := newFixture(t)
	png, _ := base64.StdEncoding.DecodeString(
		"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

	upload := func(name string, data []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("image", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/images", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		f.server.Handler().ServeHTTP(rec, req)
		return rec
	}

	doc := decodeDocument(t, upload("dot.png", png))
	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, "image", doc.Blocks[1]["type"])
	assert.True(t, strings.HasPrefix(doc.Blocks[1]["content"].(string), "data:image/png;base64,"))

	// not an image: silently ignored
	doc = decodeDocument(t, upload("notes.txt", []byte("just text")))
	assert.Len(t, doc.Blocks, 3)
}

func TestDocumentAPI(t *testing.T) {
	f := newFixture(t)
	doc := decodeDocument(t, f.do(t, http.MethodGet, "/api/document", nil, false))
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, doc.Blocks[0]["id"], doc.SelectedID)
	assert.Equal(t, uint64(0), doc.Version)
}

func TestWebsocketEvents(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	resp, err := http.PostForm(ts.URL+"/blocks", url.Values{"type": {"divider"}})
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg web.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, service.EventDocumentChanged, msg.Event)
	data := msg.Data.(map[string]any)
	assert.Equal(t, float64(1), data["version"])

	f.hub.Close()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"column/internal/domain"
	"column/internal/render"
	"column/internal/service"
	"column/internal/toolbar"
)

// documentJSON is the session snapshot served to API clients.
type documentJSON struct {
	Blocks     json.RawMessage `json:"blocks"`
	SelectedID string          `json:"selectedId"`
	Version    uint64          `json:"version"`
}

type editPage struct {
	Blocks       template.HTML
	SelectedID   string
	TextSelected bool
	Style        domain.Style
	Buttons      []toolbar.Button
	Version      uint64
	MinFontSize  int
	MaxFontSize  int
}

type viewPage struct {
	State  service.ViewState
	Blocks template.HTML
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// respond answers a mutation: JSON clients get the snapshot, browsers go
// back to the editor.
func (s *Server) respond(c echo.Context, doc domain.Document) error {
	if !wantsJSON(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return s.writeDocument(c, doc)
}

func (s *Server) writeDocument(c echo.Context, doc domain.Document) error {
	blocks, err := domain.Encode(doc.Blocks())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "encode document").SetInternal(err)
	}
	return c.JSON(http.StatusOK, documentJSON{
		Blocks:     blocks,
		SelectedID: doc.SelectedID(),
		Version:    s.Editor.Version(),
	})
}

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
}

// applyTyped saves the text the edit surface sends along with a toolbar,
// insert or submit action, so the action sees it.
func (s *Server) applyTyped(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := formValue(c, "typedBlock")
		content, has := formValue(c, "typedContent")
		if ok && has && id != "" {
			s.Editor.UpdateContent(c.Request().Context(), id, content)
		}
		return next(c)
	}
}

func (s *Server) handleEdit(c echo.Context) error {
	doc := s.Editor.Snapshot()
	html, err := render.String(doc.Blocks(), render.Options{Editable: true, SelectedID: doc.SelectedID()})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "render").SetInternal(err)
	}
	page := editPage{
		Blocks:      template.HTML(html),
		SelectedID:  doc.SelectedID(),
		Style:       domain.DefaultStyle(),
		Buttons:     toolbar.Buttons,
		Version:     s.Editor.Version(),
		MinFontSize: domain.MinFontSize,
		MaxFontSize: domain.MaxFontSize,
	}
	if sel, ok := doc.Selected(); ok {
		if t, ok := sel.(domain.TextBlock); ok {
			page.TextSelected = true
			page.Style = t.Style
		}
	}
	return c.Render(http.StatusOK, "edit.html", page)
}

func (s *Server) handleAddBlock(c echo.Context) error {
	kind, err := domain.ParseBlockType(c.FormValue("type"))
	if err != nil {
		return badRequest(err)
	}
	content, url := c.FormValue("content"), strings.TrimSpace(c.FormValue("url"))

	var opts []domain.BlockOption
	switch kind {
	case domain.BlockTypeLink:
		if url == "" {
			return badRequest(errors.New("link needs a url"))
		}
		if content == "" {
			content = url
		}
		opts = append(opts, domain.WithContent(content), domain.WithURL(url))
	case domain.BlockTypeText, domain.BlockTypeImage:
		opts = append(opts, domain.WithContent(content))
	}

	doc, err := s.Editor.AddBlock(c.Request().Context(), kind, opts...)
	if err != nil {
		return badRequest(err)
	}
	return s.respond(c, doc)
}

func (s *Server) handleSplit(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	// the edit surface sends the text typed so far along with Enter
	if content, ok := formValue(c, "content"); ok {
		s.Editor.UpdateContent(ctx, id, content)
	}
	return s.respond(c, s.Editor.SplitAfter(ctx, id))
}

func (s *Server) handleContent(c echo.Context) error {
	return s.respond(c, s.Editor.UpdateContent(c.Request().Context(), c.Param("id"), c.FormValue("content")))
}

func (s *Server) handleSelect(c echo.Context) error {
	return s.respond(c, s.Editor.Select(c.Request().Context(), c.Param("id")))
}

func (s *Server) handleStyle(c echo.Context) error {
	fields := map[string]string{}
	for _, key := range toolbar.StyleKeys {
		if v, ok := formValue(c, key); ok {
			fields[key] = v
		}
	}
	patch, err := toolbar.ParseStylePatch(fields)
	if err != nil {
		return badRequest(err)
	}
	return s.respond(c, s.Editor.UpdateStyle(c.Request().Context(), c.Param("id"), patch))
}

func (s *Server) handleToggle(c echo.Context) error {
	ctx := c.Request().Context()
	id, field, value := c.Param("id"), c.FormValue("field"), c.FormValue("value")

	if field == "format" {
		format, err := domain.ParseFormat(value)
		if err != nil {
			return badRequest(err)
		}
		return s.respond(c, s.Editor.ToggleFormat(ctx, id, format))
	}
	doc, err := s.Editor.ToggleStyle(ctx, id, domain.StyleField(field), value)
	if err != nil {
		return badRequest(err)
	}
	return s.respond(c, doc)
}

// handleImage runs the upload through ingestion. A rejected file adds
// nothing and is not reported to the user.
func (s *Server) handleImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return s.respond(c, s.Editor.Snapshot())
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "open upload").SetInternal(err)
	}
	defer f.Close()

	id := c.FormValue("uploadId")
	if id == "" {
		id = uuid.NewString()
	}
	err = s.Ingest.Ingest(c.Request().Context(), id, f)
	if errors.Is(err, service.ErrIngestRunning) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return s.respond(c, s.Editor.Snapshot())
}

func (s *Server) handleSubmit(c echo.Context) error {
	ev, err := s.Editor.Submit(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "save failed").SetInternal(err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, ev)
	}
	return c.Redirect(http.StatusSeeOther, "/view")
}

func (s *Server) handleView(c echo.Context) error {
	v := s.View.Load(c.Request().Context())
	page := viewPage{State: v.State}
	if v.State == service.ViewPopulated {
		html, err := render.String(v.Blocks, render.Options{})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "render").SetInternal(err)
		}
		page.Blocks = template.HTML(html)
	}
	return c.Render(http.StatusOK, "view.html", page)
}

func (s *Server) handleDocument(c echo.Context) error {
	return s.writeDocument(c, s.Editor.Snapshot())
}

func (s *Server) handleColumn(c echo.Context) error {
	payload, found, err := s.Store.Load(c.Request().Context(), s.Editor.Key())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "load failed").SetInternal(err)
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("nothing saved under %q", s.Editor.Key()))
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(payload))
}

// formValue distinguishes an absent field from an empty one.
func formValue(c echo.Context, key string) (string, bool) {
	params, err := c.FormParams()
	if err != nil {
		return "", false
	}
	if _, ok := params[key]; !ok {
		return "", false
	}
	return params.Get(key), true
}

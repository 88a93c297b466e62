// Package web serves the edit and view surfaces over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"column/internal/domain"
	"column/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the services the server routes to.
type Deps struct {
	Editor *service.EditorService
	View   *service.ViewService
	Ingest *service.ImageIngest
	Store  domain.KeyValue
	Hub    *Hub
	Log    logrus.FieldLogger
}

// Server is the HTTP surface.
type Server struct {
	Deps
	echo *echo.Echo
	log  logrus.FieldLogger
}

// templateRenderer adapts html/template to echo.Renderer.
type templateRenderer struct {
	templates *template.Template
}

func (t *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func New(deps Deps) *Server {
	log := deps.Log.WithField("component", "http")
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &templateRenderer{
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")),
	}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))

	s := &Server{Deps: deps, echo: e, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/", s.handleEdit)
	e.POST("/blocks", s.handleAddBlock, s.applyTyped)
	e.POST("/blocks/:id/split", s.handleSplit)
	e.POST("/blocks/:id/content", s.handleContent)
	e.POST("/blocks/:id/select", s.handleSelect, s.applyTyped)
	e.POST("/blocks/:id/style", s.handleStyle, s.applyTyped)
	e.POST("/blocks/:id/toggle", s.handleToggle, s.applyTyped)
	e.POST("/images", s.handleImage, s.applyTyped)
	e.POST("/submit", s.handleSubmit, s.applyTyped)
	e.GET("/view", s.handleView)
	e.GET("/api/document", s.handleDocument)
	e.GET("/api/column", s.handleColumn)
	e.GET("/ws", echo.WrapHandler(s.Hub))
}

// Handler exposes the routes for embedding, e.g. in the desktop shell.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}

// Shutdown stops accepting requests and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Hub.Close()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"column/internal/config"
	"column/internal/service"
)

// App is the desktop shell: a Wails window serving the web surface.
// All exported methods are available as Wails bindings.
type App struct {
	mu  sync.RWMutex
	ctx context.Context

	svcs *Services
	log  logrus.FieldLogger
}

// New creates a new App.
func New(log logrus.FieldLogger) *App {
	return &App{log: log.WithField("component", "desktop")}
}

// Run opens the services and blocks until the window is closed.
func (a *App) Run(ctx context.Context, cfg *config.Config) error {
	svcs, err := Build(ctx, cfg, a.log, a)
	if err != nil {
		return err
	}
	a.svcs = svcs
	size := svcs.Window.LoadWindowSize(ctx)

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	err = wails.Run(&options.App{
		Title:     "Column",
		Width:     size.Width,
		Height:    size.Height,
		MinWidth:  480,
		MinHeight: 400,
		AssetServer: &assetserver.Options{
			Handler: svcs.Web().Handler(),
		},
		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 1},
		Menu:             appMenu,
		OnStartup:        a.Startup,
		OnBeforeClose:    a.beforeClose,
		OnShutdown:       a.Shutdown,
		Bind: []interface{}{
			a,
		},
		Mac: &mac.Options{
			TitleBar: mac.TitleBarHiddenInset(),
			About: &mac.AboutInfo{
				Title:   "Column",
				Message: "Block-based column editor",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("desktop: %w", err)
	}
	return nil
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
	a.log.Info("window ready")
}

// beforeClose records the window size while the window still exists.
func (a *App) beforeClose(ctx context.Context) bool {
	w, h := wailsRuntime.WindowGetSize(ctx)
	if err := a.svcs.Window.SaveWindowSize(ctx, w, h); err != nil {
		a.log.WithError(err).Warn("save window size")
	}
	return false
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	a.ctx = nil
	a.mu.Unlock()
	if a.svcs != nil {
		if err := a.svcs.Close(); err != nil {
			a.log.WithError(err).Warn("shutdown")
		}
	}
}

// Emit forwards service events to the window once it exists.
func (a *App) Emit(_ context.Context, event string, data any) {
	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()
	if ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(ctx, event, data)
}

// ============================================================
// Bindings
// ============================================================

// Submit saves the column, as the toolbar's submit button does.
func (a *App) Submit() (service.SavedEvent, error) {
	return a.svcs.Editor.Submit(context.Background())
}

// OpenExternal opens a link block's target in the system browser.
func (a *App) OpenExternal(url string) error {
	return browser.OpenURL(url)
}

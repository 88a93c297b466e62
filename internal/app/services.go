package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"column/internal/config"
	"column/internal/secret"
	"column/internal/service"
	"column/internal/storage"
	"column/internal/web"
)

// Services is everything a surface needs, opened from one config.
type Services struct {
	Config  *config.Config
	Log     logrus.FieldLogger
	Backend *storage.Backend
	Hub     *web.Hub

	Editor *service.EditorService
	View   *service.ViewService
	Ingest *service.ImageIngest
	Window *service.WindowSettingsService

	autosave *service.Autosave
	watcher  *service.StoreWatcher
	poller   *service.StorePoller
}

// Build opens the configured store and starts the background services.
// Events go to the websocket hub and to every extra emitter.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, extra ...service.EventEmitter) (*Services, error) {
	backend, err := storage.Open(ctx, cfg.Store, cfg.DataDir, secret.Default())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.WithField("driver", cfg.Store.Driver).Info("store opened")

	s := &Services{
		Config:  cfg,
		Log:     log,
		Backend: backend,
		Hub:     web.NewHub(log),
	}
	emitter := append(service.Emitters{s.Hub}, extra...)

	s.Editor = service.NewEditorService(backend.Documents, cfg.StorageKey, emitter, log)
	s.View = service.NewViewService(backend.Documents, cfg.StorageKey, log)
	s.Ingest = service.NewImageIngest(s.Editor, cfg.MaxImageBytes, log)
	s.Window = service.NewWindowSettingsService(backend.Settings)

	if cfg.ResumeDraft {
		if _, err := s.Editor.ResumeDraft(ctx); err != nil {
			log.WithError(err).Warn("resume draft")
		}
	}
	if s.autosave, err = service.StartAutosave(ctx, s.Editor, cfg.Autosave, log); err != nil {
		s.Close()
		return nil, fmt.Errorf("autosave: %w", err)
	}

	if backend.Files != nil {
		path, err := backend.Files.Path(cfg.StorageKey)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("storage key: %w", err)
		}
		if s.watcher, err = service.WatchStore(ctx, backend.Documents, cfg.StorageKey, path, s.Editor, emitter, log); err != nil {
			s.Close()
			return nil, err
		}
	} else {
		s.poller = service.PollStore(ctx, backend.Documents, cfg.StorageKey, service.DefaultPollInterval, s.Editor, emitter, log)
	}
	return s, nil
}

// Web returns the HTTP surface over these services.
func (s *Services) Web() *web.Server {
	return web.New(web.Deps{
		Editor: s.Editor,
		View:   s.View,
		Ingest: s.Ingest,
		Store:  s.Backend.Documents,
		Hub:    s.Hub,
		Log:    s.Log,
	})
}

// Close stops the background services, keeps a last draft when autosave is
// on, and closes the store.
func (s *Services) Close() error {
	ctx := context.Background()
	s.Ingest.Wait(ctx)
	s.autosave.Stop()
	if s.autosave != nil {
		s.autosave.Run(ctx)
	}
	if s.poller != nil {
		s.poller.Stop()
	}
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
	}
	s.Hub.Close()
	errs = append(errs, s.Backend.Close())
	return errors.Join(errs...)
}

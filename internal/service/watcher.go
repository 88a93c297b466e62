package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"column/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Store Watcher — outside writes to the file store
// ─────────────────────────────────────────────────────────────

// StoreWatcher emits EventDocumentSaved when the file backing the storage
// key changes outside this process, so open views can refresh.
type StoreWatcher struct {
	store   domain.KeyValue
	key     string
	path    string
	editor  *EditorService
	emitter EventEmitter
	log     logrus.FieldLogger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// WatchStore watches path, the file holding key in store. Writes matching
// editor's last submit are ignored. editor may be nil.
func WatchStore(ctx context.Context, store domain.KeyValue, key, path string, editor *EditorService, emitter EventEmitter, log logrus.FieldLogger) (*StoreWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch path %q: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// the file is replaced by rename, so watch its directory
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch dir %q: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &StoreWatcher{
		store:   store,
		key:     key,
		path:    abs,
		editor:  editor,
		emitter: emitter,
		log:     log.WithField("component", "watcher"),
		watcher: watcher,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go w.loop(ctx, debounce.New(200*time.Millisecond))
	w.log.WithField("path", abs).Info("watching store")
	return w, nil
}

func (w *StoreWatcher) loop(ctx context.Context, debounced func(func())) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, _ := filepath.Abs(event.Name); abs != w.path {
				continue
			}
			debounced(func() { w.changed(ctx) })
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *StoreWatcher) changed(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	payload, found, err := w.store.Load(ctx, w.key)
	if err != nil || !found {
		return
	}
	if w.editor != nil && payload == w.editor.LastSaved() {
		return
	}
	emitExternal(ctx, w.emitter, w.log, w.key, payload)
}

func emitExternal(ctx context.Context, emitter EventEmitter, log logrus.FieldLogger, key, payload string) {
	n := 0
	if blocks, err := domain.DecodeString(payload); err == nil {
		n = len(blocks)
	}
	log.WithField("blocks", n).Info("store changed outside the editor")
	emitter.Emit(ctx, EventDocumentSaved, SavedEvent{Key: key, Blocks: n, External: true})
}

// Close stops watching.
func (w *StoreWatcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

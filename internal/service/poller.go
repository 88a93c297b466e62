package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"column/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Store Poller — outside writes to database backends
// ─────────────────────────────────────────────────────────────

// DefaultPollInterval is how often StorePoller reads the key.
const DefaultPollInterval = 2 * time.Second

// StorePoller is the StoreWatcher counterpart for backends without a file to
// watch: it re-reads the key on a ticker and emits EventDocumentSaved when
// another process (a standalone MCP server, a second editor) changed it.
type StorePoller struct {
	store   domain.KeyValue
	key     string
	editor  *EditorService
	emitter EventEmitter
	log     logrus.FieldLogger

	mu   sync.Mutex
	last string
	seen bool

	stopCh chan struct{}
	done   chan struct{}
}

// PollStore starts polling key in store every interval. editor may be nil.
func PollStore(ctx context.Context, store domain.KeyValue, key string, interval time.Duration, editor *EditorService, emitter EventEmitter, log logrus.FieldLogger) *StorePoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &StorePoller{
		store:   store,
		key:     key,
		editor:  editor,
		emitter: emitter,
		log:     log.WithField("component", "poller"),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	// the first read is the baseline, not a change
	p.check(ctx)
	go p.pollLoop(ctx, interval)
	return p
}

func (p *StorePoller) pollLoop(ctx context.Context, interval time.Duration) {
	defer close(p.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.check(ctx)
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *StorePoller) check(ctx context.Context) {
	payload, found, err := p.store.Load(ctx, p.key)
	if err != nil {
		p.log.WithError(err).Debug("poll failed")
		return
	}
	if !found {
		payload = ""
	}

	p.mu.Lock()
	changed := p.seen && payload != p.last
	p.last, p.seen = payload, true
	p.mu.Unlock()

	if !changed || payload == "" {
		return
	}
	if p.editor != nil && payload == p.editor.LastSaved() {
		return
	}
	emitExternal(ctx, p.emitter, p.log, p.key, payload)
}

// Stop terminates the polling loop.
func (p *StorePoller) Stop() {
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
	<-p.done
}

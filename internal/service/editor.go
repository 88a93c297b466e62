package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"column/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Editor Service — the single editing session
// ─────────────────────────────────────────────────────────────

// EditorService owns the one in-process editing session. Every mutation
// runs under the session lock and swaps in a new immutable snapshot, so
// HTTP, MCP and desktop callers all see whole operations.
type EditorService struct {
	store   domain.KeyValue
	key     string
	emitter EventEmitter
	log     logrus.FieldLogger

	mu      sync.Mutex
	doc     domain.Document
	version uint64
	drafted uint64 // version last written to the draft key
	saved   string // last payload submitted
}

// NewEditorService starts a session with a fresh document.
func NewEditorService(store domain.KeyValue, key string, emitter EventEmitter, log logrus.FieldLogger) *EditorService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &EditorService{
		store:   store,
		key:     key,
		emitter: emitter,
		log:     log.WithField("component", "editor"),
		doc:     domain.NewDocument(),
	}
}

// Key returns the storage key submits are written to.
func (s *EditorService) Key() string {
	return s.key
}

// Snapshot returns the current document.
func (s *EditorService) Snapshot() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Version counts mutations since the session started.
func (s *EditorService) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// apply runs fn under the lock. Unchanged snapshots do not bump the version.
func (s *EditorService) apply(ctx context.Context, fn func(domain.Document) (domain.Document, error)) (domain.Document, error) {
	s.mu.Lock()
	next, err := fn(s.doc)
	if err != nil {
		doc := s.doc
		s.mu.Unlock()
		return doc, err
	}
	changed := !sameDocument(s.doc, next)
	if changed {
		s.doc = next
		s.version++
	}
	ev := ChangeEvent{Version: s.version, SelectedID: next.SelectedID()}
	s.mu.Unlock()

	if changed {
		s.emitter.Emit(ctx, EventDocumentChanged, ev)
	}
	return next, nil
}

func (s *EditorService) mutate(ctx context.Context, fn func(domain.Document) domain.Document) domain.Document {
	doc, _ := s.apply(ctx, func(d domain.Document) (domain.Document, error) { return fn(d), nil })
	return doc
}

// AddBlock inserts a block after the selection.
func (s *EditorService) AddBlock(ctx context.Context, kind domain.BlockType, opts ...domain.BlockOption) (domain.Document, error) {
	return s.apply(ctx, func(d domain.Document) (domain.Document, error) {
		return d.AddBlock(kind, opts...)
	})
}

// addBlockWhile is AddBlock that gives up with live's error once live is
// done. The check runs under the session lock.
func (s *EditorService) addBlockWhile(ctx, live context.Context, kind domain.BlockType, opts ...domain.BlockOption) (domain.Document, error) {
	return s.apply(ctx, func(d domain.Document) (domain.Document, error) {
		if err := live.Err(); err != nil {
			return d, err
		}
		return d.AddBlock(kind, opts...)
	})
}

// locked runs fn while holding the session lock.
func (s *EditorService) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// SplitAfter is the Enter key: a new text block after id, inheriting its style.
func (s *EditorService) SplitAfter(ctx context.Context, id string) domain.Document {
	return s.mutate(ctx, func(d domain.Document) domain.Document { return d.SplitAfter(id) })
}

func (s *EditorService) UpdateContent(ctx context.Context, id, content string) domain.Document {
	return s.mutate(ctx, func(d domain.Document) domain.Document { return d.UpdateContent(id, content) })
}

func (s *EditorService) UpdateStyle(ctx context.Context, id string, patch domain.StylePatch) domain.Document {
	return s.mutate(ctx, func(d domain.Document) domain.Document { return d.UpdateStyle(id, patch) })
}

// ToggleStyle flips field to value on a text block, or back to the field's
// reset value when it is already set. Non-text and unknown ids are no-ops.
func (s *EditorService) ToggleStyle(ctx context.Context, id string, field domain.StyleField, value string) (domain.Document, error) {
	return s.apply(ctx, func(d domain.Document) (domain.Document, error) {
		current, ok := textStyle(d, id)
		if !ok {
			return d, nil
		}
		patch, err := domain.ToggleStyle(current, field, value)
		if err != nil {
			return d, err
		}
		return d.UpdateStyle(id, patch), nil
	})
}

// ToggleFormat sets format, or resets to paragraph when already set.
func (s *EditorService) ToggleFormat(ctx context.Context, id string, format domain.Format) domain.Document {
	return s.mutate(ctx, func(d domain.Document) domain.Document {
		current, ok := textStyle(d, id)
		if !ok {
			return d
		}
		return d.UpdateStyle(id, domain.ToggleFormat(current, format))
	})
}

func (s *EditorService) Select(ctx context.Context, id string) domain.Document {
	return s.mutate(ctx, func(d domain.Document) domain.Document { return d.Select(id) })
}

// Submit normalizes the session, writes it under the storage key and emits
// EventDocumentSaved. On success the session starts over with a fresh
// document, as the edit surface does after navigating to the view.
func (s *EditorService) Submit(ctx context.Context) (SavedEvent, error) {
	ev, err := s.submit(ctx)
	if err != nil {
		return ev, err
	}
	s.emitter.Emit(ctx, EventDocumentSaved, ev)
	return ev, nil
}

func (s *EditorService) submit(ctx context.Context) (SavedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := domain.NormalizeForPersistence(s.doc.Blocks())
	payload, err := domain.Encode(blocks)
	if err != nil {
		return SavedEvent{}, fmt.Errorf("encode column: %w", err)
	}
	if err := s.store.Save(ctx, s.key, string(payload)); err != nil {
		return SavedEvent{}, fmt.Errorf("save column: %w", err)
	}
	if err := s.store.Save(ctx, domain.DraftKey(s.key), ""); err != nil {
		s.log.WithError(err).Warn("clear draft")
	}
	s.log.WithFields(logrus.Fields{"key": s.key, "blocks": len(blocks), "bytes": len(payload)}).Info("column saved")

	s.saved = string(payload)
	s.doc = domain.NewDocument()
	s.version++
	s.drafted = s.version
	return SavedEvent{Key: s.key, Blocks: len(blocks)}, nil
}

// LastSaved returns the payload of the last successful submit.
func (s *EditorService) LastSaved() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// SaveDraft writes the normalized session to the draft key if it changed
// since the last draft. It reports whether anything was written.
func (s *EditorService) SaveDraft(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version == s.drafted {
		return false, nil
	}
	payload, err := domain.Encode(domain.NormalizeForPersistence(s.doc.Blocks()))
	if err != nil {
		return false, fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.Save(ctx, domain.DraftKey(s.key), string(payload)); err != nil {
		return false, fmt.Errorf("save draft: %w", err)
	}
	s.drafted = s.version
	return true, nil
}

// ResumeDraft replaces the session with the last autosaved draft. A missing,
// empty or unreadable draft leaves the session alone.
func (s *EditorService) ResumeDraft(ctx context.Context) (bool, error) {
	payload, found, err := s.store.Load(ctx, domain.DraftKey(s.key))
	if err != nil {
		return false, fmt.Errorf("load draft: %w", err)
	}
	if !found || payload == "" {
		return false, nil
	}
	blocks, err := domain.DecodeString(payload)
	if err != nil {
		s.log.WithError(err).Warn("discarding unreadable draft")
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	selected := ""
	if len(blocks) > 0 {
		selected = blocks[len(blocks)-1].BlockID()
	}
	s.doc = domain.FromBlocks(blocks, selected)
	s.version++
	s.drafted = s.version
	s.log.WithField("blocks", len(blocks)).Info("resumed draft")
	return true, nil
}

func textStyle(d domain.Document, id string) (domain.Style, bool) {
	b, ok := d.Block(id)
	if !ok {
		return domain.Style{}, false
	}
	t, ok := b.(domain.TextBlock)
	return t.Style, ok
}

func sameDocument(a, b domain.Document) bool {
	if a.SelectedID() != b.SelectedID() || a.Len() != b.Len() {
		return false
	}
	ab, bb := a.Blocks(), b.Blocks()
	for i := range ab {
		if !sameBlock(ab[i], bb[i]) {
			return false
		}
	}
	return true
}

func sameBlock(a, b domain.Block) bool {
	ua, okA := a.(domain.UnknownBlock)
	ub, okB := b.(domain.UnknownBlock)
	if okA || okB {
		return okA && okB && ua.ID == ub.ID && ua.Kind == ub.Kind && string(ua.Raw) == string(ub.Raw)
	}
	return a == b
}

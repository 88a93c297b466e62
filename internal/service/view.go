package service

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"column/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// View Service — read side of the column
// ─────────────────────────────────────────────────────────────

// ViewState is where the read-only surface is in its load cycle.
type ViewState string

const (
	ViewLoading   ViewState = "loading"
	ViewEmpty     ViewState = "empty"
	ViewPopulated ViewState = "populated"
)

// View is what the read-only surface shows.
type View struct {
	State  ViewState      `json:"state"`
	Blocks []domain.Block `json:"-"`
}

// Ready reports whether loading has finished.
func (v View) Ready() bool {
	return v.State != ViewLoading
}

// ViewService loads the persisted column for display. Load and parse
// failures are never surfaced: they read as an empty column.
type ViewService struct {
	store domain.KeyValue
	key   string
	log   logrus.FieldLogger

	mu   sync.Mutex
	view View
}

func NewViewService(store domain.KeyValue, key string, log logrus.FieldLogger) *ViewService {
	return &ViewService{
		store: store,
		key:   key,
		log:   log.WithField("component", "view"),
		view:  View{State: ViewLoading},
	}
}

// Current returns the last computed view without touching the store.
func (s *ViewService) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Load reads the store and moves loading to ready.
func (s *ViewService) Load(ctx context.Context) View {
	s.mu.Lock()
	s.view = View{State: ViewLoading}
	s.mu.Unlock()

	v := s.load(ctx)

	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	return v
}

func (s *ViewService) load(ctx context.Context) View {
	empty := View{State: ViewEmpty}

	payload, found, err := s.store.Load(ctx, s.key)
	if err != nil {
		s.log.WithError(err).Warn("load failed, showing empty column")
		return empty
	}
	if !found {
		return empty
	}
	blocks, err := domain.DecodeString(payload)
	if err != nil {
		s.log.WithError(err).Warn("unreadable column, showing empty column")
		return empty
	}

	blocks = domain.FilterBlank(blocks)
	renderable := lo.CountBy(blocks, func(b domain.Block) bool {
		_, unknown := b.(domain.UnknownBlock)
		return !unknown
	})
	if renderable == 0 {
		return empty
	}
	return View{State: ViewPopulated, Blocks: blocks}
}

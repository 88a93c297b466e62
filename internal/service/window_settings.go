package service

import (
	"context"
	"fmt"
	"strconv"

	"column/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Window Size Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves and restores the desktop window size between sessions as two rows
// of the backend's settings store.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSettingsService persists window size between sessions.
type WindowSettingsService struct {
	settings domain.KeyValue
}

// NewWindowSettingsService creates a WindowSettingsService.
func NewWindowSettingsService(settings domain.KeyValue) *WindowSettingsService {
	return &WindowSettingsService{settings: settings}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	defaultWindowWidth  = 960
	defaultWindowHeight = 800
	minWindowWidth      = 480
	minWindowHeight     = 400
)

// LoadWindowSize returns the saved window dimensions, or defaults.
func (s *WindowSettingsService) LoadWindowSize(ctx context.Context) WindowSize {
	if s.settings == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	w := s.loadInt(ctx, settingWindowWidth, defaultWindowWidth)
	h := s.loadInt(ctx, settingWindowHeight, defaultWindowHeight)
	if w < minWindowWidth {
		w = defaultWindowWidth
	}
	if h < minWindowHeight {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *WindowSettingsService) SaveWindowSize(ctx context.Context, width, height int) error {
	if s.settings == nil {
		return fmt.Errorf("window settings: no settings store")
	}
	if err := s.settings.Save(ctx, settingWindowWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return s.settings.Save(ctx, settingWindowHeight, strconv.Itoa(height))
}

func (s *WindowSettingsService) loadInt(ctx context.Context, key string, fallback int) int {
	v, found, err := s.settings.Load(ctx, key)
	if err != nil || !found {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

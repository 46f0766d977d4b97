package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streamwise/churn/internal/domain/port"
)

// Reload modes.
const (
	ModeOnce   = "once"
	ModeAlways = "always"
	ModeWatch  = "watch"
)

// LoadFunc loads a bundle from a source. Load is the production value.
type LoadFunc func(ctx context.Context, src Source) (*port.ArtifactBundle, error)

// ReloadHook observes every reload attempt after the initial load.
type ReloadHook func(ctx context.Context, err error)

// Store implements port.ArtifactProvider over a Source.
type Store struct {
	src    Source
	mode   string
	load   LoadFunc
	hook   ReloadHook
	logger *slog.Logger

	mu      sync.RWMutex
	current *port.ArtifactBundle
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithLoader replaces Load.
func WithLoader(fn LoadFunc) StoreOption {
	return func(s *Store) { s.load = fn }
}

// WithReloadHook registers a reload observer.
func WithReloadHook(fn ReloadHook) StoreOption {
	return func(s *Store) { s.hook = fn }
}

var _ port.ArtifactProvider = (*Store)(nil)

// NewStore performs the initial load. Its failure is returned unchanged so
// the caller can treat it as fatal.
func NewStore(ctx context.Context, src Source, mode string, logger *slog.Logger, opts ...StoreOption) (*Store, error) {
	switch mode {
	case ModeOnce, ModeAlways, ModeWatch:
	default:
		return nil, fmt.Errorf("artifact: unknown reload mode %q", mode)
	}

	s := &Store{src: src, mode: mode, load: Load, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	bundle, err := s.load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("artifact: initial load from %s: %w", src, err)
	}
	s.current = bundle

	logger.Info("artifacts loaded",
		"source", src.String(),
		"mode", mode,
		"model_version", bundle.ModelVersion,
		"model_type", bundle.ModelType,
		"columns", len(bundle.Columns),
	)
	return s, nil
}

// Current returns the live bundle. In always mode every call reloads first.
func (s *Store) Current(ctx context.Context) (*port.ArtifactBundle, error) {
	if s.mode == ModeAlways {
		_ = s.Reload(ctx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// Reload loads a fresh bundle and swaps it in. On failure the previous
// bundle stays live and the error is returned.
func (s *Store) Reload(ctx context.Context) error {
	bundle, err := s.load(ctx, s.src)
	if s.hook != nil {
		s.hook(ctx, err)
	}
	if err != nil {
		s.logger.Error("artifact reload failed, keeping previous bundle",
			"source", s.src.String(), "error", err)
		return err
	}

	s.mu.Lock()
	prev := s.current
	s.current = bundle
	s.mu.Unlock()

	if prev == nil || prev.ModelVersion != bundle.ModelVersion {
		s.logger.Info("artifacts reloaded",
			"source", s.src.String(), "model_version", bundle.ModelVersion)
	}
	return nil
}

// Mode returns the reload mode.
func (s *Store) Mode() string { return s.mode }

// Source returns the underlying source.
func (s *Store) Source() Source { return s.src }

// Close releases the source.
func (s *Store) Close() error { return s.src.Close() }

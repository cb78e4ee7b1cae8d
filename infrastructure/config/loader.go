package config

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	apperrors "draftsync-backend/pkg/errors"
	"draftsync-backend/pkg/observability"
)

// Loader fetches the connection configuration once per process and serves
// the cached copy afterwards. Failed fetches are not cached.
type Loader struct {
	source   Source
	logger   *zap.Logger
	recorder observability.Recorder

	group  singleflight.Group
	mu     sync.RWMutex
	cached *Configuration
}

// NewLoader creates a loader backed by source
func NewLoader(source Source, logger *zap.Logger, recorder observability.Recorder) *Loader {
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	return &Loader{
		source:   source,
		logger:   logger,
		recorder: recorder,
	}
}

// Ensure returns the configuration for this invocation. Inline configuration
// sent with the event is used as is and never triggers a fetch; when nothing
// is cached yet it also becomes the process configuration.
func (l *Loader) Ensure(ctx context.Context, inline *Configuration) (*Configuration, error) {
	if !inline.IsEmpty() {
		if err := inline.Validate(); err != nil {
			return nil, apperrors.NewConfigLoadError("inline configuration is invalid", err).
				WithDetail("source", "inline")
		}
		l.storeIfEmpty(inline)
		return inline, nil
	}

	if cfg := l.current(); cfg != nil {
		return cfg, nil
	}

	v, err, shared := l.group.Do("config", func() (interface{}, error) {
		// A concurrent caller may have finished while we waited
		if cfg := l.current(); cfg != nil {
			return cfg, nil
		}

		cfg, err := l.source.Fetch(ctx)
		l.recorder.RecordConfigLoad(l.source.Name(), err)
		if err != nil {
			return nil, err
		}

		l.storeIfEmpty(cfg)
		l.logger.Info("Configuration loaded",
			zap.String("source", l.source.Name()),
			zap.String("mongo_host", cfg.Mongo.Host),
			zap.String("mongo_db", cfg.Mongo.DB),
		)
		return l.current(), nil
	})
	if err != nil {
		return nil, apperrors.NewConfigLoadError("failed to load configuration", err).
			WithDetail("source", l.source.Name()).
			WithDetail("shared", shared)
	}
	return v.(*Configuration), nil
}

// Loaded reports whether a configuration is cached
func (l *Loader) Loaded() bool {
	return l.current() != nil
}

func (l *Loader) current() *Configuration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cached
}

func (l *Loader) storeIfEmpty(cfg *Configuration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached == nil {
		l.cached = cfg
	}
}

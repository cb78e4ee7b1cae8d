// Package mongodb persists drafts in MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"draftsync-backend/application/ports"
	"draftsync-backend/infrastructure/config"
	apperrors "draftsync-backend/pkg/errors"
	"draftsync-backend/pkg/observability"
)

const defaultScheme = "mongodb"

// ConnectionString builds the URI for settings. User and password are
// percent-encoded, empty option segments are dropped and TLS is always on.
func ConnectionString(m config.MongoSettings) string {
	scheme := m.Scheme
	if scheme == "" {
		scheme = defaultScheme
	}

	var sb strings.Builder
	sb.WriteString(scheme)
	sb.WriteString("://")
	if m.User != "" {
		sb.WriteString(url.UserPassword(m.User, m.Pass).String())
		sb.WriteString("@")
	}
	sb.WriteString(m.Host)
	sb.WriteString("/")
	sb.WriteString(m.DB)

	params := make([]string, 0, 4)
	if opts := trimOptions(m.ConnectOptions); opts != "" {
		params = append(params, opts)
	}
	if m.ReplicaSet != "" {
		params = append(params, "replicaSet="+url.QueryEscape(m.ReplicaSet))
	}
	params = append(params, "ssl=true")
	if opts := trimOptions(m.AuthOptions); opts != "" {
		params = append(params, opts)
	}

	sb.WriteString("?")
	sb.WriteString(strings.Join(params, "&"))
	return sb.String()
}

func trimOptions(s string) string {
	return strings.Trim(strings.TrimSpace(s), "?&")
}

// Handle is the process-wide database connection
type Handle struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// ManagerOptions tunes the Manager
type ManagerOptions struct {
	Collection string
	Breaker    BreakerSettings
}

type connectFunc func(ctx context.Context, uri string) (*mongo.Client, error)
type pingFunc func(ctx context.Context, client *mongo.Client) error

// Manager connects once per process and hands out the drafts store bound to
// that connection. A failed connect leaves nothing behind, so the next
// invocation connects again.
type Manager struct {
	opts     ManagerOptions
	logger   *zap.Logger
	recorder observability.Recorder

	connect connectFunc
	ping    pingFunc

	group  singleflight.Group
	mu     sync.RWMutex
	handle *Handle
	store  ports.DraftStore
}

// NewManager creates a connection manager
func NewManager(opts ManagerOptions, logger *zap.Logger, recorder observability.Recorder) *Manager {
	if opts.Collection == "" {
		opts.Collection = config.DefaultDraftsCollection
	}
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	return &Manager{
		opts:     opts,
		logger:   logger,
		recorder: recorder,
		connect:  defaultConnect,
		ping:     defaultPing,
	}
}

func defaultConnect(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

func defaultPing(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, readpref.Primary())
}

// Ensure returns the cached handle, connecting first if there is none
func (m *Manager) Ensure(ctx context.Context, cfg *config.Configuration) (*Handle, error) {
	if h := m.current(); h != nil {
		return h, nil
	}
	if cfg == nil {
		return nil, apperrors.NewConnectionError("no configuration to connect with", nil)
	}

	v, err, _ := m.group.Do("connect", func() (interface{}, error) {
		if h := m.current(); h != nil {
			return h, nil
		}

		h, err := m.dial(ctx, cfg.Mongo)
		m.recorder.RecordConnect(err)
		if err != nil {
			return nil, err
		}

		store := NewDraftRepository(h.Database.Collection(m.opts.Collection), m.logger)
		m.mu.Lock()
		m.handle = h
		m.store = wrapWithBreaker(store, m.opts.Breaker, m.logger)
		m.mu.Unlock()

		m.logger.Info("Connected to MongoDB",
			zap.String("host", cfg.Mongo.Host),
			zap.String("db", cfg.Mongo.DB),
			zap.String("collection", m.opts.Collection),
		)
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// Store returns the drafts store bound to the shared connection
func (m *Manager) Store(ctx context.Context, cfg *config.Configuration) (ports.DraftStore, error) {
	if _, err := m.Ensure(ctx, cfg); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store, nil
}

// Connected reports whether a handle is cached
func (m *Manager) Connected() bool {
	return m.current() != nil
}

// Disconnect closes the shared client. Lambda never calls it; the local
// server does on shutdown.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	h := m.handle
	m.handle, m.store = nil, nil
	m.mu.Unlock()

	if h == nil {
		return nil
	}
	return h.Client.Disconnect(ctx)
}

func (m *Manager) dial(ctx context.Context, settings config.MongoSettings) (*Handle, error) {
	client, err := m.connect(ctx, ConnectionString(settings))
	if err != nil {
		return nil, apperrors.NewConnectionError(fmt.Sprintf("failed to connect to %s", settings.Host), err)
	}

	if err := m.ping(ctx, client); err != nil {
		// Do not keep a half-open client around
		if derr := client.Disconnect(ctx); derr != nil {
			m.logger.Warn("Failed to close client after ping failure", zap.Error(derr))
		}
		return nil, apperrors.NewConnectionError(fmt.Sprintf("failed to reach %s", settings.Host), err)
	}

	return &Handle{
		Client:   client,
		Database: client.Database(settings.DB),
	}, nil
}

func (m *Manager) current() *Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handle
}

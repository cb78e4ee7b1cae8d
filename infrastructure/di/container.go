package di

import (
	"context"

	"go.uber.org/zap"

	"draftsync-backend/application/commands/handlers"
	"draftsync-backend/infrastructure/config"
	"draftsync-backend/infrastructure/persistence/mongodb"
	lambdahandler "draftsync-backend/interfaces/lambda"
	"draftsync-backend/pkg/observability"
)

// Container holds all application dependencies. It is built once per process
// and reused by every invocation.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Loader    *config.Loader
	Manager   *mongodb.Manager
	Collector *observability.Collector
	Tracing   *observability.TracerProvider
	SyncDraft *handlers.SyncDraftHandler
	Lambda    *lambdahandler.Handler
}

// Shutdown releases the database connection and flushes traces
func (c *Container) Shutdown(ctx context.Context) error {
	dbErr := c.Manager.Disconnect(ctx)
	if err := c.Tracing.Shutdown(ctx); err != nil {
		c.Logger.Warn("Failed to shut down tracing", zap.Error(err))
	}
	_ = c.Logger.Sync()
	return dbErr
}

package handlers

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"draftsync-backend/application/commands"
	"draftsync-backend/application/ports"
	"draftsync-backend/domain/drafts"
	"draftsync-backend/infrastructure/config"
	apperrors "draftsync-backend/pkg/errors"
	"draftsync-backend/pkg/observability"
)

// SyncDraftHandler runs one event through
// Received -> ConfigReady -> ConnectionReady -> Transformed -> Upserted.
// Any stage error ends the invocation; nothing is retried here.
type SyncDraftHandler struct {
	configs   ports.ConfigProvider
	stores    ports.DraftStoreProvider
	publisher ports.EventPublisher
	policy    drafts.FieldPolicy
	recorder  observability.Recorder
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time
}

// NewSyncDraftHandler creates a new sync draft handler. publisher may be nil
// when no event bus is configured.
func NewSyncDraftHandler(
	configs ports.ConfigProvider,
	stores ports.DraftStoreProvider,
	publisher ports.EventPublisher,
	policy drafts.FieldPolicy,
	recorder observability.Recorder,
	tracer trace.Tracer,
	logger *zap.Logger,
) *SyncDraftHandler {
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("draft-sync")
	}
	return &SyncDraftHandler{
		configs:   configs,
		stores:    stores,
		publisher: publisher,
		policy:    policy,
		recorder:  recorder,
		tracer:    tracer,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle executes the sync draft command
func (h *SyncDraftHandler) Handle(ctx context.Context, cmd commands.SyncDraftCommand) (result *commands.SyncDraftResult, err error) {
	start := h.now()
	stage := commands.StageReceived

	ctx, span := h.tracer.Start(ctx, "SyncDraft", trace.WithAttributes(
		attribute.String("user_id", cmd.UserID),
		attribute.String("request_id", cmd.RequestID),
	))
	logger := h.logger.With(
		zap.String("user_id", cmd.UserID),
		zap.String("request_id", cmd.RequestID),
	)

	defer func() {
		final, errType := stage, ""
		if err != nil {
			final, errType = commands.StageFailed, string(apperrors.TypeOf(err))
			if appErr := apperrors.GetAppError(err); appErr != nil {
				appErr.WithDetail("last_stage", string(stage))
			}
			logger.Error("Draft sync failed",
				zap.String("last_stage", string(stage)),
				zap.String("error_type", errType),
				zap.Error(err),
			)
		}
		span.SetAttributes(attribute.String("stage", string(final)))
		observability.EndSpan(span, err)
		h.recorder.RecordInvocation(ctx, string(final), errType, h.now().Sub(start))
	}()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	cfg, err := traced(ctx, h.tracer, "EnsureConfig", func(ctx context.Context) (*config.Configuration, error) {
		return h.configs.Ensure(ctx, cmd.Config)
	})
	if err != nil {
		return nil, err
	}
	stage = commands.StageConfigReady

	store, err := traced(ctx, h.tracer, "EnsureConnection", func(ctx context.Context) (ports.DraftStore, error) {
		return h.stores.Store(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	stage = commands.StageConnectionReady

	draft, err := drafts.NewDraft(h.policy, cmd.UserID, cmd.ResourceData)
	if err != nil {
		return nil, err
	}
	stage = commands.StageTransformed
	logger = logger.With(zap.Any("item_id", draft.ItemID))

	upsert, err := traced(ctx, h.tracer, "UpsertDraft", func(ctx context.Context) (*drafts.UpsertResult, error) {
		return store.Upsert(ctx, draft)
	})
	h.recorder.RecordUpsert(upsert != nil && upsert.Upserted, err)
	if err != nil {
		return nil, err
	}
	stage = commands.StageUpserted

	logger.Info("Draft upserted",
		zap.Int64("matched", upsert.Matched),
		zap.Int64("modified", upsert.Modified),
		zap.Bool("inserted", upsert.Upserted),
	)

	h.publish(ctx, logger, draft, upsert)

	return &commands.SyncDraftResult{
		Stage:  stage,
		Draft:  draft,
		Upsert: upsert,
	}, nil
}

// publish announces the synced draft. The draft is already stored, so a
// failed publish is logged and counted but does not fail the invocation.
func (h *SyncDraftHandler) publish(ctx context.Context, logger *zap.Logger, draft *drafts.Draft, upsert *drafts.UpsertResult) {
	if h.publisher == nil {
		return
	}

	event := ports.DraftSyncedEvent{
		UserID:     draft.UserID,
		ItemID:     draft.ItemID,
		Inserted:   upsert.Upserted,
		OccurredAt: h.now().UTC(),
	}
	_, err := traced(ctx, h.tracer, "PublishDraftSynced", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.publisher.PublishDraftSynced(ctx, event)
	})
	h.recorder.RecordPublish(err)
	if err != nil {
		logger.Warn("Failed to publish DraftSynced event", zap.Error(err))
	}
}

// traced runs fn inside a child span
func traced[T any](ctx context.Context, tracer trace.Tracer, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, name)
	v, err := fn(ctx)
	observability.EndSpan(span, err)
	return v, err
}

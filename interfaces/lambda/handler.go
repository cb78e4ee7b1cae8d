package lambda

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"draftsync-backend/application/commands"
)

// ResultSuccess is returned to the platform when the draft was stored
const ResultSuccess = "success"

// CommandHandler runs one sync command
type CommandHandler interface {
	Handle(ctx context.Context, cmd commands.SyncDraftCommand) (*commands.SyncDraftResult, error)
}

// Flusher pushes buffered telemetry out before the runtime freezes
type Flusher interface {
	ForceFlush(ctx context.Context) error
}

// Handler is the Lambda entry point
type Handler struct {
	commands CommandHandler
	flusher  Flusher
	logger   *zap.Logger
}

// NewHandler creates the entry handler. flusher may be nil.
func NewHandler(syncDraft CommandHandler, flusher Flusher, logger *zap.Logger) *Handler {
	return &Handler{
		commands: syncDraft,
		flusher:  flusher,
		logger:   logger,
	}
}

// Handle decodes the trigger event and syncs the draft it carries. Errors are
// returned unchanged so the platform applies its retry and dead-letter policy.
// The runtime hands the raw payload over as encoding/json.RawMessage; the
// decoding itself goes through go-json.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (string, error) {
	defer h.flush(ctx)

	requestID := RequestID(ctx)
	logger := h.logger.With(zap.String("request_id", requestID))

	decoded, err := DecodeEvent(event)
	if err != nil {
		logger.Error("Failed to decode event", zap.Error(err))
		return "", err
	}
	if decoded.Ignored > 0 {
		logger.Warn("Event carries more than one record, processing the first",
			zap.Int("ignored", decoded.Ignored),
		)
	}

	cmd := decoded.Command
	cmd.RequestID = requestID
	logger.Debug("Received event",
		zap.String("source", string(decoded.Source)),
		zap.String("user_id", cmd.UserID),
	)

	if _, err := h.commands.Handle(ctx, cmd); err != nil {
		return "", err
	}
	return ResultSuccess, nil
}

// RequestID returns the Lambda request ID, or a fresh one outside Lambda
func RequestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}

func (h *Handler) flush(ctx context.Context) {
	if h.flusher == nil {
		return
	}
	if err := h.flusher.ForceFlush(ctx); err != nil {
		h.logger.Warn("Failed to flush traces", zap.Error(err))
	}
}

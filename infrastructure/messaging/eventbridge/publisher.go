package eventbridge

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"draftsync-backend/application/ports"
	apperrors "draftsync-backend/pkg/errors"
)

// Source is the EventBridge source of every event this service emits
const Source = "draftsync"

// PutEventsAPI is the subset of the EventBridge client the publisher uses
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher implements ports.EventPublisher using AWS EventBridge
type EventBridgePublisher struct {
	client       PutEventsAPI
	eventBusName string
	source       string
	logger       *zap.Logger
}

// NewEventBridgePublisher creates a new EventBridge publisher
func NewEventBridgePublisher(client PutEventsAPI, eventBusName string, logger *zap.Logger) *EventBridgePublisher {
	return &EventBridgePublisher{
		client:       client,
		eventBusName: eventBusName,
		source:       Source,
		logger:       logger,
	}
}

var _ ports.EventPublisher = (*EventBridgePublisher)(nil)

// PublishDraftSynced sends one DraftSynced event
func (p *EventBridgePublisher) PublishDraftSynced(ctx context.Context, event ports.DraftSyncedEvent) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal DraftSynced event").WithCause(err)
	}

	entry := types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBusName),
		Source:       aws.String(p.source),
		DetailType:   aws.String(event.EventType()),
		Detail:       aws.String(string(detail)),
		Resources: []string{
			fmt.Sprintf("arn:aws:draftsync::%s/%v", event.UserID, event.ItemID),
		},
	}
	if !event.OccurredAt.IsZero() {
		entry.Time = aws.Time(event.OccurredAt)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return apperrors.NewExternalError("eventbridge", err)
	}

	if result.FailedEntryCount > 0 {
		for _, e := range result.Entries {
			if e.ErrorCode != nil {
				p.logger.Error("Failed to publish event",
					zap.String("eventType", event.EventType()),
					zap.String("errorCode", aws.ToString(e.ErrorCode)),
					zap.String("errorMessage", aws.ToString(e.ErrorMessage)),
				)
			}
		}
		return apperrors.NewExternalError("eventbridge",
			fmt.Errorf("%d events failed to publish", result.FailedEntryCount))
	}

	p.logger.Debug("Event published to EventBridge",
		zap.String("eventType", event.EventType()),
		zap.String("eventBus", p.eventBusName),
	)
	return nil
}

// Package lambda adapts the Lambda trigger events to sync commands.
package lambda

import (
	"bytes"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"

	"draftsync-backend/application/commands"
	apperrors "draftsync-backend/pkg/errors"
)

// EventSource names where an envelope came from
type EventSource string

const (
	SourceSNS         EventSource = "sns"
	SourceEventBridge EventSource = "eventbridge"
	SourceDirect      EventSource = "direct"
)

const snsEventSource = "aws:sns"

// Decoded is the envelope extracted from one trigger event
type Decoded struct {
	Command commands.SyncDraftCommand
	Source  EventSource
	// Ignored counts SNS records after the first one
	Ignored int
}

// DecodeEvent extracts the envelope from an SNS notification, an EventBridge
// event or a bare envelope, in that order.
func DecodeEvent(raw []byte) (*Decoded, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, apperrors.NewTransformError("invalid event: expected a JSON object")
	}

	// SNS notification
	var snsEvent events.SNSEvent
	if err := json.Unmarshal(raw, &snsEvent); err == nil && len(snsEvent.Records) > 0 {
		record := snsEvent.Records[0]
		if record.EventSource == snsEventSource || record.SNS.Message != "" {
			cmd, err := decodeEnvelope([]byte(record.SNS.Message))
			if err != nil {
				return nil, err
			}
			return &Decoded{Command: cmd, Source: SourceSNS, Ignored: len(snsEvent.Records) - 1}, nil
		}
	}

	// EventBridge event
	var cwEvent events.CloudWatchEvent
	if err := json.Unmarshal(raw, &cwEvent); err == nil && (cwEvent.DetailType != "" || cwEvent.Source != "") {
		if len(cwEvent.Detail) == 0 {
			return nil, apperrors.NewTransformError("invalid event: EventBridge event has no detail").
				WithDetail("detail_type", cwEvent.DetailType)
		}
		cmd, err := decodeEnvelope(cwEvent.Detail)
		if err != nil {
			return nil, err
		}
		return &Decoded{Command: cmd, Source: SourceEventBridge}, nil
	}

	// Direct invocation
	cmd, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return &Decoded{Command: cmd, Source: SourceDirect}, nil
}

func decodeEnvelope(data []byte) (commands.SyncDraftCommand, error) {
	var cmd commands.SyncDraftCommand
	if len(bytes.TrimSpace(data)) == 0 {
		return cmd, apperrors.NewTransformError("invalid event: empty message body")
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return cmd, apperrors.NewTransformError("invalid event: message body is not an envelope").WithCause(err)
	}
	return cmd, nil
}

package commands

import (
	"draftsync-backend/domain/drafts"
	"draftsync-backend/infrastructure/config"
	apperrors "draftsync-backend/pkg/errors"
	"draftsync-backend/pkg/utils"
)

// SyncDraftCommand carries one notification's payload
type SyncDraftCommand struct {
	RequestID    string                `json:"-"`
	UserID       string                `json:"userId" validate:"required"`
	ResourceData drafts.ResourceData   `json:"resourceData" validate:"required"`
	Config       *config.Configuration `json:"config,omitempty" validate:"-"`
}

// Validate checks the envelope fields every event must carry
func (c SyncDraftCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return apperrors.NewTransformError("invalid event: " + err.Error())
	}
	return nil
}

// Stage is how far an invocation got
type Stage string

const (
	StageReceived        Stage = "Received"
	StageConfigReady     Stage = "ConfigReady"
	StageConnectionReady Stage = "ConnectionReady"
	StageTransformed     Stage = "Transformed"
	StageUpserted        Stage = "Upserted"
	StageFailed          Stage = "Failed"
)

// SyncDraftResult describes a successful sync
type SyncDraftResult struct {
	Stage  Stage
	Draft  *drafts.Draft
	Upsert *drafts.UpsertResult
}

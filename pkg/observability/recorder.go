package observability

import (
	"context"
	"time"
)

// Outcome labels used by every recorder
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Recorder records what happened during an invocation
type Recorder interface {
	RecordInvocation(ctx context.Context, stage string, errType string, duration time.Duration)
	RecordConfigLoad(source string, err error)
	RecordConnect(err error)
	RecordUpsert(inserted bool, err error)
	RecordPublish(err error)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) RecordInvocation(context.Context, string, string, time.Duration) {}
func (NopRecorder) RecordConfigLoad(string, error)                                 {}
func (NopRecorder) RecordConnect(error)                                            {}
func (NopRecorder) RecordUpsert(bool, error)                                       {}
func (NopRecorder) RecordPublish(error)                                            {}

// MultiRecorder fans out to several recorders
type MultiRecorder []Recorder

func (m MultiRecorder) RecordInvocation(ctx context.Context, stage string, errType string, duration time.Duration) {
	for _, r := range m {
		r.RecordInvocation(ctx, stage, errType, duration)
	}
}

func (m MultiRecorder) RecordConfigLoad(source string, err error) {
	for _, r := range m {
		r.RecordConfigLoad(source, err)
	}
}

func (m MultiRecorder) RecordConnect(err error) {
	for _, r := range m {
		r.RecordConnect(err)
	}
}

func (m MultiRecorder) RecordUpsert(inserted bool, err error) {
	for _, r := range m {
		r.RecordUpsert(inserted, err)
	}
}

func (m MultiRecorder) RecordPublish(err error) {
	for _, r := range m {
		r.RecordPublish(err)
	}
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

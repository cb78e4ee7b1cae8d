// Package drafts holds the rules that turn a user's resource payload into a
// draft document.
package drafts

import (
	"strings"

	apperrors "draftsync-backend/pkg/errors"
)

const (
	// SourceIDField is the key carrying the resource identity in incoming data.
	SourceIDField = "Id"

	// ItemIDField is the persisted name of the resource identity.
	ItemIDField = "itemId"

	// UserIDField is the persisted owner of a draft.
	UserIDField = "user_id"
)

// ResourceData is the flat key/value payload delivered with a notification.
type ResourceData map[string]interface{}

// ResourceObject is the filtered, renamed payload written into a draft.
type ResourceObject map[string]interface{}

// FieldPolicy describes which keys are dropped and which are renamed before a
// payload is persisted.
type FieldPolicy struct {
	ExcludedPrefixes []string
	Renames          map[string]string
}

// DefaultFieldPolicy drops metadata keys ("@type", "_links", ...) and stores
// the resource Id as itemId.
func DefaultFieldPolicy() FieldPolicy {
	return FieldPolicy{
		ExcludedPrefixes: []string{"@", "_"},
		Renames: map[string]string{
			SourceIDField: ItemIDField,
		},
	}
}

// Excluded reports whether key is filtered out by the policy.
func (p FieldPolicy) Excluded(key string) bool {
	for _, prefix := range p.ExcludedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Transform applies the policy to data. The input is never modified.
// Data without a usable Id is rejected so nothing is written under a
// missing identity.
func (p FieldPolicy) Transform(data ResourceData) (ResourceObject, error) {
	if _, err := Identity(data); err != nil {
		return nil, err
	}

	out := make(ResourceObject, len(data))
	for key, value := range data {
		if p.Excluded(key) {
			continue
		}
		if _, ok := p.Renames[key]; ok {
			continue
		}
		out[key] = value
	}

	// Renamed keys win over a pass-through key of the same name
	for from, to := range p.Renames {
		if value, ok := data[from]; ok && !p.Excluded(from) {
			out[to] = value
		}
	}
	return out, nil
}

// Identity returns the original Id value of the resource.
func Identity(data ResourceData) (interface{}, error) {
	id, ok := data[SourceIDField]
	if !ok {
		return nil, apperrors.NewTransformError("resource data has no Id field")
	}

	switch v := id.(type) {
	case nil:
		return nil, apperrors.NewTransformError("resource Id is null")
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, apperrors.NewTransformError("resource Id is empty")
		}
	case map[string]interface{}, []interface{}:
		return nil, apperrors.NewTransformError("resource Id must be a scalar")
	}
	return id, nil
}

package drafts

import (
	"fmt"
	"testing"

	apperrors "draftsync-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_Scenario(t *testing.T) {
	data := ResourceData{
		"Id":        "42",
		"@type":     "x",
		"_internal": "y",
		"title":     "Hello",
	}

	draft, err := NewDraft(DefaultFieldPolicy(), "u1", data)
	require.NoError(t, err)

	assert.Equal(t, ResourceObject{"itemId": "42", "title": "Hello"}, draft.Fields)
	assert.Equal(t, "u1", draft.UserID)
	assert.Equal(t, "42", draft.ItemID)
	assert.Equal(t, "u1/42", draft.Key())
}

func TestTransform_DropsPrefixedKeys(t *testing.T) {
	values := []interface{}{"s", 1.5, true, nil, ""}
	policy := DefaultFieldPolicy()

	for i, v := range values {
		data := ResourceData{"Id": "1", "@odata.etag": v, "_links": v}
		data[fmt.Sprintf("@k%d", i)] = v
		data[fmt.Sprintf("_k%d", i)] = v
		data[fmt.Sprintf("kept%d", i)] = v

		out, err := policy.Transform(data)
		require.NoError(t, err)

		for key := range out {
			assert.False(t, policy.Excluded(key), "prefixed key %q leaked", key)
		}
		assert.Contains(t, out, fmt.Sprintf("kept%d", i))
	}
}

func TestTransform_OnlyIdIsRenamed(t *testing.T) {
	data := ResourceData{
		"Id":     "7",
		"id":     "lower",
		"ID":     "upper",
		"ItemId": "other",
		"itemId": "clobber-me",
		"Idx":    1.0,
	}

	out, err := DefaultFieldPolicy().Transform(data)
	require.NoError(t, err)

	assert.NotContains(t, out, "Id")
	assert.Equal(t, "lower", out["id"])
	assert.Equal(t, "upper", out["ID"])
	assert.Equal(t, "other", out["ItemId"])
	assert.Equal(t, 1.0, out["Idx"])
	assert.Equal(t, "7", out["itemId"])
}

func TestTransform_Idempotent(t *testing.T) {
	data := ResourceData{"Id": 42.0, "@x": 1, "name": "n", "count": 3.0}
	policy := DefaultFieldPolicy()

	first, err := policy.Transform(data)
	require.NoError(t, err)
	second, err := policy.Transform(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// input untouched
	assert.Equal(t, ResourceData{"Id": 42.0, "@x": 1, "name": "n", "count": 3.0}, data)
}

func TestTransform_RejectsMissingIdentity(t *testing.T) {
	tests := []struct {
		name string
		data ResourceData
	}{
		{"no Id", ResourceData{"title": "Hello"}},
		{"null Id", ResourceData{"Id": nil, "title": "Hello"}},
		{"empty Id", ResourceData{"Id": "  "}},
		{"object Id", ResourceData{"Id": map[string]interface{}{"a": 1}}},
		{"only prefixed Id", ResourceData{"@Id": "1", "_Id": "2"}},
		{"empty data", ResourceData{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := DefaultFieldPolicy().Transform(tt.data)
			assert.Nil(t, out)
			assert.True(t, apperrors.IsTransform(err), "got %v", err)
		})
	}
}

func TestIdentity_NumericId(t *testing.T) {
	id, err := Identity(ResourceData{"Id": 42.0})
	require.NoError(t, err)
	assert.Equal(t, 42.0, id)
}

func TestFieldPolicy_Custom(t *testing.T) {
	policy := FieldPolicy{
		ExcludedPrefixes: []string{"$"},
		Renames:          map[string]string{"Id": "itemId", "Name": "title"},
	}

	out, err := policy.Transform(ResourceData{"Id": "1", "Name": "n", "$meta": "m", "_kept": "k"})
	require.NoError(t, err)
	assert.Equal(t, ResourceObject{"itemId": "1", "title": "n", "_kept": "k"}, out)
}

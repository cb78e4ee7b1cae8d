package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"draftsync-backend/domain/drafts"
	apperrors "draftsync-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mockCollection struct {
	mock.Mock
}

func (m *mockCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	args := m.Called(ctx, filter, update, opts)
	res, _ := args.Get(0).(*mongo.UpdateResult)
	return res, args.Error(1)
}

func scenarioDraft(t *testing.T) *drafts.Draft {
	t.Helper()
	draft, err := drafts.NewDraft(drafts.DefaultFieldPolicy(), "u1", drafts.ResourceData{
		"Id":        "42",
		"@type":     "x",
		"_internal": "y",
		"title":     "Hello",
	})
	require.NoError(t, err)
	return draft
}

func upsertEnabled(opts []*options.UpdateOptions) bool {
	merged := options.MergeUpdateOptions(opts...)
	return merged.Upsert != nil && *merged.Upsert
}

func TestDraftRepository_Upsert_Inserted(t *testing.T) {
	ctx := context.Background()
	coll := new(mockCollection)

	wantFilter := bson.D{{Key: "user_id", Value: "u1"}, {Key: "itemId", Value: "42"}}
	wantUpdate := bson.D{{Key: "$set", Value: bson.M{"itemId": "42", "title": "Hello"}}}

	coll.On("UpdateOne", ctx, wantFilter, wantUpdate, mock.MatchedBy(upsertEnabled)).
		Return(&mongo.UpdateResult{UpsertedCount: 1, UpsertedID: "oid-1"}, nil)

	repo := NewDraftRepository(coll, zap.NewNop())
	res, err := repo.Upsert(ctx, scenarioDraft(t))

	require.NoError(t, err)
	assert.True(t, res.Upserted)
	assert.Equal(t, "oid-1", res.UpsertedID)
	coll.AssertExpectations(t)
}

func TestDraftRepository_Upsert_Updated(t *testing.T) {
	coll := new(mockCollection)
	coll.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	res, err := NewDraftRepository(coll, zap.NewNop()).Upsert(context.Background(), scenarioDraft(t))

	require.NoError(t, err)
	assert.False(t, res.Upserted)
	assert.Equal(t, int64(1), res.Matched)
	assert.Equal(t, int64(1), res.Modified)
}

func TestDraftRepository_Upsert_Error(t *testing.T) {
	writeErr := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}}}
	coll := new(mockCollection)
	coll.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, writeErr)

	_, err := NewDraftRepository(coll, zap.NewNop()).Upsert(context.Background(), scenarioDraft(t))

	require.Error(t, err)
	assert.True(t, apperrors.IsUpsert(err))
	assert.True(t, mongo.IsDuplicateKeyError(err))
	assert.Equal(t, "u1", apperrors.GetAppError(err).Details["user_id"])
}

type stubStore struct {
	calls int
	err   error
}

func (s *stubStore) Upsert(context.Context, *drafts.Draft) (*drafts.UpsertResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &drafts.UpsertResult{Matched: 1}, nil
}

func TestBreakerDraftStore_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &stubStore{err: apperrors.NewUpsertError("updateOne", errors.New("network"))}
	store := NewBreakerDraftStore(inner, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, zap.NewNop())
	draft := scenarioDraft(t)

	for i := 0; i < 2; i++ {
		_, err := store.Upsert(context.Background(), draft)
		assert.True(t, apperrors.IsUpsert(err))
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())

	_, err := store.Upsert(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, apperrors.IsUpsert(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, "CIRCUIT_OPEN", apperrors.GetAppError(err).Code)
	// the open breaker did not touch the database
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerDraftStore_PassesThrough(t *testing.T) {
	inner := &stubStore{}
	store := NewBreakerDraftStore(inner, BreakerSettings{MaxFailures: 1, OpenTimeout: time.Minute}, zap.NewNop())

	res, err := store.Upsert(context.Background(), scenarioDraft(t))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestWrapWithBreaker_Disabled(t *testing.T) {
	inner := &stubStore{}
	assert.Same(t, inner, wrapWithBreaker(inner, BreakerSettings{}, zap.NewNop()))
}

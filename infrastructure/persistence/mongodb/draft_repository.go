package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"draftsync-backend/domain/drafts"
	apperrors "draftsync-backend/pkg/errors"
)

// UpdateOneAPI is the slice of *mongo.Collection used for drafts
type UpdateOneAPI interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// DraftRepository upserts drafts into a single collection
type DraftRepository struct {
	collection UpdateOneAPI
	logger     *zap.Logger
}

// NewDraftRepository creates a repository over collection
func NewDraftRepository(collection UpdateOneAPI, logger *zap.Logger) *DraftRepository {
	return &DraftRepository{
		collection: collection,
		logger:     logger,
	}
}

// DraftFilter selects the one draft for (user_id, itemId)
func DraftFilter(userID string, itemID interface{}) bson.D {
	return bson.D{
		{Key: drafts.UserIDField, Value: userID},
		{Key: drafts.ItemIDField, Value: itemID},
	}
}

// DraftUpdate sets every field of the resource object
func DraftUpdate(fields drafts.ResourceObject) bson.D {
	return bson.D{{Key: "$set", Value: bson.M(fields)}}
}

// Upsert writes draft, inserting it when no document matches
func (r *DraftRepository) Upsert(ctx context.Context, draft *drafts.Draft) (*drafts.UpsertResult, error) {
	res, err := r.collection.UpdateOne(ctx,
		DraftFilter(draft.UserID, draft.ItemID),
		DraftUpdate(draft.Fields),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, apperrors.NewUpsertError("updateOne", err).
			WithDetail("user_id", draft.UserID).
			WithDetail("item_id", draft.ItemID)
	}

	result := &drafts.UpsertResult{
		Matched:    res.MatchedCount,
		Modified:   res.ModifiedCount,
		Upserted:   res.UpsertedCount > 0,
		UpsertedID: res.UpsertedID,
	}

	r.logger.Debug("Draft upserted",
		zap.String("draft", draft.Key()),
		zap.Int64("matched", result.Matched),
		zap.Int64("modified", result.Modified),
		zap.Bool("inserted", result.Upserted),
	)
	return result, nil
}

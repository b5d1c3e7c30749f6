package repository

import (
	"context"
	"time"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMappingRepository implements MappingRepository with one document per
// (timetableKey, identityKey) pair, unique-indexed so an identity key can
// never point at two calendar events
type MongoMappingRepository struct {
	collection *mongo.Collection
}

// NewMongoMappingRepository creates a new mapping repository
func NewMongoMappingRepository(db *mongo.Database) repository.MappingRepository {
	collection := db.Collection("calendar_mappings")

	ctx := context.Background()
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timetableKey", Value: 1}, {Key: "identityKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoMappingRepository{
		collection: collection,
	}
}

// GetAll loads a timetable's full mapping
func (r *MongoMappingRepository) GetAll(ctx context.Context, timetableKey string) (entity.CalendarMapping, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"timetableKey": timetableKey})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	mapping := make(entity.CalendarMapping)
	for cursor.Next(ctx) {
		var entry entity.MappingEntry
		if err := cursor.Decode(&entry); err != nil {
			return nil, err
		}
		mapping[entry.IdentityKey] = entry.ExternalEventID
	}
	return mapping, cursor.Err()
}

// Upsert creates or updates one mapping entry
func (r *MongoMappingRepository) Upsert(ctx context.Context, timetableKey, identityKey, externalEventID string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"externalEventId": externalEventID,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"createdAt": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"timetableKey": timetableKey, "identityKey": identityKey}
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Delete removes one mapping entry; deleting a missing entry is a no-op
func (r *MongoMappingRepository) Delete(ctx context.Context, timetableKey, identityKey string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"timetableKey": timetableKey, "identityKey": identityKey})
	return err
}

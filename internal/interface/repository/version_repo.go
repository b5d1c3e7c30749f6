package repository

import (
	"context"
	"errors"
	"time"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoVersionRepository implements VersionRepository. The latest baseline
// lives in timetable_versions (one document per timetable, replaced on
// commit); every committed version is also appended to
// timetable_version_audit, which is never updated or deleted.
type MongoVersionRepository struct {
	latest *mongo.Collection
	audit  *mongo.Collection
}

// NewMongoVersionRepository creates a new version repository
func NewMongoVersionRepository(db *mongo.Database) repository.VersionRepository {
	latest := db.Collection("timetable_versions")
	audit := db.Collection("timetable_version_audit")

	ctx := context.Background()
	latest.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"timetableKey": 1},
		Options: options.Index().SetUnique(true),
	})
	audit.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timetableKey", Value: 1}, {Key: "versionTimestamp", Value: 1}},
	})

	return &MongoVersionRepository{
		latest: latest,
		audit:  audit,
	}
}

// GetLatest returns the stored baseline for a timetable, nil when none exists
func (r *MongoVersionRepository) GetLatest(ctx context.Context, timetableKey string) (*entity.VersionRecord, error) {
	var record entity.VersionRecord
	err := r.latest.FindOne(ctx, bson.M{"timetableKey": timetableKey}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveLatest replaces the baseline for a timetable
func (r *MongoVersionRepository) SaveLatest(ctx context.Context, record *entity.VersionRecord) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.latest.ReplaceOne(ctx, bson.M{"timetableKey": record.TimetableKey}, record, opts)
	return err
}

// AppendAudit appends a committed version to the audit log
func (r *MongoVersionRepository) AppendAudit(ctx context.Context, record *entity.VersionRecord) error {
	auditRecord := *record
	auditRecord.ID = primitive.NewObjectID().Hex()
	_, err := r.audit.InsertOne(ctx, &auditRecord)
	return err
}

// LatestVersionTimestamp returns the stored baseline's version stamp,
// zero when no baseline exists
func (r *MongoVersionRepository) LatestVersionTimestamp(ctx context.Context, timetableKey string) (time.Time, error) {
	record, err := r.GetLatest(ctx, timetableKey)
	if err != nil || record == nil {
		return time.Time{}, err
	}
	return record.VersionTimestamp, nil
}

package settings

import (
	"context"
	"time"

	"Backend-FaceAttend/src/models"
	"Backend-FaceAttend/src/services/attendance"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store persists one settings document per operator.
type Store interface {
	GetOrCreate(ctx context.Context, defaults models.OperatorSettings) (models.OperatorSettings, error)
	Replace(ctx context.Context, doc models.OperatorSettings) error
}

// Service is the settings collaborator: lazy creation with the default cutoff
// and whole-document replacement that never touches protected fields.
type Service struct {
	store         Store
	defaultCutoff string
	now           func() time.Time
	log           *zap.Logger
}

var _ attendance.SettingsProvider = (*Service)(nil)

func NewService(store Store, defaultCutoff string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, defaultCutoff: defaultCutoff, now: time.Now, log: log.Named("settings")}
}

func (s *Service) GetOrCreate(ctx context.Context, operatorID primitive.ObjectID, kind string) (models.OperatorSettings, error) {
	if operatorID.IsZero() {
		return models.OperatorSettings{}, &attendance.ValidationError{Field: "operatorId", Reason: "is required"}
	}
	if kind != models.OperatorAdmin && kind != models.OperatorTeacher {
		return models.OperatorSettings{}, &attendance.ValidationError{Field: "operatorKind", Reason: "must be admin or teacher"}
	}
	now := s.now()
	return s.store.GetOrCreate(ctx, models.OperatorSettings{
		OperatorID:   operatorID,
		OperatorKind: kind,
		LateCutoff:   s.defaultCutoff,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Replace swaps the operator's configurable fields for req. Identity, owner
// linkage and audit timestamps are taken from the stored document.
func (s *Service) Replace(ctx context.Context, operatorID primitive.ObjectID, kind string, req models.SettingsRequest) (models.OperatorSettings, error) {
	cutoff, err := attendance.ParseCutoff(req.LateCutoff)
	if err != nil {
		return models.OperatorSettings{}, err
	}
	current, err := s.GetOrCreate(ctx, operatorID, kind)
	if err != nil {
		return models.OperatorSettings{}, err
	}

	next := models.OperatorSettings{
		ID:           current.ID,
		OperatorID:   current.OperatorID,
		OperatorKind: current.OperatorKind,
		LateCutoff:   cutoff.String(),
		Preferences:  bson.M(req.Preferences),
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    s.now(),
	}
	if err := s.store.Replace(ctx, next); err != nil {
		return models.OperatorSettings{}, err
	}
	s.log.Info("settings replaced", zap.String("operatorId", operatorID.Hex()), zap.String("lateCutoff", next.LateCutoff))
	return next, nil
}

// MongoStore keeps settings in the operatorSettings collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("operatorSettings")}
}

// EnsureIndexes at most one document per operator.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "operatorId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_operator"),
	})
	return errors.Wrap(err, "settings: ensure indexes")
}

// GetOrCreate upserts with $setOnInsert so concurrent first reads agree on one document.
func (m *MongoStore) GetOrCreate(ctx context.Context, defaults models.OperatorSettings) (models.OperatorSettings, error) {
	filter := bson.M{"operatorId": defaults.OperatorID}
	update := bson.M{"$setOnInsert": bson.M{
		"operatorKind": defaults.OperatorKind,
		"lateCutoff":   defaults.LateCutoff,
		"createdAt":    defaults.CreatedAt,
		"updatedAt":    defaults.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc models.OperatorSettings
	err := m.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// lost the upsert race; the winner's document is there now
		err = m.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return models.OperatorSettings{}, errors.Wrapf(err, "settings: get or create %s", defaults.OperatorID.Hex())
	}
	return doc, nil
}

func (m *MongoStore) Replace(ctx context.Context, doc models.OperatorSettings) error {
	res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "operatorId": doc.OperatorID}, doc)
	if err != nil {
		return errors.Wrapf(err, "settings: replace %s", doc.OperatorID.Hex())
	}
	if res.MatchedCount == 0 {
		return &attendance.NotFoundError{Kind: "settings", ID: doc.ID.Hex()}
	}
	return nil
}

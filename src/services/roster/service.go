package roster

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
)

// Service reads members, courses and class groups and writes member signatures.
type Service struct {
	members *mongo.Collection
	courses *mongo.Collection
	classes *mongo.Collection
}

var _ attendance.Roster = (*Service)(nil)

func NewService(db *mongo.Database) *Service {
	return &Service{
		members: db.Collection("members"),
		courses: db.Collection("courses"),
		classes: db.Collection("classGroups"),
	}
}

// EnsureIndexes roll ids and course codes are unique.
func (s *Service) EnsureIndexes(ctx context.Context) error {
	if _, err := s.members.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "rollId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_roll_id"),
	}); err != nil {
		return errors.Wrap(err, "roster: member indexes")
	}
	if _, err := s.courses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_course_code"),
	}); err != nil {
		return errors.Wrap(err, "roster: course indexes")
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, kind string, id primitive.ObjectID) (T, error) {
	var out T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return out, &attendance.NotFoundError{Kind: kind, ID: id.Hex()}
		}
		return out, errors.Wrapf(err, "roster: find %s %s", kind, id.Hex())
	}
	return out, nil
}

func (s *Service) Member(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	return findOne[models.Member](ctx, s.members, "member", id)
}

func (s *Service) Course(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	return findOne[models.Course](ctx, s.courses, "course", id)
}

func (s *Service) ClassGroup(ctx context.Context, id primitive.ObjectID) (models.ClassGroup, error) {
	return findOne[models.ClassGroup](ctx, s.classes, "class", id)
}

func (s *Service) Members(ctx context.Context, ids []primitive.ObjectID) ([]models.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.findMembers(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// EnrolledMembers members on the class roster whose enrollment flag is set, by roll id.
func (s *Service) EnrolledMembers(ctx context.Context, classID primitive.ObjectID) ([]models.Member, error) {
	group, err := s.ClassGroup(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(group.MemberIDs) == 0 {
		return nil, nil
	}
	return s.findMembers(ctx, bson.M{
		"_id":      bson.M{"$in": group.MemberIDs},
		"classId":  classID,
		"enrolled": true,
	}, options.Find().SetSort(bson.D{{Key: "rollId", Value: 1}}))
}

func (s *Service) findMembers(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Member, error) {
	cursor, err := s.members.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "roster: find members")
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, errors.Wrap(err, "roster: decode members")
	}
	return members, nil
}

// UpdateSignature compare-and-set on signatureUpdates so two refreshes of the
// same member cannot overwrite each other.
func (s *Service) UpdateSignature(ctx context.Context, memberID primitive.ObjectID, sig []float64, expectedUpdates int, at time.Time) error {
	res, err := s.members.UpdateOne(ctx,
		bson.M{"_id": memberID, "signatureUpdates": expectedUpdates},
		bson.M{
			"$set": bson.M{"signature": sig, "signatureUpdatedAt": at},
			"$inc": bson.M{"signatureUpdates": 1},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "roster: update signature of %s", memberID.Hex())
	}
	if res.MatchedCount == 0 {
		if _, err := s.Member(ctx, memberID); err != nil {
			return err
		}
		return attendance.ErrStaleSignature
	}
	return nil
}

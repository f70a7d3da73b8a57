package seeder

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"Backend-FaceAttend/src/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SampleCourseCode marks the demo course; seeding is skipped once it exists.
const SampleCourseCode = "DEMO101"

// SampleRoster is what SeedSampleRoster created.
type SampleRoster struct {
	Class   models.ClassGroup
	Course  models.Course
	Members []models.Member
}

// SeedSampleRoster creates one class with size enrolled members and one course
// owned by operatorID, for local development against an empty database.
func SeedSampleRoster(ctx context.Context, db *mongo.Database, operatorID primitive.ObjectID, size, dims int, log *zap.Logger) (*SampleRoster, error) {
	courses := db.Collection("courses")
	n, err := courses.CountDocuments(ctx, bson.M{"code": SampleCourseCode})
	if err != nil {
		return nil, errors.Wrap(err, "seed: count courses")
	}
	if n > 0 {
		log.Info("sample roster already present, skipping seed")
		return nil, nil
	}

	out := BuildSampleRoster(operatorID, size, dims, rand.New(rand.NewSource(time.Now().UnixNano())))

	if _, err := db.Collection("classGroups").InsertOne(ctx, out.Class); err != nil {
		return nil, errors.Wrap(err, "seed: class")
	}
	if _, err := courses.InsertOne(ctx, out.Course); err != nil {
		return nil, errors.Wrap(err, "seed: course")
	}
	docs := make([]interface{}, 0, len(out.Members))
	for _, m := range out.Members {
		docs = append(docs, m)
	}
	if len(docs) > 0 {
		if _, err := db.Collection("members").InsertMany(ctx, docs); err != nil {
			return nil, errors.Wrap(err, "seed: members")
		}
	}

	log.Info("✅ Seeded sample roster",
		zap.String("classId", out.Class.ID.Hex()),
		zap.String("courseId", out.Course.ID.Hex()),
		zap.Int("members", len(out.Members)),
	)
	return out, nil
}

// BuildSampleRoster generates the documents without touching the database.
func BuildSampleRoster(operatorID primitive.ObjectID, size, dims int, rng *rand.Rand) *SampleRoster {
	class := models.ClassGroup{ID: primitive.NewObjectID(), Name: "Demo Section"}
	course := models.Course{
		ID:           primitive.NewObjectID(),
		Name:         "Introduction to Computing",
		Code:         SampleCourseCode,
		ClassID:      class.ID,
		OperatorID:   operatorID,
		OperatorKind: models.OperatorTeacher,
	}
	class.CourseIDs = []primitive.ObjectID{course.ID}

	members := make([]models.Member, 0, size)
	for i := 0; i < size; i++ {
		m := models.Member{
			ID:        primitive.NewObjectID(),
			Name:      fmt.Sprintf("Demo Student %02d", i+1),
			RollID:    fmt.Sprintf("DEMO-%03d", i+1),
			ClassID:   class.ID,
			Enrolled:  true,
			Signature: randomUnit(dims, rng),
		}
		class.MemberIDs = append(class.MemberIDs, m.ID)
		members = append(members, m)
	}
	return &SampleRoster{Class: class, Course: course, Members: members}
}

func randomUnit(dims int, rng *rand.Rand) []float64 {
	if dims <= 0 {
		return nil
	}
	v := make([]float64, dims)
	var sum float64
	for i := range v {
		v[i] = rng.NormFloat64()
		sum += v[i] * v[i]
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		v[0], norm = 1, 1
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

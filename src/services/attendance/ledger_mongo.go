package attendance

import (
	"context"
	"errors"
	"time"

	"Backend-FaceAttend/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const duplicateKeyCode = 11000

// MongoLedger stores records in the attendances collection. The unique index
// on (memberId, courseId, sessionDay) is the authoritative duplicate guard.
type MongoLedger struct {
	coll   *mongo.Collection
	roster RosterReader
}

func NewMongoLedger(coll *mongo.Collection, roster RosterReader) *MongoLedger {
	return &MongoLedger{coll: coll, roster: roster}
}

// EnsureIndexes creates the uniqueness constraint and the listing index.
func (l *MongoLedger) EnsureIndexes(ctx context.Context) error {
	_, err := l.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "memberId", Value: 1}, {Key: "courseId", Value: 1}, {Key: "sessionDay", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_member_course_day"),
		},
		{
			Keys:    bson.D{{Key: "courseId", Value: 1}, {Key: "sessionDay", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("course_day_timestamp"),
		},
	})
	return storageErr("ledger: ensure indexes", err)
}

func dayFilter(courseID primitive.ObjectID, day time.Time) bson.M {
	return bson.M{"courseId": courseID, "sessionDay": day}
}

func (l *MongoLedger) Exists(ctx context.Context, memberID, courseID primitive.ObjectID, day time.Time) (bool, error) {
	filter := dayFilter(courseID, day)
	filter["memberId"] = memberID
	count, err := l.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, storageErr("ledger: exists", err)
	}
	return count > 0, nil
}

func (l *MongoLedger) Create(ctx context.Context, rec models.AttendanceRecord) (models.AttendanceRecord, error) {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := l.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.AttendanceRecord{}, &DuplicateError{MemberID: rec.MemberID, CourseID: rec.CourseID, Day: rec.SessionDay}
		}
		return models.AttendanceRecord{}, storageErr("ledger: create", err)
	}
	return rec, nil
}

// BulkCreateAbsent inserts unordered so that members marked in the meantime
// only fail their own document with a duplicate key.
func (l *MongoLedger) BulkCreateAbsent(ctx context.Context, members []models.Member, courseID, classID primitive.ObjectID, day, at time.Time) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(members))
	for _, m := range members {
		rec := absentRecord(m, courseID, classID, day, at)
		rec.ID = primitive.NewObjectID()
		docs = append(docs, rec)
	}

	_, err := l.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(docs), nil
	}
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
		return 0, storageErr("ledger: bulk create absent", err)
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != duplicateKeyCode {
			return 0, storageErr("ledger: bulk create absent", err)
		}
	}
	return len(docs) - len(bwe.WriteErrors), nil
}

func (l *MongoLedger) markedMemberIDs(ctx context.Context, courseID primitive.ObjectID, day time.Time) (map[primitive.ObjectID]struct{}, error) {
	cursor, err := l.coll.Find(ctx, dayFilter(courseID, day), options.Find().SetProjection(bson.M{"memberId": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	marked := make(map[primitive.ObjectID]struct{})
	for cursor.Next(ctx) {
		var row struct {
			MemberID primitive.ObjectID `bson:"memberId"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		marked[row.MemberID] = struct{}{}
	}
	return marked, cursor.Err()
}

func (l *MongoLedger) UnmarkedMembers(ctx context.Context, classID, courseID primitive.ObjectID, day time.Time) ([]models.Member, error) {
	enrolled, err := l.roster.EnrolledMembers(ctx, classID)
	if err != nil {
		return nil, storageErr("ledger: enrolled members", err)
	}
	marked, err := l.markedMemberIDs(ctx, courseID, day)
	if err != nil {
		return nil, storageErr("ledger: marked members", err)
	}
	return unmarkedFrom(enrolled, marked), nil
}

func (l *MongoLedger) StatusCounts(ctx context.Context, classID, courseID primitive.ObjectID, day time.Time) (map[models.AttendanceStatus]int, error) {
	match := dayFilter(courseID, day)
	match["classId"] = classID
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := l.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("ledger: status counts", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.AttendanceStatus `bson:"_id"`
		Count  int                     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storageErr("ledger: status counts", err)
	}
	counts := make(map[models.AttendanceStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (l *MongoLedger) TodayRecords(ctx context.Context, courseID primitive.ObjectID, day time.Time, limit int, order Order) ([]models.TodayEntry, error) {
	sortDir := -1
	if order == OrderAsc {
		sortDir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: sortDir}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := l.coll.Find(ctx, dayFilter(courseID, day), opts)
	if err != nil {
		return nil, storageErr("ledger: today records", err)
	}
	defer cursor.Close(ctx)

	var recs []models.AttendanceRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, storageErr("ledger: today records", err)
	}
	entries, err := joinMembers(ctx, l.roster, recs)
	if err != nil {
		return nil, storageErr("ledger: resolve members", err)
	}
	return entries, nil
}

func (l *MongoLedger) Delete(ctx context.Context, recordID primitive.ObjectID) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := l.coll.FindOneAndDelete(ctx, bson.M{"_id": recordID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.AttendanceRecord{}, notFound("attendance", recordID)
		}
		return models.AttendanceRecord{}, storageErr("ledger: delete", err)
	}
	return rec, nil
}

package attendance_test

import (
	"context"
	"testing"
	"time"

	"Backend-FaceAttend/src/models"
	"Backend-FaceAttend/src/services/attendance"
	"Backend-FaceAttend/src/services/attendance/attendancetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func mongoSession(n int) (*attendancetest.Roster, attendancetest.Session) {
	roster := attendancetest.NewRoster()
	return roster, roster.AddSession(n, 0)
}

func TestMongoLedger(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	at := day.Add(17 * time.Hour)

	mt.Run("create", func(mt *mtest.T) {
		roster, s := mongoSession(1)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec, err := ledger.Create(ctx, record(s.Members[0], s, models.StatusPresent, day.Add(8*time.Hour)))
		require.NoError(mt, err)
		assert.False(mt, rec.ID.IsZero())
	})

	mt.Run("create duplicate key", func(mt *mtest.T) {
		roster, s := mongoSession(1)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: attendances index: uniq_member_course_day",
		}))

		_, err := ledger.Create(ctx, record(s.Members[0], s, models.StatusPresent, day.Add(8*time.Hour)))
		require.Error(mt, err)
		assert.True(mt, attendance.IsDuplicate(err))
	})

	mt.Run("create other write error", func(mt *mtest.T) {
		roster, s := mongoSession(1)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "Document failed validation"}))

		_, err := ledger.Create(ctx, record(s.Members[0], s, models.StatusPresent, day.Add(8*time.Hour)))
		var se *attendance.StorageError
		require.ErrorAs(mt, err, &se)
		assert.False(mt, attendance.IsDuplicate(err))
	})

	mt.Run("bulk absent all inserted", func(mt *mtest.T) {
		roster, s := mongoSession(3)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		created, err := ledger.BulkCreateAbsent(ctx, s.Members, s.Course.ID, s.Class.ID, day, at)
		require.NoError(mt, err)
		assert.Equal(mt, 3, created)
	})

	mt.Run("bulk absent skips members marked meanwhile", func(mt *mtest.T) {
		roster, s := mongoSession(3)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(
			mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"},
			mtest.WriteError{Index: 2, Code: 11000, Message: "E11000 duplicate key error"},
		))

		created, err := ledger.BulkCreateAbsent(ctx, s.Members, s.Course.ID, s.Class.ID, day, at)
		require.NoError(mt, err)
		assert.Equal(mt, 1, created)
	})

	mt.Run("bulk absent other write error", func(mt *mtest.T) {
		roster, s := mongoSession(2)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(
			mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"},
			mtest.WriteError{Index: 1, Code: 121, Message: "Document failed validation"},
		))

		_, err := ledger.BulkCreateAbsent(ctx, s.Members, s.Course.ID, s.Class.ID, day, at)
		var se *attendance.StorageError
		assert.ErrorAs(mt, err, &se)
	})

	mt.Run("bulk absent write concern error", func(mt *mtest.T) {
		roster, s := mongoSession(2)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		mt.AddMockResponses(mtest.CreateWriteConcernErrorResponse(mtest.WriteConcernError{
			Name:    "UnsatisfiableWriteConcern",
			Code:    100,
			Message: "Not enough data-bearing nodes",
		}))

		_, err := ledger.BulkCreateAbsent(ctx, s.Members, s.Course.ID, s.Class.ID, day, at)
		var se *attendance.StorageError
		assert.ErrorAs(mt, err, &se)
	})

	mt.Run("bulk absent with nobody left", func(mt *mtest.T) {
		roster, s := mongoSession(0)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)

		created, err := ledger.BulkCreateAbsent(ctx, nil, s.Course.ID, s.Class.ID, day, at)
		require.NoError(mt, err)
		assert.Zero(mt, created)
	})

	mt.Run("status counts", func(mt *mtest.T) {
		roster, s := mongoSession(0)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "present"}, {Key: "count", Value: int32(2)}},
			bson.D{{Key: "_id", Value: "late"}, {Key: "count", Value: int32(1)}},
		))

		counts, err := ledger.StatusCounts(ctx, s.Class.ID, s.Course.ID, day)
		require.NoError(mt, err)
		assert.Equal(mt, 2, counts[models.StatusPresent])
		assert.Equal(mt, 1, counts[models.StatusLate])
		assert.Zero(mt, counts[models.StatusAbsent])

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		match := started.Command.Lookup("pipeline").Array().Index(0).Value().Document().Lookup("$match").Document()
		assert.Equal(mt, s.Class.ID, match.Lookup("classId").ObjectID())
		assert.Equal(mt, s.Course.ID, match.Lookup("courseId").ObjectID())
	})

	mt.Run("today records joins members", func(mt *mtest.T) {
		roster, s := mongoSession(2)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()

		first := record(s.Members[0], s, models.StatusPresent, day.Add(8*time.Hour))
		first.ID = primitive.NewObjectID()
		gone := record(models.Member{ID: primitive.NewObjectID()}, s, models.StatusLate, day.Add(9*time.Hour))
		gone.ID = primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toDoc(mt.T, gone), toDoc(mt.T, first)))

		entries, err := ledger.TodayRecords(ctx, s.Course.ID, day, 10, attendance.OrderDesc)
		require.NoError(mt, err)
		require.Len(mt, entries, 1)
		assert.Equal(mt, first.ID, entries[0].ID)
		assert.Equal(mt, s.Members[0].Name, entries[0].MemberName)
	})

	mt.Run("delete", func(mt *mtest.T) {
		roster, s := mongoSession(1)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		rec := record(s.Members[0], s, models.StatusLate, day.Add(10*time.Hour))
		rec.ID = primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(mt.T, rec)}))

		deleted, err := ledger.Delete(ctx, rec.ID)
		require.NoError(mt, err)
		assert.Equal(mt, rec.ID, deleted.ID)
		assert.Equal(mt, models.StatusLate, deleted.Status)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		roster, _ := mongoSession(0)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := ledger.Delete(ctx, primitive.NewObjectID())
		assert.True(mt, attendance.IsNotFound(err))
	})

	mt.Run("exists", func(mt *mtest.T) {
		roster, s := mongoSession(1)
		ledger := attendance.NewMongoLedger(mt.Coll, roster)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		ok, err := ledger.Exists(ctx, s.Members[0].ID, s.Course.ID, day)
		require.NoError(mt, err)
		assert.True(mt, ok)
	})
}

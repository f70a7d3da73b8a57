package attendance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Backend-FaceAttend/src/models"
	"Backend-FaceAttend/src/services/attendance"
	"Backend-FaceAttend/src/services/attendance/attendancetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dims = 4

type engine struct {
	coord    *attendance.Coordinator
	cancel   *attendance.Canceller
	ledger   *attendance.MemoryLedger
	roster   *attendancetest.Roster
	settings *attendancetest.Settings
	queue    *attendancetest.Queue
	session  attendancetest.Session
	now      time.Time
}

func newEngine(t *testing.T, members int) *engine {
	t.Helper()
	e := &engine{
		roster:   attendancetest.NewRoster(),
		settings: attendancetest.NewSettings(),
		queue:    &attendancetest.Queue{},
		now:      time.Date(2025, time.March, 14, 8, 30, 0, 0, time.UTC),
	}
	e.session = e.roster.AddSession(members, dims)
	e.ledger = attendance.NewMemoryLedger(e.roster)
	e.coord = attendance.NewCoordinator(attendance.Dependencies{
		Ledger:   e.ledger,
		Roster:   e.roster,
		Settings: e.settings,
		Queue:    e.queue,
	}, attendance.Options{
		Location:            time.UTC,
		DefaultCutoff:       "09:00",
		AcceptanceThreshold: 0.6,
		FusionWeight:        0.15,
		SignatureDims:       dims,
		TodayLimit:          50,
		Now:                 func() time.Time { return e.now },
	}, zap.NewNop())
	e.cancel = attendance.NewCanceller(e.ledger, zap.NewNop())
	return e
}

func (e *engine) biometric(i int, confidence float64, at time.Time) attendance.BiometricMark {
	m := e.session.Members[i]
	return attendance.BiometricMark{
		MemberID:   m.ID,
		CourseID:   e.session.Course.ID,
		ClassID:    e.session.Class.ID,
		Observed:   attendancetest.UnitVector(dims, i%dims),
		Confidence: confidence,
		EventTime:  at,
	}
}

func (e *engine) manual(i int, status models.AttendanceStatus) attendance.ManualMark {
	return attendance.ManualMark{
		MemberID: e.session.Members[i].ID,
		CourseID: e.session.Course.ID,
		ClassID:  e.session.Class.ID,
		Status:   status,
	}
}

func TestMarkBiometric_Classifies(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 2)

	rec, err := e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, rec.Status)
	assert.Equal(t, models.SourceBiometric, rec.Source)
	assert.Equal(t, 0.9, rec.Confidence)
	assert.Equal(t, e.coord.Today(), rec.SessionDay)

	rec, err = e.coord.MarkBiometric(ctx, e.biometric(1, 0.9, e.now.Add(31*time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, rec.Status)
}

func TestMarkBiometric_UsesOperatorCutoff(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 1)
	e.settings.SetCutoff(e.session.Operator, "08:15")

	rec, err := e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, rec.Status)
}

func TestMarkBiometric_Duplicate(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 1)

	_, err := e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
	require.NoError(t, err)

	_, err = e.coord.MarkBiometric(ctx, e.biometric(0, 0.95, e.now.Add(time.Minute)))
	require.Error(t, err)
	var dup *attendance.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.True(t, dup.AlreadyMarked())
	assert.Equal(t, 1, e.ledger.Len())
}

func TestMarkBiometric_ConcurrentSameMember(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 1)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, attendance.IsDuplicate(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, e.ledger.Len())
}

func TestMarkBiometric_Rejects(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 2)

	noSig := e.session.Members[1]
	noSig.Signature = nil
	e.roster.PutMember(noSig)
	_, err := e.coord.MarkBiometric(ctx, e.biometric(1, 0.9, e.now))
	assert.True(t, attendance.IsValidation(err), "member without signature")

	in := e.biometric(0, 1.2, e.now)
	_, err = e.coord.MarkBiometric(ctx, in)
	assert.True(t, attendance.IsValidation(err), "confidence above 1")

	in = e.biometric(0, 0.9, e.now)
	in.Observed = nil
	_, err = e.coord.MarkBiometric(ctx, in)
	assert.True(t, attendance.IsValidation(err), "empty observation")

	in = e.biometric(0, 0.9, e.now)
	in.MemberID = primitive.NewObjectID()
	_, err = e.coord.MarkBiometric(ctx, in)
	assert.True(t, attendance.IsNotFound(err), "unknown member")

	in = e.biometric(0, 0.9, e.now)
	in.CourseID = primitive.NewObjectID()
	_, err = e.coord.MarkBiometric(ctx, in)
	assert.True(t, attendance.IsNotFound(err), "unknown course")

	assert.Zero(t, e.ledger.Len())
	assert.Empty(t, e.queue.Jobs())
}

func TestMarkBiometric_MemberOutsideClass(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 2)

	dropped := e.session.Members[0]
	dropped.Enrolled = false
	e.roster.PutMember(dropped)

	_, err := e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
	assert.True(t, attendance.IsNotFound(err))

	other := e.roster.AddSession(1, dims)
	in := e.biometric(1, 0.9, e.now)
	in.MemberID = other.Members[0].ID
	_, err = e.coord.MarkBiometric(ctx, in)
	assert.True(t, attendance.IsNotFound(err))
}

func TestMarkBiometric_SchedulesRefresh(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 3)

	_, err := e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
	require.NoError(t, err)

	// below the acceptance threshold: marked, not refreshed
	_, err = e.coord.MarkBiometric(ctx, e.biometric(1, 0.4, e.now))
	require.NoError(t, err)

	// wrong dimensionality: marked, not refreshed
	in := e.biometric(2, 0.9, e.now)
	in.Observed = []float64{1, 0}
	_, err = e.coord.MarkBiometric(ctx, in)
	require.NoError(t, err)

	jobs := e.queue.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, e.session.Members[0].ID, jobs[0].MemberID)
	assert.Equal(t, 0.15, jobs[0].Weight)
	assert.Equal(t, 0.9, jobs[0].Confidence)
}

func TestMarkBiometric_QueueFailureDoesNotFailMark(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 1)
	e.queue.Err = errors.New("redis down")

	rec, err := e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
	require.NoError(t, err)
	assert.False(t, rec.ID.IsZero())
}

func TestMarkManual(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 3)

	rec, err := e.coord.MarkManual(ctx, e.manual(0, models.StatusLate))
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, rec.Status)
	assert.Equal(t, models.SourceManual, rec.Source)
	assert.Equal(t, 1.0, rec.Confidence)

	rec, err = e.coord.MarkManual(ctx, e.manual(1, models.StatusAbsent))
	require.NoError(t, err)
	assert.Zero(t, rec.Confidence)

	// no signature needed for manual marking
	noSig := e.session.Members[2]
	noSig.Signature = nil
	e.roster.PutMember(noSig)
	_, err = e.coord.MarkManual(ctx, e.manual(2, models.StatusPresent))
	require.NoError(t, err)

	_, err = e.coord.MarkManual(ctx, e.manual(0, models.StatusPresent))
	assert.True(t, attendance.IsDuplicate(err))
}

func TestMarkManual_InvalidStatus(t *testing.T) {
	e := newEngine(t, 1)
	_, err := e.coord.MarkManual(context.Background(), e.manual(0, "excused"))
	require.Error(t, err)
	assert.True(t, attendance.IsValidation(err))
	assert.Zero(t, e.ledger.Len())
}

func TestFinalize_MarksRemainingAbsent(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 30)

	for i := 0; i < 5; i++ {
		_, err := e.coord.MarkBiometric(ctx, e.biometric(i, 0.9, e.now.Add(time.Duration(i)*20*time.Minute)))
		require.NoError(t, err)
	}

	res, err := e.coord.Finalize(ctx, e.session.Class.ID, e.session.Course.ID, e.now, true)
	require.NoError(t, err)
	assert.Equal(t, 5, res.PresentOrLate())
	assert.Equal(t, 2, res.Present)
	assert.Equal(t, 3, res.Late)
	assert.Equal(t, 25, res.NewlyAbsent)
	assert.Zero(t, res.Unmarked)

	counts, err := e.ledger.StatusCounts(ctx, e.session.Class.ID, e.session.Course.ID, e.coord.Today())
	require.NoError(t, err)
	assert.Equal(t, 25, counts[models.StatusAbsent])

	again, err := e.coord.Finalize(ctx, e.session.Class.ID, e.session.Course.ID, e.now, true)
	require.NoError(t, err)
	assert.Zero(t, again.NewlyAbsent)
	assert.Equal(t, 25, again.Absent)
	assert.Equal(t, 30, e.ledger.Len())
}

func TestFinalize_ReportOnly(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 4)

	_, err := e.coord.MarkManual(ctx, e.manual(0, models.StatusPresent))
	require.NoError(t, err)

	res, err := e.coord.Finalize(ctx, e.session.Class.ID, e.session.Course.ID, e.now, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Present)
	assert.Equal(t, 3, res.Unmarked)
	assert.Zero(t, res.NewlyAbsent)
	assert.Equal(t, 1, e.ledger.Len())
}

func TestFinalize_SharedCourseCountsOwnClassOnly(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 3)
	other := e.roster.AddSession(3, dims)
	e.roster.LinkCourse(other.Class.ID, e.session.Course.ID)

	for _, m := range other.Members {
		_, err := e.coord.MarkManual(ctx, attendance.ManualMark{
			MemberID: m.ID,
			CourseID: e.session.Course.ID,
			ClassID:  other.Class.ID,
			Status:   models.StatusPresent,
		})
		require.NoError(t, err)
	}

	res, err := e.coord.Finalize(ctx, e.session.Class.ID, e.session.Course.ID, e.now, true)
	require.NoError(t, err)
	assert.Zero(t, res.Present)
	assert.Zero(t, res.PresentOrLate())
	assert.Equal(t, 3, res.NewlyAbsent)

	res, err = e.coord.Finalize(ctx, other.Class.ID, e.session.Course.ID, e.now, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Present)
	assert.Zero(t, res.Absent)
	assert.Zero(t, res.Unmarked)
}

func TestFinalize_UnknownClass(t *testing.T) {
	e := newEngine(t, 1)
	_, err := e.coord.Finalize(context.Background(), primitive.NewObjectID(), e.session.Course.ID, e.now, true)
	assert.True(t, attendance.IsNotFound(err))
}

func TestCancelThenRemark(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 1)

	rec, err := e.coord.MarkManual(ctx, e.manual(0, models.StatusAbsent))
	require.NoError(t, err)

	cancelled, err := e.cancel.Cancel(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, cancelled.ID)

	unmarked, err := e.coord.UnmarkedMembers(ctx, e.session.Class.ID, e.session.Course.ID)
	require.NoError(t, err)
	require.Len(t, unmarked, 1)

	_, err = e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
	require.NoError(t, err)

	_, err = e.cancel.Cancel(ctx, rec.ID)
	assert.True(t, attendance.IsNotFound(err))

	_, err = e.cancel.Cancel(ctx, primitive.NilObjectID)
	assert.True(t, attendance.IsValidation(err))
}

func TestUnmarkedAndToday(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 3)

	_, err := e.coord.MarkManual(ctx, e.manual(1, models.StatusPresent))
	require.NoError(t, err)

	unmarked, err := e.coord.UnmarkedMembers(ctx, e.session.Class.ID, e.session.Course.ID)
	require.NoError(t, err)
	require.Len(t, unmarked, 2)
	assert.Equal(t, e.session.Members[0].ID, unmarked[0].ID)
	assert.Equal(t, e.session.Members[2].ID, unmarked[1].ID)

	today, err := e.coord.TodayRecords(ctx, e.session.Course.ID, 0, attendance.OrderDesc)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, e.session.Members[1].Name, today[0].MemberName)

	// tomorrow starts empty
	e.now = e.now.Add(24 * time.Hour)
	today, err = e.coord.TodayRecords(ctx, e.session.Course.ID, 0, attendance.OrderDesc)
	require.NoError(t, err)
	assert.Empty(t, today)

	roster, err := e.coord.Roster(ctx, e.session.Class.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 3)
}

func TestCutoffIsCached(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, 3)

	_, err := e.coord.MarkBiometric(ctx, e.biometric(0, 0.9, e.now))
	require.NoError(t, err)
	_, err = e.coord.MarkBiometric(ctx, e.biometric(1, 0.9, e.now))
	require.NoError(t, err)
	assert.Equal(t, 1, e.settings.Calls())

	e.settings.SetCutoff(e.session.Operator, "08:00")
	e.coord.InvalidateSettings(ctx, e.session.Operator)

	rec, err := e.coord.MarkBiometric(ctx, e.biometric(2, 0.9, e.now))
	require.NoError(t, err)
	assert.Equal(t, 2, e.settings.Calls())
	assert.Equal(t, models.StatusLate, rec.Status)
}

func TestSettingsFailureIsStorageError(t *testing.T) {
	e := newEngine(t, 1)
	e.settings.Err = errors.New("connection reset")

	_, err := e.coord.MarkBiometric(context.Background(), e.biometric(0, 0.9, e.now))
	var se *attendance.StorageError
	assert.True(t, errors.As(err, &se))
	assert.Zero(t, e.ledger.Len())
}

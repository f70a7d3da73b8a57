package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"Backend-FaceAttend/src/services/attendance"
	"Backend-FaceAttend/src/services/attendance/attendancetest"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func refreshJob(memberID primitive.ObjectID, observed []float64) attendance.SignatureRefresh {
	return attendance.SignatureRefresh{
		MemberID:   memberID,
		Observed:   observed,
		Confidence: 0.9,
		Weight:     0.5,
		ObservedAt: time.Date(2025, time.March, 14, 8, 30, 0, 0, time.UTC),
	}
}

func TestRefresh_FusesAndBumpsCounter(t *testing.T) {
	ctx := context.Background()
	roster := attendancetest.NewRoster()
	s := roster.AddSession(1, 2)
	m := s.Members[0]

	r := NewRefresher(roster, zap.NewNop())
	require.NoError(t, r.Refresh(ctx, refreshJob(m.ID, []float64{0, 1})))

	got, err := roster.Member(ctx, m.ID)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2/2, got.Signature[0], 1e-9)
	assert.InDelta(t, math.Sqrt2/2, got.Signature[1], 1e-9)
	assert.Equal(t, 1, got.SignatureUpdates)
	require.NotNil(t, got.SignatureUpdatedAt)
}

func TestRefresh_RetriesStaleWrite(t *testing.T) {
	ctx := context.Background()
	roster := attendancetest.NewRoster()
	s := roster.AddSession(1, 2)
	roster.FailUpdates = 2

	r := NewRefresher(roster, zap.NewNop())
	require.NoError(t, r.Refresh(ctx, refreshJob(s.Members[0].ID, []float64{0, 1})))

	got, _ := roster.Member(ctx, s.Members[0].ID)
	assert.Equal(t, 3, got.SignatureUpdates)
}

func TestRefresh_GivesUpAfterContention(t *testing.T) {
	roster := attendancetest.NewRoster()
	s := roster.AddSession(1, 2)
	roster.FailUpdates = casAttempts

	err := NewRefresher(roster, zap.NewNop()).Refresh(context.Background(), refreshJob(s.Members[0].ID, []float64{0, 1}))
	var se *attendance.StorageError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, attendance.ErrStaleSignature)
}

func TestRefresh_SkipsVanishedMemberAndDimensionChange(t *testing.T) {
	ctx := context.Background()
	roster := attendancetest.NewRoster()
	s := roster.AddSession(1, 2)
	r := NewRefresher(roster, zap.NewNop())

	assert.NoError(t, r.Refresh(ctx, refreshJob(primitive.NewObjectID(), []float64{0, 1})))
	assert.NoError(t, r.Refresh(ctx, refreshJob(s.Members[0].ID, []float64{0, 1, 0})))

	got, _ := roster.Member(ctx, s.Members[0].ID)
	assert.Zero(t, got.SignatureUpdates)
}

func TestHandleRefreshSignatureTask_NumericSkipsRetry(t *testing.T) {
	roster := attendancetest.NewRoster()
	s := roster.AddSession(1, 2)
	r := NewRefresher(roster, zap.NewNop())

	// opposite vectors at equal weight cancel out
	task, err := NewRefreshSignatureTask(refreshJob(s.Members[0].ID, []float64{-1, 0}))
	require.NoError(t, err)
	err = r.HandleRefreshSignatureTask(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	got, _ := roster.Member(context.Background(), s.Members[0].ID)
	assert.Equal(t, []float64{1, 0}, got.Signature)
}

func TestHandleRefreshSignatureTask_BadPayload(t *testing.T) {
	r := NewRefresher(attendancetest.NewRoster(), zap.NewNop())

	err := r.HandleRefreshSignatureTask(context.Background(), asynq.NewTask(TypeRefreshSignature, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	payload, _ := json.Marshal(RefreshSignaturePayload{MemberID: "nope"})
	err = r.HandleRefreshSignatureTask(context.Background(), asynq.NewTask(TypeRefreshSignature, payload))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRefreshSignatureTask_RoundTrip(t *testing.T) {
	job := refreshJob(primitive.NewObjectID(), []float64{0.25, 0.75})
	task, err := NewRefreshSignatureTask(job)
	require.NoError(t, err)
	assert.Equal(t, TypeRefreshSignature, task.Type())

	var payload RefreshSignaturePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	got, err := payload.job()
	require.NoError(t, err)
	assert.Equal(t, job.MemberID, got.MemberID)
	assert.Equal(t, job.Observed, got.Observed)
	assert.True(t, job.ObservedAt.Equal(got.ObservedAt))
}

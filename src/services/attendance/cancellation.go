package attendance

import (
	"context"

	"Backend-FaceAttend/src/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Canceller removes a mistaken record so the member is unmarked again.
type Canceller struct {
	ledger Ledger
	log    *zap.Logger
}

func NewCanceller(ledger Ledger, log *zap.Logger) *Canceller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Canceller{ledger: ledger, log: log.Named("cancel")}
}

func (c *Canceller) Cancel(ctx context.Context, recordID primitive.ObjectID) (models.AttendanceRecord, error) {
	if recordID.IsZero() {
		return models.AttendanceRecord{}, invalid("attendanceId", "is required")
	}
	rec, err := c.ledger.Delete(ctx, recordID)
	if err != nil {
		return models.AttendanceRecord{}, storageErr("cancel", err)
	}
	c.log.Info("attendance cancelled",
		zap.String("attendanceId", rec.ID.Hex()),
		zap.String("memberId", rec.MemberID.Hex()),
		zap.String("courseId", rec.CourseID.Hex()),
		zap.String("status", string(rec.Status)),
	)
	return rec, nil
}

package jobs

import (
	"encoding/json"
	"time"

	"Backend-FaceAttend/src/services/attendance"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const TypeRefreshSignature = "signature:refresh"

// QueueSignatures is the asynq queue refresh tasks go to.
const QueueSignatures = "signatures"

type RefreshSignaturePayload struct {
	MemberID   string    `json:"memberId"`
	Observed   []float64 `json:"observed"`
	Confidence float64   `json:"confidence"`
	Weight     float64   `json:"weight"`
	ObservedAt time.Time `json:"observedAt"`
}

func NewRefreshSignatureTask(job attendance.SignatureRefresh) (*asynq.Task, error) {
	payload, err := json.Marshal(RefreshSignaturePayload{
		MemberID:   job.MemberID.Hex(),
		Observed:   job.Observed,
		Confidence: job.Confidence,
		Weight:     job.Weight,
		ObservedAt: job.ObservedAt,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRefreshSignature, payload), nil
}

func (p RefreshSignaturePayload) job() (attendance.SignatureRefresh, error) {
	id, err := primitive.ObjectIDFromHex(p.MemberID)
	if err != nil {
		return attendance.SignatureRefresh{}, err
	}
	return attendance.SignatureRefresh{
		MemberID:   id,
		Observed:   p.Observed,
		Confidence: p.Confidence,
		Weight:     p.Weight,
		ObservedAt: p.ObservedAt,
	}, nil
}

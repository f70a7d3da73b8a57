package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member an enrolled member of a class group
type Member struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	RollID             string             `bson:"rollId" json:"rollId"`
	ClassID            primitive.ObjectID `bson:"classId" json:"classId"`
	Enrolled           bool               `bson:"enrolled" json:"enrolled"`
	Signature          []float64          `bson:"signature,omitempty" json:"-"`
	SignatureUpdates   int                `bson:"signatureUpdates" json:"signatureUpdates"`
	SignatureUpdatedAt *time.Time         `bson:"signatureUpdatedAt,omitempty" json:"signatureUpdatedAt,omitempty"`
}

// HasSignature reports whether the member is eligible for biometric marking.
func (m Member) HasSignature() bool {
	return len(m.Signature) > 0
}

// MemberSummary is the roster view returned to clients; the signature never leaves the service.
type MemberSummary struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	RollID       string             `json:"rollId"`
	HasSignature bool               `json:"hasSignature"`
}

func (m Member) Summary() MemberSummary {
	return MemberSummary{
		ID:           m.ID,
		Name:         m.Name,
		RollID:       m.RollID,
		HasSignature: m.HasSignature(),
	}
}

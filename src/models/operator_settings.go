package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OperatorAdmin   = "admin"
	OperatorTeacher = "teacher"
)

// OperatorSettings per-operator configuration, one document per operator
type OperatorSettings struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id" swaggertype:"string"`
	OperatorID   primitive.ObjectID `bson:"operatorId" json:"operatorId" swaggertype:"string"`
	OperatorKind string             `bson:"operatorKind" json:"operatorKind" enums:"admin,teacher"`
	LateCutoff   string             `bson:"lateCutoff" json:"lateCutoff" example:"09:00"`
	Preferences  bson.M             `bson:"preferences,omitempty" json:"preferences,omitempty" swaggertype:"object"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

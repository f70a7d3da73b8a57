package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Course struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty" swaggertype:"string" example:"507f1f77bcf86cd799439011"`
	Name         string             `json:"name" bson:"name" example:"Introduction to Programming"`
	Code         string             `json:"code" bson:"code" example:"CS101"`
	ClassID      primitive.ObjectID `json:"classId" bson:"classId" swaggertype:"string"`
	OperatorID   primitive.ObjectID `json:"operatorId" bson:"operatorId" swaggertype:"string"`
	OperatorKind string             `json:"operatorKind" bson:"operatorKind" example:"teacher" enums:"admin,teacher"`
}

// ClassGroup a roster of members that shares a set of courses
type ClassGroup struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty" swaggertype:"string"`
	Name      string               `json:"name" bson:"name" example:"Year 2 / Section A"`
	MemberIDs []primitive.ObjectID `json:"memberIds" bson:"memberIds" swaggertype:"array,string"`
	CourseIDs []primitive.ObjectID `json:"courseIds" bson:"courseIds" swaggertype:"array,string"`
}

// HasCourse reports whether the course is taught to this class group.
func (g ClassGroup) HasCourse(courseID primitive.ObjectID) bool {
	for _, id := range g.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

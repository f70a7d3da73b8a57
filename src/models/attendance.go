package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceStatus outcome of one member for one course on one session-day
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusLate    AttendanceStatus = "late"
	StatusAbsent  AttendanceStatus = "absent"
)

// Valid reports whether s is one of present, late or absent.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// MarkSource who produced the record
type MarkSource string

const (
	SourceBiometric MarkSource = "biometric"
	SourceManual    MarkSource = "manual"
	SourceSystem    MarkSource = "system"
)

// AttendanceRecord one row per (member, course, session-day)
type AttendanceRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id" swaggertype:"string"`
	MemberID   primitive.ObjectID `bson:"memberId" json:"studentId" swaggertype:"string"`
	CourseID   primitive.ObjectID `bson:"courseId" json:"courseId" swaggertype:"string"`
	ClassID    primitive.ObjectID `bson:"classId" json:"classId" swaggertype:"string"`
	Status     AttendanceStatus   `bson:"status" json:"status" enums:"present,late,absent"`
	Confidence float64            `bson:"confidence" json:"confidenceScore"`
	Source     MarkSource         `bson:"source" json:"source" enums:"biometric,manual,system"`
	SessionDay time.Time          `bson:"sessionDay" json:"sessionDay"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// TodayEntry a record of today joined with the member it belongs to
type TodayEntry struct {
	AttendanceRecord `bson:",inline"`
	MemberName       string `json:"studentName"`
	RollID           string `json:"rollId"`
}

// FinalizeResult counts reported back when a session is closed
type FinalizeResult struct {
	Present     int `json:"present"`
	Late        int `json:"late"`
	Absent      int `json:"absent"`
	Unmarked    int `json:"unmarked"`
	NewlyAbsent int `json:"newlyAbsent"`
}

// PresentOrLate is the number of members who showed up before finalization.
func (r FinalizeResult) PresentOrLate() int {
	return r.Present + r.Late
}

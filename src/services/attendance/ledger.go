package attendance

import (
	"context"
	"errors"
	"strings"
	"time"

	"Backend-FaceAttend/src/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrStaleSignature is returned by UpdateSignature when the member's update
// counter moved since the signature was read.
var ErrStaleSignature = errors.New("signature was updated concurrently")

// RosterReader reads roster data owned by the roster collaborator.
type RosterReader interface {
	Member(ctx context.Context, id primitive.ObjectID) (models.Member, error)
	// Members resolves ids; ids that no longer exist are left out.
	Members(ctx context.Context, ids []primitive.ObjectID) ([]models.Member, error)
	Course(ctx context.Context, id primitive.ObjectID) (models.Course, error)
	ClassGroup(ctx context.Context, id primitive.ObjectID) (models.ClassGroup, error)
	EnrolledMembers(ctx context.Context, classID primitive.ObjectID) ([]models.Member, error)
}

// Roster is RosterReader plus the signature write used by the refresh worker.
type Roster interface {
	RosterReader
	// UpdateSignature stores sig, bumps the update counter and stamps at, only
	// if the counter still equals expectedUpdates.
	UpdateSignature(ctx context.Context, memberID primitive.ObjectID, sig []float64, expectedUpdates int, at time.Time) error
}

// Order of TodayRecords
type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

// ParseOrder defaults to most-recent-first.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(OrderAsc)) {
		return OrderAsc
	}
	return OrderDesc
}

// Ledger is the system of record for one attendance per (member, course, day).
// Create must rely on a storage-level uniqueness guard; Exists is only a fast path.
type Ledger interface {
	Exists(ctx context.Context, memberID, courseID primitive.ObjectID, day time.Time) (bool, error)
	Create(ctx context.Context, rec models.AttendanceRecord) (models.AttendanceRecord, error)
	BulkCreateAbsent(ctx context.Context, members []models.Member, courseID, classID primitive.ObjectID, day, at time.Time) (int, error)
	UnmarkedMembers(ctx context.Context, classID, courseID primitive.ObjectID, day time.Time) ([]models.Member, error)
	// StatusCounts counts the records of one class for a course; a course may be shared by several classes.
	StatusCounts(ctx context.Context, classID, courseID primitive.ObjectID, day time.Time) (map[models.AttendanceStatus]int, error)
	TodayRecords(ctx context.Context, courseID primitive.ObjectID, day time.Time, limit int, order Order) ([]models.TodayEntry, error)
	Delete(ctx context.Context, recordID primitive.ObjectID) (models.AttendanceRecord, error)
}

func absentRecord(m models.Member, courseID, classID primitive.ObjectID, day, at time.Time) models.AttendanceRecord {
	return models.AttendanceRecord{
		MemberID:   m.ID,
		CourseID:   courseID,
		ClassID:    classID,
		Status:     models.StatusAbsent,
		Confidence: 0,
		Source:     models.SourceSystem,
		SessionDay: day,
		Timestamp:  at,
	}
}

func unmarkedFrom(enrolled []models.Member, marked map[primitive.ObjectID]struct{}) []models.Member {
	out := make([]models.Member, 0, len(enrolled))
	for _, m := range enrolled {
		if _, ok := marked[m.ID]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// joinMembers attaches member names to records and drops records whose member
// no longer resolves.
func joinMembers(ctx context.Context, roster RosterReader, recs []models.AttendanceRecord) ([]models.TodayEntry, error) {
	ids := make([]primitive.ObjectID, 0, len(recs))
	seen := make(map[primitive.ObjectID]struct{}, len(recs))
	for _, r := range recs {
		if _, ok := seen[r.MemberID]; ok {
			continue
		}
		seen[r.MemberID] = struct{}{}
		ids = append(ids, r.MemberID)
	}
	members, err := roster.Members(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	entries := make([]models.TodayEntry, 0, len(recs))
	for _, r := range recs {
		m, ok := byID[r.MemberID]
		if !ok {
			continue
		}
		entries = append(entries, models.TodayEntry{AttendanceRecord: r, MemberName: m.Name, RollID: m.RollID})
	}
	return entries, nil
}

package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"Backend-FaceAttend/src/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ledgerKey struct {
	member primitive.ObjectID
	course primitive.ObjectID
	day    int64
}

func keyOf(memberID, courseID primitive.ObjectID, day time.Time) ledgerKey {
	return ledgerKey{member: memberID, course: courseID, day: day.Unix()}
}

// MemoryLedger keeps records in process. The key index plays the role of the
// unique constraint; every mutation happens under one lock.
type MemoryLedger struct {
	roster RosterReader

	mu      sync.RWMutex
	keys    map[ledgerKey]primitive.ObjectID
	records map[primitive.ObjectID]models.AttendanceRecord
}

func NewMemoryLedger(roster RosterReader) *MemoryLedger {
	return &MemoryLedger{
		roster:  roster,
		keys:    make(map[ledgerKey]primitive.ObjectID),
		records: make(map[primitive.ObjectID]models.AttendanceRecord),
	}
}

func (l *MemoryLedger) Exists(_ context.Context, memberID, courseID primitive.ObjectID, day time.Time) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.keys[keyOf(memberID, courseID, day)]
	return ok, nil
}

func (l *MemoryLedger) Create(_ context.Context, rec models.AttendanceRecord) (models.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.insertLocked(rec)
}

func (l *MemoryLedger) insertLocked(rec models.AttendanceRecord) (models.AttendanceRecord, error) {
	k := keyOf(rec.MemberID, rec.CourseID, rec.SessionDay)
	if _, ok := l.keys[k]; ok {
		return models.AttendanceRecord{}, &DuplicateError{MemberID: rec.MemberID, CourseID: rec.CourseID, Day: rec.SessionDay}
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	l.keys[k] = rec.ID
	l.records[rec.ID] = rec
	return rec, nil
}

func (l *MemoryLedger) BulkCreateAbsent(_ context.Context, members []models.Member, courseID, classID primitive.ObjectID, day, at time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	created := 0
	for _, m := range members {
		if _, err := l.insertLocked(absentRecord(m, courseID, classID, day, at)); err == nil {
			created++
		}
	}
	return created, nil
}

func (l *MemoryLedger) UnmarkedMembers(ctx context.Context, classID, courseID primitive.ObjectID, day time.Time) ([]models.Member, error) {
	enrolled, err := l.roster.EnrolledMembers(ctx, classID)
	if err != nil {
		return nil, storageErr("ledger: enrolled members", err)
	}
	marked := make(map[primitive.ObjectID]struct{})
	l.mu.RLock()
	for _, m := range enrolled {
		if _, ok := l.keys[keyOf(m.ID, courseID, day)]; ok {
			marked[m.ID] = struct{}{}
		}
	}
	l.mu.RUnlock()
	return unmarkedFrom(enrolled, marked), nil
}

func (l *MemoryLedger) StatusCounts(_ context.Context, classID, courseID primitive.ObjectID, day time.Time) (map[models.AttendanceStatus]int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	counts := make(map[models.AttendanceStatus]int)
	for _, r := range l.records {
		if r.ClassID == classID && r.CourseID == courseID && r.SessionDay.Equal(day) {
			counts[r.Status]++
		}
	}
	return counts, nil
}

func (l *MemoryLedger) TodayRecords(ctx context.Context, courseID primitive.ObjectID, day time.Time, limit int, order Order) ([]models.TodayEntry, error) {
	l.mu.RLock()
	recs := make([]models.AttendanceRecord, 0)
	for _, r := range l.records {
		if r.CourseID == courseID && r.SessionDay.Equal(day) {
			recs = append(recs, r)
		}
	}
	l.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		if order == OrderAsc {
			return recs[i].Timestamp.Before(recs[j].Timestamp)
		}
		return recs[i].Timestamp.After(recs[j].Timestamp)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	entries, err := joinMembers(ctx, l.roster, recs)
	if err != nil {
		return nil, storageErr("ledger: resolve members", err)
	}
	return entries, nil
}

func (l *MemoryLedger) Delete(_ context.Context, recordID primitive.ObjectID) (models.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[recordID]
	if !ok {
		return models.AttendanceRecord{}, notFound("attendance", recordID)
	}
	delete(l.records, recordID)
	delete(l.keys, keyOf(rec.MemberID, rec.CourseID, rec.SessionDay))
	return rec, nil
}

// Len is the number of stored records.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

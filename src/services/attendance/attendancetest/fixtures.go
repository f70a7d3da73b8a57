// Package attendancetest provides in-memory collaborators for exercising the
// attendance engine without MongoDB or Redis.
package attendancetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Backend-FaceAttend/src/models"
	"Backend-FaceAttend/src/services/attendance"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roster is an in-memory attendance.Roster.
type Roster struct {
	mu      sync.RWMutex
	members map[primitive.ObjectID]models.Member
	courses map[primitive.ObjectID]models.Course
	classes map[primitive.ObjectID]models.ClassGroup

	// FailUpdates makes the next n UpdateSignature calls report a stale counter.
	FailUpdates int
}

var _ attendance.Roster = (*Roster)(nil)

func NewRoster() *Roster {
	return &Roster{
		members: make(map[primitive.ObjectID]models.Member),
		courses: make(map[primitive.ObjectID]models.Course),
		classes: make(map[primitive.ObjectID]models.ClassGroup),
	}
}

// Session is a class with one course taught by one operator.
type Session struct {
	Class    models.ClassGroup
	Course   models.Course
	Operator primitive.ObjectID
	Members  []models.Member
}

// AddSession creates a class of n enrolled members, each with a signature of dims
// dimensions (none when dims is 0), and one course.
func (r *Roster) AddSession(n, dims int) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	class := models.ClassGroup{ID: primitive.NewObjectID(), Name: "Section A"}
	course := models.Course{
		ID:           primitive.NewObjectID(),
		Name:         "Algorithms",
		Code:         "CS" + class.ID.Hex()[18:],
		ClassID:      class.ID,
		OperatorID:   primitive.NewObjectID(),
		OperatorKind: models.OperatorTeacher,
	}
	class.CourseIDs = []primitive.ObjectID{course.ID}

	members := make([]models.Member, 0, n)
	for i := 0; i < n; i++ {
		m := models.Member{
			ID:       primitive.NewObjectID(),
			Name:     fmt.Sprintf("Member %02d", i+1),
			RollID:   fmt.Sprintf("R%03d", i+1),
			ClassID:  class.ID,
			Enrolled: true,
		}
		if dims > 0 {
			m.Signature = UnitVector(dims, i%dims)
		}
		members = append(members, m)
		class.MemberIDs = append(class.MemberIDs, m.ID)
		r.members[m.ID] = m
	}
	r.classes[class.ID] = class
	r.courses[course.ID] = course
	return Session{Class: class, Course: course, Operator: course.OperatorID, Members: members}
}

// LinkCourse lists courseID on the class group, sharing a course owned by another class.
func (r *Roster) LinkCourse(classID, courseID primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.classes[classID]
	g.CourseIDs = append(g.CourseIDs, courseID)
	r.classes[classID] = g
}

// PutMember inserts or replaces a member.
func (r *Roster) PutMember(m models.Member) {
	r.mu.Lock()
	r.members[m.ID] = m
	r.mu.Unlock()
}

// RemoveMember deletes a member record, leaving any attendance pointing at it dangling.
func (r *Roster) RemoveMember(id primitive.ObjectID) {
	r.mu.Lock()
	delete(r.members, id)
	r.mu.Unlock()
}

func (r *Roster) Member(_ context.Context, id primitive.ObjectID) (models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return models.Member{}, &attendance.NotFoundError{Kind: "member", ID: id.Hex()}
	}
	m.Signature = append([]float64(nil), m.Signature...)
	return m, nil
}

func (r *Roster) Members(_ context.Context, ids []primitive.ObjectID) ([]models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.members[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Roster) Course(_ context.Context, id primitive.ObjectID) (models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.courses[id]
	if !ok {
		return models.Course{}, &attendance.NotFoundError{Kind: "course", ID: id.Hex()}
	}
	return c, nil
}

func (r *Roster) ClassGroup(_ context.Context, id primitive.ObjectID) (models.ClassGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.classes[id]
	if !ok {
		return models.ClassGroup{}, &attendance.NotFoundError{Kind: "class", ID: id.Hex()}
	}
	return g, nil
}

func (r *Roster) EnrolledMembers(ctx context.Context, classID primitive.ObjectID) ([]models.Member, error) {
	g, err := r.ClassGroup(ctx, classID)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Member, 0, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		if m, ok := r.members[id]; ok && m.Enrolled && m.ClassID == classID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Roster) UpdateSignature(_ context.Context, memberID primitive.ObjectID, sig []float64, expectedUpdates int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[memberID]
	if !ok {
		return &attendance.NotFoundError{Kind: "member", ID: memberID.Hex()}
	}
	if r.FailUpdates > 0 {
		r.FailUpdates--
		m.SignatureUpdates++
		r.members[memberID] = m
		return attendance.ErrStaleSignature
	}
	if m.SignatureUpdates != expectedUpdates {
		return attendance.ErrStaleSignature
	}
	m.Signature = append([]float64(nil), sig...)
	m.SignatureUpdates++
	m.SignatureUpdatedAt = &at
	r.members[memberID] = m
	return nil
}

// Settings is an in-memory attendance.SettingsProvider that counts reads.
type Settings struct {
	mu      sync.Mutex
	cutoffs map[primitive.ObjectID]string
	calls   int
	Err     error
}

func NewSettings() *Settings {
	return &Settings{cutoffs: make(map[primitive.ObjectID]string)}
}

func (s *Settings) SetCutoff(operatorID primitive.ObjectID, cutoff string) {
	s.mu.Lock()
	s.cutoffs[operatorID] = cutoff
	s.mu.Unlock()
}

func (s *Settings) GetOrCreate(_ context.Context, operatorID primitive.ObjectID, kind string) (models.OperatorSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Err != nil {
		return models.OperatorSettings{}, s.Err
	}
	cutoff, ok := s.cutoffs[operatorID]
	if !ok {
		cutoff = "09:00"
		s.cutoffs[operatorID] = cutoff
	}
	return models.OperatorSettings{OperatorID: operatorID, OperatorKind: kind, LateCutoff: cutoff}, nil
}

// Calls is the number of GetOrCreate calls so far.
func (s *Settings) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Queue records enqueued refreshes instead of running them.
type Queue struct {
	mu   sync.Mutex
	jobs []attendance.SignatureRefresh
	Err  error
}

func (q *Queue) Enqueue(_ context.Context, job attendance.SignatureRefresh) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *Queue) Jobs() []attendance.SignatureRefresh {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]attendance.SignatureRefresh(nil), q.jobs...)
}

// UnitVector is the dims-long basis vector with a one at index i.
func UnitVector(dims, i int) []float64 {
	v := make([]float64, dims)
	v[i] = 1
	return v
}

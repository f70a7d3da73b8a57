package attendance

import (
	"context"
	"math"
	"time"

	"Backend-FaceAttend/src/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SettingsProvider reads an operator's settings, creating defaults on first access.
type SettingsProvider interface {
	GetOrCreate(ctx context.Context, operatorID primitive.ObjectID, kind string) (models.OperatorSettings, error)
}

// SignatureRefresh is the background work scheduled after an accepted biometric mark.
type SignatureRefresh struct {
	MemberID   primitive.ObjectID `json:"memberId"`
	Observed   []float64          `json:"observed"`
	Confidence float64            `json:"confidence"`
	Weight     float64            `json:"weight"`
	ObservedAt time.Time          `json:"observedAt"`
}

// RefreshQueue hands a refresh to a worker. Enqueue must not wait for the work itself.
type RefreshQueue interface {
	Enqueue(ctx context.Context, job SignatureRefresh) error
}

type Options struct {
	Location            *time.Location
	DefaultCutoff       string
	AcceptanceThreshold float64
	FusionWeight        float64
	SignatureDims       int
	TodayLimit          int
	EnqueueTimeout      time.Duration
	Now                 func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Location:            time.UTC,
		DefaultCutoff:       "09:00",
		AcceptanceThreshold: 0.6,
		FusionWeight:        0.15,
		SignatureDims:       128,
		TodayLimit:          100,
		EnqueueTimeout:      2 * time.Second,
		Now:                 time.Now,
	}
}

type Dependencies struct {
	Ledger   Ledger
	Roster   RosterReader
	Settings SettingsProvider
	Cache    SettingsCache
	Queue    RefreshQueue
}

// Coordinator drives marking sessions for (class, course, day).
type Coordinator struct {
	ledger   Ledger
	roster   RosterReader
	settings SettingsProvider
	cache    SettingsCache
	queue    RefreshQueue
	opts     Options
	log      *zap.Logger
}

func NewCoordinator(deps Dependencies, opts Options, log *zap.Logger) *Coordinator {
	def := DefaultOptions()
	if opts.Location == nil {
		opts.Location = def.Location
	}
	if opts.DefaultCutoff == "" {
		opts.DefaultCutoff = def.DefaultCutoff
	}
	if opts.FusionWeight == 0 {
		opts.FusionWeight = def.FusionWeight
	}
	if opts.SignatureDims == 0 {
		opts.SignatureDims = def.SignatureDims
	}
	if opts.TodayLimit == 0 {
		opts.TodayLimit = def.TodayLimit
	}
	if opts.EnqueueTimeout == 0 {
		opts.EnqueueTimeout = def.EnqueueTimeout
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if deps.Cache == nil {
		deps.Cache = NewMemoryCache(5*time.Minute, opts.Now)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		ledger:   deps.Ledger,
		roster:   deps.Roster,
		settings: deps.Settings,
		cache:    deps.Cache,
		queue:    deps.Queue,
		opts:     opts,
		log:      log.Named("coordinator"),
	}
}

// BiometricMark a recognition event for one member.
type BiometricMark struct {
	MemberID   primitive.ObjectID
	CourseID   primitive.ObjectID
	ClassID    primitive.ObjectID
	Observed   []float64
	Confidence float64
	EventTime  time.Time
}

// ManualMark an operator-entered status for one member.
type ManualMark struct {
	MemberID  primitive.ObjectID
	CourseID  primitive.ObjectID
	ClassID   primitive.ObjectID
	Status    models.AttendanceStatus
	EventTime time.Time
}

// Today is the session-day of the current instant.
func (c *Coordinator) Today() time.Time {
	return SessionDay(c.opts.Now(), c.opts.Location)
}

func (c *Coordinator) MarkBiometric(ctx context.Context, in BiometricMark) (models.AttendanceRecord, error) {
	if math.IsNaN(in.Confidence) || in.Confidence < 0 || in.Confidence > 1 {
		return models.AttendanceRecord{}, invalid("confidenceScore", "must be within [0,1]")
	}
	if len(in.Observed) == 0 {
		return models.AttendanceRecord{}, invalid("faceDescriptor", "must not be empty")
	}
	member, course, err := c.resolve(ctx, in.MemberID, in.CourseID, in.ClassID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if !member.HasSignature() {
		return models.AttendanceRecord{}, invalid("studentId", "member has no stored signature")
	}

	eventTime := c.eventTime(in.EventTime)
	day := SessionDay(eventTime, c.opts.Location)
	if err := c.ensureUnmarked(ctx, in.MemberID, in.CourseID, day); err != nil {
		return models.AttendanceRecord{}, err
	}

	cutoff, err := c.cutoffFor(ctx, course)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	status, err := Classify(eventTime, cutoff, day)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	rec, err := c.ledger.Create(ctx, models.AttendanceRecord{
		MemberID:   in.MemberID,
		CourseID:   in.CourseID,
		ClassID:    in.ClassID,
		Status:     status,
		Confidence: in.Confidence,
		Source:     models.SourceBiometric,
		SessionDay: day,
		Timestamp:  eventTime,
	})
	if err != nil {
		return models.AttendanceRecord{}, storageErr("mark biometric", err)
	}

	c.scheduleRefresh(ctx, member, in.Observed, in.Confidence, eventTime)
	return rec, nil
}

func (c *Coordinator) MarkManual(ctx context.Context, in ManualMark) (models.AttendanceRecord, error) {
	if !in.Status.Valid() {
		return models.AttendanceRecord{}, invalid("status", "%q is not one of present, late, absent", in.Status)
	}
	if _, _, err := c.resolve(ctx, in.MemberID, in.CourseID, in.ClassID); err != nil {
		return models.AttendanceRecord{}, err
	}

	eventTime := c.eventTime(in.EventTime)
	day := SessionDay(eventTime, c.opts.Location)
	if err := c.ensureUnmarked(ctx, in.MemberID, in.CourseID, day); err != nil {
		return models.AttendanceRecord{}, err
	}

	confidence := 1.0
	if in.Status == models.StatusAbsent {
		confidence = 0
	}
	rec, err := c.ledger.Create(ctx, models.AttendanceRecord{
		MemberID:   in.MemberID,
		CourseID:   in.CourseID,
		ClassID:    in.ClassID,
		Status:     in.Status,
		Confidence: confidence,
		Source:     models.SourceManual,
		SessionDay: day,
		Timestamp:  eventTime,
	})
	if err != nil {
		return models.AttendanceRecord{}, storageErr("mark manual", err)
	}
	return rec, nil
}

// Finalize resolves the session of day. With markAbsent every unmarked enrolled
// member gets a system absence; a second call finds nobody left to mark.
func (c *Coordinator) Finalize(ctx context.Context, classID, courseID primitive.ObjectID, day time.Time, markAbsent bool) (models.FinalizeResult, error) {
	if _, err := c.classAndCourse(ctx, classID, courseID); err != nil {
		return models.FinalizeResult{}, err
	}
	day = SessionDay(day, c.opts.Location)

	counts, err := c.ledger.StatusCounts(ctx, classID, courseID, day)
	if err != nil {
		return models.FinalizeResult{}, storageErr("finalize", err)
	}
	unmarked, err := c.ledger.UnmarkedMembers(ctx, classID, courseID, day)
	if err != nil {
		return models.FinalizeResult{}, storageErr("finalize", err)
	}

	res := models.FinalizeResult{
		Present:  counts[models.StatusPresent],
		Late:     counts[models.StatusLate],
		Absent:   counts[models.StatusAbsent],
		Unmarked: len(unmarked),
	}
	if !markAbsent || len(unmarked) == 0 {
		return res, nil
	}

	created, err := c.ledger.BulkCreateAbsent(ctx, unmarked, courseID, classID, day, c.opts.Now())
	if err != nil {
		return models.FinalizeResult{}, storageErr("finalize", err)
	}
	res.NewlyAbsent = created
	res.Unmarked = len(unmarked) - created
	c.log.Info("session finalized",
		zap.String("classId", classID.Hex()),
		zap.String("courseId", courseID.Hex()),
		zap.Time("day", day),
		zap.Int("presentOrLate", res.PresentOrLate()),
		zap.Int("newlyAbsent", created),
	)
	return res, nil
}

func (c *Coordinator) UnmarkedMembers(ctx context.Context, classID, courseID primitive.ObjectID) ([]models.Member, error) {
	if _, err := c.classAndCourse(ctx, classID, courseID); err != nil {
		return nil, err
	}
	members, err := c.ledger.UnmarkedMembers(ctx, classID, courseID, c.Today())
	return members, storageErr("unmarked members", err)
}

// TodayRecords lists today's records of a course, capped at the configured page size.
func (c *Coordinator) TodayRecords(ctx context.Context, courseID primitive.ObjectID, limit int, order Order) ([]models.TodayEntry, error) {
	if _, err := c.roster.Course(ctx, courseID); err != nil {
		return nil, lookupErr(err)
	}
	if limit <= 0 || limit > c.opts.TodayLimit {
		limit = c.opts.TodayLimit
	}
	entries, err := c.ledger.TodayRecords(ctx, courseID, c.Today(), limit, order)
	return entries, storageErr("today records", err)
}

// Roster lists the enrolled members of a class.
func (c *Coordinator) Roster(ctx context.Context, classID primitive.ObjectID) ([]models.Member, error) {
	if _, err := c.roster.ClassGroup(ctx, classID); err != nil {
		return nil, lookupErr(err)
	}
	members, err := c.roster.EnrolledMembers(ctx, classID)
	return members, storageErr("roster", err)
}

// InvalidateSettings drops the cached cutoff of an operator.
func (c *Coordinator) InvalidateSettings(ctx context.Context, operatorID primitive.ObjectID) {
	c.cache.Invalidate(ctx, operatorID)
}

func (c *Coordinator) eventTime(t time.Time) time.Time {
	if t.IsZero() {
		t = c.opts.Now()
	}
	return t.In(c.opts.Location)
}

func (c *Coordinator) ensureUnmarked(ctx context.Context, memberID, courseID primitive.ObjectID, day time.Time) error {
	exists, err := c.ledger.Exists(ctx, memberID, courseID, day)
	if err != nil {
		return storageErr("duplicate check", err)
	}
	if exists {
		return &DuplicateError{MemberID: memberID, CourseID: courseID, Day: day}
	}
	return nil
}

func (c *Coordinator) classAndCourse(ctx context.Context, classID, courseID primitive.ObjectID) (models.Course, error) {
	group, err := c.roster.ClassGroup(ctx, classID)
	if err != nil {
		return models.Course{}, lookupErr(err)
	}
	course, err := c.roster.Course(ctx, courseID)
	if err != nil {
		return models.Course{}, lookupErr(err)
	}
	if course.ClassID != classID && !group.HasCourse(courseID) {
		return models.Course{}, invalid("courseId", "course %s is not taught to class %s", courseID.Hex(), classID.Hex())
	}
	return course, nil
}

// resolve loads the member and course and checks the member is enrolled in the class.
func (c *Coordinator) resolve(ctx context.Context, memberID, courseID, classID primitive.ObjectID) (models.Member, models.Course, error) {
	course, err := c.classAndCourse(ctx, classID, courseID)
	if err != nil {
		return models.Member{}, models.Course{}, err
	}
	member, err := c.roster.Member(ctx, memberID)
	if err != nil {
		return models.Member{}, models.Course{}, lookupErr(err)
	}
	if member.ClassID != classID || !member.Enrolled {
		return models.Member{}, models.Course{}, notFound("enrolled member", memberID)
	}
	return member, course, nil
}

func (c *Coordinator) cutoffFor(ctx context.Context, course models.Course) (string, error) {
	if cutoff, ok := c.cache.Get(ctx, course.OperatorID); ok {
		return cutoff, nil
	}
	kind := course.OperatorKind
	if kind == "" {
		kind = models.OperatorTeacher
	}
	s, err := c.settings.GetOrCreate(ctx, course.OperatorID, kind)
	if err != nil {
		return "", storageErr("operator settings", err)
	}
	cutoff := s.LateCutoff
	if cutoff == "" {
		cutoff = c.opts.DefaultCutoff
	}
	c.cache.Set(ctx, course.OperatorID, cutoff)
	return cutoff, nil
}

// scheduleRefresh hands an accepted observation to the refresh queue. Failures
// are logged only; the mark has already succeeded.
func (c *Coordinator) scheduleRefresh(ctx context.Context, member models.Member, observed []float64, confidence float64, at time.Time) {
	if c.queue == nil || confidence < c.opts.AcceptanceThreshold {
		return
	}
	if len(observed) != c.opts.SignatureDims || len(member.Signature) != c.opts.SignatureDims {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.EnqueueTimeout)
	defer cancel()
	job := SignatureRefresh{
		MemberID:   member.ID,
		Observed:   append([]float64(nil), observed...),
		Confidence: confidence,
		Weight:     c.opts.FusionWeight,
		ObservedAt: at,
	}
	if err := c.queue.Enqueue(ctx, job); err != nil {
		c.log.Warn("signature refresh not scheduled",
			zap.String("memberId", member.ID.Hex()),
			zap.Error(err),
		)
	}
}

// lookupErr keeps NotFoundError as is and wraps anything else as storage.
func lookupErr(err error) error {
	return storageErr("lookup", err)
}

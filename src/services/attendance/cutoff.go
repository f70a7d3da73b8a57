package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"Backend-FaceAttend/src/models"
)

// Cutoff is a time-of-day boundary between present and late.
type Cutoff struct {
	Hour   int
	Minute int
}

// ParseCutoff accepts "H:MM" or "HH:MM" on a 24h clock.
func ParseCutoff(s string) (Cutoff, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Cutoff{}, invalid("lateCutoff", "%q is not H:MM or HH:MM", s)
	}
	h, m := parts[0], parts[1]
	if len(h) < 1 || len(h) > 2 || len(m) != 2 || !digits(h) || !digits(m) {
		return Cutoff{}, invalid("lateCutoff", "%q is not H:MM or HH:MM", s)
	}
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	if hour > 23 {
		return Cutoff{}, invalid("lateCutoff", "hour %d out of range 0-23", hour)
	}
	if minute > 59 {
		return Cutoff{}, invalid("lateCutoff", "minute %d out of range 0-59", minute)
	}
	return Cutoff{Hour: hour, Minute: minute}, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the cutoff instant on the calendar day of day, in day's location.
func (c Cutoff) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

// Classify compares eventTime with the cutoff anchored on referenceDay's date.
// Strictly after the cutoff is late; at or before it is present.
func Classify(eventTime time.Time, cutoff string, referenceDay time.Time) (models.AttendanceStatus, error) {
	c, err := ParseCutoff(cutoff)
	if err != nil {
		return "", err
	}
	if eventTime.After(c.On(referenceDay)) {
		return models.StatusLate, nil
	}
	return models.StatusPresent, nil
}

// SessionDay truncates t to midnight in loc, the partition key of the ledger.
func SessionDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultMaxLessons is the lesson ceiling of one card.
const DefaultMaxLessons = 10

// LessonState is derived from the active flag and counters.
type LessonState string

const (
	LessonStateActive        LessonState = "active"
	LessonStateRenewalNeeded LessonState = "renewal_needed"
	LessonStateInactive      LessonState = "inactive"
)

// Recurrence describes how a lesson repeats across weeks.
type Recurrence struct {
	FrequencyPerWeek int      `json:"frequencyPerWeek"`
	Days             []string `json:"days"`
	Weeks            int      `json:"weeks"`
}

// Value stores the recurrence as JSON.
func (r Recurrence) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan decodes a JSON recurrence column.
func (r *Recurrence) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = Recurrence{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan recurrence: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*r = Recurrence{}
		return nil
	}
	if err := json.Unmarshal(raw, r); err != nil {
		return errors.New("scan recurrence: " + err.Error())
	}
	return nil
}

// LessonSchedule is a teacher-student weekly lesson slot tracked against a lesson card.
type LessonSchedule struct {
	ID                  string      `db:"id" json:"id"`
	TeacherID           string      `db:"teacher_id" json:"teacherId"`
	StudentName         string      `db:"student_name" json:"studentName"`
	Instrument          string      `db:"instrument" json:"instrument"`
	Level               string      `db:"level" json:"level"`
	Room                string      `db:"room" json:"room"`
	DayOfWeek           string      `db:"day_of_week" json:"dayOfWeek"`
	StartTime           string      `db:"start_time" json:"startTime"`
	DurationMinutes     int         `db:"duration_minutes" json:"durationMinutes"`
	LessonCardNumber    string      `db:"lesson_card_number" json:"lessonCardNumber"`
	CurrentLessonNumber int         `db:"current_lesson_number" json:"currentLessonNumber"`
	MaxLessons          int         `db:"max_lessons" json:"maxLessons"`
	StartDate           time.Time   `db:"start_date" json:"startDate"`
	Active              bool        `db:"active" json:"active"`
	Recurrence          *Recurrence `db:"recurrence" json:"recurrence,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updatedAt"`
}

// State derives the lesson package state.
func (l LessonSchedule) State() LessonState {
	switch {
	case !l.Active:
		return LessonStateInactive
	case l.CurrentLessonNumber > l.MaxLessons:
		return LessonStateRenewalNeeded
	default:
		return LessonStateActive
	}
}

// RemainingLessons counts lessons left on the current card.
func (l LessonSchedule) RemainingLessons() int {
	remaining := l.MaxLessons - l.CurrentLessonNumber + 1
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarshalJSON adds the derived state.
func (l LessonSchedule) MarshalJSON() ([]byte, error) {
	type lesson LessonSchedule
	return json.Marshal(struct {
		lesson
		State            LessonState `json:"state"`
		RemainingLessons int         `json:"remainingLessons"`
	}{lesson: lesson(l), State: l.State(), RemainingLessons: l.RemainingLessons()})
}

// LessonScheduleFilter narrows lesson schedule listings.
type LessonScheduleFilter struct {
	TeacherID string
	Active    *bool
}

// LessonOutcome tells callers how a completed lesson left the card.
type LessonOutcome string

const (
	LessonOutcomeCompleted     LessonOutcome = "completed"
	LessonOutcomeRenewalNeeded LessonOutcome = "renewal_needed"
)

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeOn(t *testing.T) {
	dob := time.Date(2000, time.June, 15, 0, 0, 0, 0, time.UTC)

	before := AgeOn(&dob, time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC))
	on := AgeOn(&dob, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, before)
	require.NotNil(t, on)
	assert.Equal(t, 23, *before)
	assert.Equal(t, 24, *on)
	assert.Nil(t, AgeOn(nil, time.Now()))
}

func TestJoinInstrumentsDeduplicates(t *testing.T) {
	assert.Equal(t, "Piano, violin", JoinInstruments("Piano, violin ,", "piano", "Violin"))
	assert.Equal(t, "Cello, PIANO", JoinInstruments("Cello", "PIANO", "piano"))
	assert.Equal(t, "", JoinInstruments(" , "))
	assert.Equal(t, []string{"Guitar", "Drums"}, Teacher{Instruments: "Guitar,Drums,guitar"}.InstrumentList())
}

func TestParseStudentStatus(t *testing.T) {
	assert.Equal(t, StudentStatusInactive, ParseStudentStatus(" Withdrawn "))
	assert.Equal(t, StudentStatusActive, ParseStudentStatus(""))
	assert.Equal(t, StudentStatusActive, ParseStudentStatus("Active"))
}

func TestStudentJSONUsesStoredAgeWithoutBirthDate(t *testing.T) {
	age := 12
	raw, err := json.Marshal(Student{FirstName: "Mia", Age: &age})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(12), decoded["age"])
	assert.Equal(t, "Mia", decoded["firstName"])
}

func TestLessonScheduleState(t *testing.T) {
	lesson := LessonSchedule{Active: true, CurrentLessonNumber: 10, MaxLessons: 10}
	assert.Equal(t, LessonStateActive, lesson.State())
	assert.Equal(t, 1, lesson.RemainingLessons())

	lesson.CurrentLessonNumber = 11
	assert.Equal(t, LessonStateRenewalNeeded, lesson.State())
	assert.Equal(t, 0, lesson.RemainingLessons())

	lesson.Active = false
	assert.Equal(t, LessonStateInactive, lesson.State())

	raw, err := json.Marshal(lesson)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"state":"inactive"`)
}

func TestRecurrenceValueAndScan(t *testing.T) {
	rec := Recurrence{FrequencyPerWeek: 2, Days: []string{"Monday", "Wednesday"}, Weeks: 10}
	value, err := rec.Value()
	require.NoError(t, err)

	var scanned Recurrence
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, rec, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, Recurrence{}, scanned)
	assert.Error(t, scanned.Scan(42))
}

func TestStudentJSONRoundTripKeepsAge(t *testing.T) {
	age := 8
	raw, err := json.Marshal(Student{ID: "s1", StudentCode: "DMS-00002", Age: &age})
	require.NoError(t, err)

	var decoded Student
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "DMS-00002", decoded.StudentCode)
	require.NotNil(t, decoded.Age)
	assert.Equal(t, 8, *decoded.Age)
}

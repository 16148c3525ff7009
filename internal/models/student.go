package models

import (
	"encoding/json"
	"strings"
	"time"
)

// StudentStatus enumerates enrollment states.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// ParseStudentStatus maps free-form sheet values onto a status, defaulting to active.
func ParseStudentStatus(raw string) StudentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inactive", "dropped", "withdrawn":
		return StudentStatusInactive
	default:
		return StudentStatusActive
	}
}

// StudentCodePrefix prefixes every sequential student code.
const StudentCodePrefix = "DMS-"

// Student represents an enrolled learner.
type Student struct {
	ID                    string        `db:"id" json:"id"`
	FirstName             string        `db:"first_name" json:"firstName"`
	LastName              string        `db:"last_name" json:"lastName"`
	Email                 string        `db:"email" json:"email"`
	Phone                 string        `db:"phone" json:"phone"`
	DateOfBirth           *time.Time    `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Age                   *int          `db:"age" json:"-"`
	Address               string        `db:"address" json:"address"`
	EmergencyContactName  string        `db:"emergency_contact_name" json:"emergencyContactName"`
	EmergencyContactPhone string        `db:"emergency_contact_phone" json:"emergencyContactPhone"`
	EnrollmentDate        *time.Time    `db:"enrollment_date" json:"enrollmentDate,omitempty"`
	StudentCode           string        `db:"student_code" json:"studentCode"`
	Status                StudentStatus `db:"status" json:"status"`
	SocialMediaConsent    bool          `db:"social_media_consent" json:"socialMediaConsent"`
	ReferralSource        string        `db:"referral_source" json:"referralSource"`
	ReferralDetail        string        `db:"referral_detail" json:"referralDetail"`
	CreatedAt             time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// EffectiveAge prefers the age derived from the birth date over the stored one.
func (s Student) EffectiveAge(now time.Time) *int {
	if age := AgeOn(s.DateOfBirth, now); age != nil {
		return age
	}
	return s.Age
}

// MarshalJSON emits the effective age.
func (s Student) MarshalJSON() ([]byte, error) {
	type student Student
	return json.Marshal(struct {
		student
		Age *int `json:"age,omitempty"`
	}{student: student(s), Age: s.EffectiveAge(time.Now())})
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    StudentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// UnmarshalJSON restores the age emitted by MarshalJSON.
func (s *Student) UnmarshalJSON(data []byte) error {
	type student Student
	aux := struct {
		*student
		Age *int `json:"age"`
	}{student: (*student)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Age = aux.Age
	return nil
}

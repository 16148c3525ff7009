package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Teacher represents an instructor record.
type Teacher struct {
	ID          string     `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"firstName"`
	LastName    string     `db:"last_name" json:"lastName"`
	CallName    string     `db:"call_name" json:"callName"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Email       string     `db:"email" json:"email"`
	Phone       string     `db:"phone" json:"phone"`
	Address     string     `db:"address" json:"address"`
	ZipCode     string     `db:"zip_code" json:"zipCode"`
	TIN         string     `db:"tin" json:"tin"`
	Instruments string     `db:"instruments" json:"instruments"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (t Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// InstrumentList splits the comma-separated instruments.
func (t Teacher) InstrumentList() []string {
	return SplitInstruments(t.Instruments)
}

// MarshalJSON adds the derived age.
func (t Teacher) MarshalJSON() ([]byte, error) {
	type teacher Teacher
	return json.Marshal(struct {
		teacher
		Age *int `json:"age,omitempty"`
	}{teacher: teacher(t), Age: AgeOn(t.DateOfBirth, time.Now())})
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// SplitInstruments parses a comma-separated instrument list, dropping blanks
// and case-insensitive duplicates while keeping the first spelling.
func SplitInstruments(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// JoinInstruments renders instruments in their stored form.
func JoinInstruments(names ...string) string {
	return strings.Join(SplitInstruments(strings.Join(names, ",")), ", ")
}

package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

var emergencyContactPattern = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)

func ageCell(age *int) string {
	if age == nil {
		return ""
	}
	return strconv.Itoa(*age)
}

func parseAgeCell(raw string) *int {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || age < 0 {
		return nil
	}
	return &age
}

// formatEmergencyContact renders name and phone as "Name (phone)".
func formatEmergencyContact(name, phone string) string {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	switch {
	case name == "":
		return phone
	case phone == "":
		return name
	default:
		return name + " (" + phone + ")"
	}
}

func parseEmergencyContact(raw string) (name, phone string) {
	raw = strings.TrimSpace(raw)
	if m := emergencyContactPattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return raw, ""
}

// teacherRecord maps a stored teacher onto the teacher tab columns.
func teacherRecord(t models.Teacher, now time.Time) sheets.TeacherRecord {
	created, updated := t.CreatedAt, t.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	return sheets.TeacherRecord{
		CallName:      t.CallName,
		FullName:      sheets.JoinFullName(t.FirstName, t.LastName),
		DateOfBirth:   sheets.FormatDate(t.DateOfBirth),
		Age:           ageCell(models.AgeOn(t.DateOfBirth, now)),
		ContactNumber: t.Phone,
		Email:         t.Email,
		Address:       t.Address,
		ZIP:           t.ZipCode,
		TIN:           t.TIN,
		Instruments:   t.Instruments,
		AddedDate:     sheets.FormatTimestamp(created),
		LastUpdated:   sheets.FormatTimestamp(updated),
	}
}

// overlayTeacherRecord copies every non-empty cell of rec onto dst.
func overlayTeacherRecord(dst *models.Teacher, rec sheets.TeacherRecord) {
	if rec.FullName != "" {
		dst.FirstName, dst.LastName = sheets.SplitFullName(rec.FullName)
	}
	setIfPresent(&dst.CallName, rec.CallName)
	if dob := sheets.ParseDate(rec.DateOfBirth); dob != nil {
		dst.DateOfBirth = dob
	}
	setIfPresent(&dst.Phone, rec.ContactNumber)
	setIfPresent(&dst.Email, rec.Email)
	setIfPresent(&dst.Address, rec.Address)
	setIfPresent(&dst.ZipCode, rec.ZIP)
	setIfPresent(&dst.TIN, rec.TIN)
	if instruments := models.JoinInstruments(rec.Instruments); instruments != "" {
		dst.Instruments = instruments
	}
}

// enrollmentRecord maps a stored student onto the enrollment tab columns.
func enrollmentRecord(s models.Student, now time.Time) sheets.EnrollmentRecord {
	var timestamp string
	switch {
	case s.EnrollmentDate != nil && !s.EnrollmentDate.IsZero():
		timestamp = sheets.FormatDateTimestamp(*s.EnrollmentDate)
	case !s.CreatedAt.IsZero():
		timestamp = sheets.FormatTimestamp(s.CreatedAt)
	default:
		timestamp = sheets.FormatTimestamp(now)
	}
	status := s.Status
	if status == "" {
		status = models.StudentStatusActive
	}
	return sheets.EnrollmentRecord{
		Timestamp:          timestamp,
		StudentCode:        s.StudentCode,
		FullName:           sheets.JoinFullName(s.FirstName, s.LastName),
		DateOfBirth:        sheets.FormatDate(s.DateOfBirth),
		Age:                ageCell(s.EffectiveAge(now)),
		EmergencyContact:   formatEmergencyContact(s.EmergencyContactName, s.EmergencyContactPhone),
		Email:              s.Email,
		ContactNumber:      s.Phone,
		SocialMediaConsent: sheets.FormatYesNo(s.SocialMediaConsent),
		Status:             string(status),
		ReferralSource:     s.ReferralSource,
		ReferralDetail:     s.ReferralDetail,
	}
}

// overlayEnrollmentRecord copies every non-empty cell of rec onto dst. The
// student code is only taken when dst has none.
func overlayEnrollmentRecord(dst *models.Student, rec sheets.EnrollmentRecord) {
	if rec.FullName != "" {
		dst.FirstName, dst.LastName = sheets.SplitFullName(rec.FullName)
	}
	if dst.StudentCode == "" {
		dst.StudentCode = rec.StudentCode
	}
	if ts := sheets.ParseTimestamp(rec.Timestamp); ts != nil {
		enrolled := sheets.DateOnly(*ts)
		dst.EnrollmentDate = &enrolled
	}
	if dob := sheets.ParseDate(rec.DateOfBirth); dob != nil {
		dst.DateOfBirth = dob
	}
	if age := parseAgeCell(rec.Age); age != nil {
		dst.Age = age
	}
	if rec.EmergencyContact != "" {
		name, phone := parseEmergencyContact(rec.EmergencyContact)
		setIfPresent(&dst.EmergencyContactName, name)
		setIfPresent(&dst.EmergencyContactPhone, phone)
	}
	setIfPresent(&dst.Email, rec.Email)
	setIfPresent(&dst.Phone, rec.ContactNumber)
	if rec.SocialMediaConsent != "" {
		dst.SocialMediaConsent = sheets.ParseYesNo(rec.SocialMediaConsent)
	}
	if rec.Status != "" {
		dst.Status = models.ParseStudentStatus(rec.Status)
	}
	setIfPresent(&dst.ReferralSource, rec.ReferralSource)
	setIfPresent(&dst.ReferralDetail, rec.ReferralDetail)
}

func setIfPresent(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

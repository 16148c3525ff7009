package sheets

import "strings"

// Row is one decoded data line of a tab. Number is the 1-based line in the
// exported text, so the header is line 1.
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the trimmed cell at index i, or "" when the row is short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

func (r Row) blank() bool {
	for _, cell := range r.Cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Teacher tab column indexes.
const (
	TeacherColCallName = iota
	TeacherColFullName
	TeacherColDateOfBirth
	TeacherColAge
	TeacherColContactNumber
	TeacherColEmail
	TeacherColAddress
	TeacherColZIP
	TeacherColTIN
	TeacherColInstruments
	TeacherColAddedDate
	TeacherColLastUpdated
)

// TeacherHeader is the header the webhook writes when it creates the teacher tab.
var TeacherHeader = []string{
	"Call Name", "Full Name", "Date of Birth", "Age", "Contact Number", "Email",
	"Address", "ZIP", "TIN", "Instruments", "Added Date", "Last Updated",
}

// Enrollment tab column indexes.
const (
	EnrollmentColTimestamp = iota
	EnrollmentColStudentCode
	EnrollmentColFullName
	EnrollmentColDateOfBirth
	EnrollmentColAge
	EnrollmentColEmergencyContact
	EnrollmentColEmail
	EnrollmentColContactNumber
	EnrollmentColSocialMediaConsent
	EnrollmentColStatus
	EnrollmentColReferralSource
	EnrollmentColReferralDetail
)

// EnrollmentHeader is the header of the enrollment tab.
var EnrollmentHeader = []string{
	"Timestamp", "Student Code", "Full Name", "Date of Birth", "Age", "Emergency Contact",
	"Email", "Contact Number", "Social-Media Consent", "Status", "Referral Source", "Referral Detail",
}

// TeacherRecord is a teacher tab row. The JSON form is the webhook's teacherData payload.
type TeacherRecord struct {
	RowNumber     int    `json:"-"`
	CallName      string `json:"callName"`
	FullName      string `json:"fullName"`
	DateOfBirth   string `json:"dateOfBirth"`
	Age           string `json:"age"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	ZIP           string `json:"zip"`
	TIN           string `json:"tin"`
	Instruments   string `json:"instruments"`
	AddedDate     string `json:"addedDate"`
	LastUpdated   string `json:"lastUpdated"`
}

// Cells returns the record in teacher tab column order.
func (t TeacherRecord) Cells() []string {
	return []string{
		t.CallName, t.FullName, t.DateOfBirth, t.Age, t.ContactNumber, t.Email,
		t.Address, t.ZIP, t.TIN, t.Instruments, t.AddedDate, t.LastUpdated,
	}
}

// EnrollmentRecord is an enrollment tab row. The JSON form is the webhook's data payload.
type EnrollmentRecord struct {
	RowNumber          int    `json:"-"`
	Timestamp          string `json:"timestamp"`
	StudentCode        string `json:"studentCode"`
	FullName           string `json:"fullName"`
	DateOfBirth        string `json:"dateOfBirth"`
	Age                string `json:"age"`
	EmergencyContact   string `json:"emergencyContact"`
	Email              string `json:"email"`
	ContactNumber      string `json:"contactNumber"`
	SocialMediaConsent string `json:"socialMediaConsent"`
	Status             string `json:"status"`
	ReferralSource     string `json:"referralSource"`
	ReferralDetail     string `json:"referralDetail"`
}

// Cells returns the record in enrollment tab column order.
func (e EnrollmentRecord) Cells() []string {
	return []string{
		e.Timestamp, e.StudentCode, e.FullName, e.DateOfBirth, e.Age, e.EmergencyContact,
		e.Email, e.ContactNumber, e.SocialMediaConsent, e.Status, e.ReferralSource, e.ReferralDetail,
	}
}

// DecodeTeacherRows maps teacher tab rows by column index. Rows without any
// name are dropped.
func DecodeTeacherRows(rows []Row) []TeacherRecord {
	out := make([]TeacherRecord, 0, len(rows))
	for _, row := range rows {
		rec := TeacherRecord{
			RowNumber:     row.Number,
			CallName:      row.Cell(TeacherColCallName),
			FullName:      row.Cell(TeacherColFullName),
			DateOfBirth:   row.Cell(TeacherColDateOfBirth),
			Age:           row.Cell(TeacherColAge),
			ContactNumber: row.Cell(TeacherColContactNumber),
			Email:         row.Cell(TeacherColEmail),
			Address:       row.Cell(TeacherColAddress),
			ZIP:           row.Cell(TeacherColZIP),
			TIN:           row.Cell(TeacherColTIN),
			Instruments:   row.Cell(TeacherColInstruments),
			AddedDate:     row.Cell(TeacherColAddedDate),
			LastUpdated:   row.Cell(TeacherColLastUpdated),
		}
		if rec.FullName == "" && rec.CallName == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// DecodeEnrollmentRows maps enrollment tab rows by column index. Rows with
// neither a name nor a student code are dropped.
func DecodeEnrollmentRows(rows []Row) []EnrollmentRecord {
	out := make([]EnrollmentRecord, 0, len(rows))
	for _, row := range rows {
		rec := EnrollmentRecord{
			RowNumber:          row.Number,
			Timestamp:          row.Cell(EnrollmentColTimestamp),
			StudentCode:        row.Cell(EnrollmentColStudentCode),
			FullName:           row.Cell(EnrollmentColFullName),
			DateOfBirth:        row.Cell(EnrollmentColDateOfBirth),
			Age:                row.Cell(EnrollmentColAge),
			EmergencyContact:   row.Cell(EnrollmentColEmergencyContact),
			Email:              row.Cell(EnrollmentColEmail),
			ContactNumber:      row.Cell(EnrollmentColContactNumber),
			SocialMediaConsent: row.Cell(EnrollmentColSocialMediaConsent),
			Status:             row.Cell(EnrollmentColStatus),
			ReferralSource:     row.Cell(EnrollmentColReferralSource),
			ReferralDetail:     row.Cell(EnrollmentColReferralDetail),
		}
		if rec.FullName == "" && rec.StudentCode == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

package sheets

import "fmt"

// Action names the webhook operation.
type Action string

const (
	ActionAddTeacher    Action = "addTeacher"
	ActionUpdateTeacher Action = "updateTeacher"
	ActionAddStudent    Action = "addStudent"
	ActionUpdateStudent Action = "updateStudent"
)

// Request is one webhook write. The set of implementations is closed:
// AddTeacher, UpdateTeacher, AddStudent and UpdateStudent.
type Request interface {
	Action() Action
	isRequest()
}

// AddTeacher appends a teacher row, creating the tab with TeacherHeader on first use.
type AddTeacher struct {
	Teacher TeacherRecord
}

// UpdateTeacher overwrites the teacher row matched by OriginalEmail (or the
// record email when empty), falling back to the full name.
type UpdateTeacher struct {
	Teacher       TeacherRecord
	OriginalEmail string
}

// AddStudent appends an enrollment row.
type AddStudent struct {
	Student EnrollmentRecord
}

// UpdateStudent overwrites the enrollment row matched by student code, or by
// OriginalEmail (or the record email) when the code is empty.
type UpdateStudent struct {
	Student       EnrollmentRecord
	OriginalEmail string
}

func (AddTeacher) Action() Action    { return ActionAddTeacher }
func (UpdateTeacher) Action() Action { return ActionUpdateTeacher }
func (AddStudent) Action() Action    { return ActionAddStudent }
func (UpdateStudent) Action() Action { return ActionUpdateStudent }

func (AddTeacher) isRequest()    {}
func (UpdateTeacher) isRequest() {}
func (AddStudent) isRequest()    {}
func (UpdateStudent) isRequest() {}

type webhookEnvelope struct {
	Action      Action      `json:"action"`
	SheetID     string      `json:"sheetId"`
	TeacherData interface{} `json:"teacherData,omitempty"`
	Data        interface{} `json:"data,omitempty"`
}

type teacherUpdatePayload struct {
	TeacherRecord
	OriginalEmail string `json:"originalEmail,omitempty"`
}

type studentUpdatePayload struct {
	EnrollmentRecord
	OriginalEmail string `json:"originalEmail,omitempty"`
}

// envelopeFor is the single dispatch point from a typed request to the wire body.
func envelopeFor(sheetID string, req Request) (webhookEnvelope, error) {
	env := webhookEnvelope{SheetID: sheetID}
	switch r := req.(type) {
	case AddTeacher:
		env.Action = ActionAddTeacher
		env.TeacherData = r.Teacher
	case UpdateTeacher:
		env.Action = ActionUpdateTeacher
		env.TeacherData = teacherUpdatePayload{TeacherRecord: r.Teacher, OriginalEmail: r.OriginalEmail}
	case AddStudent:
		env.Action = ActionAddStudent
		env.Data = r.Student
	case UpdateStudent:
		env.Action = ActionUpdateStudent
		env.Data = studentUpdatePayload{EnrollmentRecord: r.Student, OriginalEmail: r.OriginalEmail}
	default:
		return webhookEnvelope{}, fmt.Errorf("sheets: unsupported request %T", req)
	}
	return env, nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/models"
	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

func newStudentServiceWithSheet(repo *mockStudentRepo, sheet *fakeSheet) *StudentService {
	seq := NewStudentCodeSequencer(repo, sheet, "sheet-1", "Enrollment", nil)
	pusher := NewSheetPusher(sheet, "sheet-1", nil, zap.NewNop())
	return NewStudentService(repo, seq, pusher, nil, nil, zap.NewNop())
}

func TestStudentServiceCreateAssignsCodeThenPushes(t *testing.T) {
	repo := newMockStudentRepo()
	sheet := newFakeSheet()
	svc := newStudentServiceWithSheet(repo, sheet)

	dob := "2012-09-01"
	student, push, err := svc.Create(context.Background(), StudentRequest{
		FirstName:             "Mia",
		LastName:              "Reyes",
		Email:                 "mia@example.com",
		DateOfBirth:           &dob,
		EmergencyContactName:  "Lea Reyes",
		EmergencyContactPhone: "0918",
		SocialMediaConsent:    true,
		ReferralSource:        "Facebook",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{""}, repo.createdCodes)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, "DMS-00001", student.StudentCode)
	assert.NotNil(t, student.EnrollmentDate)
	assert.Equal(t, models.PushStatusOK, push.Status)

	require.Len(t, sheet.pushed, 1)
	add, ok := sheet.pushed[0].(sheets.AddStudent)
	require.True(t, ok)
	assert.Equal(t, "DMS-00001", add.Student.StudentCode)
	assert.Equal(t, "Mia Reyes", add.Student.FullName)
	assert.Equal(t, "2012-09-01", add.Student.DateOfBirth)
	assert.Equal(t, "Lea Reyes (0918)", add.Student.EmergencyContact)
	assert.Equal(t, "Yes", add.Student.SocialMediaConsent)
	assert.Equal(t, "active", add.Student.Status)
}

func TestStudentServiceCreateSurvivesPushFailure(t *testing.T) {
	repo := newMockStudentRepo()
	sheet := newFakeSheet()
	sheet.pushErr = &sheets.RemoteError{Action: sheets.ActionAddStudent, Message: "quota exceeded"}
	svc := newStudentServiceWithSheet(repo, sheet)

	student, push, err := svc.Create(context.Background(), StudentRequest{FirstName: "Mia"})
	require.NoError(t, err)
	assert.Equal(t, "DMS-00001", student.StudentCode)
	assert.Equal(t, models.PushStatusFailed, push.Status)
	assert.Contains(t, push.Reason, "quota exceeded")
}

func TestStudentServiceCreateCodeFailure(t *testing.T) {
	repo := newMockStudentRepo()
	repo.updateErr = func(*models.Student) error { return errors.New("write failed") }
	svc := newStudentServiceWithSheet(repo, newFakeSheet())

	_, _, err := svc.Create(context.Background(), StudentRequest{FirstName: "Mia"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))

	all, _ := repo.ListAll(context.Background())
	assert.Empty(t, all)
}

func TestStudentServiceCreateSequencerFailureRollsBack(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, failingSequencer{err: errors.New("sheet down")}, nil, nil, nil, zap.NewNop())

	_, _, err := svc.Create(context.Background(), StudentRequest{FirstName: "Mia"})
	require.Error(t, err)

	all, _ := repo.ListAll(context.Background())
	assert.Empty(t, all)
}

type failingSequencer struct{ err error }

func (f failingSequencer) Next(context.Context) (string, error) { return "", f.err }

func TestStudentServiceDuplicateEmailOnlyAmongActive(t *testing.T) {
	repo := newMockStudentRepo(
		models.Student{FirstName: "Mia", Email: "mia@example.com", Status: models.StudentStatusActive},
		models.Student{FirstName: "Old", Email: "old@example.com", Status: models.StudentStatusInactive},
	)
	svc := newStudentServiceWithSheet(repo, newFakeSheet())

	_, _, err := svc.Create(context.Background(), StudentRequest{FirstName: "Other", Email: "MIA@example.com"})
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateEmail))

	_, _, err = svc.Create(context.Background(), StudentRequest{FirstName: "Again", Email: "old@example.com"})
	assert.NoError(t, err)
}

func TestStudentServiceUpdateKeepsCodeAndPushesUpdate(t *testing.T) {
	repo := newMockStudentRepo(models.Student{FirstName: "Mia", LastName: "Reyes", Email: "mia@example.com", StudentCode: "DMS-00007"})
	sheet := newFakeSheet()
	svc := newStudentServiceWithSheet(repo, sheet)

	student, push, err := svc.Update(context.Background(), "student-1", StudentRequest{FirstName: "Mia", LastName: "Santos", Email: "mia.santos@example.com", Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "DMS-00007", student.StudentCode)
	assert.Equal(t, models.StudentStatusInactive, student.Status)
	assert.Equal(t, models.PushStatusOK, push.Status)

	require.Len(t, sheet.pushed, 1)
	update, ok := sheet.pushed[0].(sheets.UpdateStudent)
	require.True(t, ok)
	assert.Equal(t, "DMS-00007", update.Student.StudentCode)
	assert.Equal(t, "mia@example.com", update.OriginalEmail)
	assert.Equal(t, "Mia Santos", update.Student.FullName)
	assert.Equal(t, "inactive", update.Student.Status)
}

func TestStudentServiceUpdateAndDeleteMissing(t *testing.T) {
	svc := newStudentServiceWithSheet(newMockStudentRepo(), newFakeSheet())

	_, _, err := svc.Update(context.Background(), "missing", StudentRequest{FirstName: "Mia"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.True(t, appErrors.Is(svc.Delete(context.Background(), "missing"), appErrors.ErrNotFound))
}

func TestStudentServiceNextCode(t *testing.T) {
	repo := newMockStudentRepo(models.Student{FirstName: "Mia", StudentCode: "DMS-00002"})
	svc := newStudentServiceWithSheet(repo, newFakeSheet())

	code, err := svc.NextCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DMS-00003", code)
}

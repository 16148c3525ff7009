package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dms-admin-api/internal/models"
)

func TestStudentRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone", "date_of_birth", "age", "address", "emergency_contact_name",
		"emergency_contact_phone", "enrollment_date", "student_code", "status", "social_media_consent", "referral_source", "referral_detail", "created_at", "updated_at"}).
		AddRow("s1", "Mia", "Reyes", "mia@example.com", "", nil, 9, "", "Lea Reyes", "0918", time.Now(), "DMS-00001", "active", true, "Facebook", "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE 1=1 AND status = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.StudentStatusActive).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1 AND status = $1")).
		WithArgs(models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Status: models.StudentStatusActive})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "DMS-00001", students[0].StudentCode)
	require.NotNil(t, students[0].Age)
	assert.Equal(t, 9, *students[0].Age)
	assert.True(t, students[0].SocialMediaConsent)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{FirstName: "Mia", LastName: "Reyes"}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.NotEmpty(t, student.ID)
	assert.Empty(t, student.StudentCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListStudentCodes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_code FROM students WHERE student_code <> ''")).
		WillReturnRows(sqlmock.NewRows([]string{"student_code"}).AddRow("DMS-00001").AddRow("DMS-00004"))

	codes, err := repo.ListStudentCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DMS-00001", "DMS-00004"}, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByEmailOnlyActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE LOWER(email) = LOWER($1) AND status = $2 AND id <> $3 LIMIT 1")).
		WithArgs("mia@example.com", models.StudentStatusActive, "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "mia@example.com", "s1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

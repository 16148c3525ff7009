package app

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{Enabled: true, TTL: time.Minute},
		Sheets: config.SheetsConfig{
			ExportHost:    "http://sheets.invalid",
			TeacherTab:    "Teacher Profiles",
			EnrollmentTab: "Enrollment",
		},
		Lessons: config.LessonsConfig{MaxPerCard: 10},
	}
}

func TestWireServesTeacherListFromCache(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	container := Wire(testConfig(), nil, db, rdb, nil)
	defer container.Close()

	assert.False(t, container.Sync.Configured())
	assert.NotNil(t, container.Handlers().Teachers)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM teachers WHERE 1=1 ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "call_name", "date_of_birth", "email", "phone", "address", "zip_code", "tin", "instruments", "created_at", "updated_at"}).
			AddRow("t1", "Ana", "Cruz", "Ana", nil, "ana@example.com", "0917", "Manila", "1000", "123", "Piano", now, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM teachers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ctx := context.Background()
	first, page, err := container.Teachers.List(ctx, models.TeacherFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, page.TotalCount)

	second, _, err := container.Teachers.List(ctx, models.TeacherFilter{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "ana@example.com", second[0].Email)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWireWithoutRedis(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)

	container := Wire(testConfig(), nil, sqlx.NewDb(raw, "sqlmock"), nil, nil)
	defer container.Close()

	assert.Nil(t, container.Redis)
	assert.NotNil(t, container.Logger)
	assert.NotNil(t, container.Lessons)
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dms-admin-api/internal/models"
)

const lessonScheduleColumns = `id, teacher_id, student_name, instrument, level, room, day_of_week, start_time, duration_minutes,
	lesson_card_number, current_lesson_number, max_lessons, start_date, active, recurrence, created_at, updated_at`

const insertLessonSchedule = `INSERT INTO lesson_schedules (id, teacher_id, student_name, instrument, level, room, day_of_week, start_time, duration_minutes,
	lesson_card_number, current_lesson_number, max_lessons, start_date, active, recurrence, created_at, updated_at)
	VALUES (:id, :teacher_id, :student_name, :instrument, :level, :room, :day_of_week, :start_time, :duration_minutes,
	:lesson_card_number, :current_lesson_number, :max_lessons, :start_date, :active, :recurrence, :created_at, :updated_at)`

// LessonScheduleRepository persists lesson packages.
type LessonScheduleRepository struct {
	db *sqlx.DB
}

// NewLessonScheduleRepository constructs the repository.
func NewLessonScheduleRepository(db *sqlx.DB) *LessonScheduleRepository {
	return &LessonScheduleRepository{db: db}
}

// List returns lesson schedules filtered by teacher and active flag.
func (r *LessonScheduleRepository) List(ctx context.Context, filter models.LessonScheduleFilter) ([]models.LessonSchedule, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	query := fmt.Sprintf("SELECT %s FROM lesson_schedules WHERE %s ORDER BY start_date, start_time", lessonScheduleColumns, strings.Join(conditions, " AND "))

	var lessons []models.LessonSchedule
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lesson schedules: %w", err)
	}
	return lessons, nil
}

// FindByID fetches a lesson schedule.
func (r *LessonScheduleRepository) FindByID(ctx context.Context, id string) (*models.LessonSchedule, error) {
	query := "SELECT " + lessonScheduleColumns + " FROM lesson_schedules WHERE id = $1"
	var lesson models.LessonSchedule
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create inserts one lesson schedule.
func (r *LessonScheduleRepository) Create(ctx context.Context, lesson *models.LessonSchedule) error {
	stampLesson(lesson, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertLessonSchedule, lesson); err != nil {
		return fmt.Errorf("create lesson schedule: %w", err)
	}
	return nil
}

// BulkCreate inserts every lesson inside one transaction.
func (r *LessonScheduleRepository) BulkCreate(ctx context.Context, lessons []models.LessonSchedule) error {
	if len(lessons) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lesson schedule tx: %w", err)
	}
	now := time.Now().UTC()
	for i := range lessons {
		stampLesson(&lessons[i], now)
		if _, err := tx.NamedExecContext(ctx, insertLessonSchedule, lessons[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk create lesson schedule: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lesson schedule tx: %w", err)
	}
	return nil
}

// Update writes every mutable column, counters included.
func (r *LessonScheduleRepository) Update(ctx context.Context, lesson *models.LessonSchedule) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lesson_schedules SET teacher_id = :teacher_id, student_name = :student_name, instrument = :instrument, level = :level,
		room = :room, day_of_week = :day_of_week, start_time = :start_time, duration_minutes = :duration_minutes,
		lesson_card_number = :lesson_card_number, current_lesson_number = :current_lesson_number, max_lessons = :max_lessons,
		start_date = :start_date, active = :active, recurrence = :recurrence, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, lesson)
	if err != nil {
		return fmt.Errorf("update lesson schedule: %w", err)
	}
	return requireAffected(res, "update lesson schedule")
}

// Delete removes a lesson schedule.
func (r *LessonScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lesson_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson schedule: %w", err)
	}
	return requireAffected(res, "delete lesson schedule")
}

func stampLesson(lesson *models.LessonSchedule, now time.Time) {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/models"
	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
)

type lessonScheduleRepository interface {
	List(ctx context.Context, filter models.LessonScheduleFilter) ([]models.LessonSchedule, error)
	FindByID(ctx context.Context, id string) (*models.LessonSchedule, error)
	Create(ctx context.Context, lesson *models.LessonSchedule) error
	BulkCreate(ctx context.Context, lessons []models.LessonSchedule) error
	Update(ctx context.Context, lesson *models.LessonSchedule) error
	Delete(ctx context.Context, id string) error
}

type teacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// LessonScheduleRequest describes one lesson slot.
type LessonScheduleRequest struct {
	TeacherID           string `json:"teacherId" validate:"required"`
	StudentName         string `json:"studentName" validate:"required,max=200"`
	Instrument          string `json:"instrument" validate:"required,max=100"`
	Level               string `json:"level" validate:"omitempty,max=100"`
	Room                string `json:"room" validate:"omitempty,max=100"`
	DayOfWeek           string `json:"dayOfWeek" validate:"omitempty"`
	StartTime           string `json:"startTime" validate:"required,datetime=15:04"`
	DurationMinutes     int    `json:"durationMinutes" validate:"required,min=15,max=240"`
	LessonCardNumber    string `json:"lessonCardNumber" validate:"required,max=50"`
	CurrentLessonNumber int    `json:"currentLessonNumber" validate:"omitempty,min=1"`
	StartDate           string `json:"startDate" validate:"required,datetime=2006-01-02"`
}

// RecurringLessonRequest expands one slot across weekdays and weeks.
type RecurringLessonRequest struct {
	LessonScheduleRequest
	FrequencyPerWeek int      `json:"frequencyPerWeek" validate:"omitempty,min=1,max=7"`
	Days             []string `json:"days" validate:"required,min=1,max=7"`
	Weeks            int      `json:"weeks" validate:"required,min=1,max=52"`
}

// RenewCardRequest carries the replacement card number.
type RenewCardRequest struct {
	CardNumber string `json:"cardNumber" validate:"required,max=50"`
}

// LessonScheduleService manages lesson packages and their lifecycle.
type LessonScheduleService struct {
	repo       lessonScheduleRepository
	teachers   teacherLookup
	maxLessons int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewLessonScheduleService constructs the service. maxLessons is the per-card ceiling.
func NewLessonScheduleService(repo lessonScheduleRepository, teachers teacherLookup, maxLessons int, validate *validator.Validate, logger *zap.Logger) *LessonScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLessons <= 0 {
		maxLessons = models.DefaultMaxLessons
	}
	return &LessonScheduleService{repo: repo, teachers: teachers, maxLessons: maxLessons, validator: validate, logger: logger}
}

// List returns lesson schedules.
func (s *LessonScheduleService) List(ctx context.Context, filter models.LessonScheduleFilter) ([]models.LessonSchedule, error) {
	lessons, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson schedules")
	}
	return lessons, nil
}

// Get returns one lesson schedule.
func (s *LessonScheduleService) Get(ctx context.Context, id string) (*models.LessonSchedule, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "lesson schedule", "load")
	}
	return lesson, nil
}

// Create stores a single lesson slot on a fresh card.
func (s *LessonScheduleService) Create(ctx context.Context, req LessonScheduleRequest) (*models.LessonSchedule, error) {
	lesson, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	if lesson.CurrentLessonNumber > lesson.MaxLessons {
		return nil, appErrors.Clone(appErrors.ErrValidation, "currentLessonNumber exceeds the card ceiling")
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, storeError(err, "lesson schedule", "create")
	}
	return lesson, nil
}

// CreateRecurring expands the request and persists every slot in one transaction.
func (s *LessonScheduleService) CreateRecurring(ctx context.Context, req RecurringLessonRequest) ([]models.LessonSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid recurring lesson payload")
	}
	base, err := s.build(ctx, req.LessonScheduleRequest)
	if err != nil {
		return nil, err
	}
	lessons, err := GenerateRecurring(*base, models.Recurrence{FrequencyPerWeek: req.FrequencyPerWeek, Days: req.Days, Weeks: req.Weeks})
	if err != nil {
		return nil, err
	}
	if err := s.repo.BulkCreate(ctx, lessons); err != nil {
		return nil, storeError(err, "lesson schedules", "create")
	}
	s.logger.Info("recurring lessons scheduled",
		zap.String("teacher_id", base.TeacherID),
		zap.String("card", base.LessonCardNumber),
		zap.Int("count", len(lessons)))
	return lessons, nil
}

// Update changes the descriptive fields of a lesson. Counters, card and the
// active flag only move through lifecycle transitions.
func (s *LessonScheduleService) Update(ctx context.Context, id string, req LessonScheduleRequest) (*models.LessonSchedule, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "lesson schedule", "load")
	}
	next, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	existing.TeacherID = next.TeacherID
	existing.StudentName = next.StudentName
	existing.Instrument = next.Instrument
	existing.Level = next.Level
	existing.Room = next.Room
	existing.DayOfWeek = next.DayOfWeek
	existing.StartTime = next.StartTime
	existing.DurationMinutes = next.DurationMinutes
	existing.StartDate = next.StartDate
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, storeError(err, "lesson schedule", "update")
	}
	return existing, nil
}

// Delete removes a lesson schedule.
func (s *LessonScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "lesson schedule", "delete")
	}
	return nil
}

// Complete logs one lesson.
func (s *LessonScheduleService) Complete(ctx context.Context, id string) (*models.LessonSchedule, models.LessonOutcome, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", storeError(err, "lesson schedule", "load")
	}
	outcome, err := CompleteLesson(lesson)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, "", storeError(err, "lesson schedule", "update")
	}
	if outcome == models.LessonOutcomeRenewalNeeded {
		s.logger.Info("lesson card exhausted", zap.String("lesson_id", lesson.ID), zap.String("card", lesson.LessonCardNumber))
	}
	return lesson, outcome, nil
}

// Renew starts a new card.
func (s *LessonScheduleService) Renew(ctx context.Context, id string, req RenewCardRequest) (*models.LessonSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid renewal payload")
	}
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "lesson schedule", "load")
	}
	if err := RenewCard(lesson, req.CardNumber); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, storeError(err, "lesson schedule", "update")
	}
	return lesson, nil
}

// Deactivate stops a lesson schedule.
func (s *LessonScheduleService) Deactivate(ctx context.Context, id string) (*models.LessonSchedule, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "lesson schedule", "load")
	}
	Deactivate(lesson)
	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, storeError(err, "lesson schedule", "update")
	}
	return lesson, nil
}

func (s *LessonScheduleService) build(ctx context.Context, req LessonScheduleRequest) (*models.LessonSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid lesson schedule payload")
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, validationError(err, "startDate must use YYYY-MM-DD")
	}
	day := startDate.Weekday()
	if strings.TrimSpace(req.DayOfWeek) != "" {
		if day, err = ParseWeekday(req.DayOfWeek); err != nil {
			return nil, err
		}
	}
	if s.teachers != nil {
		if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
			}
			return nil, storeError(err, "teacher", "load")
		}
	}

	current := req.CurrentLessonNumber
	if current <= 0 {
		current = 1
	}
	return &models.LessonSchedule{
		TeacherID:           strings.TrimSpace(req.TeacherID),
		StudentName:         strings.TrimSpace(req.StudentName),
		Instrument:          strings.TrimSpace(req.Instrument),
		Level:               strings.TrimSpace(req.Level),
		Room:                strings.TrimSpace(req.Room),
		DayOfWeek:           day.String(),
		StartTime:           req.StartTime,
		DurationMinutes:     req.DurationMinutes,
		LessonCardNumber:    strings.TrimSpace(req.LessonCardNumber),
		CurrentLessonNumber: current,
		MaxLessons:          s.maxLessons,
		StartDate:           startDate,
		Active:              true,
	}, nil
}

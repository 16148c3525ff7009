package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/models"
	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

const teacherCachePattern = "teachers:*"

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	ListAll(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

type sheetPusher interface {
	Push(ctx context.Context, req sheets.Request) models.PushResult
}

// TeacherRequest is the create and update payload. Instrument is accepted for
// single-instrument forms and merged into Instruments.
type TeacherRequest struct {
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"omitempty,max=100"`
	CallName    string  `json:"callName" validate:"omitempty,max=100"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"omitempty,max=50"`
	Address     string  `json:"address" validate:"omitempty,max=500"`
	ZipCode     string  `json:"zipCode" validate:"omitempty,max=20"`
	TIN         string  `json:"tin" validate:"omitempty,max=50"`
	Instruments string  `json:"instruments" validate:"omitempty,max=500"`
	Instrument  string  `json:"instrument" validate:"omitempty,max=100"`
}

// TeacherService orchestrates teacher operations. Every successful write is
// mirrored to the spreadsheet after the store acknowledges it.
type TeacherService struct {
	repo      teacherRepository
	pusher    sheetPusher
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, pusher sheetPusher, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, pusher: pusher, cache: cache, validator: validate, logger: logger, now: time.Now}
}

type teacherPage struct {
	Items []models.Teacher `json:"items"`
	Total int              `json:"total"`
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	key := listCacheKey("teachers:list", filter.Search, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
	var cached teacherPage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Items, paginationFor(filter.Page, filter.PageSize, cached.Total), nil
	}

	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	_ = s.cache.Set(ctx, key, teacherPage{Items: teachers, Total: total}, 0)
	return teachers, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher", "load")
	}
	return teacher, nil
}

// Create stores a new teacher, then pushes addTeacher.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, models.PushResult, error) {
	teacher := &models.Teacher{}
	if err := s.apply(ctx, teacher, req, ""); err != nil {
		return nil, models.PushResult{}, err
	}

	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, models.PushResult{}, storeError(err, "teacher", "create")
	}
	s.invalidate(ctx)

	push := s.push(ctx, sheets.AddTeacher{Teacher: teacherRecord(*teacher, s.now())})
	return teacher, push, nil
}

// Update replaces a teacher's fields, then pushes updateTeacher keyed by the
// email the sheet row had before this write.
func (s *TeacherService) Update(ctx context.Context, id string, req TeacherRequest) (*models.Teacher, models.PushResult, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, models.PushResult{}, storeError(err, "teacher", "load")
	}
	originalEmail := teacher.Email

	if err := s.apply(ctx, teacher, req, id); err != nil {
		return nil, models.PushResult{}, err
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, models.PushResult{}, storeError(err, "teacher", "update")
	}
	s.invalidate(ctx)

	push := s.push(ctx, sheets.UpdateTeacher{Teacher: teacherRecord(*teacher, s.now()), OriginalEmail: originalEmail})
	return teacher, push, nil
}

// Delete removes a teacher from the store. The sheet row is kept.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "teacher", "delete")
	}
	s.invalidate(ctx)
	return nil
}

func (s *TeacherService) apply(ctx context.Context, teacher *models.Teacher, req TeacherRequest, excludeID string) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid teacher payload")
	}
	dob, err := parseOptionalDate(req.DateOfBirth, "dateOfBirth")
	if err != nil {
		return err
	}

	email := strings.TrimSpace(req.Email)
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateEmail, "email already used by another teacher")
	}

	teacher.FirstName = strings.TrimSpace(req.FirstName)
	teacher.LastName = strings.TrimSpace(req.LastName)
	teacher.CallName = strings.TrimSpace(req.CallName)
	teacher.DateOfBirth = dob
	teacher.Email = email
	teacher.Phone = strings.TrimSpace(req.Phone)
	teacher.Address = strings.TrimSpace(req.Address)
	teacher.ZipCode = strings.TrimSpace(req.ZipCode)
	teacher.TIN = strings.TrimSpace(req.TIN)
	teacher.Instruments = models.JoinInstruments(req.Instruments, req.Instrument)
	return nil
}

func (s *TeacherService) push(ctx context.Context, req sheets.Request) models.PushResult {
	if s.pusher == nil {
		return models.PushResult{Status: models.PushStatusSkipped, Action: string(req.Action()), Reason: "spreadsheet sync not configured"}
	}
	return s.pusher.Push(ctx, req)
}

func (s *TeacherService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, teacherCachePattern)
}

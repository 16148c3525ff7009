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

const studentCachePattern = "students:*"

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	ListStudentCodes(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type codeSequencer interface {
	Next(ctx context.Context) (string, error)
}

// StudentRequest is the create and update payload. The student code is not
// accepted from clients.
type StudentRequest struct {
	FirstName             string  `json:"firstName" validate:"required,max=100"`
	LastName              string  `json:"lastName" validate:"omitempty,max=100"`
	Email                 string  `json:"email" validate:"omitempty,email"`
	Phone                 string  `json:"phone" validate:"omitempty,max=50"`
	DateOfBirth           *string `json:"dateOfBirth"`
	Age                   *int    `json:"age" validate:"omitempty,min=0,max=120"`
	Address               string  `json:"address" validate:"omitempty,max=500"`
	EmergencyContactName  string  `json:"emergencyContactName" validate:"omitempty,max=200"`
	EmergencyContactPhone string  `json:"emergencyContactPhone" validate:"omitempty,max=50"`
	EnrollmentDate        *string `json:"enrollmentDate"`
	Status                string  `json:"status" validate:"omitempty,oneof=active inactive"`
	SocialMediaConsent    bool    `json:"socialMediaConsent"`
	ReferralSource        string  `json:"referralSource" validate:"omitempty,max=200"`
	ReferralDetail        string  `json:"referralDetail" validate:"omitempty,max=500"`
}

// StudentService orchestrates student operations.
type StudentService struct {
	repo      studentRepository
	sequencer codeSequencer
	pusher    sheetPusher
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, sequencer codeSequencer, pusher sheetPusher, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, sequencer: sequencer, pusher: pusher, cache: cache, validator: validate, logger: logger, now: time.Now}
}

type studentPage struct {
	Items []models.Student `json:"items"`
	Total int              `json:"total"`
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	key := listCacheKey("students:list", filter.Search, filter.Status, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
	var cached studentPage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Items, paginationFor(filter.Page, filter.PageSize, cached.Total), nil
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	_ = s.cache.Set(ctx, key, studentPage{Items: students, Total: total}, 0)
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student", "load")
	}
	return student, nil
}

// NextCode previews the code the next created student would receive.
func (s *StudentService) NextCode(ctx context.Context) (string, error) {
	return s.sequencer.Next(ctx)
}

// Create stores the student with an empty code, assigns the next code, then
// pushes addStudent with the complete record.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, models.PushResult, error) {
	student := &models.Student{}
	if err := s.apply(ctx, student, req, ""); err != nil {
		return nil, models.PushResult{}, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, models.PushResult{}, storeError(err, "student", "create")
	}
	s.invalidate(ctx)

	code, err := s.sequencer.Next(ctx)
	if err != nil {
		s.discard(ctx, student.ID, err)
		return nil, models.PushResult{}, err
	}
	student.StudentCode = code
	if err := s.repo.Update(ctx, student); err != nil {
		s.discard(ctx, student.ID, err)
		return nil, models.PushResult{}, storeError(err, "student", "assign code to")
	}

	push := s.push(ctx, sheets.AddStudent{Student: enrollmentRecord(*student, s.now())})
	return student, push, nil
}

// discard removes a student whose code could not be assigned so no
// code-less row is left behind.
func (s *StudentService) discard(ctx context.Context, id string, cause error) {
	s.logger.Warn("rolling back student without code", zap.String("student_id", id), zap.Error(cause))
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("roll back student", zap.String("student_id", id), zap.Error(err))
	}
	s.invalidate(ctx)
}

// Update replaces a student's fields and pushes updateStudent matched by the
// code, or by the previous email when the student has no code.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.Student, models.PushResult, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, models.PushResult{}, storeError(err, "student", "load")
	}
	originalEmail := student.Email

	if err := s.apply(ctx, student, req, id); err != nil {
		return nil, models.PushResult{}, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, models.PushResult{}, storeError(err, "student", "update")
	}
	s.invalidate(ctx)

	push := s.push(ctx, sheets.UpdateStudent{Student: enrollmentRecord(*student, s.now()), OriginalEmail: originalEmail})
	return student, push, nil
}

// Delete removes a student from the store. Its code is never reissued.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "student", "delete")
	}
	s.invalidate(ctx)
	return nil
}

func (s *StudentService) apply(ctx context.Context, student *models.Student, req StudentRequest, excludeID string) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid student payload")
	}
	dob, err := parseOptionalDate(req.DateOfBirth, "dateOfBirth")
	if err != nil {
		return err
	}
	enrolled, err := parseOptionalDate(req.EnrollmentDate, "enrollmentDate")
	if err != nil {
		return err
	}

	status := models.StudentStatus(req.Status)
	if status == "" {
		status = student.Status
	}
	if status == "" {
		status = models.StudentStatusActive
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && status == models.StudentStatusActive {
		exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrDuplicateEmail, "email already used by an active student")
		}
	}

	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Email = email
	student.Phone = strings.TrimSpace(req.Phone)
	student.DateOfBirth = dob
	student.Age = req.Age
	student.Address = strings.TrimSpace(req.Address)
	student.EmergencyContactName = strings.TrimSpace(req.EmergencyContactName)
	student.EmergencyContactPhone = strings.TrimSpace(req.EmergencyContactPhone)
	if enrolled != nil {
		student.EnrollmentDate = enrolled
	} else if student.EnrollmentDate == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		student.EnrollmentDate = &today
	}
	student.Status = status
	student.SocialMediaConsent = req.SocialMediaConsent
	student.ReferralSource = strings.TrimSpace(req.ReferralSource)
	student.ReferralDetail = strings.TrimSpace(req.ReferralDetail)
	return nil
}

func (s *StudentService) push(ctx context.Context, req sheets.Request) models.PushResult {
	if s.pusher == nil {
		return models.PushResult{Status: models.PushStatusSkipped, Action: string(req.Action()), Reason: "spreadsheet sync not configured"}
	}
	return s.pusher.Push(ctx, req)
}

func (s *StudentService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, studentCachePattern)
}

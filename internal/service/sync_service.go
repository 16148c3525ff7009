package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/models"
	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

type studentStore interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type teacherStore interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
}

// matchStrategy is one way of pairing a sheet candidate with a stored record.
// Strategies are tried in order and the first hit wins.
type matchStrategy[T any] struct {
	name  string
	match func(candidate, existing T) bool
}

func findMatch[T any](candidate T, existing []T, strategies []matchStrategy[T]) (int, string) {
	for _, strategy := range strategies {
		for i := range existing {
			if strategy.match(candidate, existing[i]) {
				return i, strategy.name
			}
		}
	}
	return -1, ""
}

func sameFold(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

var studentStrategies = []matchStrategy[models.Student]{
	{name: "email", match: func(c, e models.Student) bool { return sameFold(c.Email, e.Email) }},
	{name: "studentCode", match: func(c, e models.Student) bool {
		return c.StudentCode != "" && c.StudentCode == e.StudentCode
	}},
	{name: "name", match: func(c, e models.Student) bool {
		return c.FirstName != "" && c.FirstName == e.FirstName && c.LastName == e.LastName
	}},
}

var teacherStrategies = []matchStrategy[models.Teacher]{
	{name: "email", match: func(c, e models.Teacher) bool { return sameFold(c.Email, e.Email) }},
	{name: "name", match: func(c, e models.Teacher) bool {
		return c.FirstName != "" && c.FirstName == e.FirstName && c.LastName == e.LastName
	}},
}

// SyncConfig names the sheet and tabs pulled by SyncService.
type SyncConfig struct {
	SheetID       string
	TeacherTab    string
	EnrollmentTab string
}

// SyncService reconciles spreadsheet rows into the store. Pulls write straight
// to the repositories and never push back.
type SyncService struct {
	students studentStore
	teachers teacherStore
	reader   tabReader
	cfg      SyncConfig
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewSyncService constructs a SyncService.
func NewSyncService(students studentStore, teachers teacherStore, reader tabReader, cfg SyncConfig, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{students: students, teachers: teachers, reader: reader, cfg: cfg, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// Configured reports whether a sheet is available to pull from.
func (s *SyncService) Configured() bool {
	return s != nil && s.reader != nil && s.cfg.SheetID != ""
}

// PullStudents reconciles the enrollment tab into the student store.
func (s *SyncService) PullStudents(ctx context.Context) (*models.PullResult, error) {
	result := &models.PullResult{Tab: s.cfg.EnrollmentTab, StartedAt: s.now().UTC()}
	rows, err := s.read(ctx, s.cfg.EnrollmentTab)
	if err != nil {
		return nil, err
	}
	existing, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	for _, rec := range sheets.DecodeEnrollmentRows(rows) {
		var candidate models.Student
		overlayEnrollmentRecord(&candidate, rec)
		key := firstNonEmpty(rec.StudentCode, rec.Email, rec.FullName)

		idx, strategy := findMatch(candidate, existing, studentStrategies)
		if idx >= 0 {
			updated := existing[idx]
			overlayEnrollmentRecord(&updated, rec)
			if err := s.students.Update(ctx, &updated); err != nil {
				s.rowFailed(result, rec.RowNumber, key, err)
				continue
			}
			existing[idx] = updated
			s.rowDone(result, "updated", rec.RowNumber, key, strategy)
			continue
		}

		if candidate.FirstName == "" {
			s.rowFailed(result, rec.RowNumber, key, errors.New("row has no full name"))
			continue
		}
		if candidate.Status == "" {
			candidate.Status = models.StudentStatusActive
		}
		if err := s.students.Create(ctx, &candidate); err != nil {
			s.rowFailed(result, rec.RowNumber, key, err)
			continue
		}
		existing = append(existing, candidate)
		s.rowDone(result, "created", rec.RowNumber, key, "")
	}

	s.finish(ctx, result, studentCachePattern)
	return result, nil
}

// PullTeachers reconciles the teacher tab into the teacher store.
func (s *SyncService) PullTeachers(ctx context.Context) (*models.PullResult, error) {
	result := &models.PullResult{Tab: s.cfg.TeacherTab, StartedAt: s.now().UTC()}
	rows, err := s.read(ctx, s.cfg.TeacherTab)
	if err != nil {
		return nil, err
	}
	existing, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}

	for _, rec := range sheets.DecodeTeacherRows(rows) {
		var candidate models.Teacher
		overlayTeacherRecord(&candidate, rec)
		if candidate.FirstName == "" {
			candidate.FirstName = rec.CallName
		}
		key := firstNonEmpty(rec.Email, rec.FullName, rec.CallName)

		idx, strategy := findMatch(candidate, existing, teacherStrategies)
		if idx >= 0 {
			updated := existing[idx]
			overlayTeacherRecord(&updated, rec)
			if err := s.teachers.Update(ctx, &updated); err != nil {
				s.rowFailed(result, rec.RowNumber, key, err)
				continue
			}
			existing[idx] = updated
			s.rowDone(result, "updated", rec.RowNumber, key, strategy)
			continue
		}

		if candidate.Email == "" {
			s.rowFailed(result, rec.RowNumber, key, errors.New("row has no email"))
			continue
		}
		if err := s.teachers.Create(ctx, &candidate); err != nil {
			s.rowFailed(result, rec.RowNumber, key, err)
			continue
		}
		existing = append(existing, candidate)
		s.rowDone(result, "created", rec.RowNumber, key, "")
	}

	s.finish(ctx, result, teacherCachePattern)
	return result, nil
}

func (s *SyncService) read(ctx context.Context, tab string) ([]sheets.Row, error) {
	if !s.Configured() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet sync not configured")
	}
	rows, err := s.reader.ReadTab(ctx, s.cfg.SheetID, tab)
	if err != nil {
		s.logger.Error("sheet pull failed", zap.String("tab", tab), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrConnectivity.Code, appErrors.ErrConnectivity.Status, fmt.Sprintf("failed to read %s tab: %v", tab, err))
	}
	return rows, nil
}

func (s *SyncService) rowDone(result *models.PullResult, outcome string, row int, key, strategy string) {
	result.Rows++
	if outcome == "created" {
		result.Created++
	} else {
		result.Updated++
	}
	s.metrics.RecordPullRow(result.Tab, outcome)
	s.logger.Debug("sheet row reconciled",
		zap.String("tab", result.Tab), zap.Int("row", row), zap.String("key", key),
		zap.String("outcome", outcome), zap.String("matched_by", strategy))
}

func (s *SyncService) rowFailed(result *models.PullResult, row int, key string, err error) {
	result.Rows++
	result.Failed++
	result.Errors = append(result.Errors, models.PullRowError{RowNumber: row, Key: key, Reason: err.Error()})
	s.metrics.RecordPullRow(result.Tab, "failed")
	s.logger.Warn("sheet row failed", zap.String("tab", result.Tab), zap.Int("row", row), zap.String("key", key), zap.Error(err))
}

func (s *SyncService) finish(ctx context.Context, result *models.PullResult, pattern string) {
	result.FinishedAt = s.now().UTC()
	_ = s.cache.Invalidate(ctx, pattern)
	s.logger.Info("sheet pull finished",
		zap.String("tab", result.Tab),
		zap.Int("rows", result.Rows),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

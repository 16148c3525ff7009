package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/models"
	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
	"github.com/noah-isme/dms-admin-api/pkg/export"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

// Roster names an exportable record set.
type Roster string

const (
	RosterTeachers Roster = "teachers"
	RosterStudents Roster = "students"
)

// ExportFormat names a rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type renderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

type teacherLister interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

type studentLister interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

// FileStorage persists rendered exports.
type FileStorage interface {
	Save(filename string, data []byte) (string, error)
}

// ExportFile is a rendered roster.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders store rosters in the spreadsheet column layout.
type ExportService struct {
	teachers  teacherLister
	students  studentLister
	renderers map[ExportFormat]renderer
	storage   FileStorage
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. storage is only needed by Archive.
func NewExportService(teachers teacherLister, students studentLister, storage FileStorage, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		teachers: teachers,
		students: students,
		renderers: map[ExportFormat]renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Render builds the roster in the requested format.
func (s *ExportService) Render(ctx context.Context, roster Roster, format ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	dataset, err := s.dataset(ctx, roster)
	if err != nil {
		return nil, err
	}
	body, err := r.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	name := fmt.Sprintf("%s_%s.%s", roster, s.now().UTC().Format("20060102_150405"), r.Extension())
	return &ExportFile{Filename: name, ContentType: r.ContentType(), Body: body}, nil
}

// Archive renders the roster and saves it through the configured storage.
func (s *ExportService) Archive(ctx context.Context, roster Roster, format ExportFormat) (string, error) {
	if s.storage == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "export storage not configured")
	}
	file, err := s.Render(ctx, roster, format)
	if err != nil {
		return "", err
	}
	path, err := s.storage.Save(file.Filename, file.Body)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	s.logger.Info("roster exported", zap.String("roster", string(roster)), zap.String("path", path))
	return path, nil
}

func (s *ExportService) dataset(ctx context.Context, roster Roster) (export.Dataset, error) {
	now := s.now()
	switch roster {
	case RosterTeachers:
		teachers, err := s.teachers.ListAll(ctx)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
		}
		rows := make([][]string, 0, len(teachers))
		for _, t := range teachers {
			rows = append(rows, teacherRecord(t, now).Cells())
		}
		return export.Dataset{Title: "Teacher Profiles", Headers: sheets.TeacherHeader, Rows: rows}, nil
	case RosterStudents:
		students, err := s.students.ListAll(ctx)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
		}
		rows := make([][]string, 0, len(students))
		for _, st := range students {
			rows = append(rows, enrollmentRecord(st, now).Cells())
		}
		return export.Dataset{Title: "Enrollment", Headers: sheets.EnrollmentHeader, Rows: rows}, nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown roster %q", roster))
	}
}

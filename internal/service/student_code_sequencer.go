package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/models"
	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

var studentCodePattern = regexp.MustCompile(`^` + regexp.QuoteMeta(models.StudentCodePrefix) + `(\d+)$`)

type studentCodeSource interface {
	ListStudentCodes(ctx context.Context) ([]string, error)
}

type tabReader interface {
	ReadTab(ctx context.Context, sheetID, tab string) ([]sheets.Row, error)
}

// StudentCodeSequencer hands out the next DMS-##### code. The enrollment tab
// is the durable ledger, so codes removed from the store are never reissued.
type StudentCodeSequencer struct {
	store   studentCodeSource
	reader  tabReader
	sheetID string
	tab     string
	logger  *zap.Logger
}

// NewStudentCodeSequencer constructs a sequencer. reader may be nil when no
// spreadsheet is configured.
func NewStudentCodeSequencer(store studentCodeSource, reader tabReader, sheetID, tab string, logger *zap.Logger) *StudentCodeSequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentCodeSequencer{store: store, reader: reader, sheetID: sheetID, tab: tab, logger: logger}
}

// Next computes max+1 over the codes found in the sheet and in the store.
// The store is always read, not only when the sheet has no codes, so a code
// deleted from the sheet but still held by a stored student is never reissued.
// The result is never lower than a sheet-first lookup would give.
func (s *StudentCodeSequencer) Next(ctx context.Context) (string, error) {
	highest := 0

	if s.reader != nil && s.sheetID != "" {
		rows, err := s.reader.ReadTab(ctx, s.sheetID, s.tab)
		if err != nil {
			s.logger.Warn("student code sequencing without sheet", zap.String("tab", s.tab), zap.Error(err))
		} else {
			for _, row := range rows {
				highest = maxCode(highest, row.Cell(sheets.EnrollmentColStudentCode))
			}
		}
	}

	codes, err := s.store.ListStudentCodes(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read student codes")
	}
	for _, code := range codes {
		highest = maxCode(highest, code)
	}

	return FormatStudentCode(highest + 1), nil
}

// ParseStudentCode extracts the numeric part of a DMS-##### code.
func ParseStudentCode(code string) (int, bool) {
	m := studentCodePattern.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatStudentCode renders n as prefix plus five zero-padded digits.
func FormatStudentCode(n int) string {
	return fmt.Sprintf("%s%05d", models.StudentCodePrefix, n)
}

func maxCode(current int, code string) int {
	if n, ok := ParseStudentCode(code); ok && n > current {
		return n
	}
	return current
}

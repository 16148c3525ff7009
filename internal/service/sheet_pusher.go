package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

type sheetWriter interface {
	CanPush() bool
	Push(ctx context.Context, sheetID string, req sheets.Request) (sheets.Ack, error)
}

// SheetPusher mirrors local writes to the spreadsheet webhook and turns the
// outcome into a PushResult. It never returns an error to the caller.
type SheetPusher struct {
	writer  sheetWriter
	sheetID string
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSheetPusher constructs a SheetPusher. A nil writer or empty sheet id
// makes every push report skipped.
func NewSheetPusher(writer sheetWriter, sheetID string, metrics *MetricsService, logger *zap.Logger) *SheetPusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetPusher{writer: writer, sheetID: sheetID, metrics: metrics, logger: logger}
}

// Push sends req once.
func (p *SheetPusher) Push(ctx context.Context, req sheets.Request) models.PushResult {
	action := string(req.Action())
	result := models.PushResult{Action: action}

	if p == nil || p.writer == nil || !p.writer.CanPush() || p.sheetID == "" {
		result.Status = models.PushStatusSkipped
		result.Reason = "spreadsheet sync not configured"
		p.record(result)
		return result
	}

	ack, err := p.writer.Push(ctx, p.sheetID, req)
	switch {
	case err == nil:
		result.Status = models.PushStatusOK
		result.RowNumber = ack.RowNumber
	case errors.Is(err, sheets.ErrRowNotFound):
		result.Status = models.PushStatusNotFound
		result.Reason = err.Error()
	case errors.Is(err, sheets.ErrNotConfigured):
		result.Status = models.PushStatusSkipped
		result.Reason = err.Error()
	default:
		result.Status = models.PushStatusFailed
		result.Reason = err.Error()
	}

	if err != nil {
		p.logger.Warn("sheet push failed",
			zap.String("action", action),
			zap.String("status", string(result.Status)),
			zap.Error(err))
	}
	p.record(result)
	return result
}

func (p *SheetPusher) record(result models.PushResult) {
	if p == nil {
		return
	}
	p.metrics.RecordPush(result.Action, string(result.Status))
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/pkg/response"
)

type syncService interface {
	PullStudents(ctx context.Context) (*models.PullResult, error)
	PullTeachers(ctx context.Context) (*models.PullResult, error)
}

// SyncHandler triggers sheet-to-store reconciliation.
type SyncHandler struct {
	sync syncService
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(sync syncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// PullStudents godoc
// @Summary Pull students from the enrollment tab
// @Description Matches rows by email, then student code, then full name. Row failures are reported without aborting the batch.
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sync/students/pull [post]
func (h *SyncHandler) PullStudents(c *gin.Context) {
	result, err := h.sync.PullStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// PullTeachers godoc
// @Summary Pull teachers from the teacher tab
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sync/teachers/pull [post]
func (h *SyncHandler) PullTeachers(c *gin.Context) {
	result, err := h.sync.PullTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

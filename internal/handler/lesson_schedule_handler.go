package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/internal/service"
	"github.com/noah-isme/dms-admin-api/pkg/response"
)

type lessonScheduleService interface {
	List(ctx context.Context, filter models.LessonScheduleFilter) ([]models.LessonSchedule, error)
	Get(ctx context.Context, id string) (*models.LessonSchedule, error)
	Create(ctx context.Context, req service.LessonScheduleRequest) (*models.LessonSchedule, error)
	CreateRecurring(ctx context.Context, req service.RecurringLessonRequest) ([]models.LessonSchedule, error)
	Update(ctx context.Context, id string, req service.LessonScheduleRequest) (*models.LessonSchedule, error)
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) (*models.LessonSchedule, models.LessonOutcome, error)
	Renew(ctx context.Context, id string, req service.RenewCardRequest) (*models.LessonSchedule, error)
	Deactivate(ctx context.Context, id string) (*models.LessonSchedule, error)
}

// LessonScheduleHandler exposes lesson package endpoints.
type LessonScheduleHandler struct {
	lessons lessonScheduleService
}

// NewLessonScheduleHandler constructs the handler.
func NewLessonScheduleHandler(lessons lessonScheduleService) *LessonScheduleHandler {
	return &LessonScheduleHandler{lessons: lessons}
}

// List godoc
// @Summary List lesson schedules
// @Tags LessonSchedules
// @Produce json
// @Param teacherId query string false "Teacher ID"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /lesson-schedules [get]
func (h *LessonScheduleHandler) List(c *gin.Context) {
	filter := models.LessonScheduleFilter{
		TeacherID: strings.TrimSpace(c.Query("teacherId")),
		Active:    boolFromQuery(c, "active"),
	}
	lessons, err := h.lessons.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// Get godoc
// @Summary Get lesson schedule
// @Tags LessonSchedules
// @Produce json
// @Param id path string true "Lesson schedule ID"
// @Success 200 {object} response.Envelope
// @Router /lesson-schedules/{id} [get]
func (h *LessonScheduleHandler) Get(c *gin.Context) {
	lesson, err := h.lessons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Create godoc
// @Summary Create lesson schedule
// @Tags LessonSchedules
// @Accept json
// @Produce json
// @Param payload body service.LessonScheduleRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lesson-schedules [post]
func (h *LessonScheduleHandler) Create(c *gin.Context) {
	var req service.LessonScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "lesson schedule"))
		return
	}
	lesson, err := h.lessons.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// CreateRecurring godoc
// @Summary Create a recurring lesson series
// @Description Expands the slot over the given weekdays and weeks, stopping at the card ceiling.
// @Tags LessonSchedules
// @Accept json
// @Produce json
// @Param payload body service.RecurringLessonRequest true "Recurring lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lesson-schedules/recurring [post]
func (h *LessonScheduleHandler) CreateRecurring(c *gin.Context) {
	var req service.RecurringLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "recurring lesson"))
		return
	}
	lessons, err := h.lessons.CreateRecurring(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lessons, map[string]interface{}{"count": len(lessons)})
}

// Update godoc
// @Summary Update lesson schedule
// @Tags LessonSchedules
// @Accept json
// @Produce json
// @Param id path string true "Lesson schedule ID"
// @Param payload body service.LessonScheduleRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Router /lesson-schedules/{id} [put]
func (h *LessonScheduleHandler) Update(c *gin.Context) {
	var req service.LessonScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "lesson schedule"))
		return
	}
	lesson, err := h.lessons.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Delete godoc
// @Summary Delete lesson schedule
// @Tags LessonSchedules
// @Param id path string true "Lesson schedule ID"
// @Success 204
// @Router /lesson-schedules/{id} [delete]
func (h *LessonScheduleHandler) Delete(c *gin.Context) {
	if err := h.lessons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Complete godoc
// @Summary Log a completed lesson
// @Description Returns meta.warning when the card is exhausted and needs renewal.
// @Tags LessonSchedules
// @Produce json
// @Param id path string true "Lesson schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lesson-schedules/{id}/complete [post]
func (h *LessonScheduleHandler) Complete(c *gin.Context) {
	lesson, outcome, err := h.lessons.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"outcome": outcome}
	if outcome == models.LessonOutcomeRenewalNeeded {
		meta["warning"] = "lesson card exhausted, renew the card before the next lesson"
	}
	response.JSON(c, http.StatusOK, lesson, nil, meta)
}

// Renew godoc
// @Summary Renew the lesson card
// @Tags LessonSchedules
// @Accept json
// @Produce json
// @Param id path string true "Lesson schedule ID"
// @Param payload body service.RenewCardRequest true "New card"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lesson-schedules/{id}/renew [post]
func (h *LessonScheduleHandler) Renew(c *gin.Context) {
	var req service.RenewCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "renewal"))
		return
	}
	lesson, err := h.lessons.Renew(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Deactivate godoc
// @Summary Deactivate lesson schedule
// @Tags LessonSchedules
// @Produce json
// @Param id path string true "Lesson schedule ID"
// @Success 200 {object} response.Envelope
// @Router /lesson-schedules/{id}/deactivate [post]
func (h *LessonScheduleHandler) Deactivate(c *gin.Context) {
	lesson, err := h.lessons.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

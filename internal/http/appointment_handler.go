package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"constituency-service/internal/model"
	"constituency-service/internal/repository"
	"constituency-service/internal/service"
)

func (h *Handler) scheduleAppointment(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}

	var req struct {
		Title           string  `json:"title" binding:"required"`
		VisitorID       string  `json:"visitor_id" binding:"required"`
		UserID          string  `json:"user_id" binding:"required"`
		Date            string  `json:"date" binding:"required"`
		StartTime       string  `json:"start_time" binding:"required"`
		DurationMinutes int     `json:"duration_minutes" binding:"required"`
		Priority        *string `json:"priority"`
		Status          *string `json:"status"`
		Location        *string `json:"location"`
		Notes           *string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	appointment, err := h.appointmentService.Schedule(c.Request.Context(), service.ScheduleInput{
		Title:           req.Title,
		VisitorID:       req.VisitorID,
		UserID:          req.UserID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Priority:        req.Priority,
		Status:          req.Status,
		Location:        req.Location,
		Notes:           req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(appointment))
}

func (h *Handler) listAppointments(c *gin.Context) {
	filter := repository.AppointmentListFilter{
		UserID:    optionalQuery(c, "user_id"),
		VisitorID: optionalQuery(c, "visitor_id"),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.AppointmentStatus(strings.ToUpper(raw))
		filter.Status = &status
	}
	if raw := c.Query("date_from"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid date_from"))
			return
		}
		filter.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid date_to"))
			return
		}
		filter.DateTo = &t
	}

	appointments, err := h.appointmentService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(appointments))
}

func (h *Handler) getCalendar(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, errorResponse("from and to are required"))
		return
	}

	days, err := h.appointmentService.Calendar(c.Request.Context(), from, to, optionalQuery(c, "user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(days))
}

func (h *Handler) getAvailableSlots(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	date := strings.TrimSpace(c.Query("date"))
	if userID == "" || date == "" {
		c.JSON(http.StatusBadRequest, errorResponse("user_id and date are required"))
		return
	}

	slots, err := h.appointmentService.AvailableSlots(c.Request.Context(), userID, date)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(slots))
}

func (h *Handler) getAppointment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	appointment, err := h.appointmentService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(appointment))
}

func (h *Handler) rescheduleAppointment(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Title           *string `json:"title"`
		Date            *string `json:"date"`
		StartTime       *string `json:"start_time"`
		DurationMinutes *int    `json:"duration_minutes"`
		UserID          *string `json:"user_id"`
		Priority        *string `json:"priority"`
		Status          *string `json:"status"`
		Location        *string `json:"location"`
		Notes           *string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	appointment, err := h.appointmentService.Reschedule(c.Request.Context(), id, service.RescheduleInput{
		Title:           req.Title,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		UserID:          req.UserID,
		Priority:        req.Priority,
		Status:          req.Status,
		Location:        req.Location,
		Notes:           req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(appointment))
}

func (h *Handler) deleteAppointment(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.appointmentService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

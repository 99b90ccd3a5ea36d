package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"constituency-service/internal/model"
	"constituency-service/internal/repository"
	"constituency-service/internal/service"
)

func (h *Handler) listVisits(c *gin.Context) {
	filter := repository.VisitListFilter{
		UserID:    optionalQuery(c, "user_id"),
		VisitorID: optionalQuery(c, "visitor_id"),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.VisitStatus(strings.ToUpper(raw))
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

	visits, err := h.visitService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(visits))
}

func (h *Handler) getVisit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	visit, err := h.visitService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(visit))
}

func (h *Handler) updateVisit(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status       *string `json:"status"`
		Purpose      *string `json:"purpose"`
		Notes        *string `json:"notes"`
		Satisfaction *int    `json:"satisfaction"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	visit, err := h.visitService.Update(c.Request.Context(), id, service.UpdateVisitInput{
		Status:       req.Status,
		Purpose:      req.Purpose,
		Notes:        req.Notes,
		Satisfaction: req.Satisfaction,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(visit))
}

func (h *Handler) deleteVisit(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.visitService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) getQueue(c *gin.Context) {
	snapshot, err := h.visitService.Queue(c.Request.Context(), optionalQuery(c, "user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(snapshot))
}

// queueAction multiplexes the queue transitions behind one endpoint:
// ?action=checkin|checkout|cancel.
func (h *Handler) queueAction(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}

	action := strings.ToLower(strings.TrimSpace(c.Query("action")))
	switch action {
	case "checkin":
		h.checkIn(c)
	case "checkout":
		h.checkOut(c)
	case "cancel":
		h.cancelVisit(c)
	default:
		c.JSON(http.StatusBadRequest, errorResponse("unknown action"))
	}
}

func (h *Handler) checkIn(c *gin.Context) {
	var req struct {
		VisitorID     string  `json:"visitor_id" binding:"required"`
		UserID        string  `json:"user_id" binding:"required"`
		AppointmentID *string `json:"appointment_id"`
		Purpose       *string `json:"purpose"`
		Notes         *string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	visit, err := h.visitService.CheckIn(c.Request.Context(), service.CheckInInput{
		VisitorID:     req.VisitorID,
		UserID:        req.UserID,
		AppointmentID: req.AppointmentID,
		Purpose:       req.Purpose,
		Notes:         req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(visit))
}

func (h *Handler) checkOut(c *gin.Context) {
	var req struct {
		VisitID      string  `json:"visit_id" binding:"required"`
		Notes        *string `json:"notes"`
		Satisfaction *int    `json:"satisfaction"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	visit, err := h.visitService.CheckOut(c.Request.Context(), req.VisitID, service.CheckOutInput{
		Notes:        req.Notes,
		Satisfaction: req.Satisfaction,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(visit))
}

func (h *Handler) cancelVisit(c *gin.Context) {
	var req struct {
		VisitID string  `json:"visit_id" binding:"required"`
		Notes   *string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	visit, err := h.visitService.Cancel(c.Request.Context(), req.VisitID, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(visit))
}

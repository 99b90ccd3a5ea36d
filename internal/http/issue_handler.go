package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"constituency-service/internal/http/middleware"
	"constituency-service/internal/model"
	"constituency-service/internal/repository"
	"constituency-service/internal/service"
)

func (h *Handler) createIssue(c *gin.Context) {
	principal, ok := h.requireWrite(c)
	if !ok {
		return
	}

	var req struct {
		Title          string   `json:"title" binding:"required"`
		Description    string   `json:"description" binding:"required"`
		Category       *string  `json:"category"`
		Priority       *string  `json:"priority"`
		Status         *string  `json:"status"`
		VisitorID      *string  `json:"visitor_id"`
		AssignedUserID *string  `json:"assigned_user_id"`
		DueDate        *string  `json:"due_date"`
		EstimatedCost  *float64 `json:"estimated_cost"`
		Tags           *string  `json:"tags"`
		Photos         *string  `json:"photos"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	issue, err := h.issueService.Create(c.Request.Context(), principal, service.CreateIssueInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Priority:       req.Priority,
		Status:         req.Status,
		VisitorID:      req.VisitorID,
		AssignedUserID: req.AssignedUserID,
		DueDate:        req.DueDate,
		EstimatedCost:  req.EstimatedCost,
		Tags:           req.Tags,
		Photos:         req.Photos,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(issue))
}

func (h *Handler) listIssues(c *gin.Context) {
	filter := repository.IssueListFilter{
		VisitorID:      optionalQuery(c, "visitor_id"),
		AssignedUserID: optionalQuery(c, "assigned_user_id"),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.IssueStatus(strings.ToUpper(raw))
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		category := model.IssueCategory(strings.ToUpper(raw))
		filter.Category = &category
	}
	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		priority := model.AppointmentPriority(strings.ToUpper(raw))
		filter.Priority = &priority
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

	issues, err := h.issueService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(issues))
}

func (h *Handler) getIssue(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	issue, err := h.issueService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(issue))
}

func (h *Handler) updateIssue(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Title          *string  `json:"title"`
		Description    *string  `json:"description"`
		Category       *string  `json:"category"`
		Priority       *string  `json:"priority"`
		Status         *string  `json:"status"`
		AssignedUserID *string  `json:"assigned_user_id"`
		DueDate        *string  `json:"due_date"`
		EstimatedCost  *float64 `json:"estimated_cost"`
		ActualCost     *float64 `json:"actual_cost"`
		Tags           *string  `json:"tags"`
		Photos         *string  `json:"photos"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	issue, err := h.issueService.Update(c.Request.Context(), id, service.UpdateIssueInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Priority:       req.Priority,
		Status:         req.Status,
		AssignedUserID: req.AssignedUserID,
		DueDate:        req.DueDate,
		EstimatedCost:  req.EstimatedCost,
		ActualCost:     req.ActualCost,
		Tags:           req.Tags,
		Photos:         req.Photos,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(issue))
}

func (h *Handler) deleteIssue(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.issueService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) addIssueComment(c *gin.Context) {
	principal, ok := h.requireWrite(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	comment, err := h.issueService.AddComment(c.Request.Context(), principal, id, req.Content)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(comment))
}

func (h *Handler) listIssueComments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	comments, err := h.issueService.ListComments(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(comments))
}

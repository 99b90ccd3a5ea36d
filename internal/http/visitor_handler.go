package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"constituency-service/internal/http/middleware"
	"constituency-service/internal/model"
	"constituency-service/internal/repository"
	"constituency-service/internal/service"
)

func (h *Handler) registerVisitor(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}

	var req struct {
		Name          string   `json:"name" binding:"required"`
		Phone         string   `json:"phone" binding:"required"`
		Email         *string  `json:"email"`
		AadhaarNumber *string  `json:"aadhaar_number"`
		VoterID       *string  `json:"voter_id"`
		Village       *string  `json:"village"`
		District      *string  `json:"district"`
		State         *string  `json:"state"`
		Category      *string  `json:"category"`
		Age           *int     `json:"age"`
		Gender        *string  `json:"gender"`
		Occupation    *string  `json:"occupation"`
		Education     *string  `json:"education"`
		Skills        *string  `json:"skills"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	visitor, err := h.visitorService.Register(c.Request.Context(), service.RegisterVisitorInput{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		AadhaarNumber: req.AadhaarNumber,
		VoterID:       req.VoterID,
		Village:       req.Village,
		District:      req.District,
		State:         req.State,
		Category:      req.Category,
		Age:           req.Age,
		Gender:        req.Gender,
		Occupation:    req.Occupation,
		Education:     req.Education,
		Skills:        req.Skills,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(visitor))
}

func (h *Handler) listVisitors(c *gin.Context) {
	filter := repository.VisitorListFilter{
		Search:   optionalQuery(c, "search"),
		Village:  optionalQuery(c, "village"),
		District: optionalQuery(c, "district"),
	}

	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		category := model.VisitorCategory(strings.ToUpper(raw))
		filter.Category = &category
	}
	if raw := c.Query("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := c.Query("page_size"); raw != "" {
		filter.PageSize, _ = strconv.Atoi(raw)
	}

	visitors, total, err := h.visitorService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"visitors": visitors,
		"total":    total,
	}))
}

func (h *Handler) searchVisitors(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	visitors, err := h.visitorService.Search(c.Request.Context(), q, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(visitors))
}

func (h *Handler) getVisitor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	visitor, err := h.visitorService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(visitor))
}

func (h *Handler) updateVisitor(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Name          *string `json:"name"`
		Phone         *string `json:"phone"`
		Email         *string `json:"email"`
		AadhaarNumber *string `json:"aadhaar_number"`
		VoterID       *string `json:"voter_id"`
		Village       *string `json:"village"`
		District      *string `json:"district"`
		State         *string `json:"state"`
		Category      *string `json:"category"`
		Age           *int    `json:"age"`
		Gender        *string `json:"gender"`
		Occupation    *string `json:"occupation"`
		Education     *string `json:"education"`
		Skills        *string `json:"skills"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	visitor, err := h.visitorService.Update(c.Request.Context(), id, service.UpdateVisitorInput{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		AadhaarNumber: req.AadhaarNumber,
		VoterID:       req.VoterID,
		Village:       req.Village,
		District:      req.District,
		State:         req.State,
		Category:      req.Category,
		Age:           req.Age,
		Gender:        req.Gender,
		Occupation:    req.Occupation,
		Education:     req.Education,
		Skills:        req.Skills,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(visitor))
}

func (h *Handler) deleteVisitor(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.visitorService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "visitor deleted"}))
}

func (h *Handler) getVisitorHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	history, err := h.visitorService.History(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(history))
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"constituency-service/internal/service"
)

func (h *Handler) uploadResume(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}

	var req struct {
		VisitorID string  `json:"visitor_id" binding:"required"`
		FileName  string  `json:"file_name" binding:"required"`
		FileURL   *string `json:"file_url"`
		Title     *string `json:"title"`
		Notes     *string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	resume, err := h.resumeService.Upload(c.Request.Context(), service.UploadResumeInput{
		VisitorID: req.VisitorID,
		FileName:  req.FileName,
		FileURL:   req.FileURL,
		Title:     req.Title,
		Notes:     req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(resume))
}

func (h *Handler) listResumes(c *gin.Context) {
	resumes, err := h.resumeService.List(c.Request.Context(), optionalQuery(c, "visitor_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(resumes))
}

func (h *Handler) getResume(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resume, err := h.resumeService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(resume))
}

func (h *Handler) deleteResume(c *gin.Context) {
	if _, ok := h.requireWrite(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.resumeService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "resume deleted"}))
}

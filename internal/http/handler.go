package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"constituency-service/internal/http/middleware"
	"constituency-service/internal/model"
	"constituency-service/internal/service"
)

type Handler struct {
	visitorService     *service.VisitorService
	appointmentService *service.AppointmentService
	visitService       *service.VisitService
	issueService       *service.IssueService
	resumeService      *service.ResumeService
	reportService      *service.ReportService
	log                zerolog.Logger
}

func NewHandler(
	visitorService *service.VisitorService,
	appointmentService *service.AppointmentService,
	visitService *service.VisitService,
	issueService *service.IssueService,
	resumeService *service.ResumeService,
	reportService *service.ReportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		visitorService:     visitorService,
		appointmentService: appointmentService,
		visitService:       visitService,
		issueService:       issueService,
		resumeService:      resumeService,
		reportService:      reportService,
		log:                log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)

	visitors := protected.Group("/visitors")
	{
		visitors.POST("", h.registerVisitor)
		visitors.GET("", h.listVisitors)
		visitors.GET("/search", h.searchVisitors)
		visitors.GET("/:id", h.getVisitor)
		visitors.PUT("/:id", h.updateVisitor)
		visitors.DELETE("/:id", h.deleteVisitor)
		visitors.GET("/:id/history", h.getVisitorHistory)
	}

	appointments := protected.Group("/appointments")
	{
		appointments.POST("", h.scheduleAppointment)
		appointments.GET("", h.listAppointments)
		appointments.GET("/calendar", h.getCalendar)
		appointments.GET("/slots", h.getAvailableSlots)
		appointments.GET("/:id", h.getAppointment)
		appointments.PUT("/:id", h.rescheduleAppointment)
		appointments.DELETE("/:id", h.deleteAppointment)
	}

	visits := protected.Group("/visits")
	{
		visits.GET("", h.listVisits)
		visits.GET("/:id", h.getVisit)
		visits.PUT("/:id", h.updateVisit)
		visits.DELETE("/:id", h.deleteVisit)
	}

	protected.GET("/queue", h.getQueue)
	protected.POST("/queue/actions", h.queueAction)

	issues := protected.Group("/issues")
	{
		issues.POST("", h.createIssue)
		issues.GET("", h.listIssues)
		issues.GET("/:id", h.getIssue)
		issues.PUT("/:id", h.updateIssue)
		issues.DELETE("/:id", h.deleteIssue)
		issues.POST("/:id/comments", h.addIssueComment)
		issues.GET("/:id/comments", h.listIssueComments)
	}

	resumes := protected.Group("/resumes")
	{
		resumes.POST("", h.uploadResume)
		resumes.GET("", h.listResumes)
		resumes.GET("/:id", h.getResume)
		resumes.DELETE("/:id", h.deleteResume)
	}

	protected.GET("/reports", h.getReport)
	protected.GET("/analytics/dashboard", h.getDashboard)
}

// requireWrite resolves the principal and rejects read-only roles.
func (h *Handler) requireWrite(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return model.Principal{}, false
	}
	if !principal.CanWrite() {
		c.JSON(http.StatusForbidden, errorResponse("read-only role"))
		return model.Principal{}, false
	}
	return principal, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func pathID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
		return "", false
	}
	return id, true
}

func optionalQuery(c *gin.Context, key string) *string {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	return &raw
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid time format")
}

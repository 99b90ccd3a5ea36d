package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"constituency-service/internal/auth"
	"constituency-service/internal/http/middleware"
	"constituency-service/internal/model"
	"constituency-service/internal/repository"
	"constituency-service/internal/service"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Visitor{},
		&model.Appointment{},
		&model.Visit{},
		&model.Issue{},
		&model.IssueComment{},
		&model.Resume{},
	))

	userRepo := repository.NewUserRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	resumeRepo := repository.NewResumeRepository(db)

	log := zerolog.Nop()
	handler := NewHandler(
		service.NewVisitorService(visitorRepo, visitRepo, appointmentRepo, issueRepo, resumeRepo),
		service.NewAppointmentService(db, appointmentRepo, visitorRepo, userRepo, nil, log),
		service.NewVisitService(db, visitRepo, visitorRepo, appointmentRepo, userRepo, nil, log),
		service.NewIssueService(issueRepo, visitorRepo, userRepo, nil, log),
		service.NewResumeService(db, resumeRepo, visitorRepo),
		service.NewReportService(visitorRepo, visitRepo, appointmentRepo, issueRepo, nil, log),
		log,
	)

	authMiddleware := middleware.Auth(auth.NewParser(testSecret))
	return NewRouter(handler, authMiddleware, "test")
}

func bearerToken(t *testing.T, role model.Role) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID: uuid.New(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	resp := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/visitors", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/visitors", "Bearer garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestVisitorLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	staffToken := bearerToken(t, model.RoleStaff)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/visitors", staffToken, map[string]interface{}{
		"name":  "Ravi Kumar",
		"phone": "98765 43210",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created struct {
		Data model.Visitor `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.NotEqual(t, uuid.Nil, created.Data.ID)
	assert.Equal(t, "9876543210", created.Data.Phone)

	// Duplicate phone maps to 409.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/visitors", staffToken, map[string]interface{}{
		"name":  "Someone Else",
		"phone": "98765-43210",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/visitors/"+created.Data.ID.String(), staffToken, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Missing body fields map to 400.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/visitors", staffToken, map[string]interface{}{
		"name": "No Phone",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestViewerIsReadOnly(t *testing.T) {
	router := newTestRouter(t)
	viewerToken := bearerToken(t, model.RoleViewer)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/visitors", viewerToken, map[string]interface{}{
		"name":  "Ravi",
		"phone": "1111111111",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/visitors", viewerToken, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestUnknownVisitorIs404(t *testing.T) {
	router := newTestRouter(t)
	staffToken := bearerToken(t, model.RoleStaff)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/visitors/"+uuid.NewString(), staffToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestQueueActionValidation(t *testing.T) {
	router := newTestRouter(t)
	staffToken := bearerToken(t, model.RoleStaff)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/queue/actions?action=explode", staffToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReportCSVDownload(t *testing.T) {
	router := newTestRouter(t)
	staffToken := bearerToken(t, model.RoleStaff)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/reports?type=visitors&format=csv", staffToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "visitors-report-")
	assert.Contains(t, resp.Body.String(), "Name,Phone")
}

package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"constituency-service/internal/model"
	"constituency-service/internal/repository"
)

type testEnv struct {
	db *gorm.DB

	users        *repository.UserRepository
	visitors     *repository.VisitorRepository
	appointments *repository.AppointmentRepository
	visits       *repository.VisitRepository
	issues       *repository.IssueRepository
	resumes      *repository.ResumeRepository

	visitorSvc     *VisitorService
	appointmentSvc *AppointmentService
	visitSvc       *VisitService
	issueSvc       *IssueService
	resumeSvc      *ResumeService
	reportSvc      *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
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

	env := &testEnv{
		db:           db,
		users:        repository.NewUserRepository(db),
		visitors:     repository.NewVisitorRepository(db),
		appointments: repository.NewAppointmentRepository(db),
		visits:       repository.NewVisitRepository(db),
		issues:       repository.NewIssueRepository(db),
		resumes:      repository.NewResumeRepository(db),
	}

	log := zerolog.Nop()
	env.visitorSvc = NewVisitorService(env.visitors, env.visits, env.appointments, env.issues, env.resumes)
	env.appointmentSvc = NewAppointmentService(db, env.appointments, env.visitors, env.users, nil, log)
	env.visitSvc = NewVisitService(db, env.visits, env.visitors, env.appointments, env.users, nil, log)
	env.issueSvc = NewIssueService(env.issues, env.visitors, env.users, nil, log)
	env.resumeSvc = NewResumeService(db, env.resumes, env.visitors)
	env.reportSvc = NewReportService(env.visitors, env.visits, env.appointments, env.issues, nil, log)

	return env
}

func (e *testEnv) seedUser(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedVisitor(t *testing.T, name, phone string) *model.Visitor {
	t.Helper()
	visitor, err := e.visitorSvc.Register(context.Background(), RegisterVisitorInput{
		Name:  name,
		Phone: phone,
	})
	require.NoError(t, err)
	return visitor
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constituency-service/internal/model"
	"constituency-service/internal/repository"
)

func TestRegisterVisitorDedup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.visitorSvc.Register(ctx, RegisterVisitorInput{Name: "Ravi", Phone: "98765 43210"})
	require.NoError(t, err)

	// Same number in a different formatting normalizes to the same identity.
	_, err = env.visitorSvc.Register(ctx, RegisterVisitorInput{Name: "Someone Else", Phone: "98765-43210"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterVisitorAadhaarDedup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.visitorSvc.Register(ctx, RegisterVisitorInput{
		Name:          "Ravi",
		Phone:         "1111111111",
		AadhaarNumber: strPtr("1234 5678 9012"),
	})
	require.NoError(t, err)

	_, err = env.visitorSvc.Register(ctx, RegisterVisitorInput{
		Name:          "Other",
		Phone:         "2222222222",
		AadhaarNumber: strPtr("123456789012"),
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterVisitorValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.visitorSvc.Register(ctx, RegisterVisitorInput{Name: "", Phone: "1234"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.visitorSvc.Register(ctx, RegisterVisitorInput{Name: "X", Phone: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.visitorSvc.Register(ctx, RegisterVisitorInput{Name: "X", Phone: "1234", Age: intPtr(200)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateVisitorIdentityConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedVisitor(t, "Ravi", "1111111111")
	second := env.seedVisitor(t, "Meena", "2222222222")

	_, err := env.visitorSvc.Update(ctx, second.ID.String(), UpdateVisitorInput{
		Phone: strPtr("1111111111"),
	})
	assert.ErrorIs(t, err, ErrConflict)

	// Re-saving the same identity is not a conflict with itself.
	updated, err := env.visitorSvc.Update(ctx, second.ID.String(), UpdateVisitorInput{
		Phone: strPtr("2222222222"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2222222222", updated.Phone)
}

func TestDeleteVisitorSoft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")

	staff := model.Principal{UserID: env.seedUser(t, "staff", model.RoleStaff).ID, Role: model.RoleStaff}
	assert.ErrorIs(t, env.visitorSvc.Delete(ctx, staff, visitor.ID.String()), ErrPermissionDenied)

	admin := model.Principal{UserID: env.seedUser(t, "admin", model.RoleAdmin).ID, Role: model.RoleAdmin}
	require.NoError(t, env.visitorSvc.Delete(ctx, admin, visitor.ID.String()))

	// Still addressable by id, gone from listings.
	got, err := env.visitorSvc.Get(ctx, visitor.ID.String())
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	listed, total, err := env.visitorSvc.List(ctx, repository.VisitorListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, listed)
}

func TestSearchVisitors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.visitorSvc.Search(ctx, "r", 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	env.seedVisitor(t, "Ravi Kumar", "1111111111")
	env.seedVisitor(t, "Meena Devi", "2222222222")

	found, err := env.visitorSvc.Search(ctx, "ravi", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ravi Kumar", found[0].Name)
}

func TestVisitorHistoryInsights(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	staff := env.seedUser(t, "staff", model.RoleStaff)

	visit, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    staff.ID.String(),
	})
	require.NoError(t, err)
	_, err = env.visitSvc.CheckOut(ctx, visit.ID.String(), CheckOutInput{Satisfaction: intPtr(4)})
	require.NoError(t, err)

	principal := model.Principal{UserID: staff.ID, Role: model.RoleStaff}
	_, err = env.issueSvc.Create(ctx, principal, CreateIssueInput{
		Title:       "Road repair",
		Description: "Potholes near the school",
		VisitorID:   strPtr(visitor.ID.String()),
	})
	require.NoError(t, err)

	history, err := env.visitorSvc.History(ctx, visitor.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 1, history.Insights.TotalVisits)
	assert.Equal(t, 1, history.Insights.OpenIssues)
	assert.False(t, history.Insights.FrequentVisitor)
	require.NotNil(t, history.Insights.AvgSatisfaction)
	assert.InDelta(t, 4.0, *history.Insights.AvgSatisfaction, 0.001)
	assert.Len(t, history.Visits, 1)
	assert.Len(t, history.Issues, 1)
}

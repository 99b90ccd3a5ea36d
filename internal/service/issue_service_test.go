package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constituency-service/internal/model"
)

func TestCreateIssueDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	staff := env.seedUser(t, "staff", model.RoleStaff)
	principal := model.Principal{UserID: staff.ID, Role: model.RoleStaff}

	issue, err := env.issueSvc.Create(ctx, principal, CreateIssueInput{
		Title:       "Street light broken",
		Description: "Main road, ward 4",
	})
	require.NoError(t, err)

	assert.Equal(t, model.IssueStatusOpen, issue.Status)
	assert.Equal(t, model.PriorityNormal, issue.Priority)
	assert.Equal(t, model.IssueCategoryOther, issue.Category)
	assert.Nil(t, issue.ResolvedDate)
	assert.Equal(t, staff.ID, issue.CreatedByID)

	_, err = env.issueSvc.Create(ctx, principal, CreateIssueInput{Title: "", Description: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.issueSvc.Create(ctx, principal, CreateIssueInput{
		Title:       "Dangling visitor",
		Description: "x",
		VisitorID:   strPtr("b2c7a6a0-0000-0000-0000-000000000000"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueResolvedDateLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	staff := env.seedUser(t, "staff", model.RoleStaff)
	principal := model.Principal{UserID: staff.ID, Role: model.RoleStaff}

	issue, err := env.issueSvc.Create(ctx, principal, CreateIssueInput{
		Title:       "Water supply",
		Description: "No water for two days",
	})
	require.NoError(t, err)

	resolved, err := env.issueSvc.Update(ctx, issue.ID.String(), UpdateIssueInput{
		Status: strPtr(string(model.IssueStatusResolved)),
	})
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedDate)
	stamp := *resolved.ResolvedDate

	// RESOLVED -> CLOSED stays within the resolved pair; the stamp holds.
	closed, err := env.issueSvc.Update(ctx, issue.ID.String(), UpdateIssueInput{
		Status: strPtr(string(model.IssueStatusClosed)),
	})
	require.NoError(t, err)
	require.NotNil(t, closed.ResolvedDate)
	assert.True(t, closed.ResolvedDate.Equal(stamp))

	// Reopening clears it.
	reopened, err := env.issueSvc.Update(ctx, issue.ID.String(), UpdateIssueInput{
		Status: strPtr(string(model.IssueStatusInProgress)),
	})
	require.NoError(t, err)
	assert.Nil(t, reopened.ResolvedDate)

	// Resolving again stamps fresh.
	again, err := env.issueSvc.Update(ctx, issue.ID.String(), UpdateIssueInput{
		Status: strPtr(string(model.IssueStatusResolved)),
	})
	require.NoError(t, err)
	assert.NotNil(t, again.ResolvedDate)
}

func TestIssueComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	staff := env.seedUser(t, "staff", model.RoleStaff)
	principal := model.Principal{UserID: staff.ID, Role: model.RoleStaff}

	issue, err := env.issueSvc.Create(ctx, principal, CreateIssueInput{
		Title:       "Drainage",
		Description: "Blocked drain",
	})
	require.NoError(t, err)

	_, err = env.issueSvc.AddComment(ctx, principal, issue.ID.String(), "inspected on site")
	require.NoError(t, err)
	_, err = env.issueSvc.AddComment(ctx, principal, issue.ID.String(), "contractor assigned")
	require.NoError(t, err)

	comments, err := env.issueSvc.ListComments(ctx, issue.ID.String())
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "inspected on site", comments[0].Content)
	assert.Equal(t, "contractor assigned", comments[1].Content)

	_, err = env.issueSvc.AddComment(ctx, principal, "b2c7a6a0-0000-0000-0000-000000000000", "lost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.issueSvc.AddComment(ctx, principal, issue.ID.String(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteIssueRequiresElevatedRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	staff := env.seedUser(t, "staff", model.RoleStaff)
	principal := model.Principal{UserID: staff.ID, Role: model.RoleStaff}

	issue, err := env.issueSvc.Create(ctx, principal, CreateIssueInput{
		Title:       "To be removed",
		Description: "duplicate entry",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, env.issueSvc.Delete(ctx, principal, issue.ID.String()), ErrPermissionDenied)

	admin := model.Principal{UserID: env.seedUser(t, "admin", model.RoleAdmin).ID, Role: model.RoleAdmin}
	require.NoError(t, env.issueSvc.Delete(ctx, admin, issue.ID.String()))

	_, err = env.issueSvc.Get(ctx, issue.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadResumeSupersedesPrior(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")

	first, err := env.resumeSvc.Upload(ctx, UploadResumeInput{
		VisitorID: visitor.ID.String(),
		FileName:  "resume-v1.pdf",
	})
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := env.resumeSvc.Upload(ctx, UploadResumeInput{
		VisitorID: visitor.ID.String(),
		FileName:  "resume-v2.pdf",
		Title:     strPtr("Electrician"),
	})
	require.NoError(t, err)
	assert.True(t, second.IsActive)

	// Exactly one active resume per visitor.
	prior, err := env.resumeSvc.Get(ctx, first.ID.String())
	require.NoError(t, err)
	assert.False(t, prior.IsActive)

	active, err := env.resumes.GetActiveByVisitor(ctx, visitor.ID.String())
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestUploadResumeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.resumeSvc.Upload(ctx, UploadResumeInput{
		VisitorID: "b2c7a6a0-0000-0000-0000-000000000000",
		FileName:  "resume.pdf",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	_, err = env.resumeSvc.Upload(ctx, UploadResumeInput{
		VisitorID: visitor.ID.String(),
		FileName:  "",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteResumeSoft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	resume, err := env.resumeSvc.Upload(ctx, UploadResumeInput{
		VisitorID: visitor.ID.String(),
		FileName:  "resume.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, env.resumeSvc.Delete(ctx, resume.ID.String()))

	got, err := env.resumeSvc.Get(ctx, resume.ID.String())
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

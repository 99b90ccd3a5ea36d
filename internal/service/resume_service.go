package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"constituency-service/internal/model"
	"constituency-service/internal/repository"
)

type ResumeService struct {
	db          *gorm.DB
	resumeRepo  *repository.ResumeRepository
	visitorRepo *repository.VisitorRepository
}

func NewResumeService(db *gorm.DB, resumeRepo *repository.ResumeRepository, visitorRepo *repository.VisitorRepository) *ResumeService {
	return &ResumeService{
		db:          db,
		resumeRepo:  resumeRepo,
		visitorRepo: visitorRepo,
	}
}

type UploadResumeInput struct {
	VisitorID string
	FileName  string
	FileURL   *string
	Title     *string
	Notes     *string
}

// Upload stores a new resume and supersedes the visitor's prior active one
// in the same transaction, keeping exactly one active resume per visitor.
func (s *ResumeService) Upload(ctx context.Context, input UploadResumeInput) (*model.Resume, error) {
	if input.FileName == "" {
		return nil, ErrInvalidInput
	}

	visitor, err := s.visitorRepo.GetByID(ctx, input.VisitorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !visitor.IsActive {
		return nil, ErrNotFound
	}

	resume := &model.Resume{
		VisitorID: visitor.ID,
		FileName:  input.FileName,
		FileURL:   input.FileURL,
		Title:     input.Title,
		Notes:     input.Notes,
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.resumeRepo.WithTx(tx)
		if err := repo.DeactivateByVisitor(ctx, input.VisitorID); err != nil {
			return err
		}
		return repo.Create(ctx, resume)
	})
	if err != nil {
		return nil, err
	}

	return resume, nil
}

func (s *ResumeService) Get(ctx context.Context, id string) (*model.Resume, error) {
	resume, err := s.resumeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resume, nil
}

func (s *ResumeService) List(ctx context.Context, visitorID *string) ([]model.Resume, error) {
	return s.resumeRepo.List(ctx, visitorID)
}

// Delete retires a resume without removing the record.
func (s *ResumeService) Delete(ctx context.Context, id string) error {
	resume, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	resume.IsActive = false
	return s.resumeRepo.Update(ctx, resume)
}

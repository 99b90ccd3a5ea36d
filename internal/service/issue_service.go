package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"constituency-service/internal/events"
	"constituency-service/internal/model"
	"constituency-service/internal/repository"
)

type IssueService struct {
	issueRepo   *repository.IssueRepository
	visitorRepo *repository.VisitorRepository
	userRepo    *repository.UserRepository
	publisher   events.Publisher
	log         zerolog.Logger
}

func NewIssueService(
	issueRepo *repository.IssueRepository,
	visitorRepo *repository.VisitorRepository,
	userRepo *repository.UserRepository,
	publisher events.Publisher,
	log zerolog.Logger,
) *IssueService {
	return &IssueService{
		issueRepo:   issueRepo,
		visitorRepo: visitorRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		log:         log,
	}
}

type CreateIssueInput struct {
	Title          string
	Description    string
	Category       *string
	Priority       *string
	Status         *string
	VisitorID      *string
	AssignedUserID *string
	DueDate        *string
	EstimatedCost  *float64
	Tags           *string
	Photos         *string
}

func (s *IssueService) Create(ctx context.Context, principal model.Principal, input CreateIssueInput) (*model.Issue, error) {
	if input.Title == "" || input.Description == "" {
		return nil, ErrInvalidInput
	}

	issue := &model.Issue{
		Title:       input.Title,
		Description: input.Description,
		Category:    model.IssueCategoryOther,
		Priority:    model.PriorityNormal,
		Status:      model.IssueStatusOpen,
		CreatedByID: principal.UserID,
		Tags:        input.Tags,
		Photos:      input.Photos,
	}
	if input.Category != nil && *input.Category != "" {
		issue.Category = model.IssueCategory(*input.Category)
	}
	if input.Priority != nil && *input.Priority != "" {
		issue.Priority = model.AppointmentPriority(*input.Priority)
	}
	if input.Status != nil && *input.Status != "" {
		issue.Status = model.IssueStatus(*input.Status)
		if model.IsResolvedStatus(issue.Status) {
			now := time.Now().UTC()
			issue.ResolvedDate = &now
		}
	}
	if input.EstimatedCost != nil {
		issue.EstimatedCost = input.EstimatedCost
	}

	if input.VisitorID != nil && *input.VisitorID != "" {
		visitor, err := s.visitorRepo.GetByID(ctx, *input.VisitorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		issue.VisitorID = &visitor.ID
	}
	if input.AssignedUserID != nil && *input.AssignedUserID != "" {
		assignee, err := s.userRepo.GetByID(ctx, *input.AssignedUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		issue.AssignedUserID = &assignee.ID
	}
	if input.DueDate != nil && *input.DueDate != "" {
		due, err := parseDate(*input.DueDate)
		if err != nil {
			return nil, ErrInvalidInput
		}
		issue.DueDate = &due
	}

	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.IssueCreated, issue)
	return issue, nil
}

type UpdateIssueInput struct {
	Title          *string
	Description    *string
	Category       *string
	Priority       *string
	Status         *string
	AssignedUserID *string
	DueDate        *string
	EstimatedCost  *float64
	ActualCost     *float64
	Tags           *string
	Photos         *string
}

// Update applies an arbitrary patch. There are no transition guards between
// statuses; the only lifecycle rule is the resolution stamp: entering
// RESOLVED/CLOSED sets resolved_date once, leaving that pair clears it.
func (s *IssueService) Update(ctx context.Context, id string, input UpdateIssueInput) (*model.Issue, error) {
	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrInvalidInput
		}
		issue.Title = *input.Title
	}
	if input.Description != nil {
		issue.Description = *input.Description
	}
	if input.Category != nil && *input.Category != "" {
		issue.Category = model.IssueCategory(*input.Category)
	}
	if input.Priority != nil && *input.Priority != "" {
		issue.Priority = model.AppointmentPriority(*input.Priority)
	}
	if input.AssignedUserID != nil {
		if *input.AssignedUserID == "" {
			issue.AssignedUserID = nil
		} else {
			assignee, err := s.userRepo.GetByID(ctx, *input.AssignedUserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrNotFound
				}
				return nil, err
			}
			issue.AssignedUserID = &assignee.ID
		}
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			issue.DueDate = nil
		} else {
			due, err := parseDate(*input.DueDate)
			if err != nil {
				return nil, ErrInvalidInput
			}
			issue.DueDate = &due
		}
	}
	if input.EstimatedCost != nil {
		issue.EstimatedCost = input.EstimatedCost
	}
	if input.ActualCost != nil {
		issue.ActualCost = input.ActualCost
	}
	if input.Tags != nil {
		issue.Tags = input.Tags
	}
	if input.Photos != nil {
		issue.Photos = input.Photos
	}

	statusChanged := false
	if input.Status != nil && *input.Status != "" {
		target := model.IssueStatus(*input.Status)
		if target != issue.Status {
			wasResolved := model.IsResolvedStatus(issue.Status)
			nowResolved := model.IsResolvedStatus(target)
			issue.Status = target
			statusChanged = true

			if nowResolved && issue.ResolvedDate == nil {
				now := time.Now().UTC()
				issue.ResolvedDate = &now
			}
			if wasResolved && !nowResolved {
				issue.ResolvedDate = nil
			}
		}
	}

	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, err
	}

	if statusChanged {
		s.publishEvent(ctx, events.IssueStatusChanged, issue)
	}
	return issue, nil
}

func (s *IssueService) Get(ctx context.Context, id string) (*model.Issue, error) {
	issue, err := s.issueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return issue, nil
}

func (s *IssueService) List(ctx context.Context, filter repository.IssueListFilter) ([]model.Issue, error) {
	return s.issueRepo.List(ctx, filter)
}

// Delete hard-deletes an issue. Restricted to admins and politicians.
func (s *IssueService) Delete(ctx context.Context, principal model.Principal, id string) error {
	if !principal.HasRole(model.RoleAdmin, model.RolePolitician) {
		return ErrPermissionDenied
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.issueRepo.Delete(ctx, id)
}

func (s *IssueService) AddComment(ctx context.Context, principal model.Principal, issueID, content string) (*model.IssueComment, error) {
	if content == "" {
		return nil, ErrInvalidInput
	}
	issue, err := s.Get(ctx, issueID)
	if err != nil {
		return nil, err
	}

	comment := &model.IssueComment{
		IssueID:         issue.ID,
		CreatedByUserID: principal.UserID,
		Content:         content,
	}
	if err := s.issueRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *IssueService) ListComments(ctx context.Context, issueID string) ([]model.IssueComment, error) {
	if _, err := s.Get(ctx, issueID); err != nil {
		return nil, err
	}
	return s.issueRepo.ListComments(ctx, issueID)
}

func (s *IssueService) publishEvent(ctx context.Context, key string, issue *model.Issue) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key, issue); err != nil {
		s.log.Error().Err(err).Str("routing_key", key).Msg("failed to publish issue event")
	}
}

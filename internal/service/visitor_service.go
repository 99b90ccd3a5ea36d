package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"constituency-service/internal/model"
	"constituency-service/internal/repository"
	"constituency-service/internal/utils"
)

type VisitorService struct {
	visitorRepo     *repository.VisitorRepository
	visitRepo       *repository.VisitRepository
	appointmentRepo *repository.AppointmentRepository
	issueRepo       *repository.IssueRepository
	resumeRepo      *repository.ResumeRepository
}

func NewVisitorService(
	visitorRepo *repository.VisitorRepository,
	visitRepo *repository.VisitRepository,
	appointmentRepo *repository.AppointmentRepository,
	issueRepo *repository.IssueRepository,
	resumeRepo *repository.ResumeRepository,
) *VisitorService {
	return &VisitorService{
		visitorRepo:     visitorRepo,
		visitRepo:       visitRepo,
		appointmentRepo: appointmentRepo,
		issueRepo:       issueRepo,
		resumeRepo:      resumeRepo,
	}
}

type RegisterVisitorInput struct {
	Name          string
	Phone         string
	Email         *string
	AadhaarNumber *string
	VoterID       *string
	Village       *string
	District      *string
	State         *string
	Category      *string
	Age           *int
	Gender        *string
	Occupation    *string
	Education     *string
	Skills        *string
}

func (s *VisitorService) Register(ctx context.Context, input RegisterVisitorInput) (*model.Visitor, error) {
	if input.Name == "" {
		return nil, ErrInvalidInput
	}

	phone := utils.NormalizePhone(input.Phone)
	if phone == "" {
		return nil, ErrInvalidInput
	}
	aadhaar := normalizeIdentityPtr(input.AadhaarNumber)
	voterID := normalizeIdentityPtr(input.VoterID)

	if _, err := s.visitorRepo.FindDuplicate(ctx, phone, aadhaar, voterID, nil); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := model.VisitorCategoryGeneral
	if input.Category != nil && *input.Category != "" {
		category = model.VisitorCategory(*input.Category)
	}
	if input.Age != nil && (*input.Age < 0 || *input.Age > 150) {
		return nil, ErrInvalidInput
	}

	visitor := &model.Visitor{
		Name:          input.Name,
		Phone:         phone,
		Email:         input.Email,
		AadhaarNumber: aadhaar,
		VoterID:       voterID,
		Village:       input.Village,
		District:      input.District,
		State:         input.State,
		Category:      category,
		Age:           input.Age,
		Gender:        input.Gender,
		Occupation:    input.Occupation,
		Education:     input.Education,
		Skills:        input.Skills,
		IsActive:      true,
	}

	if err := s.visitorRepo.Create(ctx, visitor); err != nil {
		return nil, err
	}

	return visitor, nil
}

// Get returns the visitor by id, including soft-deleted records: deleted
// visitors stay queryable by id, they are only excluded from listings.
func (s *VisitorService) Get(ctx context.Context, id string) (*model.Visitor, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return visitor, nil
}

type UpdateVisitorInput struct {
	Name          *string
	Phone         *string
	Email         *string
	AadhaarNumber *string
	VoterID       *string
	Village       *string
	District      *string
	State         *string
	Category      *string
	Age           *int
	Gender        *string
	Occupation    *string
	Education     *string
	Skills        *string
}

func (s *VisitorService) Update(ctx context.Context, id string, input UpdateVisitorInput) (*model.Visitor, error) {
	visitor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrInvalidInput
		}
		visitor.Name = *input.Name
	}
	identityChanged := false
	if input.Phone != nil {
		phone := utils.NormalizePhone(*input.Phone)
		if phone == "" {
			return nil, ErrInvalidInput
		}
		visitor.Phone = phone
		identityChanged = true
	}
	if input.AadhaarNumber != nil {
		visitor.AadhaarNumber = normalizeIdentityPtr(input.AadhaarNumber)
		identityChanged = true
	}
	if input.VoterID != nil {
		visitor.VoterID = normalizeIdentityPtr(input.VoterID)
		identityChanged = true
	}

	if identityChanged {
		excludeID := visitor.ID.String()
		_, err := s.visitorRepo.FindDuplicate(ctx, visitor.Phone, visitor.AadhaarNumber, visitor.VoterID, &excludeID)
		if err == nil {
			return nil, ErrConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if input.Email != nil {
		visitor.Email = input.Email
	}
	if input.Village != nil {
		visitor.Village = input.Village
	}
	if input.District != nil {
		visitor.District = input.District
	}
	if input.State != nil {
		visitor.State = input.State
	}
	if input.Category != nil && *input.Category != "" {
		visitor.Category = model.VisitorCategory(*input.Category)
	}
	if input.Age != nil {
		if *input.Age < 0 || *input.Age > 150 {
			return nil, ErrInvalidInput
		}
		visitor.Age = input.Age
	}
	if input.Gender != nil {
		visitor.Gender = input.Gender
	}
	if input.Occupation != nil {
		visitor.Occupation = input.Occupation
	}
	if input.Education != nil {
		visitor.Education = input.Education
	}
	if input.Skills != nil {
		visitor.Skills = input.Skills
	}

	if err := s.visitorRepo.Update(ctx, visitor); err != nil {
		return nil, err
	}
	return visitor, nil
}

// Delete soft-deletes: the record keeps its history and stays addressable
// by id. Restricted to admins and politicians.
func (s *VisitorService) Delete(ctx context.Context, principal model.Principal, id string) error {
	if !principal.HasRole(model.RoleAdmin, model.RolePolitician) {
		return ErrPermissionDenied
	}

	visitor, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	visitor.IsActive = false
	return s.visitorRepo.Update(ctx, visitor)
}

func (s *VisitorService) List(ctx context.Context, filter repository.VisitorListFilter) ([]model.Visitor, int64, error) {
	return s.visitorRepo.List(ctx, filter)
}

func (s *VisitorService) Search(ctx context.Context, q string, limit int) ([]model.Visitor, error) {
	if len(q) < 2 {
		return nil, ErrInvalidInput
	}
	return s.visitorRepo.Search(ctx, q, limit)
}

// VisitorHistory aggregates everything recorded against one visitor,
// plus derived insights for the profile view.
type VisitorHistory struct {
	Visitor      model.Visitor       `json:"visitor"`
	Visits       []model.Visit       `json:"visits"`
	Appointments []model.Appointment `json:"appointments"`
	Issues       []model.Issue       `json:"issues"`
	Resumes      []model.Resume      `json:"resumes"`
	Insights     VisitorInsights     `json:"insights"`
}

type VisitorInsights struct {
	TotalVisits     int      `json:"total_visits"`
	OpenIssues      int      `json:"open_issues"`
	AvgSatisfaction *float64 `json:"avg_satisfaction"`
	FrequentVisitor bool     `json:"frequent_visitor"`
	MemberSince     string   `json:"member_since"`
}

func (s *VisitorService) History(ctx context.Context, id string) (*VisitorHistory, error) {
	visitor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	visits, err := s.visitRepo.ListByVisitor(ctx, id)
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointmentRepo.ListByVisitor(ctx, id)
	if err != nil {
		return nil, err
	}
	issues, err := s.issueRepo.ListByVisitor(ctx, id)
	if err != nil {
		return nil, err
	}
	resumes, err := s.resumeRepo.ListByVisitor(ctx, id)
	if err != nil {
		return nil, err
	}

	insights := VisitorInsights{
		TotalVisits:     visitor.VisitCount,
		FrequentVisitor: visitor.VisitCount >= 5,
		MemberSince:     visitor.CreatedAt.Format("2006-01-02"),
	}
	for _, issue := range issues {
		if !model.IsResolvedStatus(issue.Status) {
			insights.OpenIssues++
		}
	}
	var satTotal, satCount int
	for _, v := range visits {
		if v.Satisfaction != nil {
			satTotal += *v.Satisfaction
			satCount++
		}
	}
	if satCount > 0 {
		avg := float64(satTotal) / float64(satCount)
		insights.AvgSatisfaction = &avg
	}

	return &VisitorHistory{
		Visitor:      *visitor,
		Visits:       visits,
		Appointments: appointments,
		Issues:       issues,
		Resumes:      resumes,
		Insights:     insights,
	}, nil
}

func normalizeIdentityPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	normalized := utils.NormalizeIdentity(*raw)
	if normalized == "" {
		return nil
	}
	return &normalized
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"constituency-service/internal/cache"
	"constituency-service/internal/model"
	"constituency-service/internal/repository"
)

const (
	ReportTypeVisitors     = "visitors"
	ReportTypeVisits       = "visits"
	ReportTypeAppointments = "appointments"
	ReportTypeIssues       = "issues"
)

const dashboardCacheKey = "dashboard:stats"

type ReportService struct {
	visitorRepo     *repository.VisitorRepository
	visitRepo       *repository.VisitRepository
	appointmentRepo *repository.AppointmentRepository
	issueRepo       *repository.IssueRepository
	cache           *cache.Cache
	log             zerolog.Logger
}

func NewReportService(
	visitorRepo *repository.VisitorRepository,
	visitRepo *repository.VisitRepository,
	appointmentRepo *repository.AppointmentRepository,
	issueRepo *repository.IssueRepository,
	c *cache.Cache,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		visitorRepo:     visitorRepo,
		visitRepo:       visitRepo,
		appointmentRepo: appointmentRepo,
		issueRepo:       issueRepo,
		cache:           c,
		log:             log,
	}
}

// Report is a tabular export: one header row plus data rows, rendered by the
// transport layer as JSON, CSV or XLSX.
type Report struct {
	Type        string     `json:"type"`
	GeneratedAt time.Time  `json:"generated_at"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	Count       int        `json:"count"`
}

type ReportFilter struct {
	Type      string
	StartDate string
	EndDate   string
	Village   *string
	District  *string
	Category  *string
}

// Generate builds the requested report over an inclusive [start, end] date
// range. An end date covers the whole day.
func (s *ReportService) Generate(ctx context.Context, filter ReportFilter) (*Report, error) {
	start, end, err := reportRange(filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, ErrInvalidInput
	}

	report := &Report{
		Type:        filter.Type,
		GeneratedAt: time.Now().UTC(),
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
	}

	switch filter.Type {
	case ReportTypeVisitors:
		err = s.visitorRows(ctx, report, start, end, filter)
	case ReportTypeVisits:
		err = s.visitRows(ctx, report, start, end)
	case ReportTypeAppointments:
		err = s.appointmentRows(ctx, report, start, end)
	case ReportTypeIssues:
		err = s.issueRows(ctx, report, start, end, filter)
	default:
		return nil, ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	report.Count = len(report.Rows)
	return report, nil
}

func (s *ReportService) visitorRows(ctx context.Context, report *Report, start, end time.Time, filter ReportFilter) error {
	repoFilter := repository.VisitorReportFilter{
		Start:    start,
		End:      end,
		Village:  filter.Village,
		District: filter.District,
	}
	if filter.Category != nil && *filter.Category != "" {
		category := model.VisitorCategory(*filter.Category)
		repoFilter.Category = &category
	}

	visitors, err := s.visitorRepo.ListForReport(ctx, repoFilter)
	if err != nil {
		return err
	}

	report.Headers = []string{"Name", "Phone", "Village", "District", "Category", "Visits", "Registered"}
	report.Rows = make([][]string, 0, len(visitors))
	for _, v := range visitors {
		report.Rows = append(report.Rows, []string{
			v.Name,
			v.Phone,
			derefString(v.Village),
			derefString(v.District),
			string(v.Category),
			strconv.Itoa(v.VisitCount),
			v.CreatedAt.Format("2006-01-02"),
		})
	}
	return nil
}

func (s *ReportService) visitRows(ctx context.Context, report *Report, start, end time.Time) error {
	visits, err := s.visitRepo.List(ctx, repository.VisitListFilter{
		DateFrom: &start,
		DateTo:   &end,
	})
	if err != nil {
		return err
	}

	report.Headers = []string{"Visitor ID", "Staff ID", "Check-in", "Check-out", "Status", "Purpose", "Satisfaction"}
	report.Rows = make([][]string, 0, len(visits))
	for _, v := range visits {
		checkOut := ""
		if v.CheckOutTime != nil {
			checkOut = v.CheckOutTime.Format(time.RFC3339)
		}
		satisfaction := ""
		if v.Satisfaction != nil {
			satisfaction = strconv.Itoa(*v.Satisfaction)
		}
		report.Rows = append(report.Rows, []string{
			v.VisitorID.String(),
			v.UserID.String(),
			v.CheckInTime.Format(time.RFC3339),
			checkOut,
			string(v.Status),
			derefString(v.Purpose),
			satisfaction,
		})
	}
	return nil
}

func (s *ReportService) appointmentRows(ctx context.Context, report *Report, start, end time.Time) error {
	appointments, err := s.appointmentRepo.List(ctx, repository.AppointmentListFilter{
		DateFrom: &start,
		DateTo:   &end,
	})
	if err != nil {
		return err
	}

	report.Headers = []string{"Title", "Visitor ID", "Staff ID", "Start", "End", "Duration (min)", "Status", "Priority"}
	report.Rows = make([][]string, 0, len(appointments))
	for _, a := range appointments {
		report.Rows = append(report.Rows, []string{
			a.Title,
			a.VisitorID.String(),
			a.UserID.String(),
			a.StartTime.Format(time.RFC3339),
			a.EndTime.Format(time.RFC3339),
			strconv.Itoa(a.DurationMinutes),
			string(a.Status),
			string(a.Priority),
		})
	}
	return nil
}

func (s *ReportService) issueRows(ctx context.Context, report *Report, start, end time.Time, filter ReportFilter) error {
	repoFilter := repository.IssueListFilter{
		DateFrom: &start,
		DateTo:   &end,
	}
	if filter.Category != nil && *filter.Category != "" {
		category := model.IssueCategory(*filter.Category)
		repoFilter.Category = &category
	}

	issues, err := s.issueRepo.List(ctx, repoFilter)
	if err != nil {
		return err
	}

	report.Headers = []string{"Title", "Category", "Priority", "Status", "Created", "Due", "Resolved"}
	report.Rows = make([][]string, 0, len(issues))
	for _, i := range issues {
		due := ""
		if i.DueDate != nil {
			due = i.DueDate.Format("2006-01-02")
		}
		resolved := ""
		if i.ResolvedDate != nil {
			resolved = i.ResolvedDate.Format("2006-01-02")
		}
		report.Rows = append(report.Rows, []string{
			i.Title,
			string(i.Category),
			string(i.Priority),
			string(i.Status),
			i.CreatedAt.Format("2006-01-02"),
			due,
			resolved,
		})
	}
	return nil
}

// DashboardStats is the headline counter set for the landing view.
type DashboardStats struct {
	ActiveVisitors    int64 `json:"active_visitors"`
	VisitsToday       int64 `json:"visits_today"`
	AppointmentsToday int64 `json:"appointments_today"`
	OpenIssues        int64 `json:"open_issues"`
	ResolvedThisMonth int64 `json:"resolved_this_month"`
}

// Dashboard serves the counters from cache when fresh and recomputes them
// otherwise. A cache failure degrades to a direct read, never an error.
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	hit, err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached)
	if err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache read failed")
	}
	if hit {
		return &cached, nil
	}

	now := time.Now().UTC()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	stats := &DashboardStats{}
	if stats.ActiveVisitors, err = s.visitorRepo.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.VisitsToday, err = s.visitRepo.CountBetween(ctx, today, tomorrow); err != nil {
		return nil, err
	}
	if stats.AppointmentsToday, err = s.appointmentRepo.CountBetween(ctx, today, tomorrow); err != nil {
		return nil, err
	}
	openStatuses := []model.IssueStatus{
		model.IssueStatusOpen,
		model.IssueStatusInProgress,
		model.IssueStatusEscalated,
	}
	if stats.OpenIssues, err = s.issueRepo.CountByStatuses(ctx, openStatuses); err != nil {
		return nil, err
	}
	if stats.ResolvedThisMonth, err = s.issueRepo.CountResolvedBetween(ctx, monthStart, nextMonth); err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, dashboardCacheKey, stats); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache write failed")
	}
	return stats, nil
}

// reportRange parses an inclusive date range, defaulting to the last 30 days.
// The end bound is pushed to the last instant of its day so filters built on
// <= comparisons cover it fully.
func reportRange(startDate, endDate string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	end := startOfDay(now)
	if endDate != "" {
		parsed, err := parseDate(endDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -30)
	if startDate != "" {
		parsed, err := parseDate(startDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s after end %s", startDate, endDate)
	}

	end = end.AddDate(0, 0, 1).Add(-time.Second)
	return start, end, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studata-api/internal/models"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
)

const dashboardKeyPrefix = "studata:dashboard:"

const recentStudentsLimit = 5

type dashboardStudentLister interface {
	List(ctx context.Context, userID string) ([]models.Student, error)
}

// DashboardService aggregates the scope's record list into the summary and
// analytics payloads the original dashboard and analytics tabs computed
// client-side. Results are cached per scope when a cache is configured.
type DashboardService struct {
	students dashboardStudentLister
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(students dashboardStudentLister, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{students: students, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// Summary returns headline counts and the most recently created records.
// The second return value reports whether the payload came from cache.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*models.DashboardSummary, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}

	cacheKey := dashboardKeyPrefix + userID + ":summary"
	var cached models.DashboardSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	students, err := s.students.List(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	summary := &models.DashboardSummary{
		TotalStudents: len(students),
		Recent:        recentStudents(students, recentStudentsLimit),
	}
	classes := map[string]struct{}{}
	for _, student := range students {
		switch student.Gender {
		case "Male":
			summary.MaleStudents++
		case "Female":
			summary.FemaleStudents++
		}
		classes[student.Class] = struct{}{}
	}
	summary.TotalClasses = len(classes)

	if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard summary", zap.String("user_id", userID), zap.Error(err))
	}
	return summary, false, nil
}

// Analytics returns gender, caste and class distributions for the scope.
func (s *DashboardService) Analytics(ctx context.Context, userID string) (*models.AnalyticsReport, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}

	cacheKey := dashboardKeyPrefix + userID + ":analytics"
	var cached models.AnalyticsReport
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	students, err := s.students.List(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	report := &models.AnalyticsReport{
		TotalStudents: len(students),
		GenderCounts:  map[string]int{"Male": 0, "Female": 0, "Other": 0},
		CasteCounts:   map[string]int{"SC": 0, "ST": 0, "BC": 0, "OC": 0},
		ClassCounts:   map[string]int{},
	}
	classes := map[string]struct{}{}
	habitations := map[string]struct{}{}
	for _, student := range students {
		report.GenderCounts[student.Gender]++
		report.CasteCounts[student.Caste]++
		report.ClassCounts[student.Class]++
		classes[student.Class] = struct{}{}
		habitations[student.Habitation] = struct{}{}
	}
	report.TotalClasses = len(classes)
	report.TotalHabitations = len(habitations)

	if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache analytics report", zap.String("user_id", userID), zap.Error(err))
	}
	return report, false, nil
}

func recentStudents(students []models.Student, limit int) []models.Student {
	recent := make([]models.Student, len(students))
	copy(recent, students)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

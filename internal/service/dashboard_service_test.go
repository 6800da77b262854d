package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studata-api/internal/models"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
)

type fakeStudentLister struct {
	students []models.Student
	err      error
}

func (f *fakeStudentLister) List(context.Context, string) ([]models.Student, error) {
	return f.students, f.err
}

func sampleStudents() []models.Student {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.Student{
		{ID: "1", Name: "Asha", Gender: "Female", Caste: "BC", Class: "5", Habitation: "North", CreatedAt: base},
		{ID: "2", Name: "Ravi", Gender: "Male", Caste: "OC", Class: "5", Habitation: "South", CreatedAt: base.Add(time.Hour)},
		{ID: "3", Name: "Kiran", Gender: "Male", Caste: "SC", Class: "6", Habitation: "North", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "4", Name: "Devi", Gender: "Female", Caste: "ST", Class: "7", Habitation: "East", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "5", Name: "Mohan", Gender: "Male", Caste: "BC", Class: "6", Habitation: "South", CreatedAt: base.Add(4 * time.Hour)},
		{ID: "6", Name: "Sita", Gender: "Female", Caste: "OC", Class: "5", Habitation: "West", CreatedAt: base.Add(5 * time.Hour)},
	}
}

func TestDashboardSummary(t *testing.T) {
	svc := NewDashboardService(&fakeStudentLister{students: sampleStudents()}, nil, nil, 0)

	summary, cached, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, 6, summary.TotalStudents)
	assert.Equal(t, 3, summary.MaleStudents)
	assert.Equal(t, 3, summary.FemaleStudents)
	assert.Equal(t, 3, summary.TotalClasses)

	// the five most recently created records, newest first
	require.Len(t, summary.Recent, 5)
	assert.Equal(t, "Sita", summary.Recent[0].Name)
	assert.Equal(t, "Ravi", summary.Recent[4].Name)
}

func TestDashboardSummaryEmptyScope(t *testing.T) {
	svc := NewDashboardService(&fakeStudentLister{}, nil, nil, 0)

	summary, _, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalStudents)
	assert.Empty(t, summary.Recent)
}

func TestDashboardSummaryRequiresSession(t *testing.T) {
	svc := NewDashboardService(&fakeStudentLister{}, nil, nil, 0)

	_, _, err := svc.Summary(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthenticated.Code, appErrors.FromError(err).Code)
}

func TestDashboardAnalytics(t *testing.T) {
	svc := NewDashboardService(&fakeStudentLister{students: sampleStudents()}, nil, nil, 0)

	report, cached, err := svc.Analytics(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, 6, report.TotalStudents)
	assert.Equal(t, 3, report.TotalClasses)
	assert.Equal(t, 4, report.TotalHabitations)
	assert.Equal(t, map[string]int{"Male": 3, "Female": 3, "Other": 0}, report.GenderCounts)
	assert.Equal(t, map[string]int{"SC": 1, "ST": 1, "BC": 2, "OC": 2}, report.CasteCounts)
	assert.Equal(t, map[string]int{"5": 3, "6": 2, "7": 1}, report.ClassCounts)
}

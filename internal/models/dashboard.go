package models

// DashboardSummary mirrors the stat cards of the original dashboard tab.
type DashboardSummary struct {
	TotalStudents  int       `json:"total_students"`
	MaleStudents   int       `json:"male_students"`
	FemaleStudents int       `json:"female_students"`
	TotalClasses   int       `json:"total_classes"`
	Recent         []Student `json:"recent"`
}

// AnalyticsReport aggregates the distributions rendered by the analytics tab.
type AnalyticsReport struct {
	TotalStudents    int            `json:"total_students"`
	TotalClasses     int            `json:"total_classes"`
	TotalHabitations int            `json:"total_habitations"`
	GenderCounts     map[string]int `json:"gender_counts"`
	CasteCounts      map[string]int `json:"caste_counts"`
	ClassCounts      map[string]int `json:"class_counts"`
}

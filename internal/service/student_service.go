package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studata-api/internal/models"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
)

type studentStore interface {
	Load(ctx context.Context, userID string) ([]models.Student, error)
	Save(ctx context.Context, userID string, students []models.Student) error
	Clear(ctx context.Context, userID string) error
}

// StudentService implements CRUD over the per-account record list. Serial
// identifiers stay dense within a scope: adds take max+1 and every delete
// renumbers the remainder to 1..N, so the identifier behaves as a row
// number rather than a stable key.
type StudentService struct {
	repo      studentStore
	validator *validator.Validate
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service. The cache is optional
// and only used to invalidate derived dashboard payloads on mutation.
func NewStudentService(repo studentStore, validate *validator.Validate, cache *CacheService, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		validator: validate,
		cache:     cache,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the scope's records in ascending numeric serial order.
// Without an active scope the list is empty.
func (s *StudentService) List(ctx context.Context, userID string) ([]models.Student, error) {
	if userID == "" {
		return []models.Student{}, nil
	}
	students, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	sortBySerial(students)
	return students, nil
}

// Get returns a single record by serial id within the scope.
func (s *StudentService) Get(ctx context.Context, userID, id string) (*models.Student, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}
	students, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	for i := range students {
		if students[i].ID == id && students[i].UserID == userID {
			student := students[i]
			return &student, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

// Add creates a record with the next serial number (max existing + 1, or 1
// for an empty scope) and stamps ownership and both timestamps.
func (s *StudentService) Add(ctx context.Context, userID string, form models.StudentFormData) (*models.Student, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	students, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	nowTS := s.now()
	student := models.Student{
		ID:        nextSerial(students),
		UserID:    userID,
		CreatedAt: nowTS,
		UpdatedAt: nowTS,
	}
	form.Apply(&student)

	students = append(students, student)
	sortBySerial(students)
	if err := s.repo.Save(ctx, userID, students); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist students")
	}

	s.invalidateDerived(ctx, userID)
	return &student, nil
}

// Update merges the form into the record matching both the serial id and
// the owning scope. Identifier, owner and creation timestamp never change;
// the modification timestamp always advances. A record owned by another
// scope is indistinguishable from a missing one.
func (s *StudentService) Update(ctx context.Context, userID, id string, form models.StudentFormData) (*models.Student, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	students, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	idx := -1
	for i := range students {
		if students[i].ID == id && students[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	form.Apply(&students[idx])
	students[idx].UpdatedAt = s.now()

	sortBySerial(students)
	if err := s.repo.Save(ctx, userID, students); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist students")
	}

	s.invalidateDerived(ctx, userID)
	for i := range students {
		if students[i].ID == id {
			student := students[i]
			return &student, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

// Delete removes the record and renumbers the remaining records to
// consecutive serials starting at 1, preserving relative order.
func (s *StudentService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}

	students, err := s.repo.Load(ctx, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	sortBySerial(students)

	remaining := make([]models.Student, 0, len(students))
	found := false
	for _, student := range students {
		if student.ID == id && student.UserID == userID {
			found = true
			continue
		}
		remaining = append(remaining, student)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	renumber(remaining)
	if err := s.repo.Save(ctx, userID, remaining); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist students")
	}

	s.invalidateDerived(ctx, userID)
	return nil
}

// Clear wipes the scope's slot. Other scopes are unaffected.
func (s *StudentService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear students")
	}
	s.invalidateDerived(ctx, userID)
	return nil
}

// Import merges externally produced records into the scope. Missing
// timestamps are generated, ownership is stamped, and the merged list is
// renumbered 1..N so the dense-serial invariant survives the merge.
func (s *StudentService) Import(ctx context.Context, userID string, entries []models.Student) (int, error) {
	if userID == "" {
		return 0, appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}
	if len(entries) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no valid data found in file")
	}
	for _, entry := range entries {
		if entry.Name == "" {
			return 0, appErrors.Clone(appErrors.ErrValidation, "invalid file format")
		}
	}

	students, err := s.repo.Load(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	sortBySerial(students)

	nowTS := s.now()
	for _, entry := range entries {
		entry.UserID = userID
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = nowTS
		}
		if entry.UpdatedAt.IsZero() {
			entry.UpdatedAt = nowTS
		}
		students = append(students, entry)
	}

	renumber(students)
	if err := s.repo.Save(ctx, userID, students); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist students")
	}

	s.invalidateDerived(ctx, userID)
	return len(entries), nil
}

func (s *StudentService) invalidateDerived(ctx context.Context, userID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardKeyPrefix+userID+":*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.String("user_id", userID), zap.Error(err))
	}
}

func sortBySerial(students []models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].SerialNumber() < students[j].SerialNumber()
	})
}

func nextSerial(students []models.Student) string {
	max := 0
	for i := range students {
		if n := students[i].SerialNumber(); n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

func renumber(students []models.Student) {
	for i := range students {
		students[i].ID = strconv.Itoa(i + 1)
	}
}

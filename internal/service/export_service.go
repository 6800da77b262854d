package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/studata-api/internal/models"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
	"github.com/noah-isme/studata-api/pkg/export"
	"github.com/noah-isme/studata-api/pkg/jobs"
	"github.com/noah-isme/studata-api/pkg/storage"
)

// ExportJobType identifies export jobs on the background queue.
const ExportJobType = "students_export"

var exportHeaders = []string{
	"SI.NO", "Name", "Gender", "Caste", "Caste Name", "Date of Birth", "PEN",
	"Admission No", "APAAR ID", "Class", "Student Aadhar", "Father Name",
	"Father Aadhar", "Father Mobile", "Mother Name", "Mother Aadhar",
	"Mother Mobile", "Mother Bank Account", "Mother IFSC", "Mother Branch",
	"Guardian Name", "Guardian Aadhar", "Guardian Mobile", "Guardian Bank Account",
	"Guardian IFSC", "Guardian Branch", "Habitation", "Created At", "Updated At",
}

type exportStudentLister interface {
	List(ctx context.Context, userID string) ([]models.Student, error)
}

type exportJobStore interface {
	Save(ctx context.Context, job *models.ExportJob) error
	Get(ctx context.Context, id string) (*models.ExportJob, error)
}

type exportDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ExportService runs asynchronous exports of a scope's record list. Jobs are
// tracked in their own slots, rendered by background workers, written to local
// storage and exposed through signed download tokens.
type ExportService struct {
	repo     exportJobStore
	students exportStudentLister
	storage  *storage.LocalStorage
	signer   *storage.SignedURLSigner

	csvExporter  *export.CSVExporter
	pdfExporter  *export.PDFExporter
	jsonExporter *export.JSONExporter

	dispatcher exportDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs the export service. The dispatcher is attached
// afterwards via SetDispatcher because the queue handler needs the service.
func NewExportService(repo exportJobStore, students exportStudentLister, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:         repo,
		students:     students,
		storage:      store,
		signer:       signer,
		csvExporter:  export.NewCSVExporter(),
		pdfExporter:  export.NewPDFExporter(),
		jsonExporter: export.NewJSONExporter(),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetDispatcher attaches the background queue used to run jobs.
func (s *ExportService) SetDispatcher(d exportDispatcher) {
	s.dispatcher = d
}

// CreateJob registers a queued export job for the scope and hands it to the
// background queue. An enqueue failure marks the job failed immediately so the
// caller never polls a job that will not run.
func (s *ExportService) CreateJob(ctx context.Context, userID string, format models.ExportFormat) (*models.ExportJob, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if s.dispatcher == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue unavailable")
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Format:    format,
		Status:    models.ExportStatusQueued,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist export job")
	}

	if err := s.dispatcher.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType, Payload: job.ID}); err != nil {
		s.markFailed(ctx, job, fmt.Sprintf("enqueue failed: %v", err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}

	s.logger.Info("export job queued", zap.String("job_id", job.ID), zap.String("format", string(format)))
	return job, nil
}

// GetStatus returns the job record. Jobs owned by another scope look missing.
func (s *ExportService) GetStatus(ctx context.Context, userID, jobID string) (*models.ExportJob, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "no active session")
	}
	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// Process is the queue handler. The job payload is the export job ID.
func (s *ExportService) Process(ctx context.Context, queued jobs.Job) error {
	jobID, ok := queued.Payload.(string)
	if !ok || jobID == "" {
		return fmt.Errorf("export job payload must be a job id")
	}

	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}

	job.Status = models.ExportStatusProcessing
	if err := s.repo.Save(ctx, job); err != nil {
		return fmt.Errorf("mark export job processing: %w", err)
	}

	students, err := s.students.List(ctx, job.UserID)
	if err != nil {
		s.markFailed(ctx, job, err.Error())
		return fmt.Errorf("load students for export: %w", err)
	}

	data, err := s.render(job.Format, students)
	if err != nil {
		s.markFailed(ctx, job, err.Error())
		return fmt.Errorf("render export: %w", err)
	}

	filename := filepath.Join(job.UserID, job.ID, s.exportFilename(job.Format))
	relPath, err := s.storage.Save(filename, data)
	if err != nil {
		s.markFailed(ctx, job, err.Error())
		return fmt.Errorf("store export file: %w", err)
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.markFailed(ctx, job, err.Error())
		return fmt.Errorf("sign export url: %w", err)
	}

	finished := s.now()
	job.Status = models.ExportStatusCompleted
	job.FilePath = relPath
	job.ResultURL = token
	job.RecordCount = len(students)
	job.ErrorMessage = ""
	job.FinishedAt = &finished
	if err := s.repo.Save(ctx, job); err != nil {
		return fmt.Errorf("mark export job completed: %w", err)
	}

	s.logger.Info("export job completed",
		zap.String("job_id", job.ID),
		zap.String("format", string(job.Format)),
		zap.Int("records", job.RecordCount))
	return nil
}

// ResolveDownload validates the signed token and opens the referenced file.
// The caller is responsible for closing the returned handle.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*models.ExportJob, *os.File, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.Status != models.ExportStatusCompleted || job.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export file not available")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export file not available")
	}
	return job, file, nil
}

func (s *ExportService) render(format models.ExportFormat, students []models.Student) ([]byte, error) {
	switch format {
	case models.ExportFormatJSON:
		return s.jsonExporter.Render(students)
	case models.ExportFormatCSV:
		return s.csvExporter.Render(studentDataset(students))
	case models.ExportFormatPDF:
		return s.pdfExporter.Render(studentDataset(students), "Student Records")
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (s *ExportService) exportFilename(format models.ExportFormat) string {
	return fmt.Sprintf("studata_export_%s.%s", s.now().Format("2006-01-02"), format)
}

func (s *ExportService) markFailed(ctx context.Context, job *models.ExportJob, reason string) {
	finished := s.now()
	job.Status = models.ExportStatusFailed
	job.ErrorMessage = reason
	job.FinishedAt = &finished
	if err := s.repo.Save(ctx, job); err != nil {
		s.logger.Error("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func studentDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for i := range students {
		rows = append(rows, studentRow(&students[i]))
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func studentRow(s *models.Student) map[string]string {
	return map[string]string{
		"SI.NO":                 s.ID,
		"Name":                  s.Name,
		"Gender":                s.Gender,
		"Caste":                 s.Caste,
		"Caste Name":            s.CasteName,
		"Date of Birth":         s.DateOfBirth,
		"PEN":                   s.PEN,
		"Admission No":          s.AdmnNo,
		"APAAR ID":              s.ApaarID,
		"Class":                 s.Class,
		"Student Aadhar":        s.AadharNo,
		"Father Name":           s.FatherName,
		"Father Aadhar":         s.FatherAadharNo,
		"Father Mobile":         s.FatherMobileNo,
		"Mother Name":           s.MotherName,
		"Mother Aadhar":         s.MotherAadharNo,
		"Mother Mobile":         s.MotherMobileNo,
		"Mother Bank Account":   s.MotherBankAccNo,
		"Mother IFSC":           s.MotherIFSCCode,
		"Mother Branch":         s.MotherBranch,
		"Guardian Name":         s.GuardianName,
		"Guardian Aadhar":       s.GuardianAadharNo,
		"Guardian Mobile":       s.GuardianMobileNo,
		"Guardian Bank Account": s.GuardianBankAccNo,
		"Guardian IFSC":         s.GuardianIFSCCode,
		"Guardian Branch":       s.GuardianBranch,
		"Habitation":            s.Habitation,
		"Created At":            s.CreatedAt.Format(time.RFC3339),
		"Updated At":            s.UpdatedAt.Format(time.RFC3339),
	}
}

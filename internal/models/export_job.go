package models

import "time"

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
)

// Valid reports whether the format is one of the supported encodings.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportFormatJSON, ExportFormatCSV, ExportFormatPDF:
		return true
	}
	return false
}

// ExportStatus enumerates job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "queued"
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusCompleted  ExportStatus = "completed"
	ExportStatusFailed     ExportStatus = "failed"
)

// ExportJob tracks one asynchronous export of a scope's record list.
type ExportJob struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	FilePath     string       `json:"filePath,omitempty"`
	ResultURL    string       `json:"resultUrl,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
	RecordCount  int          `json:"recordCount"`
	CreatedAt    time.Time    `json:"createdAt"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`
}

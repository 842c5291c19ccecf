package models

import "time"

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatPDF
}

// ExportStatus tracks an export job through its lifecycle.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "queued"
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusFinished   ExportStatus = "finished"
	ExportStatusFailed     ExportStatus = "failed"
)

// ExportJob is one queued history export. Jobs live in memory only; the
// rendered files on disk are the durable artifact and expire on their own TTL.
type ExportJob struct {
	ID           string       `json:"id"`
	SchoolYearID int64        `json:"-"`
	Format       ExportFormat `json:"format"`
	From         *time.Time   `json:"from,omitempty"`
	To           *time.Time   `json:"to,omitempty"`
	Status       ExportStatus `json:"status"`
	Progress     int          `json:"progress"`
	ResultURL    string       `json:"result_url,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}

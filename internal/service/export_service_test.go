package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/jobs"
	"github.com/minhtran-dev/thidua-api/pkg/storage"
)

type fakeHistoryPages struct {
	entries []models.HistoryEntry
}

func (f *fakeHistoryPages) List(_ context.Context, _ int64, filter models.HistoryFilter) ([]models.HistoryEntry, int, error) {
	return f.entries, len(f.entries), nil
}

func (f *fakeHistoryPages) ListAll(context.Context, int64) ([]models.HistoryEntry, error) {
	return f.entries, nil
}

type recordingQueue struct {
	enqueued []jobs.Job
	err      error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

func exportFixture(t *testing.T) (*ExportService, *recordingQueue) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	history := &fakeHistoryPages{entries: []models.HistoryEntry{
		{StudentName: "An", TeamName: "Tổ 1", Points: 5, Reason: "Phát biểu", RecordedAt: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)},
		{StudentName: "Bình", TeamName: "Tổ 2", Points: -2, Reason: "Đi học muộn", RecordedAt: time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)},
	}}
	svc := NewExportService(history, &fakeYears{id: 1}, store, signer, nil, ExportConfig{APIPrefix: "/api/v1"}, nil)
	queue := &recordingQueue{}
	svc.SetQueue(queue)
	return svc, queue
}

func TestExportInlineCSVStartsWithBOM(t *testing.T) {
	svc, _ := exportFixture(t)

	payload, filename, err := svc.RenderHistoryCSV(context.Background(), nil, nil)
	require.NoError(t, err)
	require.True(t, len(payload) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, payload[:3])
	assert.Contains(t, string(payload), "An")
	assert.Contains(t, string(payload), "Đi học muộn")
	assert.True(t, strings.HasSuffix(filename, ".csv"))
}

func TestExportCreateJobQueuesAndTracks(t *testing.T) {
	svc, queue := exportFixture(t)

	job, err := svc.CreateJob(context.Background(), ExportJobRequest{Format: "csv"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, job.ID, queue.enqueued[0].ID)

	status, err := svc.JobStatus(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, status.Status)
}

func TestExportCreateJobRejectsUnknownFormat(t *testing.T) {
	svc, _ := exportFixture(t)

	_, err := svc.CreateJob(context.Background(), ExportJobRequest{Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportJobStatusUnknownID(t *testing.T) {
	svc, _ := exportFixture(t)

	_, err := svc.JobStatus("does-not-exist")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportHandleFinishesJobAndServesDownload(t *testing.T) {
	svc, queue := exportFixture(t)

	job, err := svc.CreateJob(context.Background(), ExportJobRequest{Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, svc.Handle(context.Background(), queue.enqueued[0]))

	status, err := svc.JobStatus(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.Contains(t, status.ResultURL, "/api/v1/exports/download/")

	token := status.ResultURL[strings.LastIndex(status.ResultURL, "/")+1:]
	download, err := svc.ResolveDownload(token)
	require.NoError(t, err)
	defer download.File.Close()
	payload, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, payload[:3])
	assert.Equal(t, models.ExportFormatCSV, download.Format)
}

func TestExportResolveDownloadRejectsTamperedToken(t *testing.T) {
	svc, queue := exportFixture(t)

	_, err := svc.CreateJob(context.Background(), ExportJobRequest{Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, svc.Handle(context.Background(), queue.enqueued[0]))

	_, err = svc.ResolveDownload("tampered.token.value.sig")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

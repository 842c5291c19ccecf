package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
	"github.com/minhtran-dev/thidua-api/internal/service"
	"github.com/minhtran-dev/thidua-api/pkg/storage"
)

type historyPagesStub struct {
	entries      []models.HistoryEntry
	lastFilter   models.HistoryFilter
	listAllCalls int
}

func (s *historyPagesStub) List(ctx context.Context, schoolYearID int64, filter models.HistoryFilter) ([]models.HistoryEntry, int, error) {
	s.lastFilter = filter
	return s.entries, len(s.entries), nil
}

func (s *historyPagesStub) ListAll(ctx context.Context, schoolYearID int64) ([]models.HistoryEntry, error) {
	s.listAllCalls++
	return s.entries, nil
}

func historyRouter(t *testing.T, repo *historyPagesStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewHistoryService(repo, &yearSourceStub{id: 1}, nil)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	exports := service.NewExportService(repo, &yearSourceStub{id: 1}, store, signer, nil, service.ExportConfig{APIPrefix: "/api/v1"}, nil)
	h := NewHistoryHandler(svc, exports)
	r := gin.New()
	r.GET("/history", h.List)
	r.GET("/history/export", h.Export)
	return r
}

func historyEntries() []models.HistoryEntry {
	recorded := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return []models.HistoryEntry{
		{ID: models.HistoryEntryID(recorded, 2), StudentID: 2, StudentName: "Bình", TeamName: "Tổ 1", Points: -2, Reason: "Quên vở", RecordedAt: recorded},
		{ID: models.HistoryEntryID(recorded.Add(-time.Hour), 1), StudentID: 1, StudentName: "An", TeamName: "Tổ 1", Points: 5, Reason: "Phát biểu tốt", RecordedAt: recorded.Add(-time.Hour)},
	}
}

func TestHistoryList(t *testing.T) {
	repo := &historyPagesStub{entries: historyEntries()}
	router := historyRouter(t, repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/history?page=2&limit=20", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, repo.lastFilter.Page)
	require.Equal(t, 20, repo.lastFilter.PageSize)

	var envelope struct {
		Data       []models.HistoryEntry `json:"data"`
		Pagination *models.Pagination    `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	require.NotNil(t, envelope.Pagination)
	require.Equal(t, 2, envelope.Pagination.TotalCount)
}

func TestHistoryListRejectsInvertedRange(t *testing.T) {
	router := historyRouter(t, &historyPagesStub{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/history?from=2026-03-10T00:00:00Z&to=2026-03-01T00:00:00Z", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryExportCSV(t *testing.T) {
	router := historyRouter(t, &historyPagesStub{entries: historyEntries()})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/history/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	require.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.Bytes()
	require.True(t, len(body) > 3)
	require.Equal(t, []byte{0xEF, 0xBB, 0xBF}, body[:3])

	text := string(body[3:])
	require.True(t, strings.HasPrefix(text, "Học sinh,Tổ,Điểm,Lý do,Thời gian"))
	require.Contains(t, text, "Bình")
	require.Contains(t, text, "Phát biểu tốt")
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/minhtran-dev/thidua-api/internal/models"
	"github.com/minhtran-dev/thidua-api/internal/scoring"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type rosterReader interface {
	ListWithStudents(ctx context.Context, schoolYearID int64) ([]models.Team, error)
}

type historyReader interface {
	ListAll(ctx context.Context, schoolYearID int64) ([]models.HistoryEntry, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService computes leaderboards, the Hall of Fame podium and the
// watchlist. Everything is derived fresh from roster and history on each
// call; Redis only shortens the window between identical reads.
type DashboardService struct {
	roster  rosterReader
	history historyReader
	years   activeYearSource
	cache   dashboardCache
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time
}

// NewDashboardService constructs the service. A zero ttl disables caching.
func NewDashboardService(roster rosterReader, history historyReader, years activeYearSource, cache dashboardCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		roster:  roster,
		history: history,
		years:   years,
		cache:   cache,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
	}
}

// WindowRequest selects the aggregation span for dashboard reads.
type WindowRequest struct {
	Kind string     `json:"window"`
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// Leaderboard is the combined team and individual ranking for one window.
type Leaderboard struct {
	Window   string                  `json:"window"`
	Teams    []scoring.RankedTeam    `json:"teams"`
	Students []scoring.RankedStudent `json:"students"`
}

// resolveWindow turns the request into a scoring.Window anchored at now.
func (s *DashboardService) resolveWindow(req WindowRequest) (scoring.Window, error) {
	kind := scoring.WindowKind(req.Kind)
	if req.Kind == "" {
		kind = scoring.WindowAll
	}
	if !kind.Valid() {
		return scoring.Window{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported window %q", req.Kind))
	}
	w := scoring.Window{Kind: kind, Anchor: s.now()}
	if kind == scoring.WindowCustom {
		if req.From == nil || req.To == nil {
			return scoring.Window{}, appErrors.Clone(appErrors.ErrValidation, "custom window requires from and to")
		}
		if req.To.Before(*req.From) {
			return scoring.Window{}, appErrors.Clone(appErrors.ErrValidation, "custom window is inverted")
		}
		w.From = *req.From
		w.To = *req.To
	}
	return w, nil
}

// Leaderboard ranks teams and students over the requested window.
func (s *DashboardService) Leaderboard(ctx context.Context, req WindowRequest) (*Leaderboard, error) {
	w, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := s.leaderboardKey(yearID, w)
	if s.cache != nil {
		var cached Leaderboard
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	teams, history, err := s.load(ctx, yearID, w)
	if err != nil {
		return nil, err
	}
	windowed := scoring.WindowTeams(teams, history, w)
	board := &Leaderboard{
		Window:   string(w.Kind),
		Teams:    scoring.RankTeams(windowed),
		Students: scoring.RankStudents(windowed),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, board, s.ttl); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return board, nil
}

// HallOfFame returns the podium of positive points for the window.
func (s *DashboardService) HallOfFame(ctx context.Context, req WindowRequest) (*scoring.Podium, error) {
	w, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.roster.ListWithStudents(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list teams")
	}
	// The podium counts positive entries, so it needs history even for the
	// all-time window.
	history, err := s.history.ListAll(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list history")
	}
	podium := scoring.HallOfFame(teams, history, w)
	return &podium, nil
}

// Watchlist flags students with repeated negative incidents in the week of
// the reference time. A nil reference means now.
func (s *DashboardService) Watchlist(ctx context.Context, ref *time.Time) ([]scoring.WatchlistEntry, error) {
	at := s.now()
	if ref != nil {
		at = *ref
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.roster.ListWithStudents(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list teams")
	}
	history, err := s.history.ListAll(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list history")
	}
	return scoring.ComputeWatchlist(teams, history, at), nil
}

func (s *DashboardService) load(ctx context.Context, yearID int64, w scoring.Window) ([]models.Team, []models.HistoryEntry, error) {
	teams, err := s.roster.ListWithStudents(ctx, yearID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list teams")
	}
	// All-time ranking reads the stored scores directly; no history needed.
	if w.Kind == scoring.WindowAll {
		return teams, nil, nil
	}
	history, err := s.history.ListAll(ctx, yearID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list history")
	}
	return teams, history, nil
}

func (s *DashboardService) leaderboardKey(yearID int64, w scoring.Window) string {
	from, to, bounded := w.Bounds()
	if !bounded {
		return fmt.Sprintf("dashboard:leaderboard:%d:all", yearID)
	}
	return fmt.Sprintf("dashboard:leaderboard:%d:%s:%d:%d", yearID, w.Kind, from.UnixMilli(), to.UnixMilli())
}

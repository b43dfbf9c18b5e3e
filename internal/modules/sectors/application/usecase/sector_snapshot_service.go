package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"hospitalSectorsWs/internal/modules/sectors/application/port"
	"hospitalSectorsWs/internal/modules/sectors/domain"
	"hospitalSectorsWs/internal/shared/normalization"
)

var ErrMissingHospital = errors.New("missing hospital id")

// SnapshotServiceConfig tunes the cache and the currency convention of the mapper.
type SnapshotServiceConfig struct {
	CacheCapacity int
	CacheTTL      time.Duration
	Currency      *normalization.CurrencyNormalizer
}

// SectorSnapshotService fetches, maps and caches hospital sector snapshots.
// Snapshots it returns are shared with the cache and must not be mutated.
type SectorSnapshotService struct {
	fetcher port.SectorSnapshotFetcher
	mapper  *domain.SectorMapper
	cache   *snapshotCache
	group   singleflight.Group
	now     func() time.Time
}

func NewSectorSnapshotService(fetcher port.SectorSnapshotFetcher, cfg SnapshotServiceConfig) *SectorSnapshotService {
	return &SectorSnapshotService{
		fetcher: fetcher,
		mapper:  domain.NewSectorMapper(cfg.Currency),
		cache:   newSnapshotCache(cfg.CacheCapacity, cfg.CacheTTL),
		now:     time.Now,
	}
}

// Fetch returns the cached snapshot for hospitalID or loads it from the backend.
// Concurrent cold calls for one hospital share a single backend request. Failures are
// returned as errors and leave the cache untouched.
func (s *SectorSnapshotService) Fetch(ctx context.Context, hospitalID string) (*domain.HospitalSectorSnapshot, error) {
	id := strings.TrimSpace(hospitalID)
	if id == "" {
		return nil, ErrMissingHospital
	}
	if entry, ok := s.cache.get(id); ok {
		slog.Debug("sector-snapshot cache hit", slog.String("hospitalId", id), slog.Time("fetchedAt", entry.fetchedAt))
		return entry.snapshot, nil
	}

	// The shared load outlives any single caller; the fetcher bounds it with its own timeout.
	results := s.group.DoChan(id, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), id)
	})
	select {
	case <-ctx.Done():
		slog.Debug("sector-snapshot caller gave up waiting", slog.String("hospitalId", id), slog.Any("error", ctx.Err()))
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("sector-snapshot shared in-flight fetch", slog.String("hospitalId", id))
		}
		return res.Val.(*domain.HospitalSectorSnapshot), nil
	}
}

func (s *SectorSnapshotService) load(ctx context.Context, hospitalID string) (*domain.HospitalSectorSnapshot, error) {
	generation := s.cache.currentGeneration()
	started := s.now()

	raw, err := s.fetcher.FetchHospitalSectors(ctx, hospitalID)
	switch {
	case errors.Is(err, port.ErrSnapshotNotFound):
		slog.Warn("sector-snapshot not found", slog.String("hospitalId", hospitalID))
		return nil, err
	case errors.Is(err, port.ErrSnapshotForbidden):
		slog.Warn("sector-snapshot forbidden", slog.String("hospitalId", hospitalID))
		return nil, err
	case err != nil:
		slog.Error("sector-snapshot fetch failed", slog.String("hospitalId", hospitalID), slog.Any("error", err))
		return nil, err
	}

	snapshot := s.mapper.BuildSnapshot(hospitalID, raw)
	if !s.cache.setAt(generation, hospitalID, snapshot) {
		slog.Debug("sector-snapshot cache invalidated during fetch", slog.String("hospitalId", hospitalID))
	}
	level := slog.LevelInfo
	if snapshot.IsEmpty() {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "sector-snapshot loaded",
		slog.String("hospitalId", hospitalID),
		slog.String("snapshotId", snapshot.SnapshotID),
		slog.Int("internation", len(snapshot.Internation)),
		slog.Int("assistance", len(snapshot.Assistance)),
		slog.Int("neutral", len(snapshot.Neutral)),
		slog.Duration("elapsed", s.now().Sub(started)),
	)
	return snapshot, nil
}

// GetAllSnapshotHospitalSectors never fails: any error is logged and answered with an
// empty snapshot for hospitalID, which is not cached.
func (s *SectorSnapshotService) GetAllSnapshotHospitalSectors(ctx context.Context, hospitalID string) *domain.HospitalSectorSnapshot {
	snapshot, err := s.Fetch(ctx, hospitalID)
	if err != nil {
		slog.Error("sector-snapshot serving empty fallback", slog.String("hospitalId", strings.TrimSpace(hospitalID)), slog.Any("error", err))
		return domain.EmptySnapshot(strings.TrimSpace(hospitalID))
	}
	return snapshot
}

// Summary aggregates the current snapshot of hospitalID.
func (s *SectorSnapshotService) Summary(ctx context.Context, hospitalID string) (domain.SectorSummary, error) {
	snapshot, err := s.Fetch(ctx, hospitalID)
	if err != nil {
		return domain.SectorSummary{}, err
	}
	return domain.Summarize(snapshot), nil
}

// ClearSectorsCache empties the cache; the next read of any hospital refetches.
func (s *SectorSnapshotService) ClearSectorsCache() {
	for _, id := range s.cache.hospitalIDs() {
		s.group.Forget(id)
	}
	s.cache.clear()
	slog.Info("sector-snapshot cache cleared")
}

// Invalidate drops the cached snapshot of one hospital.
func (s *SectorSnapshotService) Invalidate(hospitalID string) {
	id := strings.TrimSpace(hospitalID)
	if id == "" {
		return
	}
	s.group.Forget(id)
	s.cache.delete(id)
	slog.Debug("sector-snapshot invalidated", slog.String("hospitalId", id))
}

// CachedHospitalIDs lists hospitals with a cached snapshot, in no particular order.
func (s *SectorSnapshotService) CachedHospitalIDs() []string {
	return s.cache.hospitalIDs()
}

// Refresh reloads hospitalID and pushes the new snapshot to its subscribers. A failed
// reload is reported to the subscribers as an error message.
func (s *SectorSnapshotService) Refresh(ctx context.Context, hospitalID string, broadcaster *BroadcastUseCase) (*domain.HospitalSectorSnapshot, error) {
	id := strings.TrimSpace(hospitalID)
	if id == "" {
		return nil, ErrMissingHospital
	}
	s.Invalidate(id)

	snapshot, err := s.Fetch(ctx, id)
	if err != nil {
		broadcaster.Execute(ctx, domain.BuildErrorMessage(id, domain.ActionSnapshot, err.Error(), s.now()))
		return nil, err
	}
	broadcaster.Execute(ctx, domain.BuildSnapshotMessage(snapshot, s.now()))
	slog.Info("sector-snapshot refreshed broadcast", slog.String("hospitalId", id), slog.String("snapshotId", snapshot.SnapshotID))
	return snapshot, nil
}

// RefreshAll clears the cache and reloads every hospital that was cached before.
func (s *SectorSnapshotService) RefreshAll(ctx context.Context, broadcaster *BroadcastUseCase) {
	ids := s.cache.hospitalIDs()
	s.ClearSectorsCache()
	for _, id := range ids {
		if _, err := s.Refresh(ctx, id, broadcaster); err != nil {
			slog.Warn("sector-snapshot refresh all skipped hospital", slog.String("hospitalId", id), slog.Any("error", err))
		}
	}
}

package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/pkg/cache"
)

const (
	statsCacheKey      = "stats:international"
	unknownMajor       = "Inconnu"
	unknownUniversity  = "Inconnue"
	topUniversityCount = 10
)

// StatsService computes the international overview
type StatsService interface {
	Get(ctx context.Context) (*dto.StatsResponse, error)
	// Invalidate drops the cached overview after a dossier changes
	Invalidate(ctx context.Context)
}

// statsServiceImpl implements StatsService
type statsServiceImpl struct {
	applicationRepo repositories.IApplicationRepository
	cache           cache.Cache
	ttl             time.Duration
	logger          zerolog.Logger
}

// NewStatsService creates a new StatsService. A nil cache disables caching.
func NewStatsService(applicationRepo repositories.IApplicationRepository, c cache.Cache, ttl time.Duration, logger zerolog.Logger) StatsService {
	if c == nil {
		c = cache.Noop{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &statsServiceImpl{
		applicationRepo: applicationRepo,
		cache:           c,
		ttl:             ttl,
		logger:          logger,
	}
}

// Get returns the cached overview or recomputes it
func (s *statsServiceImpl) Get(ctx context.Context) (*dto.StatsResponse, error) {
	var cached dto.StatsResponse
	err := s.cache.GetJSON(ctx, statsCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn().Err(err).Msg("Stats cache read failed")
	}

	rows, err := s.applicationRepo.StatsRows(ctx)
	if err != nil {
		return nil, err
	}
	stats := BuildStats(rows)

	if err := s.cache.SetJSON(ctx, statsCacheKey, stats, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("Stats cache write failed")
	}
	return stats, nil
}

// Invalidate drops the cached overview
func (s *statsServiceImpl) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), statsCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("Stats cache invalidation failed")
	}
}

// BuildStats aggregates the per-dossier rows
func BuildStats(rows []repositories.StatsRow) *dto.StatsResponse {
	stats := &dto.StatsResponse{
		TotalApplications: len(rows),
		ByStatus:          make(map[string]int, len(models.AllStatuses)),
		ByMajor:           []dto.NamedCount{},
		TopUniversities:   []dto.NamedCount{},
	}
	for _, st := range models.AllStatuses {
		stats.ByStatus[string(st)] = 0
	}

	students := make(map[uuid.UUID]struct{})
	majors := make(map[string]int)
	universities := make(map[string]int)
	validated := 0
	for _, r := range rows {
		students[r.StudentID] = struct{}{}
		stats.ByStatus[string(r.Status)]++
		if r.Status == models.StatusValidatedFinal {
			validated++
		}

		major := unknownMajor
		if r.MajorName != nil && *r.MajorName != "" {
			major = *r.MajorName
		}
		majors[major]++

		uni := r.University
		if uni == "" {
			uni = unknownUniversity
		}
		universities[uni]++
	}

	stats.UniqueStudents = len(students)
	if len(rows) > 0 {
		stats.ValidationRate = int(math.Round(float64(validated) / float64(len(rows)) * 100))
	}
	stats.ByMajor = rankCounts(majors, 0)
	stats.TopUniversities = rankCounts(universities, topUniversityCount)
	return stats
}

// rankCounts sorts by count descending then name; limit <= 0 keeps everything
func rankCounts(counts map[string]int, limit int) []dto.NamedCount {
	out := make([]dto.NamedCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, dto.NamedCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

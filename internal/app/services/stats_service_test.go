package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/pkg/cache"
)

type memoryCache struct {
	entries map[string][]byte
	deletes int
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: map[string][]byte{}} }

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return cache.ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deletes++
	return nil
}

func strPtr(s string) *string { return &s }

func TestBuildStats(t *testing.T) {
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	rows := []repositories.StatsRow{
		{StudentID: alice, Status: models.StatusValidatedFinal, MajorName: strPtr("Finance"), University: "KTH"},
		{StudentID: alice, Status: models.StatusRejected, MajorName: strPtr("Finance"), University: "TU Delft"},
		{StudentID: bob, Status: models.StatusSubmitted, MajorName: strPtr("Cyber"), University: "KTH"},
		{StudentID: carol, Status: models.StatusDraft, University: ""},
	}

	stats := BuildStats(rows)
	assert.Equal(t, 4, stats.TotalApplications)
	assert.Equal(t, 3, stats.UniqueStudents)
	assert.Equal(t, 25, stats.ValidationRate)
	assert.Equal(t, 1, stats.ByStatus["validated_final"])
	assert.Equal(t, 0, stats.ByStatus["revision"])
	assert.Len(t, stats.ByStatus, len(models.AllStatuses))

	assert.Equal(t, []dto.NamedCount{
		{Name: "Finance", Count: 2},
		{Name: "Cyber", Count: 1},
		{Name: "Inconnu", Count: 1},
	}, stats.ByMajor)
	assert.Equal(t, []dto.NamedCount{
		{Name: "KTH", Count: 2},
		{Name: "Inconnue", Count: 1},
		{Name: "TU Delft", Count: 1},
	}, stats.TopUniversities)
}

func TestBuildStats_Empty(t *testing.T) {
	stats := BuildStats(nil)
	assert.Zero(t, stats.TotalApplications)
	assert.Zero(t, stats.ValidationRate)
	assert.NotNil(t, stats.ByMajor)
	assert.NotNil(t, stats.TopUniversities)
}

func TestBuildStats_TopUniversitiesCapped(t *testing.T) {
	var rows []repositories.StatsRow
	for i := 0; i < topUniversityCount+3; i++ {
		rows = append(rows, repositories.StatsRow{StudentID: uuid.New(), Status: models.StatusDraft, University: string(rune('A' + i))})
	}
	stats := BuildStats(rows)
	assert.Len(t, stats.TopUniversities, topUniversityCount)
	assert.Equal(t, "A", stats.TopUniversities[0].Name)
}

func TestStatsService_UsesCache(t *testing.T) {
	f := newFixture()
	f.applications.statsRows = []repositories.StatsRow{
		{StudentID: uuid.New(), Status: models.StatusValidatedFinal, University: "KTH"},
	}
	c := newMemoryCache()
	svc := NewStatsService(f.applications, c, time.Minute, testLogger)
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	second, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.applications.statsCalls)

	svc.Invalidate(ctx)
	_, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.applications.statsCalls)
}

func TestStatsService_WithoutCache(t *testing.T) {
	f := newFixture()
	svc := NewStatsService(f.applications, nil, 0, testLogger)

	_, err := svc.Get(context.Background())
	require.NoError(t, err)
	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.applications.statsCalls)
}

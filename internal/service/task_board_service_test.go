package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
)

type stubEvidenceService struct {
	EvidenceService
	groups []dto.ComponentTasks
	calls  int
}

func (s *stubEvidenceService) GroupedByComponent(ctx context.Context, query EvidenceQuery) ([]dto.ComponentTasks, error) {
	s.calls++
	return s.groups, nil
}

func taskBoardFixture(t *testing.T) (*stubEvidenceService, TaskBoardService, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	stub := &stubEvidenceService{groups: []dto.ComponentTasks{
		{ID: 1, Componente: "Gestión", Evidencias: []models.Evidence{{ID: 3}}},
	}}

	return stub, NewTaskBoardService(stub, redisClient, time.Minute, testLogger()), mini
}

func TestTaskBoardCachesUnfilteredView(t *testing.T) {
	stub, svc, _ := taskBoardFixture(t)

	ctx := context.Background()
	first, err := svc.Grouped(ctx, EvidenceQuery{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, stub.calls)

	second, err := svc.Grouped(ctx, EvidenceQuery{})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, stub.calls, "second read should come from the cache")
}

func TestTaskBoardSkipsCacheForFilteredQueries(t *testing.T) {
	stub, svc, _ := taskBoardFixture(t)

	month := 6
	ctx := context.Background()

	_, err := svc.Grouped(ctx, EvidenceQuery{Month: &month})
	require.NoError(t, err)
	_, err = svc.Grouped(ctx, EvidenceQuery{Month: &month})
	require.NoError(t, err)
	require.Equal(t, 2, stub.calls)
}

func TestTaskBoardInvalidateDropsCache(t *testing.T) {
	stub, svc, _ := taskBoardFixture(t)

	ctx := context.Background()
	_, err := svc.Grouped(ctx, EvidenceQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, stub.calls)

	svc.Invalidate(ctx)

	_, err = svc.Grouped(ctx, EvidenceQuery{})
	require.NoError(t, err)
	require.Equal(t, 2, stub.calls, "invalidation should force a rebuild")
}

func TestTaskBoardSurvivesRedisOutage(t *testing.T) {
	stub, svc, mini := taskBoardFixture(t)
	mini.Close()

	groups, err := svc.Grouped(context.Background(), EvidenceQuery{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, 1, stub.calls)
}

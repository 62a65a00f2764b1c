package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/seguimiento-cmr/seguimiento-api/internal/dto"
)

const taskBoardCacheKey = "tasks:grouped:all"

// TaskBoardService serves the components-with-evidence view, caching the
// unfiltered board in Redis.
type TaskBoardService interface {
	Grouped(ctx context.Context, query EvidenceQuery) ([]dto.ComponentTasks, error)
	Invalidate(ctx context.Context)
}

type taskBoardService struct {
	evidences EvidenceService
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewTaskBoardService builds the cached task board view.
func NewTaskBoardService(evidences EvidenceService, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) TaskBoardService {
	return &taskBoardService{
		evidences: evidences,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "task_board_service").Logger(),
	}
}

func (s *taskBoardService) Grouped(ctx context.Context, query EvidenceQuery) ([]dto.ComponentTasks, error) {
	cacheable := s.cache != nil && isUnfiltered(query)

	if cacheable {
		if cached, err := s.cache.Get(ctx, taskBoardCacheKey).Result(); err == nil {
			var groups []dto.ComponentTasks
			if unmarshalErr := json.Unmarshal([]byte(cached), &groups); unmarshalErr == nil {
				s.logger.Debug().Msg("task board cache hit")
				return groups, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read task board cache")
		}
	}

	groups, err := s.evidences.GroupedByComponent(ctx, query)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if payload, err := json.Marshal(groups); err == nil {
			if err := s.cache.Set(ctx, taskBoardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store task board cache")
			}
		}
	}

	return groups, nil
}

// Invalidate drops the cached board after an evidence mutation.
func (s *taskBoardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, taskBoardCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate task board cache")
	}
}

func isUnfiltered(query EvidenceQuery) bool {
	return query.ActivityID == nil &&
		query.ComponentID == nil &&
		query.Month == nil &&
		query.Year == nil &&
		query.Quarter == nil &&
		query.Status == "" &&
		query.ResponsibleID == nil &&
		len(query.ResponsibleIDs) == 0
}

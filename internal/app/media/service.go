package media

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/client"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/querykey"
	"github.com/sentinela-app/sentinela-go/pkg/cache"
)

// Service mapeia as operações de mídia para chamadas à API
type Service struct {
	client *client.Client
	cache  cache.Cache
	logger *zap.Logger
	ttl    time.Duration
}

// NewService cria o serviço de mídias
func NewService(c *client.Client, cache cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{client: c, cache: cache, logger: logger, ttl: ttl}
}

// ListByPerson retorna todas as mídias de uma pessoa
func (s *Service) ListByPerson(ctx context.Context, personID int64) ([]model.Media, error) {
	var medias []model.Media

	cacheKey := querykey.MediaByPerson(personID)
	found, err := s.cache.Get(ctx, cacheKey, &medias)
	if err != nil {
		s.logger.Warn("erro ao buscar mídias no cache", zap.Int64("personId", personID), zap.Error(err))
	}
	if found {
		return medias, nil
	}

	if err := s.client.Get(ctx, fmt.Sprintf("/media/person/%d", personID), nil, &medias); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, medias, s.ttl); err != nil {
		s.logger.Warn("erro ao armazenar mídias no cache", zap.Error(err))
	}

	return medias, nil
}

// Create cria uma linha de mídia e invalida o conjunto da pessoa
func (s *Service) Create(ctx context.Context, input model.CreateMediaInput) (*model.Media, error) {
	var created model.Media
	if err := s.client.Post(ctx, "/media", input, &created); err != nil {
		return nil, err
	}

	s.invalidate(ctx, input.PersonID)
	return &created, nil
}

// Delete remove uma linha de mídia e invalida o conjunto da pessoa
func (s *Service) Delete(ctx context.Context, id, personID int64) error {
	if err := s.client.Delete(ctx, fmt.Sprintf("/media/%d", id)); err != nil {
		return err
	}

	s.invalidate(ctx, personID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, personID int64) {
	if err := s.cache.Delete(ctx, querykey.MediaByPerson(personID)); err != nil {
		s.logger.Warn("erro ao invalidar mídias da pessoa",
			zap.Int64("personId", personID), zap.Error(err))
	}
}

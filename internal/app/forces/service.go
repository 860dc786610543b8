package forces

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/client"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/querykey"
	"github.com/sentinela-app/sentinela-go/pkg/cache"
)

// Service lê a tabela de forças, somente leitura neste cliente
type Service struct {
	client *client.Client
	cache  cache.Cache
	logger *zap.Logger
	ttl    time.Duration
}

// NewService cria o serviço de forças
func NewService(c *client.Client, cache cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{client: c, cache: cache, logger: logger, ttl: ttl}
}

// List retorna todas as forças
func (s *Service) List(ctx context.Context) ([]model.Force, error) {
	var forces []model.Force

	cacheKey := querykey.Forces()
	found, err := s.cache.Get(ctx, cacheKey, &forces)
	if err != nil {
		s.logger.Warn("erro ao buscar forças no cache", zap.Error(err))
	}
	if found {
		return forces, nil
	}

	if err := s.client.Get(ctx, "/forces", nil, &forces); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, forces, s.ttl); err != nil {
		s.logger.Warn("erro ao armazenar forças no cache", zap.Error(err))
	}

	return forces, nil
}

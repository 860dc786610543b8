package users

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/client"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/querykey"
	"github.com/sentinela-app/sentinela-go/internal/validation"
	"github.com/sentinela-app/sentinela-go/pkg/cache"
)

// Service mapeia a administração de contas para chamadas à API. As regras
// de entrada são validadas aqui, antes de qualquer chamada de rede.
type Service struct {
	client    *client.Client
	cache     cache.Cache
	validator *validation.Validator
	logger    *zap.Logger
	ttl       time.Duration
}

// NewService cria o serviço de usuários
func NewService(c *client.Client, cache cache.Cache, v *validation.Validator, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{client: c, cache: cache, validator: v, logger: logger, ttl: ttl}
}

// List retorna uma página de usuários. A leitura é silenciosa: a listagem
// administrativa trata erros na própria tela em vez da notificação padrão.
func (s *Service) List(ctx context.Context, filters model.UserFilters) (*model.Page[model.User], error) {
	var page model.Page[model.User]

	cacheKey := querykey.UserList(filters)
	found, err := s.cache.Get(ctx, cacheKey, &page)
	if err != nil {
		s.logger.Warn("erro ao buscar usuários no cache", zap.Error(err))
	}
	if found {
		return &page, nil
	}

	if err := s.client.Get(ctx, "/users", filtersToQuery(filters), &page, client.Silent()); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, page, s.ttl); err != nil {
		s.logger.Warn("erro ao armazenar usuários no cache", zap.Error(err))
	}

	return &page, nil
}

// GetByID retorna o detalhe de um usuário
func (s *Service) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User

	cacheKey := querykey.UserDetail(id)
	found, err := s.cache.Get(ctx, cacheKey, &user)
	if err != nil {
		s.logger.Warn("erro ao buscar usuário no cache", zap.Int64("id", id), zap.Error(err))
	}
	if found {
		return &user, nil
	}

	if err := s.client.Get(ctx, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, user, s.ttl); err != nil {
		s.logger.Warn("erro ao armazenar usuário no cache", zap.Error(err))
	}

	return &user, nil
}

// Create valida e cria uma conta de usuário
func (s *Service) Create(ctx context.Context, input model.CreateUserInput) (*model.User, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	var user model.User
	if err := s.client.Post(ctx, "/users", input, &user); err != nil {
		return nil, err
	}

	s.writeThrough(ctx, &user)
	return &user, nil
}

// Update valida e atualiza uma conta. Senha omitida mantém a atual.
func (s *Service) Update(ctx context.Context, id int64, input model.UpdateUserInput) (*model.User, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	var user model.User
	if err := s.client.Patch(ctx, fmt.Sprintf("/users/%d", id), input, &user); err != nil {
		return nil, err
	}

	s.writeThrough(ctx, &user)
	return &user, nil
}

// ToggleStatus ativa ou desativa uma conta
func (s *Service) ToggleStatus(ctx context.Context, id int64, isActive bool) (*model.User, error) {
	return s.Update(ctx, id, model.UpdateUserInput{IsActive: &isActive})
}

// Delete remove uma conta. Mantida pela API, mas fora da interface do
// cliente: a exclusão definitiva fica desabilitada na operação atual.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.client.Delete(ctx, fmt.Sprintf("/users/%d", id)); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, querykey.UserDetail(id)); err != nil {
		s.logger.Warn("erro ao invalidar usuário", zap.Int64("id", id), zap.Error(err))
	}
	if err := s.cache.DeletePrefix(ctx, querykey.UsersLists()); err != nil {
		s.logger.Warn("erro ao invalidar listagens de usuários", zap.Error(err))
	}
	return nil
}

func (s *Service) writeThrough(ctx context.Context, user *model.User) {
	if err := s.cache.Set(ctx, querykey.UserDetail(user.ID), user, s.ttl); err != nil {
		s.logger.Warn("erro no write-through do cache", zap.Int64("id", user.ID), zap.Error(err))
	}
	if err := s.cache.DeletePrefix(ctx, querykey.UsersLists()); err != nil {
		s.logger.Warn("erro ao invalidar listagens de usuários", zap.Error(err))
	}
}

func filtersToQuery(f model.UserFilters) url.Values {
	v := url.Values{}
	if f.ForceID > 0 {
		v.Set("forceId", strconv.FormatInt(f.ForceID, 10))
	}
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	return v
}

package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/client"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/session"
	"github.com/sentinela-app/sentinela-go/internal/validation"
)

// Service autentica o usuário e instala a sessão resultante
type Service struct {
	client    *client.Client
	session   *session.Session
	validator *validation.Validator
	logger    *zap.Logger
}

// NewService cria o serviço de autenticação
func NewService(c *client.Client, sess *session.Session, v *validation.Validator, logger *zap.Logger) *Service {
	return &Service{client: c, session: sess, validator: v, logger: logger}
}

// Login autentica as credenciais e persiste o token e o usuário na sessão
func (s *Service) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	if err := s.validator.Struct(creds); err != nil {
		return nil, err
	}

	var resp model.LoginResponse
	if err := s.client.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}

	if err := s.session.SetCredentials(ctx, resp.AccessToken, resp.User); err != nil {
		return nil, err
	}

	s.logger.Info("sessão autenticada",
		zap.Int64("userId", resp.User.ID),
		zap.String("role", string(resp.User.Role)))
	return &resp.User, nil
}

// Profile retorna o perfil do usuário autenticado
func (s *Service) Profile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := s.client.Get(ctx, "/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout derruba a sessão local. Não há chamada de rede: o token apenas
// deixa de existir neste cliente.
func (s *Service) Logout(ctx context.Context) {
	s.session.Expire(ctx)
}

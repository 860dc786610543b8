// Package session mantém o estado de autenticação do cliente como um objeto
// explícito com ciclo de vida próprio, em vez de estado global ambiente:
// quem precisa do token recebe a *Session injetada.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
)

// Session guarda o token e o usuário autenticado, com backing persistido.
// Expire é global: qualquer resposta 401 derruba a sessão inteira e
// notifica todos os inscritos.
type Session struct {
	mu     sync.RWMutex
	token  string
	user   *model.User
	store  Store
	logger *zap.Logger
	subs   []func()
}

// New cria uma sessão vazia sobre o Store informado
func New(store Store, logger *zap.Logger) *Session {
	return &Session{store: store, logger: logger}
}

// Initialize carrega a sessão persistida. Tokens já expirados são
// descartados em vez de enviados ao servidor.
func (s *Session) Initialize(ctx context.Context) error {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if creds == nil {
		return nil
	}

	if tokenExpired(creds.Token) {
		s.logger.Info("token persistido expirado, descartando sessão")
		return s.store.Clear(ctx)
	}

	s.mu.Lock()
	s.token = creds.Token
	user := creds.User
	s.user = &user
	s.mu.Unlock()

	return nil
}

// SetCredentials instala e persiste uma nova sessão autenticada
func (s *Session) SetCredentials(ctx context.Context, token string, user model.User) error {
	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	return s.store.Save(ctx, Credentials{Token: token, User: user})
}

// Token retorna o token atual, vazio quando não autenticado
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser retorna o usuário autenticado, nil quando não há sessão
func (s *Session) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated indica se há uma sessão ativa
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// OnExpired registra uma função chamada quando a sessão é derrubada
func (s *Session) OnExpired(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Expire derruba a sessão: limpa o estado, o backing persistido e
// notifica os inscritos. Idempotente.
func (s *Session) Expire(ctx context.Context) {
	s.mu.Lock()
	wasActive := s.token != ""
	s.token = ""
	s.user = nil
	subs := s.subs
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("erro ao limpar sessão persistida", zap.Error(err))
	}

	if !wasActive {
		return
	}

	for _, fn := range subs {
		fn()
	}
}

// tokenExpired inspeciona a claim exp localmente. A assinatura não é
// verificada aqui: isso é responsabilidade do servidor.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
)

// Credentials é o estado de sessão persistido entre execuções
type Credentials struct {
	Token string
	User  model.User
}

// Store persiste o estado de sessão localmente
type Store interface {
	Load(ctx context.Context) (*Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}

// sessionRecord é a linha única da tabela de sessão
type sessionRecord struct {
	ID        int64  `gorm:"primaryKey"`
	Token     string `gorm:"not null"`
	UserJSON  string `gorm:"not null"`
	UpdatedAt time.Time
}

func (sessionRecord) TableName() string {
	return "session"
}

// SQLiteStore persiste a sessão em um banco SQLite embutido,
// o equivalente local do armazenamento do navegador
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLiteStore abre (ou cria) o arquivo de sessão e aplica a migração
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	path = os.ExpandEnv(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("erro ao criar diretório da sessão: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir armazenamento de sessão: %w", err)
	}

	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("erro ao migrar armazenamento de sessão: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Load carrega as credenciais persistidas; retorna nil quando não há sessão
func (s *SQLiteStore) Load(ctx context.Context) (*Credentials, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).First(&rec, 1).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal([]byte(rec.UserJSON), &user); err != nil {
		s.logger.Warn("sessão persistida corrompida, descartando", zap.Error(err))
		return nil, s.Clear(ctx)
	}

	return &Credentials{Token: rec.Token, User: user}, nil
}

// Save grava as credenciais, substituindo qualquer sessão anterior
func (s *SQLiteStore) Save(ctx context.Context, creds Credentials) error {
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return err
	}

	rec := sessionRecord{ID: 1, Token: creds.Token, UserJSON: string(userJSON), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Save(&rec).Error
}

// Clear remove a sessão persistida
func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, 1).Error
}

// MemoryStore guarda a sessão apenas em memória, usado em testes
type MemoryStore struct {
	mu    sync.Mutex
	creds *Credentials
}

// NewMemoryStore cria um MemoryStore vazio
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return nil, nil
	}
	c := *s.creds
	return &c, nil
}

func (s *MemoryStore) Save(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	return nil
}

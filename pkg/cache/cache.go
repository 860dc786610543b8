package cache

import (
	"context"
	"time"
)

// Cache define a interface para operações de cache de leitura.
// As chaves seguem a hierarquia de internal/querykey; DeletePrefix é o
// mecanismo de invalidação das chaves de listagem após uma mutação.
type Cache interface {
	// Set armazena um valor no cache com tempo de expiração
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get recupera um valor do cache
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Delete remove um valor do cache
	Delete(ctx context.Context, key string) error

	// DeletePrefix remove todos os valores cujas chaves começam com o prefixo
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear remove todos os valores do cache
	Clear(ctx context.Context) error

	// Ping verifica se o cache está acessível
	Ping(ctx context.Context) error
}

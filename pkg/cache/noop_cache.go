package cache

import (
	"context"
	"time"
)

// NoOpCache é uma implementação de Cache que não armazena nada,
// usada quando o cache está desabilitado na configuração
type NoOpCache struct{}

// NewNoOpCache cria uma nova instância de NoOpCache
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Set não faz nada
func (c *NoOpCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

// Get sempre retorna cache miss
func (c *NoOpCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

// Delete não faz nada
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// DeletePrefix não faz nada
func (c *NoOpCache) DeletePrefix(ctx context.Context, prefix string) error {
	return nil
}

// Clear não faz nada
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Ping sempre responde com sucesso
func (c *NoOpCache) Ping(ctx context.Context) error {
	return nil
}

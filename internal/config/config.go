package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config representa a configuração completa do cliente
type Config struct {
	API            APIConfig
	Cache          CacheConfig
	Session        SessionConfig
	Upload         UploadConfig
	DuplicateCheck DuplicateCheckConfig
	Logging        LoggingConfig
	Metrics        MetricsConfig
	Tracing        TracingConfig
	Resilience     ResilienceConfig
}

// APIConfig contém configurações da API Sentinela
type APIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	UploadTimeout time.Duration
	RetryReads    bool
}

// RedisOptions contém configurações específicas para Redis
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// CacheConfig contém configurações do cache de leituras
type CacheConfig struct {
	Enabled      bool
	Type         string // redis, memory
	TTL          time.Duration
	CPFLookupTTL time.Duration
	Redis        RedisOptions
}

// SessionConfig contém configurações da sessão persistida
type SessionConfig struct {
	StorePath string
}

// UploadConfig contém configurações do preparo de imagens antes do envio
type UploadConfig struct {
	MaxDimension int // maior lado em pixels; 0 desabilita o redimensionamento
	JPEGQuality  int
}

// DuplicateCheckConfig contém configurações da verificação de duplicidade
type DuplicateCheckConfig struct {
	Debounce time.Duration
}

// LoggingConfig contém configurações de logging
type LoggingConfig struct {
	Level      string
	Format     string // json, console
	Production bool
}

// MetricsConfig contém configurações de métricas
type MetricsConfig struct {
	Enabled bool
}

// TracingConfig contém configurações de rastreamento
type TracingConfig struct {
	Enabled       bool
	Endpoint      string
	ServiceName   string
	SamplingRatio float64
}

// ResilienceConfig contém configurações do circuit breaker do cliente
type ResilienceConfig struct {
	CircuitBreaker  bool
	MaxRequestsFail int
	Interval        time.Duration
	Timeout         time.Duration
}

// LoadConfig carrega a configuração de diversas fontes (arquivo, env, defaults)
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Definir valores padrão
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Locais para procurar arquivos de configuração
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.sentinela")

	// Ler arquivo de configuração
	if err := v.ReadInConfig(); err != nil {
		// Ignorar se o arquivo não for encontrado
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("erro ao ler arquivo de configuração: %w", err)
		}
	}

	// Ler variáveis de ambiente com prefixo SENTINELA_
	v.SetEnvPrefix("SENTINELA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("erro ao mapear configuração: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults define valores padrão para a configuração
func setDefaults(v *viper.Viper) {
	// API
	v.SetDefault("api.baseURL", "http://localhost:3000")
	v.SetDefault("api.timeout", "10s")
	// Uploads toleram uplinks móveis lentos
	v.SetDefault("api.uploadTimeout", "60s")
	v.SetDefault("api.retryReads", true)

	// Cache
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.cpfLookupTTL", "30s")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)

	// Sessão
	v.SetDefault("session.storePath", "$HOME/.sentinela/session.db")

	// Upload
	v.SetDefault("upload.maxDimension", 1920)
	v.SetDefault("upload.jpegQuality", 85)

	// Verificação de duplicidade
	v.SetDefault("duplicateCheck.debounce", "500ms")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.production", true)

	// Métricas
	v.SetDefault("metrics.enabled", true)

	// Rastreamento
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.serviceName", "sentinela-client")
	v.SetDefault("tracing.samplingRatio", 0.1)

	// Resiliência
	v.SetDefault("resilience.circuitBreaker", false)
	v.SetDefault("resilience.maxRequestsFail", 5)
	v.SetDefault("resilience.interval", "1m")
	v.SetDefault("resilience.timeout", "30s")
}

// validateConfig valida a configuração carregada
func validateConfig(config *Config) error {
	if config.API.BaseURL == "" {
		return fmt.Errorf("api.baseURL é obrigatório")
	}

	if config.Cache.Enabled && config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache.type deve ser 'memory' ou 'redis', recebido: %s", config.Cache.Type)
	}

	if config.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout deve ser positivo")
	}

	if config.API.UploadTimeout < config.API.Timeout {
		return fmt.Errorf("api.uploadTimeout não pode ser menor que api.timeout")
	}

	return nil
}

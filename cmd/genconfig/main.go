package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sentinela-app/sentinela-go/internal/config"
)

func main() {
	var (
		outputPath string
		force      bool
	)

	flag.StringVar(&outputPath, "output", "config.yaml", "Caminho para o arquivo de configuração de saída")
	flag.BoolVar(&force, "force", false, "Sobrescrever arquivo se existir")
	flag.Parse()

	// Verificar se o arquivo já existe
	if _, err := os.Stat(outputPath); err == nil && !force {
		fmt.Printf("Erro: arquivo %s já existe. Use --force para sobrescrever.\n", outputPath)
		os.Exit(1)
	}

	// Criar configuração com valores padrão
	cfg := &config.Config{
		API: config.APIConfig{
			BaseURL:       "http://localhost:3000",
			Timeout:       10 * time.Second,
			UploadTimeout: 60 * time.Second,
			RetryReads:    true,
		},
		Cache: config.CacheConfig{
			Enabled:      true,
			Type:         "memory",
			TTL:          5 * time.Minute,
			CPFLookupTTL: 30 * time.Second,
			Redis: config.RedisOptions{
				Address:  "localhost:6379",
				Password: "",
				DB:       0,
			},
		},
		Session: config.SessionConfig{
			StorePath: "$HOME/.sentinela/session.db",
		},
		Upload: config.UploadConfig{
			MaxDimension: 1920,
			JPEGQuality:  85,
		},
		DuplicateCheck: config.DuplicateCheckConfig{
			Debounce: 500 * time.Millisecond,
		},
		Logging: config.LoggingConfig{
			Level:      "info",
			Format:     "json",
			Production: true,
		},
		Metrics: config.MetricsConfig{
			Enabled: true,
		},
		Tracing: config.TracingConfig{
			Enabled:       false,
			Endpoint:      "localhost:4317",
			ServiceName:   "sentinela-client",
			SamplingRatio: 0.1,
		},
		Resilience: config.ResilienceConfig{
			CircuitBreaker:  false,
			MaxRequestsFail: 5,
			Interval:        time.Minute,
			Timeout:         30 * time.Second,
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Erro ao serializar configuração: %v\n", err)
		os.Exit(1)
	}

	header := []byte("# Configuração do cliente Sentinela gerada por genconfig\n# Valores podem ser sobrescritos por variáveis SENTINELA_*\n\n")
	if err := os.WriteFile(outputPath, append(header, data...), 0o644); err != nil {
		fmt.Printf("Erro ao gravar arquivo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuração padrão gravada em %s\n", outputPath)
}

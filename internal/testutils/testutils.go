package testutils

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/sentinela-app/sentinela-go/internal/client"
	"github.com/sentinela-app/sentinela-go/internal/config"
	"github.com/sentinela-app/sentinela-go/internal/infra/metrics"
	"github.com/sentinela-app/sentinela-go/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// TestLogger cria um logger zap para testes
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestMetrics cria métricas isoladas em um registro próprio
func TestMetrics(t *testing.T) *metrics.ClientMetrics {
	return metrics.NewClientMetrics(prometheus.NewRegistry())
}

// ContextWithTimeout cria um contexto com timeout para testes
func ContextWithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// CheckError verifica se um erro contém uma mensagem específica
func CheckError(t *testing.T, err error, message string) {
	require.Error(t, err, "Expected an error but got nil")
	require.Contains(t, err.Error(), message, "Error message does not contain expected text")
}

// NewTestSession cria uma sessão autenticada em memória
func NewTestSession(t *testing.T, token string) *session.Session {
	sess := session.New(session.NewMemoryStore(), TestLogger(t))
	if token != "" {
		require.NoError(t, sess.SetCredentials(context.Background(), token, TestUser()))
	}
	return sess
}

// SpyNotifier registra as notificações recebidas para inspeção nos testes
type SpyNotifier struct {
	Errors    []string
	Successes []string
}

func (n *SpyNotifier) Error(msg string)   { n.Errors = append(n.Errors, msg) }
func (n *SpyNotifier) Success(msg string) { n.Successes = append(n.Successes, msg) }

// NewTestClient cria um cliente apontando para a URL informada, com sessão
// em memória e notificador espião
func NewTestClient(t *testing.T, baseURL, token string) (*client.Client, *session.Session, *SpyNotifier) {
	sess := NewTestSession(t, token)
	notifier := &SpyNotifier{}

	cfg := config.APIConfig{
		BaseURL:       baseURL,
		Timeout:       5 * time.Second,
		UploadTimeout: 10 * time.Second,
		RetryReads:    true,
	}
	c := client.New(cfg, sess, TestLogger(t), TestMetrics(t), notifier, nil)
	return c, sess, notifier
}

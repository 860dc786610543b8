// Package client é o ponto único de saída de chamadas à API Sentinela:
// anexa o token da sessão, normaliza erros, derruba a sessão em falhas de
// autenticação e distingue falhas de conectividade de erros do servidor.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/config"
	"github.com/sentinela-app/sentinela-go/internal/infra/metrics"
	"github.com/sentinela-app/sentinela-go/internal/session"
	"github.com/sentinela-app/sentinela-go/pkg/apierrors"
	"github.com/sentinela-app/sentinela-go/pkg/logging"
	"github.com/sentinela-app/sentinela-go/pkg/resilience"
)

const maxErrorBody = 1 << 20 // limite de leitura de corpos de erro

// Notifier apresenta mensagens ao usuário final; o equivalente dos toasts
// do cliente original. Chamadas silenciosas suprimem o Error padrão.
type Notifier interface {
	Error(msg string)
	Success(msg string)
}

// NopNotifier descarta todas as notificações
type NopNotifier struct{}

func (NopNotifier) Error(msg string)   {}
func (NopNotifier) Success(msg string) {}

// Option configura uma chamada individual
type Option func(*callOptions)

type callOptions struct {
	silent  bool
	timeout time.Duration
}

// Silent suprime a notificação de erro padrão desta chamada; a falha ainda
// é propagada ao chamador e o logout global em 401 ainda acontece
func Silent() Option {
	return func(o *callOptions) { o.silent = true }
}

// WithTimeout substitui o timeout padrão desta chamada
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) { o.timeout = d }
}

// Client realiza as chamadas HTTP à API Sentinela
type Client struct {
	http          *http.Client
	baseURL       string
	session       *session.Session
	logger        *logging.ContextLogger
	metrics       *metrics.ClientMetrics
	tracer        trace.Tracer
	breaker       *resilience.CircuitBreaker
	notifier      Notifier
	timeout       time.Duration
	uploadTimeout time.Duration
	retryReads    bool
}

// New cria o cliente da API. O breaker é opcional; nil desabilita o
// circuit breaker.
func New(cfg config.APIConfig, sess *session.Session, logger *zap.Logger, m *metrics.ClientMetrics, notifier Notifier, breaker *resilience.CircuitBreaker) *Client {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Client{
		http:          &http.Client{},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		session:       sess,
		logger:        logging.NewContextLogger(logger),
		metrics:       m,
		tracer:        otel.GetTracerProvider().Tracer("sentinela.client"),
		breaker:       breaker,
		notifier:      notifier,
		timeout:       cfg.Timeout,
		uploadTimeout: cfg.UploadTimeout,
		retryReads:    cfg.RetryReads,
	}
}

// Get executa uma leitura. Leituras são retentadas uma vez em falhas de
// conectividade ou erros 5xx; erros 4xx não são retentados.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}, opts ...Option) error {
	err := c.doJSON(ctx, http.MethodGet, path, query, nil, out, opts...)
	if err != nil && c.retryReads && retryable(err) {
		c.logger.WarnCtx(ctx, "leitura falhou, retentando",
			zap.String("path", path), zap.Error(err))
		err = c.doJSON(ctx, http.MethodGet, path, query, nil, out, opts...)
	}
	return err
}

// Post executa uma criação; mutações nunca são retentadas
func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts ...Option) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out, opts...)
}

// Patch executa uma atualização parcial
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}, opts ...Option) error {
	return c.doJSON(ctx, http.MethodPatch, path, nil, body, out, opts...)
}

// Delete remove um recurso
func (c *Client) Delete(ctx context.Context, path string, opts ...Option) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil, opts...)
}

// MultipartPayload descreve um envio multipart: um arquivo mais campos extras
type MultipartPayload struct {
	FileField string
	FileName  string
	File      io.Reader
	Fields    map[string]string
}

// PostMultipart envia um binário. Usa o timeout estendido de upload por
// padrão, para tolerar uplinks móveis lentos.
func (c *Client) PostMultipart(ctx context.Context, path string, payload *MultipartPayload, out interface{}, opts ...Option) error {
	body, contentType, err := encodeMultipart(payload)
	if err != nil {
		return err
	}

	options := callOptions{timeout: c.uploadTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	return c.do(ctx, http.MethodPost, path, nil, body, contentType, out, options)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}, opts ...Option) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("erro ao serializar corpo da requisição: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	options := callOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&options)
	}

	return c.do(ctx, method, path, query, reader, "application/json", out, options)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}, options callOptions) error {
	endpoint := endpointLabel(path)

	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer span.End()

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("erro ao montar requisição: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.metrics != nil {
		c.metrics.RequestStarted(endpoint, method)
	}
	start := time.Now()

	resp, err := c.execute(ctx, req)
	if err != nil {
		apiErr := c.transportError(ctx, err)
		span.SetStatus(codes.Error, "transport failure")
		span.SetAttributes(attribute.String("error.message", apiErr.Error()))
		if c.metrics != nil {
			c.metrics.RequestFailed(endpoint, method, "connectivity")
		}
		if !options.silent {
			c.notifier.Error(apiErr.Message)
		}
		return apiErr
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RequestCompleted(endpoint, method, strconv.Itoa(resp.StatusCode), time.Since(start))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		return c.handleAuthFailure(ctx, resp, span, options)
	}

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := apierrors.FromResponse(resp.StatusCode, data)

		span.SetStatus(codes.Error, "server error")
		c.logger.ErrorCtx(ctx, "erro retornado pela API",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("errorCode", apiErr.ErrorCode))

		if !options.silent {
			c.notifier.Error(apierrors.FormatMessage(apiErr))
		}
		return apiErr
	}

	span.SetStatus(codes.Ok, "")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("erro ao decodificar resposta: %w", err)
	}
	return nil
}

// handleAuthFailure derruba a sessão inteira, não importa qual chamada
// recebeu o 401. O flag silent suprime apenas a notificação.
func (c *Client) handleAuthFailure(ctx context.Context, resp *http.Response, span trace.Span, options callOptions) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := apierrors.FromResponse(resp.StatusCode, data)

	span.SetStatus(codes.Error, "authentication failure")
	c.logger.WarnCtx(ctx, "falha de autenticação, encerrando sessão")

	// A sessão é derrubada mesmo se o contexto da chamada já expirou
	c.session.Expire(context.WithoutCancel(ctx))

	if !options.silent {
		c.notifier.Error(apierrors.SessionExpiredMsg)
	}
	return apiErr
}

func (c *Client) execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(req)
	}

	result, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		// Erros 5xx contam como falha para o circuit breaker
		if resp.StatusCode >= 500 {
			return resp, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp, nil
	})

	if resp, ok := result.(*http.Response); ok {
		return resp, nil
	}
	return nil, err
}

// transportError classifica uma falha sem resposta do servidor
func (c *Client) transportError(ctx context.Context, err error) *apierrors.APIError {
	c.logger.ErrorCtx(ctx, "falha de conectividade com a API", zap.Error(err))

	if errors.Is(err, context.DeadlineExceeded) {
		return apierrors.Timeout(err)
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return apierrors.Unreachable(err)
	}
	return apierrors.Unreachable(err)
}

// retryable indica se uma leitura deve ser retentada: conectividade ou 5xx
func retryable(err error) bool {
	if apierrors.IsConnectivity(err) {
		return true
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// endpointLabel reduz o caminho ao primeiro segmento para limitar a
// cardinalidade das métricas
func endpointLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		return trimmed[:i]
	}
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

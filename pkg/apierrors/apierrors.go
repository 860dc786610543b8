package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Mensagens genéricas exibidas quando o erro não é user-facing
const (
	GenericMessage     = "Ocorreu um erro inesperado. Tente novamente mais tarde"
	UnreachableMessage = "Não foi possível contatar o servidor. Verifique sua conexão"
	SessionExpiredMsg  = "Sessão expirada. Faça login novamente"
	SaveFailedMessage  = "Erro ao salvar cadastro. Tente novamente"
)

// Tipos de erro comuns
var (
	ErrNotFound     = errors.New("recurso não encontrado")
	ErrUnauthorized = errors.New("não autorizado")
	ErrForbidden    = errors.New("acesso negado")
	ErrUnreachable  = errors.New("servidor inacessível")
	ErrTimeout      = errors.New("tempo de espera excedido")
)

// envelope é o DTO de erro estruturado retornado pela API Sentinela
type envelope struct {
	StatusCode   int             `json:"statusCode"`
	ErrorCode    string          `json:"errorCode"`
	Message      json.RawMessage `json:"message"`
	IsUserFacing bool            `json:"isUserFacing"`
	Details      map[string]any  `json:"details,omitempty"`
}

// APIError representa um erro normalizado de uma chamada à API, com o código
// de máquina e a flag que indica se a mensagem pode ser exibida ao usuário final
type APIError struct {
	StatusCode   int
	ErrorCode    string
	Message      string
	IsUserFacing bool
	Details      map[string]any
	OriginalErr  error
}

// Error implementa a interface error
func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.ErrorCode)
	}
	return e.Message
}

// Unwrap permite usar errors.Is e errors.As
func (e *APIError) Unwrap() error {
	return e.OriginalErr
}

// IsClientError indica se o erro pertence à classe 4xx
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// New cria um novo APIError
func New(status int, code, message string, err error) *APIError {
	return &APIError{
		StatusCode:  status,
		ErrorCode:   code,
		Message:     message,
		OriginalErr: err,
	}
}

// FromResponse normaliza o corpo de uma resposta de erro da API. Corpos que
// carregam o envelope estruturado viram um APIError tipado; qualquer outra
// coisa cai no erro técnico genérico da classe de status correspondente.
func FromResponse(status int, body []byte) *APIError {
	var dto envelope
	if err := json.Unmarshal(body, &dto); err == nil && dto.ErrorCode != "" {
		return &APIError{
			StatusCode:   dto.StatusCode,
			ErrorCode:    dto.ErrorCode,
			Message:      decodeMessage(dto.Message),
			IsUserFacing: dto.IsUserFacing,
			Details:      dto.Details,
			OriginalErr:  sentinelFor(status),
		}
	}

	return &APIError{
		StatusCode:  status,
		Message:     http.StatusText(status),
		OriginalErr: sentinelFor(status),
	}
}

// Unreachable cria o erro de conectividade (nenhuma resposta recebida)
func Unreachable(err error) *APIError {
	return &APIError{
		Message:      UnreachableMessage,
		IsUserFacing: true,
		OriginalErr:  fmt.Errorf("%w: %v", ErrUnreachable, err),
	}
}

// Timeout cria o erro de tempo de espera excedido
func Timeout(err error) *APIError {
	return &APIError{
		Message:      UnreachableMessage,
		IsUserFacing: true,
		OriginalErr:  fmt.Errorf("%w: %v", ErrTimeout, err),
	}
}

// decodeMessage aceita mensagem única ou lista (caso de erros de validação)
func decodeMessage(raw json.RawMessage) string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, ", ")
	}
	return GenericMessage
}

func sentinelFor(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrTimeout
	default:
		return nil
	}
}

// FormatMessage devolve a mensagem segura para exibição: verbatim quando o
// servidor marcou o erro como user-facing, genérica caso contrário
func FormatMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsUserFacing {
			return apiErr.Message
		}
		return GenericMessage
	}
	return GenericMessage
}

// IsStatus verifica se o erro carrega o código de status informado
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsConnectivity indica se o erro foi de conectividade (sem resposta do servidor)
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrTimeout)
}

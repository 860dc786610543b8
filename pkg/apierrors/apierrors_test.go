package apierrors_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-app/sentinela-go/pkg/apierrors"
)

func TestFromResponse(t *testing.T) {
	t.Run("envelope estruturado vira erro tipado", func(t *testing.T) {
		body := []byte(`{"statusCode":409,"errorCode":"CPF_DUPLICADO","message":"CPF já cadastrado","isUserFacing":true}`)

		err := apierrors.FromResponse(http.StatusConflict, body)
		assert.Equal(t, 409, err.StatusCode)
		assert.Equal(t, "CPF_DUPLICADO", err.ErrorCode)
		assert.Equal(t, "CPF já cadastrado", err.Message)
		assert.True(t, err.IsUserFacing)
	})

	t.Run("mensagem em lista é concatenada", func(t *testing.T) {
		body := []byte(`{"statusCode":400,"errorCode":"VALIDATION","message":["nome obrigatório","CPF inválido"],"isUserFacing":true}`)

		err := apierrors.FromResponse(http.StatusBadRequest, body)
		assert.Equal(t, "nome obrigatório, CPF inválido", err.Message)
	})

	t.Run("corpo não estruturado cai no genérico da classe", func(t *testing.T) {
		err := apierrors.FromResponse(http.StatusBadGateway, []byte("<html>Bad Gateway</html>"))
		assert.Equal(t, 502, err.StatusCode)
		assert.False(t, err.IsUserFacing)
	})

	t.Run("sentinelas por status", func(t *testing.T) {
		assert.ErrorIs(t, apierrors.FromResponse(404, nil), apierrors.ErrNotFound)
		assert.ErrorIs(t, apierrors.FromResponse(401, nil), apierrors.ErrUnauthorized)
		assert.ErrorIs(t, apierrors.FromResponse(403, nil), apierrors.ErrForbidden)
	})
}

func TestFormatMessage(t *testing.T) {
	t.Run("erro exibível passa verbatim", func(t *testing.T) {
		err := apierrors.FromResponse(409, []byte(`{"statusCode":409,"errorCode":"X","message":"CPF já cadastrado","isUserFacing":true}`))
		assert.Equal(t, "CPF já cadastrado", apierrors.FormatMessage(err))
	})

	t.Run("erro técnico vira a mensagem genérica", func(t *testing.T) {
		err := apierrors.FromResponse(500, []byte(`{"statusCode":500,"errorCode":"DB","message":"pq: deadlock detected","isUserFacing":false}`))
		assert.Equal(t, apierrors.GenericMessage, apierrors.FormatMessage(err))
	})

	t.Run("erro desconhecido vira a mensagem genérica", func(t *testing.T) {
		assert.Equal(t, apierrors.GenericMessage, apierrors.FormatMessage(errors.New("qualquer coisa")))
	})

	t.Run("falha de conectividade tem mensagem própria", func(t *testing.T) {
		err := apierrors.Unreachable(errors.New("dial tcp: connection refused"))
		assert.Equal(t, apierrors.UnreachableMessage, apierrors.FormatMessage(err))
	})
}

func TestIsHelpers(t *testing.T) {
	notFound := apierrors.FromResponse(404, nil)
	assert.True(t, apierrors.IsStatus(notFound, 404))
	assert.False(t, apierrors.IsStatus(notFound, 500))

	unreachable := apierrors.Unreachable(errors.New("refused"))
	assert.True(t, apierrors.IsConnectivity(unreachable))
	assert.True(t, errors.Is(unreachable, apierrors.ErrUnreachable))

	timeout := apierrors.Timeout(errors.New("deadline"))
	assert.True(t, apierrors.IsConnectivity(timeout))
	require.ErrorIs(t, timeout, apierrors.ErrTimeout)

	assert.False(t, apierrors.IsConnectivity(notFound))
}

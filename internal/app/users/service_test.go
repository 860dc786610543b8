package users_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-app/sentinela-go/internal/app/users"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/testutils"
	"github.com/sentinela-app/sentinela-go/internal/validation"
	"github.com/sentinela-app/sentinela-go/pkg/cache"
)

func newService(t *testing.T, api *testutils.FakeAPI) *users.Service {
	c, _, _ := testutils.NewTestClient(t, api.URL(), api.Token)
	logger := testutils.TestLogger(t)
	appCache := cache.NewMemoryCache(time.Minute, time.Minute, nil, logger)
	return users.NewService(c, appCache, validation.New(), time.Minute, logger)
}

func TestService_Create_ValidatesBeforeNetwork(t *testing.T) {
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	api := testutils.NewFakeAPI(t)
	api.Token = "token"

	svc := newService(t, api)

	// Perfil não-administrativo sem força: a chamada nunca sai
	_, err := svc.Create(ctx, model.CreateUserInput{
		Email:    "novo@sentinela.gov.br",
		Password: "123456",
		Role:     model.RoleGestor,
	})
	require.Error(t, err)

	var fields validation.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "forceId")
	assert.Zero(t, api.Calls("POST /users"))

	// Corrigida a força, a criação segue
	user, err := svc.Create(ctx, model.CreateUserInput{
		Email:    "novo@sentinela.gov.br",
		Password: "123456",
		Role:     model.RoleGestor,
		ForceID:  2,
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Equal(t, 1, api.Calls("POST /users"))
}

func TestService_ToggleStatus(t *testing.T) {
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	api := testutils.NewFakeAPI(t)
	api.Token = "token"
	api.AddUser(model.User{ID: 8, Email: "x@sentinela.gov.br", Role: model.RoleUsuario, ForceID: 1, IsActive: true})

	svc := newService(t, api)

	user, err := svc.ToggleStatus(ctx, 8, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	// O detalhe cacheado reflete a mudança sem nova chamada
	got, err := svc.GetByID(ctx, 8)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Zero(t, api.Calls("GET /users/:id"))
}

func TestService_List_InvalidatedByMutation(t *testing.T) {
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	api := testutils.NewFakeAPI(t)
	api.Token = "token"
	api.AddUser(model.User{ID: 1, Email: "a@sentinela.gov.br", Role: model.RoleAdminGeral, IsActive: true})

	svc := newService(t, api)

	filters := model.UserFilters{Page: 1, Limit: 10}

	_, err := svc.List(ctx, filters)
	require.NoError(t, err)
	_, err = svc.List(ctx, filters)
	require.NoError(t, err)
	assert.Equal(t, 1, api.Calls("GET /users"))

	_, err = svc.Create(ctx, model.CreateUserInput{
		Email:    "b@sentinela.gov.br",
		Password: "654321",
		Role:     model.RoleAdminGeral,
	})
	require.NoError(t, err)

	_, err = svc.List(ctx, filters)
	require.NoError(t, err)
	assert.Equal(t, 2, api.Calls("GET /users"))
}

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/session"
	"github.com/sentinela-app/sentinela-go/internal/testutils"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("segredo-de-teste"))
	require.NoError(t, err)
	return signed
}

func TestSession_SetCredentialsPersists(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	sess := session.New(store, testutils.TestLogger(t))

	user := model.User{ID: 3, Email: "agente@sentinela.gov.br", Role: model.RoleGestor}
	require.NoError(t, sess.SetCredentials(ctx, "token-abc", user))

	assert.True(t, sess.Authenticated())
	assert.Equal(t, "token-abc", sess.Token())
	require.NotNil(t, sess.CurrentUser())
	assert.Equal(t, int64(3), sess.CurrentUser().ID)

	// Uma nova sessão sobre o mesmo store restaura as credenciais
	restored := session.New(store, testutils.TestLogger(t))
	require.NoError(t, restored.Initialize(ctx))
	assert.Equal(t, "token-abc", restored.Token())
}

func TestSession_InitializeDiscardsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	expired := signedToken(t, time.Now().Add(-time.Hour))
	require.NoError(t, store.Save(ctx, session.Credentials{Token: expired, User: model.User{ID: 1}}))

	sess := session.New(store, testutils.TestLogger(t))
	require.NoError(t, sess.Initialize(ctx))

	assert.False(t, sess.Authenticated())

	// O backing também foi limpo
	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestSession_InitializeKeepsValidToken(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	valid := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, session.Credentials{Token: valid, User: model.User{ID: 2}}))

	sess := session.New(store, testutils.TestLogger(t))
	require.NoError(t, sess.Initialize(ctx))

	assert.True(t, sess.Authenticated())
	assert.Equal(t, valid, sess.Token())
}

func TestSession_ExpireNotifiesOnceAndClears(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	sess := session.New(store, testutils.TestLogger(t))

	require.NoError(t, sess.SetCredentials(ctx, "token", model.User{ID: 1}))

	var notified int
	sess.OnExpired(func() { notified++ })

	sess.Expire(ctx)
	assert.False(t, sess.Authenticated())
	assert.Nil(t, sess.CurrentUser())
	assert.Equal(t, 1, notified)

	// Expirar de novo é inócuo: nenhuma nova notificação
	sess.Expire(ctx)
	assert.Equal(t, 1, notified)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestSQLiteStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/session.db"

	store, err := session.NewSQLiteStore(path, testutils.TestLogger(t))
	require.NoError(t, err)

	// Vazio antes de qualquer Save
	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)

	saved := session.Credentials{
		Token: "token-persistido",
		User:  model.User{ID: 5, Email: "x@sentinela.gov.br", Role: model.RoleUsuario},
	}
	require.NoError(t, store.Save(ctx, saved))

	// Reabrir o arquivo recupera a mesma sessão
	reopened, err := session.NewSQLiteStore(path, testutils.TestLogger(t))
	require.NoError(t, err)

	creds, err = reopened.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "token-persistido", creds.Token)
	assert.Equal(t, int64(5), creds.User.ID)

	require.NoError(t, reopened.Clear(ctx))
	creds, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

package register_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-app/sentinela-go/internal/app/media"
	"github.com/sentinela-app/sentinela-go/internal/app/people"
	"github.com/sentinela-app/sentinela-go/internal/app/register"
	"github.com/sentinela-app/sentinela-go/internal/app/upload"
	"github.com/sentinela-app/sentinela-go/internal/config"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/testutils"
	"github.com/sentinela-app/sentinela-go/internal/validation"
	"github.com/sentinela-app/sentinela-go/pkg/cache"
)

// fullStack monta o orquestrador sobre os serviços reais apontando para o
// servidor falso
func fullStack(t *testing.T, api *testutils.FakeAPI) *register.Orchestrator {
	c, _, _ := testutils.NewTestClient(t, api.URL(), api.Token)
	logger := testutils.TestLogger(t)
	appCache := cache.NewMemoryCache(time.Minute, time.Minute, nil, logger)

	peopleSvc := people.NewService(c, appCache, time.Minute, 30*time.Second, logger)
	mediaSvc := media.NewService(c, appCache, time.Minute, logger)
	uploadSvc := upload.NewService(c, config.UploadConfig{}, nil, logger)

	return register.New(uploadSvc, peopleSvc, mediaSvc, validation.New(), logger)
}

func TestRegistration_EndToEnd(t *testing.T) {
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	api := testutils.NewFakeAPI(t)
	api.Token = "token-valido"

	orch := fullStack(t, api)

	form := register.Form{
		FullName:       "Beltrano da Silva",
		CPF:            "529.982.247-25",
		AddressPrimary: "Av. Central, 500",
		Latitude:       -8.06,
		Longitude:      -34.88,
		HasWarrant:     true,
		WarrantStatus:  "mandado em aberto",
		FacePhoto:      &register.PendingFile{Name: "face.jpg", Data: []byte("face-bytes")},
		FullBodyPhoto:  &register.PendingFile{Name: "body.jpg", Data: []byte("body-bytes")},
		Tattoos: []register.TattooEntry{
			{Photo: &register.PendingFile{Name: "tattoo.jpg", Data: []byte("tattoo-bytes")}, Location: "ombro esquerdo", Description: "âncora"},
		},
	}

	person, err := orch.Create(ctx, form)
	require.NoError(t, err)
	require.NotNil(t, person)

	// Três binários subiram, um por categoria
	uploaded := api.Uploads()
	require.Len(t, uploaded, 3)
	categories := map[string]int{}
	for _, u := range uploaded {
		categories[u.Category]++
	}
	assert.Equal(t, map[string]int{"FACE": 1, "FULL_BODY": 1, "TATTOO": 1}, categories)

	// A pessoa persistiu com o CPF limpo e o status de mandado
	saved, ok := api.Person(person.ID)
	require.True(t, ok)
	assert.Equal(t, "52998224725", saved.CPF)
	assert.Equal(t, "mandado em aberto", saved.WarrantStatus)

	// Uma linha de mídia por binário, amarrada à pessoa
	medias := api.MediaOfPerson(person.ID)
	require.Len(t, medias, 3)
	types := map[model.MediaType]int{}
	for _, m := range medias {
		types[m.Type]++
		assert.Equal(t, person.ID, m.PersonID)
		assert.NotEmpty(t, m.URL)
	}
	assert.Equal(t, map[model.MediaType]int{model.MediaFace: 1, model.MediaFullBody: 1, model.MediaTattoo: 1}, types)
}

func TestRegistration_EndToEnd_UploadFailureCreatesNothing(t *testing.T) {
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	api := testutils.NewFakeAPI(t)
	api.Token = "token-valido"
	api.FailUpload["FULL_BODY"] = true

	orch := fullStack(t, api)

	form := register.Form{
		FullName:       "Sicrano Souza",
		AddressPrimary: "Rua B, 22",
		FacePhoto:      &register.PendingFile{Name: "face.jpg", Data: []byte("f")},
		FullBodyPhoto:  &register.PendingFile{Name: "body.jpg", Data: []byte("b")},
	}

	person, err := orch.Create(ctx, form)
	require.Error(t, err)
	assert.Nil(t, person)

	var saveErr *register.SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, register.StageUpload, saveErr.Stage)

	// O servidor não pode ter recebido pessoa nem mídia
	assert.Zero(t, api.Calls("POST /people"))
	assert.Zero(t, api.Calls("POST /media"))
}

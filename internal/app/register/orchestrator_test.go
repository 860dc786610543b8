package register_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-app/sentinela-go/internal/app/register"
	"github.com/sentinela-app/sentinela-go/internal/app/upload"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/mocks"
	"github.com/sentinela-app/sentinela-go/internal/testutils"
	"github.com/sentinela-app/sentinela-go/internal/validation"
)

func newOrchestrator(t *testing.T, uploads *mocks.MockUploader, people *mocks.MockPersonWriter, media *mocks.MockMediaWriter) *register.Orchestrator {
	return register.New(uploads, people, media, validation.New(), testutils.TestLogger(t))
}

func baseForm() register.Form {
	return register.Form{
		FullName:       "Fulano de Tal",
		CPF:            "529.982.247-25",
		AddressPrimary: "Rua A, 10",
		Latitude:       -8.05,
		Longitude:      -34.9,
	}
}

func TestOrchestrator_Create(t *testing.T) {
	t.Run("uploads complete before person is created", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		var uploadsDone int32
		var uploadsAtPersist int32

		uploads.On("Upload", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { atomic.AddInt32(&uploadsDone, 1) }).
			Return("https://storage/face.jpg", nil).Times(3)

		people.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				atomic.StoreInt32(&uploadsAtPersist, atomic.LoadInt32(&uploadsDone))
			}).
			Return(&model.Person{ID: 42}, nil).Once()

		media.On("Create", mock.Anything, mock.Anything).
			Return(&model.Media{ID: 1}, nil).Times(3)

		form := baseForm()
		form.FacePhoto = &register.PendingFile{Name: "face.jpg", Data: []byte("f")}
		form.FullBodyPhoto = &register.PendingFile{Name: "body.jpg", Data: []byte("b")}
		form.Tattoos = []register.TattooEntry{
			{Photo: &register.PendingFile{Name: "tattoo.jpg", Data: []byte("t")}, Location: "braço direito"},
		}

		person, err := newOrchestrator(t, uploads, people, media).Create(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, int64(42), person.ID)

		// Todos os uploads devem ter terminado antes da pessoa ser criada
		assert.Equal(t, int32(3), uploadsAtPersist)

		uploads.AssertExpectations(t)
		people.AssertExpectations(t)
		media.AssertExpectations(t)
	})

	t.Run("upload failure aborts the whole save", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		uploads.On("Upload", mock.Anything, mock.MatchedBy(func(a upload.Artifact) bool {
			return a.Category == model.UploadFace
		})).Return("https://storage/face.jpg", nil).Maybe()
		uploads.On("Upload", mock.Anything, mock.MatchedBy(func(a upload.Artifact) bool {
			return a.Category == model.UploadFullBody
		})).Return("", errors.New("storage indisponível")).Once()

		form := baseForm()
		form.FacePhoto = &register.PendingFile{Name: "face.jpg", Data: []byte("f")}
		form.FullBodyPhoto = &register.PendingFile{Name: "body.jpg", Data: []byte("b")}

		person, err := newOrchestrator(t, uploads, people, media).Create(ctx, form)
		require.Error(t, err)
		assert.Nil(t, person)

		var saveErr *register.SaveError
		require.ErrorAs(t, err, &saveErr)
		assert.Equal(t, register.StageUpload, saveErr.Stage)
		assert.Zero(t, saveErr.PersonID)

		// Nenhuma pessoa nem mídia pode ter sido criada
		people.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		media.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("media failure reports partial save with person id", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		uploads.On("Upload", mock.Anything, mock.Anything).
			Return("https://storage/face.jpg", nil).Once()
		people.On("Create", mock.Anything, mock.Anything).
			Return(&model.Person{ID: 77}, nil).Once()
		media.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("erro interno")).Once()

		form := baseForm()
		form.FacePhoto = &register.PendingFile{Name: "face.jpg", Data: []byte("f")}

		person, err := newOrchestrator(t, uploads, people, media).Create(ctx, form)

		// A pessoa foi salva mesmo com a falha de mídia
		require.NotNil(t, person)
		assert.Equal(t, int64(77), person.ID)

		var saveErr *register.SaveError
		require.ErrorAs(t, err, &saveErr)
		assert.Equal(t, register.StageMedia, saveErr.Stage)
		assert.Equal(t, int64(77), saveErr.PersonID)
	})

	t.Run("warrant status dropped when warrant flag is off", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		people.On("Create", mock.Anything, mock.MatchedBy(func(in model.CreatePersonInput) bool {
			return in.WarrantStatus == ""
		})).Return(&model.Person{ID: 1}, nil).Once()

		form := baseForm()
		form.HasWarrant = false
		form.WarrantStatus = "" // campo vem vazio quando a flag está desligada

		_, err := newOrchestrator(t, uploads, people, media).Create(ctx, form)
		require.NoError(t, err)
		people.AssertExpectations(t)
	})

	t.Run("invalid form never reaches the network", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		form := baseForm()
		form.CPF = "11111111111"

		_, err := newOrchestrator(t, uploads, people, media).Create(ctx, form)
		require.Error(t, err)

		var fieldErrs validation.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "cpf")

		uploads.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		people.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("tattoo without photo or stored url fails validation", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		form := baseForm()
		form.Tattoos = []register.TattooEntry{{Location: "braço direito"}}

		_, err := newOrchestrator(t, uploads, people, media).Create(ctx, form)
		require.Error(t, err)

		var fieldErrs validation.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "photo")

		uploads.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		people.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		media.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestOrchestrator_Update(t *testing.T) {
	existing := register.Existing{
		Person: model.Person{ID: 9, FullName: "Fulano de Tal"},
		Media: []model.Media{
			{ID: 1, Type: model.MediaFace, URL: "https://storage/old-face.jpg", PersonID: 9},
			{ID: 2, Type: model.MediaFullBody, URL: "https://storage/old-body.jpg", PersonID: 9},
			{ID: 3, Type: model.MediaTattoo, URL: "https://storage/old-tattoo-1.jpg", PersonID: 9},
			{ID: 4, Type: model.MediaTattoo, URL: "https://storage/old-tattoo-2.jpg", PersonID: 9},
		},
	}

	t.Run("only replaced photos generate uploads and deletes", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		// Só o corpo foi trocado; o rosto fica intacto
		uploads.On("Upload", mock.Anything, mock.MatchedBy(func(a upload.Artifact) bool {
			return a.Category == model.UploadFullBody
		})).Return("https://storage/new-body.jpg", nil).Once()

		people.On("Update", mock.Anything, int64(9), mock.Anything).
			Return(&model.Person{ID: 9}, nil).Once()

		media.On("Create", mock.Anything, mock.MatchedBy(func(in model.CreateMediaInput) bool {
			return in.Type == model.MediaFullBody && in.URL == "https://storage/new-body.jpg"
		})).Return(&model.Media{ID: 10}, nil).Once()
		media.On("Delete", mock.Anything, int64(2), int64(9)).Return(nil).Once()

		noTattoos := register.Existing{Person: existing.Person, Media: existing.Media[:2]}

		form := baseForm()
		form.FullBodyPhoto = &register.PendingFile{Name: "body.jpg", Data: []byte("b")}

		_, err := newOrchestrator(t, uploads, people, media).Update(ctx, form, noTattoos)
		require.NoError(t, err)

		uploads.AssertExpectations(t)
		media.AssertExpectations(t)
		// O rosto antigo não pode ter sido tocado
		media.AssertNotCalled(t, "Delete", mock.Anything, int64(1), int64(9))
	})

	t.Run("tattoo set is replaced wholesale", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		uploads.On("Upload", mock.Anything, mock.MatchedBy(func(a upload.Artifact) bool {
			return a.Category == model.UploadTattoo
		})).Return("https://storage/new-tattoo.jpg", nil).Once()

		people.On("Update", mock.Anything, int64(9), mock.Anything).
			Return(&model.Person{ID: 9}, nil).Once()

		// As duas tatuagens antigas saem, mesmo a que foi mantida no formulário
		media.On("Delete", mock.Anything, int64(3), int64(9)).Return(nil).Once()
		media.On("Delete", mock.Anything, int64(4), int64(9)).Return(nil).Once()

		// A mantida é recriada com a URL armazenada, sem novo upload
		media.On("Create", mock.Anything, mock.MatchedBy(func(in model.CreateMediaInput) bool {
			return in.Type == model.MediaTattoo && in.URL == "https://storage/old-tattoo-1.jpg"
		})).Return(&model.Media{ID: 20}, nil).Once()
		media.On("Create", mock.Anything, mock.MatchedBy(func(in model.CreateMediaInput) bool {
			return in.Type == model.MediaTattoo && in.URL == "https://storage/new-tattoo.jpg"
		})).Return(&model.Media{ID: 21}, nil).Once()

		form := baseForm()
		form.Tattoos = []register.TattooEntry{
			{URL: "https://storage/old-tattoo-1.jpg", Location: "antebraço"},
			{Photo: &register.PendingFile{Name: "new.jpg", Data: []byte("n")}, Location: "pescoço"},
		}

		_, err := newOrchestrator(t, uploads, people, media).Update(ctx, form, existing)
		require.NoError(t, err)

		uploads.AssertExpectations(t)
		media.AssertExpectations(t)
	})

	t.Run("person update failure keeps media untouched", func(t *testing.T) {
		ctx, cancel := testutils.ContextWithTimeout(t)
		defer cancel()

		uploads := new(mocks.MockUploader)
		people := new(mocks.MockPersonWriter)
		media := new(mocks.MockMediaWriter)

		people.On("Update", mock.Anything, int64(9), mock.Anything).
			Return(nil, errors.New("erro interno")).Once()

		form := baseForm()

		_, err := newOrchestrator(t, uploads, people, media).Update(ctx, form, existing)
		require.Error(t, err)

		var saveErr *register.SaveError
		require.ErrorAs(t, err, &saveErr)
		assert.Equal(t, register.StagePerson, saveErr.Stage)

		media.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}

// Package register coordena o salvamento multi-recurso de um cadastro:
// upload dos binários pendentes, persistência da pessoa e reconciliação
// das linhas de mídia, nessa ordem. As mídias dependem das URLs dos
// uploads e do id da pessoa, então as duas barreiras de ordenação daqui
// são requisito de corretude, não otimização.
package register

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sentinela-app/sentinela-go/internal/app/upload"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/validation"
)

// Stage identifica até onde um salvamento chegou antes de falhar
type Stage string

const (
	// StageUpload: nenhum recurso foi criado; uploads que completaram
	// são binários inertes sem referência
	StageUpload Stage = "upload"
	// StagePerson: a pessoa não foi persistida
	StagePerson Stage = "person"
	// StageMedia: a pessoa FOI persistida mas as mídias ficaram
	// inconsistentes; não há compensação automática
	StageMedia Stage = "media"
)

// SaveError descreve uma falha do salvamento com o estágio alcançado.
// PersonID diferente de zero indica que existe uma pessoa persistida
// cujo conjunto de mídias pode estar incompleto.
type SaveError struct {
	Stage    Stage
	PersonID int64
	Err      error
}

func (e *SaveError) Error() string {
	if e.PersonID != 0 {
		return fmt.Sprintf("falha no salvamento (estágio %s, pessoa %d): %v", e.Stage, e.PersonID, e.Err)
	}
	return fmt.Sprintf("falha no salvamento (estágio %s): %v", e.Stage, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Uploader converte um artefato pendente em URL armazenada
type Uploader interface {
	Upload(ctx context.Context, artifact upload.Artifact) (string, error)
}

// PersonWriter persiste o registro de pessoa
type PersonWriter interface {
	Create(ctx context.Context, input model.CreatePersonInput) (*model.Person, error)
	Update(ctx context.Context, id int64, input model.UpdatePersonInput) (*model.Person, error)
}

// MediaWriter persiste e remove linhas de mídia
type MediaWriter interface {
	Create(ctx context.Context, input model.CreateMediaInput) (*model.Media, error)
	Delete(ctx context.Context, id, personID int64) error
}

// Orchestrator coordena o salvamento de cadastros novos e edições
type Orchestrator struct {
	uploads   Uploader
	people    PersonWriter
	media     MediaWriter
	validator *validation.Validator
	logger    *zap.Logger
}

// New cria o orquestrador
func New(uploads Uploader, people PersonWriter, media MediaWriter, v *validation.Validator, logger *zap.Logger) *Orchestrator {
	v.RegisterStructRules(tattooRules, TattooEntry{})
	return &Orchestrator{
		uploads:   uploads,
		people:    people,
		media:     media,
		validator: v,
		logger:    logger,
	}
}

// uploadJob associa um artefato pendente ao destino posicional do resultado
type uploadJob struct {
	artifact upload.Artifact
	dest     *string
}

// Create salva um cadastro novo: uploads em paralelo, depois a pessoa,
// depois uma linha de mídia por artefato enviado
func (o *Orchestrator) Create(ctx context.Context, form Form) (*model.Person, error) {
	form.CPF = validation.CleanCPF(form.CPF)
	if err := o.validator.Struct(form); err != nil {
		return nil, err
	}

	var faceURL, bodyURL, warrantURL string
	tattooURLs := make([]string, len(form.Tattoos))

	var jobs []uploadJob
	if form.FacePhoto != nil {
		jobs = append(jobs, uploadJob{pendingArtifact(form.FacePhoto, model.UploadFace), &faceURL})
	}
	if form.FullBodyPhoto != nil {
		jobs = append(jobs, uploadJob{pendingArtifact(form.FullBodyPhoto, model.UploadFullBody), &bodyURL})
	}
	for i := range form.Tattoos {
		if form.Tattoos[i].Photo != nil {
			jobs = append(jobs, uploadJob{pendingArtifact(form.Tattoos[i].Photo, model.UploadTattoo), &tattooURLs[i]})
		} else {
			tattooURLs[i] = form.Tattoos[i].URL
		}
	}
	if form.WarrantFile != nil {
		jobs = append(jobs, uploadJob{pendingArtifact(form.WarrantFile, model.UploadWarrant), &warrantURL})
	}

	// Qualquer upload com falha aborta o salvamento inteiro: nenhuma
	// pessoa nem mídia é criada
	if err := o.runUploads(ctx, jobs); err != nil {
		return nil, &SaveError{Stage: StageUpload, Err: err}
	}

	person, err := o.people.Create(ctx, createInput(form, warrantURL))
	if err != nil {
		return nil, &SaveError{Stage: StagePerson, Err: err}
	}

	creates := mediaInputs(form, person.ID, faceURL, bodyURL, tattooURLs)
	if err := o.reconcile(ctx, person.ID, creates, nil); err != nil {
		// A pessoa já existe; as mídias ficaram incompletas
		return person, &SaveError{Stage: StageMedia, PersonID: person.ID, Err: err}
	}

	o.logger.Info("cadastro criado",
		zap.Int64("personId", person.ID),
		zap.Int("mediaCount", len(creates)))
	return person, nil
}

// Update salva uma edição. Fotos de rosto e corpo só são substituídas
// quando o formulário trouxe arquivo novo; o conjunto de tatuagens é
// substituído por inteiro, independentemente do que mudou.
func (o *Orchestrator) Update(ctx context.Context, form Form, existing Existing) (*model.Person, error) {
	form.CPF = validation.CleanCPF(form.CPF)
	if err := o.validator.Struct(form); err != nil {
		return nil, err
	}

	existingFace := existing.mediaOfType(model.MediaFace)
	existingBody := existing.mediaOfType(model.MediaFullBody)
	existingTattoos := existing.tattoos()

	faceURL := ""
	bodyURL := ""
	warrantURL := existing.Person.WarrantFileURL
	tattooURLs := make([]string, len(form.Tattoos))

	var jobs []uploadJob
	if form.FacePhoto != nil {
		jobs = append(jobs, uploadJob{pendingArtifact(form.FacePhoto, model.UploadFace), &faceURL})
	}
	if form.FullBodyPhoto != nil {
		jobs = append(jobs, uploadJob{pendingArtifact(form.FullBodyPhoto, model.UploadFullBody), &bodyURL})
	}
	for i := range form.Tattoos {
		if form.Tattoos[i].Photo != nil {
			jobs = append(jobs, uploadJob{pendingArtifact(form.Tattoos[i].Photo, model.UploadTattoo), &tattooURLs[i]})
		} else {
			// URL já armazenada passa direto, sem novo upload
			tattooURLs[i] = form.Tattoos[i].URL
		}
	}
	if form.WarrantFile != nil {
		jobs = append(jobs, uploadJob{pendingArtifact(form.WarrantFile, model.UploadWarrant), &warrantURL})
	}

	if err := o.runUploads(ctx, jobs); err != nil {
		return nil, &SaveError{Stage: StageUpload, Err: err}
	}

	personID := existing.Person.ID
	person, err := o.people.Update(ctx, personID, updateInput(form, warrantURL))
	if err != nil {
		return nil, &SaveError{Stage: StagePerson, Err: err}
	}

	var creates []model.CreateMediaInput
	var deletes []int64

	// Rosto e corpo: substituição condicionada a upload novo
	if form.FacePhoto != nil {
		creates = append(creates, model.CreateMediaInput{Type: model.MediaFace, URL: faceURL, PersonID: personID})
		if existingFace != nil {
			deletes = append(deletes, existingFace.ID)
		}
	}
	if form.FullBodyPhoto != nil {
		creates = append(creates, model.CreateMediaInput{Type: model.MediaFullBody, URL: bodyURL, PersonID: personID})
		if existingBody != nil {
			deletes = append(deletes, existingBody.ID)
		}
	}

	// Tatuagens: apaga todas as linhas antigas e recria o conjunto enviado
	for _, t := range existingTattoos {
		deletes = append(deletes, t.ID)
	}
	for i, t := range form.Tattoos {
		creates = append(creates, model.CreateMediaInput{
			Type:        model.MediaTattoo,
			URL:         tattooURLs[i],
			Label:       t.Location,
			Description: t.Description,
			PersonID:    personID,
		})
	}

	if err := o.reconcile(ctx, personID, creates, deletes); err != nil {
		return person, &SaveError{Stage: StageMedia, PersonID: personID, Err: err}
	}

	o.logger.Info("cadastro atualizado",
		zap.Int64("personId", personID),
		zap.Int("mediaCreated", len(creates)),
		zap.Int("mediaDeleted", len(deletes)))
	return person, nil
}

// runUploads dispara todos os uploads pendentes de uma vez e espera o
// conjunto inteiro assentar antes de retornar. Os resultados são
// coletados posicionalmente; não há ordem de conclusão definida.
func (o *Orchestrator) runUploads(ctx context.Context, jobs []uploadJob) error {
	if len(jobs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			url, err := o.uploads.Upload(gctx, job.artifact)
			if err != nil {
				return err
			}
			*job.dest = url
			return nil
		})
	}
	return g.Wait()
}

// reconcile aplica criações e exclusões de mídia em um único lote paralelo
func (o *Orchestrator) reconcile(ctx context.Context, personID int64, creates []model.CreateMediaInput, deletes []int64) error {
	if len(creates) == 0 && len(deletes) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, input := range creates {
		g.Go(func() error {
			_, err := o.media.Create(gctx, input)
			return err
		})
	}
	for _, id := range deletes {
		g.Go(func() error {
			return o.media.Delete(gctx, id, personID)
		})
	}
	return g.Wait()
}

func pendingArtifact(file *PendingFile, category model.UploadCategory) upload.Artifact {
	return upload.Artifact{Name: file.Name, Category: category, Data: file.Data}
}

func createInput(form Form, warrantURL string) model.CreatePersonInput {
	warrantStatus := ""
	if form.HasWarrant {
		warrantStatus = form.WarrantStatus
	}

	return model.CreatePersonInput{
		FullName:         form.FullName,
		Nickname:         form.Nickname,
		CPF:              form.CPF,
		RG:               form.RG,
		VoterID:          form.VoterID,
		AddressPrimary:   form.AddressPrimary,
		AddressSecondary: form.AddressSecondary,
		Latitude:         form.Latitude,
		Longitude:        form.Longitude,
		MotherName:       form.MotherName,
		FatherName:       form.FatherName,
		WarrantStatus:    warrantStatus,
		WarrantFileURL:   warrantURL,
		Notes:            form.Notes,
		IsConfidential:   form.IsConfidential,
	}
}

func updateInput(form Form, warrantURL string) model.UpdatePersonInput {
	warrantStatus := ""
	if form.HasWarrant {
		warrantStatus = form.WarrantStatus
	}

	return model.UpdatePersonInput{
		FullName:         form.FullName,
		Nickname:         form.Nickname,
		CPF:              form.CPF,
		RG:               form.RG,
		VoterID:          form.VoterID,
		AddressPrimary:   form.AddressPrimary,
		AddressSecondary: form.AddressSecondary,
		Latitude:         &form.Latitude,
		Longitude:        &form.Longitude,
		MotherName:       form.MotherName,
		FatherName:       form.FatherName,
		WarrantStatus:    warrantStatus,
		WarrantFileURL:   warrantURL,
		Notes:            form.Notes,
		IsConfidential:   &form.IsConfidential,
	}
}

// mediaInputs monta as linhas de mídia de um cadastro novo
func mediaInputs(form Form, personID int64, faceURL, bodyURL string, tattooURLs []string) []model.CreateMediaInput {
	var inputs []model.CreateMediaInput

	if faceURL != "" {
		inputs = append(inputs, model.CreateMediaInput{Type: model.MediaFace, URL: faceURL, PersonID: personID})
	}
	if bodyURL != "" {
		inputs = append(inputs, model.CreateMediaInput{Type: model.MediaFullBody, URL: bodyURL, PersonID: personID})
	}
	for i, t := range form.Tattoos {
		inputs = append(inputs, model.CreateMediaInput{
			Type:        model.MediaTattoo,
			URL:         tattooURLs[i],
			Label:       t.Location,
			Description: t.Description,
			PersonID:    personID,
		})
	}
	return inputs
}

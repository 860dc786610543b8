package register

import (
	"github.com/go-playground/validator/v10"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
)

// PendingFile é um binário ainda não persistido, mantido pelo formulário
// até o submit convertê-lo em URL armazenada
type PendingFile struct {
	Name string
	Data []byte
}

// TattooEntry é uma tatuagem do formulário: ou um arquivo pendente, ou, em
// modo de edição, a URL de uma mídia já armazenada
type TattooEntry struct {
	Photo       *PendingFile
	URL         string
	Location    string `validate:"max=255"`
	Description string `validate:"max=1000"`
}

// tattooRules exige que cada tatuagem carregue um arquivo pendente ou uma
// URL já armazenada: uma entrada sem os dois geraria uma mídia vazia que só
// o servidor rejeitaria
func tattooRules(sl validator.StructLevel) {
	entry := sl.Current().Interface().(TattooEntry)
	if entry.Photo == nil && entry.URL == "" {
		sl.ReportError(entry.Photo, "photo", "Photo", "required_media", "")
	}
}

// Form é o payload validado do cadastro: campos escalares da pessoa mais
// os artefatos de mídia pendentes
type Form struct {
	FullName         string  `json:"fullName" validate:"required,max=255"`
	Nickname         string  `json:"nickname" validate:"max=255"`
	CPF              string  `json:"cpf" validate:"omitempty,cpf"`
	RG               string  `json:"rg" validate:"max=20"`
	VoterID          string  `json:"voterId" validate:"max=20"`
	MotherName       string  `json:"motherName" validate:"max=255"`
	FatherName       string  `json:"fatherName" validate:"max=255"`
	AddressPrimary   string  `json:"addressPrimary" validate:"max=500"`
	AddressSecondary string  `json:"addressSecondary" validate:"max=500"`
	Latitude         float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `json:"longitude" validate:"gte=-180,lte=180"`
	HasWarrant       bool    `json:"hasWarrant"`
	WarrantStatus    string  `json:"warrantStatus" validate:"required_if=HasWarrant true,max=255"`
	IsConfidential   bool    `json:"isConfidential"`
	Notes            string  `json:"notes" validate:"max=2000"`

	FacePhoto     *PendingFile
	FullBodyPhoto *PendingFile
	WarrantFile   *PendingFile
	Tattoos       []TattooEntry `validate:"dive"`
}

// Existing é o estado já carregado do registro em edição
type Existing struct {
	Person model.Person
	Media  []model.Media
}

func (e *Existing) mediaOfType(t model.MediaType) *model.Media {
	for i := range e.Media {
		if e.Media[i].Type == t {
			return &e.Media[i]
		}
	}
	return nil
}

func (e *Existing) tattoos() []model.Media {
	var result []model.Media
	for _, m := range e.Media {
		if m.Type == model.MediaTattoo {
			result = append(result, m)
		}
	}
	return result
}

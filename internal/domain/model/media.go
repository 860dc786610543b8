package model

import "time"

// MediaType identifica a categoria de uma mídia vinculada a uma pessoa
type MediaType string

const (
	MediaFace     MediaType = "FACE"
	MediaFullBody MediaType = "FULL_BODY"
	MediaTattoo   MediaType = "TATTOO"
)

// UploadCategory identifica a pasta de destino de um binário enviado
type UploadCategory string

const (
	UploadFace       UploadCategory = "FACE"
	UploadFullBody   UploadCategory = "FULL_BODY"
	UploadTattoo     UploadCategory = "TATTOO"
	UploadWarrant    UploadCategory = "WARRANT"
	UploadSearchFace UploadCategory = "SEARCH_FACE"
)

// Media é um binário armazenado (foto ou documento) pertencente a exatamente uma pessoa.
// Por convenção existe no máximo uma FACE e uma FULL_BODY por pessoa; TATTOO é multivalorada.
type Media struct {
	ID          int64     `json:"id"`
	Type        MediaType `json:"type"`
	URL         string    `json:"url"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
	PersonID    int64     `json:"personId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateMediaInput contém os campos aceitos na criação de uma linha de mídia
type CreateMediaInput struct {
	Type        MediaType `json:"type" validate:"required,oneof=FACE FULL_BODY TATTOO"`
	URL         string    `json:"url" validate:"required,url"`
	Label       string    `json:"label,omitempty" validate:"max=255"`
	Description string    `json:"description,omitempty" validate:"max=1000"`
	PersonID    int64     `json:"personId" validate:"required,gt=0"`
}

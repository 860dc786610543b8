package model

import "time"

// Person é a representação de domínio de um indivíduo cadastrado no registro
type Person struct {
	ID               int64     `json:"id"`
	FullName         string    `json:"fullName"`
	Nickname         string    `json:"nickname,omitempty"`
	CPF              string    `json:"cpf,omitempty"`
	RG               string    `json:"rg,omitempty"`
	VoterID          string    `json:"voterId,omitempty"`
	AddressPrimary   string    `json:"addressPrimary"`
	AddressSecondary string    `json:"addressSecondary,omitempty"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	MotherName       string    `json:"motherName,omitempty"`
	FatherName       string    `json:"fatherName,omitempty"`
	WarrantStatus    string    `json:"warrantStatus,omitempty"`
	WarrantFileURL   string    `json:"warrantFileUrl,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	IsConfidential   bool      `json:"isConfidential"`
	CreatedBy        int64     `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasWarrant indica se a pessoa possui mandado registrado
func (p *Person) HasWarrant() bool {
	return p.WarrantStatus != ""
}

// CreatePersonInput contém os campos aceitos na criação de uma pessoa
type CreatePersonInput struct {
	FullName         string  `json:"fullName" validate:"required,max=255"`
	Nickname         string  `json:"nickname,omitempty" validate:"max=255"`
	CPF              string  `json:"cpf,omitempty" validate:"omitempty,cpf"`
	RG               string  `json:"rg,omitempty" validate:"max=20"`
	VoterID          string  `json:"voterId,omitempty" validate:"max=20"`
	AddressPrimary   string  `json:"addressPrimary,omitempty" validate:"max=500"`
	AddressSecondary string  `json:"addressSecondary,omitempty" validate:"max=500"`
	Latitude         float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `json:"longitude" validate:"gte=-180,lte=180"`
	MotherName       string  `json:"motherName,omitempty" validate:"max=255"`
	FatherName       string  `json:"fatherName,omitempty" validate:"max=255"`
	WarrantStatus    string  `json:"warrantStatus,omitempty" validate:"max=255"`
	WarrantFileURL   string  `json:"warrantFileUrl,omitempty"`
	Notes            string  `json:"notes,omitempty" validate:"max=2000"`
	IsConfidential   bool    `json:"isConfidential"`
}

// UpdatePersonInput contém os campos aceitos na atualização; campos vazios são omitidos
type UpdatePersonInput struct {
	FullName         string   `json:"fullName,omitempty" validate:"omitempty,max=255"`
	Nickname         string   `json:"nickname,omitempty" validate:"max=255"`
	CPF              string   `json:"cpf,omitempty" validate:"omitempty,cpf"`
	RG               string   `json:"rg,omitempty" validate:"max=20"`
	VoterID          string   `json:"voterId,omitempty" validate:"max=20"`
	AddressPrimary   string   `json:"addressPrimary,omitempty" validate:"max=500"`
	AddressSecondary string   `json:"addressSecondary,omitempty" validate:"max=500"`
	Latitude         *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	MotherName       string   `json:"motherName,omitempty" validate:"max=255"`
	FatherName       string   `json:"fatherName,omitempty" validate:"max=255"`
	WarrantStatus    string   `json:"warrantStatus,omitempty" validate:"max=255"`
	WarrantFileURL   string   `json:"warrantFileUrl,omitempty"`
	Notes            string   `json:"notes,omitempty" validate:"max=2000"`
	IsConfidential   *bool    `json:"isConfidential,omitempty"`
}

// SearchFilters são os filtros aceitos pela listagem de pessoas
type SearchFilters struct {
	FullName       string
	Nickname       string
	CPF            string
	MotherName     string
	FatherName     string
	IsConfidential *bool
	Page           int
	Limit          int
}

// FaceMatch é um resultado ranqueado da busca por similaridade facial
type FaceMatch struct {
	Person       Person  `json:"person"`
	Similarity   float64 `json:"similarity"`
	Distance     float64 `json:"distance"`
	FacePhotoURL string  `json:"facePhotoUrl,omitempty"`
}

// Confidence são as faixas de confiança exibidas para um resultado facial
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Confidence classifica a similaridade em faixas: >=70% alta, >=50% média, abaixo baixa
func (m FaceMatch) Confidence() Confidence {
	percent := m.Similarity * 100
	switch {
	case percent >= 70:
		return ConfidenceHigh
	case percent >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

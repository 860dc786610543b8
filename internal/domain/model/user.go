package model

import "time"

// Role é o perfil de acesso de uma conta de usuário
type Role string

const (
	RoleAdminGeral Role = "admin_geral"
	RolePontoFocal Role = "ponto_focal"
	RoleGestor     Role = "gestor"
	RoleUsuario    Role = "usuario"
)

// RequiresForce indica se o perfil exige vínculo com uma força
func (r Role) RequiresForce() bool {
	return r != RoleAdminGeral
}

// User representa uma conta de acesso ao sistema
type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name,omitempty"`
	Role               Role      `json:"role"`
	ForceID            int64     `json:"forceId,omitempty"`
	ForceName          string    `json:"forceName,omitempty"`
	IsActive           bool      `json:"isActive"`
	MustChangePassword bool      `json:"mustChangePassword"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// CreateUserInput contém os campos aceitos na criação de um usuário.
// A regra de força obrigatória para perfis não-administrativos é
// validada em nível de estrutura (internal/validation).
type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=12,numeric"`
	Name     string `json:"name,omitempty" validate:"max=255"`
	Role     Role   `json:"role" validate:"required,oneof=admin_geral ponto_focal gestor usuario"`
	ForceID  int64  `json:"forceId,omitempty"`
}

// UpdateUserInput contém os campos aceitos na atualização de um usuário.
// Senha omitida significa "manter a atual".
type UpdateUserInput struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6,max=12,numeric"`
	Name     string `json:"name,omitempty" validate:"max=255"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=admin_geral ponto_focal gestor usuario"`
	ForceID  int64  `json:"forceId,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// UserFilters são os filtros aceitos pela listagem de usuários
type UserFilters struct {
	ForceID  int64
	IsActive *bool
	Page     int
	Limit    int
}

// Force é uma unidade organizacional de referência, somente leitura neste cliente
type Force struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials são as credenciais de login
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse é a resposta do endpoint de autenticação
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

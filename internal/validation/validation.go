// Package validation aplica as restrições de entrada declaradas por
// entidade antes de qualquer chamada de rede.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
)

// FieldErrors mapeia campo inválido para a mensagem correspondente
type FieldErrors map[string]string

// Error implementa a interface error
func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// Validator valida estruturas de entrada do cliente
type Validator struct {
	validate *validator.Validate
}

// New cria o validador com as regras específicas do domínio registradas
func New() *Validator {
	v := validator.New()

	// Nomear campos pelo tag json para mensagens e erros de campo
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// CPF com dígitos verificadores válidos
	if err := v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return ValidCPF(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	// Perfis não-administrativos exigem vínculo com força
	v.RegisterStructValidation(createUserRules, model.CreateUserInput{})
	v.RegisterStructValidation(updateUserRules, model.UpdateUserInput{})

	return &Validator{validate: v}
}

// RegisterStructRules registra validação em nível de estrutura para tipos
// declarados fora deste pacote
func (v *Validator) RegisterStructRules(fn validator.StructLevelFunc, types ...interface{}) {
	v.validate.RegisterStructValidation(fn, types...)
}

// Struct valida a estrutura e devolve FieldErrors quando há violações
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(FieldErrors, len(violations))
	for _, violation := range violations {
		fields[violation.Field()] = message(violation)
	}
	return fields
}

func createUserRules(sl validator.StructLevel) {
	input := sl.Current().Interface().(model.CreateUserInput)
	if input.Role.RequiresForce() && input.ForceID == 0 {
		sl.ReportError(input.ForceID, "forceId", "ForceID", "required_force", "")
	}
}

func updateUserRules(sl validator.StructLevel) {
	input := sl.Current().Interface().(model.UpdateUserInput)
	if input.Role != "" && input.Role.RequiresForce() && input.ForceID == 0 {
		sl.ReportError(input.ForceID, "forceId", "ForceID", "required_force", "")
	}
}

// message traduz a violação para a mensagem exibida no formulário
func message(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "campo obrigatório"
	case "required_if":
		return "campo obrigatório"
	case "required_force":
		return "força é obrigatória para este perfil"
	case "required_media":
		return "foto da tatuagem é obrigatória"
	case "email":
		return "email inválido"
	case "cpf":
		return "CPF inválido"
	case "numeric":
		return "deve conter apenas números"
	case "min":
		return "mínimo de " + violation.Param() + " caracteres"
	case "max":
		return "máximo de " + violation.Param() + " caracteres"
	case "gte":
		return "valor mínimo: " + violation.Param()
	case "lte":
		return "valor máximo: " + violation.Param()
	case "oneof":
		return "valor inválido"
	case "url":
		return "URL inválida"
	default:
		return "valor inválido"
	}
}

package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/validation"
)

func TestValidCPF(t *testing.T) {
	tests := []struct {
		name  string
		cpf   string
		valid bool
	}{
		{"dígitos verificadores corretos", "52998224725", true},
		{"outro CPF válido", "11144477735", true},
		{"primeiro dígito verificador errado", "52998224735", false},
		{"segundo dígito verificador errado", "52998224724", false},
		{"todos os dígitos iguais", "11111111111", false},
		{"zeros", "00000000000", false},
		{"curto demais", "5299822472", false},
		{"longo demais", "529982247255", false},
		{"vazio", "", false},
		{"letras", "5299822472a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, validation.ValidCPF(tt.cpf))
		})
	}
}

func TestCleanCPF(t *testing.T) {
	assert.Equal(t, "52998224725", validation.CleanCPF("529.982.247-25"))
	assert.Equal(t, "52998224725", validation.CleanCPF(" 529 982 247 25 "))
	assert.Equal(t, "", validation.CleanCPF(""))
}

func TestFormatCPF(t *testing.T) {
	assert.Equal(t, "529.982.247-25", validation.FormatCPF("52998224725"))
	// Valor fora do formato esperado passa intacto
	assert.Equal(t, "1234", validation.FormatCPF("1234"))
}

func TestStruct_CreateUser(t *testing.T) {
	v := validation.New()

	valid := model.CreateUserInput{
		Email:    "agente@sentinela.gov.br",
		Password: "123456",
		Name:     "Agente",
		Role:     model.RolePontoFocal,
		ForceID:  3,
	}

	t.Run("input válido passa", func(t *testing.T) {
		require.NoError(t, v.Struct(valid))
	})

	t.Run("perfil não-administrativo exige força", func(t *testing.T) {
		input := valid
		input.ForceID = 0

		err := v.Struct(input)
		require.Error(t, err)

		var fields validation.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Contains(t, fields, "forceId")
	})

	t.Run("admin geral dispensa força", func(t *testing.T) {
		input := valid
		input.Role = model.RoleAdminGeral
		input.ForceID = 0

		require.NoError(t, v.Struct(input))
	})

	t.Run("senha não numérica é rejeitada", func(t *testing.T) {
		input := valid
		input.Password = "abc123"

		err := v.Struct(input)
		require.Error(t, err)

		var fields validation.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Contains(t, fields, "password")
	})

	t.Run("senha curta é rejeitada", func(t *testing.T) {
		input := valid
		input.Password = "12345"

		err := v.Struct(input)
		require.Error(t, err)
	})

	t.Run("email malformado é rejeitado", func(t *testing.T) {
		input := valid
		input.Email = "não-é-email"

		err := v.Struct(input)
		require.Error(t, err)

		var fields validation.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Equal(t, "email inválido", fields["email"])
	})
}

func TestStruct_UpdateUser(t *testing.T) {
	v := validation.New()

	t.Run("senha omitida mantém a atual", func(t *testing.T) {
		require.NoError(t, v.Struct(model.UpdateUserInput{Name: "Novo Nome"}))
	})

	t.Run("troca de perfil sem força é rejeitada", func(t *testing.T) {
		err := v.Struct(model.UpdateUserInput{Role: model.RoleGestor})
		require.Error(t, err)

		var fields validation.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Contains(t, fields, "forceId")
	})
}

func TestStruct_PersonInput(t *testing.T) {
	v := validation.New()

	t.Run("CPF inválido é rejeitado", func(t *testing.T) {
		err := v.Struct(model.CreatePersonInput{
			FullName: "Fulano",
			CPF:      "52998224724",
		})
		require.Error(t, err)

		var fields validation.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Equal(t, "CPF inválido", fields["cpf"])
	})

	t.Run("CPF vazio é aceito", func(t *testing.T) {
		require.NoError(t, v.Struct(model.CreatePersonInput{FullName: "Fulano"}))
	})

	t.Run("nome é obrigatório", func(t *testing.T) {
		err := v.Struct(model.CreatePersonInput{})
		require.Error(t, err)

		var fields validation.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Equal(t, "campo obrigatório", fields["fullName"])
	})

	t.Run("latitude fora do intervalo é rejeitada", func(t *testing.T) {
		err := v.Struct(model.CreatePersonInput{FullName: "Fulano", Latitude: 91})
		require.Error(t, err)
	})
}

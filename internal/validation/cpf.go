package validation

import "strings"

// CPFLength é o tamanho de um CPF sem formatação
const CPFLength = 11

// CleanCPF remove tudo que não for dígito
func CleanCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF aplica a máscara brasileira: 123.456.789-00
func FormatCPF(cpf string) string {
	cleaned := CleanCPF(cpf)
	if len(cleaned) != CPFLength {
		return cpf
	}
	return cleaned[0:3] + "." + cleaned[3:6] + "." + cleaned[6:9] + "-" + cleaned[9:11]
}

// ValidCPF verifica os dois dígitos verificadores do CPF.
// Sequências com todos os dígitos iguais são inválidas apesar de
// passarem no cálculo.
func ValidCPF(cpf string) bool {
	cleaned := CleanCPF(cpf)
	if len(cleaned) != CPFLength {
		return false
	}

	allEqual := true
	for i := 1; i < CPFLength; i++ {
		if cleaned[i] != cleaned[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	return digit(cleaned, 9) == int(cleaned[9]-'0') &&
		digit(cleaned, 10) == int(cleaned[10]-'0')
}

// digit calcula o dígito verificador na posição indicada
func digit(cpf string, position int) int {
	weight := position + 1
	sum := 0
	for i := 0; i < position; i++ {
		sum += int(cpf[i]-'0') * weight
		weight--
	}

	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

// Package querykey constrói as chaves hierárquicas usadas pela camada de
// cache: cada leitura é endereçada por recurso mais parâmetros serializados,
// e as mutações invalidam por prefixo (listas) ou por chave exata (detalhe).
package querykey

import (
	"net/url"
	"strconv"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
)

const (
	peopleLists = "people:list"
	usersLists  = "users:list"
)

// PeopleLists é o prefixo de todas as chaves de listagem de pessoas
func PeopleLists() string {
	return peopleLists
}

// PeopleList é a chave de uma listagem de pessoas com filtros
func PeopleList(f model.SearchFilters) string {
	v := url.Values{}
	setNonEmpty(v, "fullName", f.FullName)
	setNonEmpty(v, "nickname", f.Nickname)
	setNonEmpty(v, "cpf", f.CPF)
	setNonEmpty(v, "motherName", f.MotherName)
	setNonEmpty(v, "fatherName", f.FatherName)
	if f.IsConfidential != nil {
		v.Set("isConfidential", strconv.FormatBool(*f.IsConfidential))
	}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	return peopleLists + ":" + v.Encode()
}

// PersonDetail é a chave do detalhe de uma pessoa
func PersonDetail(id int64) string {
	return "people:detail:" + strconv.FormatInt(id, 10)
}

// PersonByCPF é a chave da consulta de pessoa por CPF
func PersonByCPF(cpf string) string {
	return "people:cpf:" + cpf
}

// MediaByPerson é a chave do conjunto de mídias de uma pessoa
func MediaByPerson(personID int64) string {
	return "media:person:" + strconv.FormatInt(personID, 10)
}

// UsersLists é o prefixo de todas as chaves de listagem de usuários
func UsersLists() string {
	return usersLists
}

// UserList é a chave de uma listagem de usuários com filtros
func UserList(f model.UserFilters) string {
	v := url.Values{}
	if f.ForceID > 0 {
		v.Set("forceId", strconv.FormatInt(f.ForceID, 10))
	}
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	return usersLists + ":" + v.Encode()
}

// UserDetail é a chave do detalhe de um usuário
func UserDetail(id int64) string {
	return "users:detail:" + strconv.FormatInt(id, 10)
}

// Forces é a chave da lista de forças
func Forces() string {
	return "forces"
}

func setNonEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

package people

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/client"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/querykey"
	"github.com/sentinela-app/sentinela-go/pkg/apierrors"
	"github.com/sentinela-app/sentinela-go/pkg/cache"
)

// Service mapeia as operações de pessoa para chamadas à API, com cache
// de leitura e write-through nas mutações
type Service struct {
	client *client.Client
	cache  cache.Cache
	logger *zap.Logger
	ttl    time.Duration
	cpfTTL time.Duration
}

// NewService cria o serviço de pessoas
func NewService(c *client.Client, cache cache.Cache, ttl, cpfTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		client: c,
		cache:  cache,
		logger: logger,
		ttl:    ttl,
		cpfTTL: cpfTTL,
	}
}

// List retorna uma página de pessoas segundo os filtros
func (s *Service) List(ctx context.Context, filters model.SearchFilters) (*model.Page[model.Person], error) {
	var page model.Page[model.Person]

	cacheKey := querykey.PeopleList(filters)
	found, err := s.cache.Get(ctx, cacheKey, &page)
	if err != nil {
		s.logger.Warn("erro ao buscar listagem no cache", zap.Error(err))
	}
	if found {
		return &page, nil
	}

	if err := s.client.Get(ctx, "/people", filtersToQuery(filters), &page); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, page, s.ttl); err != nil {
		s.logger.Warn("erro ao armazenar listagem no cache", zap.Error(err))
	}

	return &page, nil
}

// GetByID retorna o detalhe de uma pessoa
func (s *Service) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	var person model.Person

	cacheKey := querykey.PersonDetail(id)
	found, err := s.cache.Get(ctx, cacheKey, &person)
	if err != nil {
		s.logger.Warn("erro ao buscar pessoa no cache", zap.Int64("id", id), zap.Error(err))
	}
	if found {
		return &person, nil
	}

	if err := s.client.Get(ctx, fmt.Sprintf("/people/%d", id), nil, &person); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, person, s.ttl); err != nil {
		s.logger.Warn("erro ao armazenar pessoa no cache", zap.Error(err))
	}

	return &person, nil
}

// Create cria o registro de pessoa. O resultado é gravado direto na
// chave de detalhe, e as listagens são invalidadas.
func (s *Service) Create(ctx context.Context, input model.CreatePersonInput) (*model.Person, error) {
	var person model.Person
	if err := s.client.Post(ctx, "/people", input, &person); err != nil {
		return nil, err
	}

	s.writeThrough(ctx, &person)
	return &person, nil
}

// Update atualiza o registro de pessoa, com o mesmo write-through do Create
func (s *Service) Update(ctx context.Context, id int64, input model.UpdatePersonInput) (*model.Person, error) {
	var person model.Person
	if err := s.client.Patch(ctx, fmt.Sprintf("/people/%d", id), input, &person); err != nil {
		return nil, err
	}

	s.writeThrough(ctx, &person)
	return &person, nil
}

// CheckByCPF consulta uma pessoa pelo CPF. A chamada é silenciosa por ser
// usada em verificações de fundo; não encontrar não é erro.
func (s *Service) CheckByCPF(ctx context.Context, cpf string) (*model.Person, error) {
	var person *model.Person

	cacheKey := querykey.PersonByCPF(cpf)
	found, err := s.cache.Get(ctx, cacheKey, &person)
	if err != nil {
		s.logger.Warn("erro ao buscar CPF no cache", zap.Error(err))
	}
	if found {
		return person, nil
	}

	err = s.client.Get(ctx, "/people/cpf/"+url.PathEscape(cpf), nil, &person, client.Silent())
	if err != nil {
		if apierrors.IsStatus(err, 404) {
			person = nil
		} else {
			return nil, err
		}
	}

	// TTL curto: o resultado alimenta uma validação, não uma listagem
	if err := s.cache.Set(ctx, cacheKey, person, s.cpfTTL); err != nil {
		s.logger.Warn("erro ao armazenar CPF no cache", zap.Error(err))
	}

	return person, nil
}

// SearchByFace envia uma imagem e retorna os resultados ranqueados por
// similaridade. Resultados não são cacheados.
func (s *Service) SearchByFace(ctx context.Context, image io.Reader, filename string, limit int, threshold float64) ([]model.FaceMatch, error) {
	payload := &client.MultipartPayload{
		FileField: "file",
		FileName:  filename,
		File:      image,
		Fields: map[string]string{
			"limit":     strconv.Itoa(limit),
			"threshold": strconv.FormatFloat(threshold, 'f', -1, 64),
		},
	}

	var matches []model.FaceMatch
	if err := s.client.PostMultipart(ctx, "/people/search-by-face", payload, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// writeThrough grava o resultado de uma mutação no cache e invalida as listas
func (s *Service) writeThrough(ctx context.Context, person *model.Person) {
	if err := s.cache.Set(ctx, querykey.PersonDetail(person.ID), person, s.ttl); err != nil {
		s.logger.Warn("erro no write-through do cache", zap.Int64("id", person.ID), zap.Error(err))
	}
	if err := s.cache.DeletePrefix(ctx, querykey.PeopleLists()); err != nil {
		s.logger.Warn("erro ao invalidar listagens", zap.Error(err))
	}
	if person.CPF != "" {
		if err := s.cache.Delete(ctx, querykey.PersonByCPF(person.CPF)); err != nil {
			s.logger.Warn("erro ao invalidar consulta por CPF", zap.Error(err))
		}
	}
}

func filtersToQuery(f model.SearchFilters) url.Values {
	v := url.Values{}
	if f.FullName != "" {
		v.Set("fullName", f.FullName)
	}
	if f.Nickname != "" {
		v.Set("nickname", f.Nickname)
	}
	if f.CPF != "" {
		v.Set("cpf", f.CPF)
	}
	if f.MotherName != "" {
		v.Set("motherName", f.MotherName)
	}
	if f.FatherName != "" {
		v.Set("fatherName", f.FatherName)
	}
	if f.IsConfidential != nil {
		v.Set("isConfidential", strconv.FormatBool(*f.IsConfidential))
	}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	return v
}

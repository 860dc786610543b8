package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sentinela-app/sentinela-go/internal/app/upload"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
)

// MockUploader é um mock para register.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, artifact upload.Artifact) (string, error) {
	args := m.Called(ctx, artifact)
	return args.String(0), args.Error(1)
}

// MockPersonWriter é um mock para register.PersonWriter
type MockPersonWriter struct {
	mock.Mock
}

func (m *MockPersonWriter) Create(ctx context.Context, input model.CreatePersonInput) (*model.Person, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Person), args.Error(1)
}

func (m *MockPersonWriter) Update(ctx context.Context, id int64, input model.UpdatePersonInput) (*model.Person, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Person), args.Error(1)
}

// MockMediaWriter é um mock para register.MediaWriter
type MockMediaWriter struct {
	mock.Mock
}

func (m *MockMediaWriter) Create(ctx context.Context, input model.CreateMediaInput) (*model.Media, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Media), args.Error(1)
}

func (m *MockMediaWriter) Delete(ctx context.Context, id, personID int64) error {
	args := m.Called(ctx, id, personID)
	return args.Error(0)
}

// MockChecker é um mock para duplicate.Checker
type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) CheckByCPF(ctx context.Context, cpf string) (*model.Person, error) {
	args := m.Called(ctx, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Person), args.Error(1)
}

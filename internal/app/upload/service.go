package upload

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/client"
	"github.com/sentinela-app/sentinela-go/internal/config"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/infra/metrics"
)

// Artifact é um binário pendente: existe apenas em memória até o envio
// convertê-lo em uma URL armazenada
type Artifact struct {
	Name     string
	Category model.UploadCategory
	Data     []byte
}

// Service envia binários para a API, redimensionando fotos grandes antes
// do envio para poupar uplinks móveis
type Service struct {
	client       *client.Client
	logger       *zap.Logger
	metrics      *metrics.ClientMetrics
	maxDimension int
	jpegQuality  int
}

// NewService cria o serviço de upload
func NewService(c *client.Client, cfg config.UploadConfig, m *metrics.ClientMetrics, logger *zap.Logger) *Service {
	return &Service{
		client:       c,
		logger:       logger,
		metrics:      m,
		maxDimension: cfg.MaxDimension,
		jpegQuality:  cfg.JPEGQuality,
	}
}

// Upload envia o artefato com sua categoria e retorna a URL armazenada
func (s *Service) Upload(ctx context.Context, artifact Artifact) (string, error) {
	data := s.prepare(artifact)

	payload := &client.MultipartPayload{
		FileField: "file",
		FileName:  artifact.Name,
		File:      bytes.NewReader(data),
		Fields:    map[string]string{"category": string(artifact.Category)},
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := s.client.PostMultipart(ctx, "/upload", payload, &resp); err != nil {
		if s.metrics != nil {
			s.metrics.UploadCompleted(string(artifact.Category), "error", len(data))
		}
		s.logger.Error("falha no upload",
			zap.String("category", string(artifact.Category)),
			zap.String("name", artifact.Name),
			zap.Error(err))
		return "", err
	}

	if s.metrics != nil {
		s.metrics.UploadCompleted(string(artifact.Category), "success", len(data))
	}
	return resp.URL, nil
}

// prepare redimensiona fotos acima do limite configurado. Documentos e
// formatos não reconhecidos passam intactos.
func (s *Service) prepare(artifact Artifact) []byte {
	if s.maxDimension <= 0 || !isImage(artifact.Name) {
		return artifact.Data
	}

	img, err := imaging.Decode(bytes.NewReader(artifact.Data), imaging.AutoOrientation(true))
	if err != nil {
		s.logger.Debug("imagem não decodificável, enviando original",
			zap.String("name", artifact.Name), zap.Error(err))
		return artifact.Data
	}

	bounds := img.Bounds()
	if bounds.Dx() <= s.maxDimension && bounds.Dy() <= s.maxDimension {
		return artifact.Data
	}

	resized := imaging.Fit(img, s.maxDimension, s.maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		s.logger.Warn("erro ao recomprimir imagem, enviando original", zap.Error(err))
		return artifact.Data
	}

	s.logger.Debug("imagem redimensionada antes do envio",
		zap.String("name", artifact.Name),
		zap.Int("originalBytes", len(artifact.Data)),
		zap.Int("resizedBytes", buf.Len()))
	return buf.Bytes()
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

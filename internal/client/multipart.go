package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// encodeMultipart monta o corpo multipart/form-data de um envio de binário
func encodeMultipart(payload *MultipartPayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(payload.FileField, payload.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("erro ao montar multipart: %w", err)
	}
	if _, err := io.Copy(part, payload.File); err != nil {
		return nil, "", fmt.Errorf("erro ao copiar arquivo para multipart: %w", err)
	}

	for field, value := range payload.Fields {
		if err := writer.WriteField(field, value); err != nil {
			return nil, "", fmt.Errorf("erro ao escrever campo multipart: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

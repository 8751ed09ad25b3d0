package clipdrop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"ai-imagegen-be/pkg/imagegen"
)

type ClipdropProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// Ensure ClipdropProvider implements Provider
var _ imagegen.Provider = &ClipdropProvider{}

func NewClipdropProvider(baseURL, apiKey string) *ClipdropProvider {
	return &ClipdropProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (p *ClipdropProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	// 1. Build multipart body (the API takes the prompt as a form field)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("write prompt field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	// 2. Send Request
	url := p.BaseURL + "/text-to-image/v1"
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clipdrop request failed: %w", err)
	}
	defer resp.Body.Close()

	imageBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clipdrop error: status %d, body: %s", resp.StatusCode, string(imageBytes))
	}

	return imageBytes, nil
}

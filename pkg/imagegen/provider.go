package imagegen

import "context"

// Provider is the external text-to-image service. A provider failure must
// never cost the caller a credit; the image service compensates the debit.
type Provider interface {
	// Generate renders the prompt and returns raw image bytes (PNG).
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

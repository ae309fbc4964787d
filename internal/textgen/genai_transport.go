package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// contentGenerator is satisfied by genai.Client.Models.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAITransport sends prompts through the Gemini SDK.
type GenAITransport struct {
	models contentGenerator
	model  string
}

func NewGenAITransport(ctx context.Context, apiKey, model string) (*GenAITransport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return newGenAITransport(client.Models, model), nil
}

func newGenAITransport(models contentGenerator, model string) *GenAITransport {
	if model == "" {
		model = DefaultModel
	}

	return &GenAITransport{models: models, model: model}
}

// Generate returns an error only for failures worth retrying: rate limits, server
// errors and transport failures. Other API rejections come back as an empty reply.
func (t *GenAITransport) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := t.models.GenerateContent(ctx, t.model, genai.Text(prompt), nil)
	if err != nil {
		if code, ok := apiErrorCode(err); ok && !retryableStatus(code) {
			return "", nil
		}
		return "", fmt.Errorf("Models.GenerateContent: %w", err)
	}

	return firstText(resp), nil
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}

	return 0, false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return ""
	}
	return c.Content.Parts[0].Text
}

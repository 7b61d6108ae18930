package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
)

// GenerateJSON runs one schema-constrained generation call. When file is
// non-nil its remote handle is attached alongside the prompt; the response
// format is pinned to JSON by the response schema.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, responseSchema map[string]any, file *domain.RemoteFile) ([]byte, error) {
	if err := c.ensureInit(); err != nil {
		return nil, err
	}

	parts := []map[string]any{{"text": prompt}}
	if file != nil {
		parts = append(parts, map[string]any{
			"fileData": map[string]any{
				"fileUri":  file.URI,
				"mimeType": file.MimeType,
			},
		})
	}

	request := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": parts},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema,
		},
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1beta/models/"+c.model+":generateContent", request, &response, "generate")
	}
	if err := c.execute(ctx, "gemini.generate", call); err != nil {
		return nil, wrapTemporaryIfNeeded("generate content", err)
	}

	if len(response.Candidates) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate content", errors.New("no candidates in response"))
	}
	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate content", errors.New("empty candidate text"))
	}
	return []byte(text), nil
}

// ModelName reports the configured generation model.
func (c *Client) ModelName() string {
	return fmt.Sprintf("models/%s", c.model)
}

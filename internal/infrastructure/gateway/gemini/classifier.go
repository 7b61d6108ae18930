package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
	"github.com/ntimofeev/invoice-extractor/internal/registry"
)

// Classifier answers the purchase-order question for a piece of document
// text. The input is appended to the registered instruction, so no remote
// file handle is involved.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	task, ok := registry.Lookup(registry.TaskClassifyPO)
	if !ok {
		return domain.Classification{}, fmt.Errorf("task %s not registered", registry.TaskClassifyPO)
	}

	raw, err := c.client.GenerateJSON(ctx, task.Instruction+text, task.ResponseSchema, nil)
	if err != nil {
		return domain.Classification{}, err
	}
	if err := task.Validate(raw); err != nil {
		return domain.Classification{}, domain.WrapError(domain.ErrInvalidInput, "validate classification", err)
	}

	var result domain.Classification
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.Classification{}, fmt.Errorf("parse classification json: %w", err)
	}
	return result, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

const (
	templateKeyPrefix = "flowstudio:templates:"
	templateIndexKey  = "flowstudio:templates"
)

// TemplateRepository handles template-related Redis operations.
type TemplateRepository struct {
	client *redis.Client
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(client *redis.Client) *TemplateRepository {
	return &TemplateRepository{client: client}
}

// List returns all templates sorted by name.
func (tr *TemplateRepository) List(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	ids, err := tr.client.SMembers(ctx, templateIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read template index: %w", err)
	}

	templates := make([]*models.WorkflowTemplate, 0, len(ids))

	for _, id := range ids {
		template, err := tr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", id, err)
		}

		if template != nil {
			templates = append(templates, template)
		}
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates, nil
}

// GetByID retrieves a template by its ID.
func (tr *TemplateRepository) GetByID(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	body, err := tr.client.Get(ctx, templateKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch template %s: %w", id, err)
	}

	var template models.WorkflowTemplate

	err = json.Unmarshal(body, &template)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal template %s: %w", id, err)
	}

	return &template, nil
}

// Save stores a template and registers it in the index set.
func (tr *TemplateRepository) Save(ctx context.Context, template *models.WorkflowTemplate) error {
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to marshal template %s: %w", template.ID, err)
	}

	pipe := tr.client.TxPipeline()
	pipe.Set(ctx, templateKeyPrefix+template.ID, data, 0)
	pipe.SAdd(ctx, templateIndexKey, template.ID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save template %s: %w", template.ID, err)
	}

	return nil
}

// Delete removes a template and its index entry.
func (tr *TemplateRepository) Delete(ctx context.Context, id string) error {
	pipe := tr.client.TxPipeline()
	pipe.Del(ctx, templateKeyPrefix+id)
	pipe.SRem(ctx, templateIndexKey, id)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	return nil
}

package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type TemplateRepository interface {
	Put(ctx context.Context, t *entity.Template) error
	Get(ctx context.Context, templateID string) (*entity.Template, error)
}

type templateRepo struct {
	store Store
	log   *slog.Logger
}

func NewTemplateRepository(store Store, log *slog.Logger) TemplateRepository {
	if log == nil {
		log = slog.Default()
	}
	return &templateRepo{store: store, log: log}
}

func (r *templateRepo) Put(ctx context.Context, t *entity.Template) error {
	it, err := marshalItem(templatePK(t.TemplateID), skMetadata, templatePK(t.TemplateID), t)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, it); err != nil {
		return err
	}
	r.log.Info("template saved", "template_id", t.TemplateID, "patterns", len(t.Patterns))
	return nil
}

func (r *templateRepo) Get(ctx context.Context, templateID string) (*entity.Template, error) {
	return getDoc[entity.Template](ctx, r.store, templatePK(templateID), skMetadata, "template", templateID)
}

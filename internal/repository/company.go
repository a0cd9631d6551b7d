package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type CompanyRepository interface {
	Put(ctx context.Context, c *entity.CompanySettings) error
	Get(ctx context.Context, companyID string) (*entity.CompanySettings, error)
}

type companyRepo struct {
	store Store
	log   *slog.Logger
}

func NewCompanyRepository(store Store, log *slog.Logger) CompanyRepository {
	if log == nil {
		log = slog.Default()
	}
	return &companyRepo{store: store, log: log}
}

func (r *companyRepo) Put(ctx context.Context, c *entity.CompanySettings) error {
	it, err := marshalItem(companyPK(c.CompanyID), skSettings, companyPK(c.CompanyID), c)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, it); err != nil {
		return err
	}
	r.log.Info("company settings saved", "company_id", c.CompanyID)
	return nil
}

func (r *companyRepo) Get(ctx context.Context, companyID string) (*entity.CompanySettings, error) {
	return getDoc[entity.CompanySettings](ctx, r.store, companyPK(companyID), skSettings, "company", companyID)
}

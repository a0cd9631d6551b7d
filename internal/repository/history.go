package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// HistoryRepository keeps completed-project actuals per company.
type HistoryRepository interface {
	Put(ctx context.Context, h *entity.HistoricalProject) error
	List(ctx context.Context, companyID string) ([]entity.HistoricalProject, error)
}

type historyRepo struct {
	store Store
	log   *slog.Logger
}

func NewHistoryRepository(store Store, log *slog.Logger) HistoryRepository {
	if log == nil {
		log = slog.Default()
	}
	return &historyRepo{store: store, log: log}
}

func (r *historyRepo) Put(ctx context.Context, h *entity.HistoricalProject) error {
	it, err := marshalItem(historyPK(h.CompanyID), projectPK(h.ProjectID), "", h)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, it); err != nil {
		return err
	}
	r.log.Info("project history recorded", "company_id", h.CompanyID, "project_id", h.ProjectID)
	return nil
}

func (r *historyRepo) List(ctx context.Context, companyID string) ([]entity.HistoricalProject, error) {
	return queryDocs[entity.HistoricalProject](ctx, r.store, historyPK(companyID), "PROJECT#")
}

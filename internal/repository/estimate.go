package repository

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type EstimateRepository interface {
	// Create writes a new estimate and fails with ErrConditionFailed if the id exists.
	Create(ctx context.Context, e *entity.Estimate) error
	Put(ctx context.Context, e *entity.Estimate) error
	Get(ctx context.Context, projectID, estimateID string) (*entity.Estimate, error)
	GetByID(ctx context.Context, estimateID string) (*entity.Estimate, error)
	// List returns the project's estimates ordered by version.
	List(ctx context.Context, projectID string) ([]entity.Estimate, error)
	LatestVersion(ctx context.Context, projectID string) (int, error)
}

type estimateRepo struct {
	store Store
	log   *slog.Logger
}

func NewEstimateRepository(store Store, log *slog.Logger) EstimateRepository {
	if log == nil {
		log = slog.Default()
	}
	return &estimateRepo{store: store, log: log}
}

func (r *estimateRepo) item(e *entity.Estimate) (Item, error) {
	return marshalItem(projectPK(e.ProjectID), estimateSK(e.EstimateID), estimateSK(e.EstimateID), e)
}

func (r *estimateRepo) Create(ctx context.Context, e *entity.Estimate) error {
	it, err := r.item(e)
	if err != nil {
		return err
	}
	if err := r.store.PutIfAbsent(ctx, it); err != nil {
		return err
	}
	r.log.Info("estimate created", "project_id", e.ProjectID, "estimate_id", e.EstimateID, "version", e.Version)
	return nil
}

func (r *estimateRepo) Put(ctx context.Context, e *entity.Estimate) error {
	it, err := r.item(e)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, it); err != nil {
		return err
	}
	r.log.Debug("estimate saved", "project_id", e.ProjectID, "estimate_id", e.EstimateID, "status", e.Status)
	return nil
}

func (r *estimateRepo) Get(ctx context.Context, projectID, estimateID string) (*entity.Estimate, error) {
	return getDoc[entity.Estimate](ctx, r.store, projectPK(projectID), estimateSK(estimateID), "estimate", estimateID)
}

func (r *estimateRepo) GetByID(ctx context.Context, estimateID string) (*entity.Estimate, error) {
	it, err := r.store.GetByIndex(ctx, estimateSK(estimateID))
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NotFound("estimate", estimateID)
	}
	if err != nil {
		return nil, err
	}
	return unmarshalItem[entity.Estimate](it)
}

func (r *estimateRepo) List(ctx context.Context, projectID string) ([]entity.Estimate, error) {
	out, err := queryDocs[entity.Estimate](ctx, r.store, projectPK(projectID), "ESTIMATE#")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version < out[j].Version
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *estimateRepo) LatestVersion(ctx context.Context, projectID string) (int, error) {
	all, err := r.List(ctx, projectID)
	if err != nil {
		return 0, err
	}
	latest := 0
	for _, e := range all {
		if e.Version > latest {
			latest = e.Version
		}
	}
	return latest, nil
}

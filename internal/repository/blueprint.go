package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type BlueprintRepository interface {
	Put(ctx context.Context, bp *entity.Blueprint) error
	// Get returns the blueprint only if it belongs to projectID.
	Get(ctx context.Context, projectID, blueprintID string) (*entity.Blueprint, error)
	GetByID(ctx context.Context, blueprintID string) (*entity.Blueprint, error)
	List(ctx context.Context, projectID string) ([]entity.Blueprint, error)
}

type blueprintRepo struct {
	store Store
	log   *slog.Logger
}

func NewBlueprintRepository(store Store, log *slog.Logger) BlueprintRepository {
	if log == nil {
		log = slog.Default()
	}
	return &blueprintRepo{store: store, log: log}
}

func (r *blueprintRepo) Put(ctx context.Context, bp *entity.Blueprint) error {
	it, err := marshalItem(projectPK(bp.ProjectID), blueprintSK(bp.BlueprintID), blueprintSK(bp.BlueprintID), bp)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, it); err != nil {
		return err
	}
	r.log.Info("blueprint saved", "project_id", bp.ProjectID, "blueprint_id", bp.BlueprintID, "rooms", len(bp.Rooms))
	return nil
}

func (r *blueprintRepo) Get(ctx context.Context, projectID, blueprintID string) (*entity.Blueprint, error) {
	return getDoc[entity.Blueprint](ctx, r.store, projectPK(projectID), blueprintSK(blueprintID), "blueprint", blueprintID)
}

func (r *blueprintRepo) GetByID(ctx context.Context, blueprintID string) (*entity.Blueprint, error) {
	it, err := r.store.GetByIndex(ctx, blueprintSK(blueprintID))
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NotFound("blueprint", blueprintID)
	}
	if err != nil {
		return nil, err
	}
	return unmarshalItem[entity.Blueprint](it)
}

func (r *blueprintRepo) List(ctx context.Context, projectID string) ([]entity.Blueprint, error) {
	return queryDocs[entity.Blueprint](ctx, r.store, projectPK(projectID), "BLUEPRINT#")
}

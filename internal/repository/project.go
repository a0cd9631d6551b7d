package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	Get(ctx context.Context, projectID string) (*entity.Project, error)
	// UpdateBlueprintState overwrites the project's blueprint status block
	// (last write wins).
	UpdateBlueprintState(ctx context.Context, projectID string, state entity.BlueprintState, userID string) error
}

type projectRepo struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewProjectRepository(store Store, log *slog.Logger) ProjectRepository {
	if log == nil {
		log = slog.Default()
	}
	return &projectRepo{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (r *projectRepo) Create(ctx context.Context, p *entity.Project) error {
	it, err := marshalItem(projectPK(p.ProjectID), skMetadata, projectPK(p.ProjectID), p)
	if err != nil {
		return err
	}
	if err := r.store.PutIfAbsent(ctx, it); err != nil {
		return err
	}
	r.log.Info("project created", "project_id", p.ProjectID, "company_id", p.CompanyID)
	return nil
}

func (r *projectRepo) Get(ctx context.Context, projectID string) (*entity.Project, error) {
	return getDoc[entity.Project](ctx, r.store, projectPK(projectID), skMetadata, "project", projectID)
}

func (r *projectRepo) UpdateBlueprintState(ctx context.Context, projectID string, state entity.BlueprintState, userID string) error {
	p, err := r.Get(ctx, projectID)
	if err != nil {
		return err
	}
	now := r.now()
	state.UpdatedAt = &now
	p.Blueprint = state
	p.UpdatedAt = now
	if userID != "" {
		p.UpdatedBy = userID
	}

	it, err := marshalItem(projectPK(projectID), skMetadata, projectPK(projectID), p)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, it); err != nil {
		return err
	}
	r.log.Debug("project blueprint state updated", "project_id", projectID, "status", state.ProcessingStatus)
	return nil
}

package project

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/repository"
)

// Service handles project, blueprint read and company settings business logic.
type Service struct {
	projectRepo   repository.ProjectRepository
	blueprintRepo repository.BlueprintRepository
	companyRepo   repository.CompanyRepository
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

// NewService creates a new project service.
func NewService(projects repository.ProjectRepository, blueprints repository.BlueprintRepository, companies repository.CompanyRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		projectRepo:   projects,
		blueprintRepo: blueprints,
		companyRepo:   companies,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
}

// CreateProjectRequest represents project creation parameters.
type CreateProjectRequest struct {
	Name      string
	CompanyID string
	Address   string
	UserID    string
}

// CreateProject creates a new project with an empty blueprint state.
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (*entity.Project, error) {
	validator := common.NewValidator()
	validator.Field("name", req.Name, common.Required, common.MaxLength(200))
	validator.Field("companyId", req.CompanyID, common.Required)

	if err := common.ValidateInput(validator); err != nil {
		return nil, err
	}

	now := s.now()
	p := &entity.Project{
		ProjectID: s.newID(),
		CompanyID: strings.TrimSpace(req.CompanyID),
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: req.UserID,
		UpdatedBy: req.UserID,
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("project created successfully", "project_id", p.ProjectID, "company_id", p.CompanyID)
	return p, nil
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, projectID string) (*entity.Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, common.InvalidInput("projectId is required")
	}
	return s.projectRepo.Get(ctx, projectID)
}

// GetBlueprint returns a blueprint scoped to its project.
func (s *Service) GetBlueprint(ctx context.Context, projectID, blueprintID string) (*entity.Blueprint, error) {
	validator := common.NewValidator()
	validator.Field("projectId", projectID, common.Required)
	validator.Field("blueprintId", blueprintID, common.Required)
	if err := common.ValidateInput(validator); err != nil {
		return nil, err
	}
	return s.blueprintRepo.Get(ctx, projectID, blueprintID)
}

// ListBlueprints returns every blueprint extracted for a project.
func (s *Service) ListBlueprints(ctx context.Context, projectID string) ([]entity.Blueprint, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, common.InvalidInput("projectId is required")
	}
	if _, err := s.projectRepo.Get(ctx, projectID); err != nil {
		return nil, err
	}

	list, err := s.blueprintRepo.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("blueprints listed", "project_id", projectID, "count", len(list))
	return list, nil
}

// PutCompanySettings stores a company's pricing rules. Unset rates fall back
// to the defaults when an estimate is priced.
func (s *Service) PutCompanySettings(ctx context.Context, settings *entity.CompanySettings, userID string) (*entity.CompanySettings, error) {
	if settings == nil {
		return nil, common.InvalidInput("company settings are required")
	}
	validator := common.NewValidator()
	validator.Field("companyId", settings.CompanyID, common.Required)
	validator.Field("hourlyRate", settings.HourlyRate, common.NonNegative)
	validator.Field("overheadPercentage", settings.OverheadPercentage, common.NonNegative)
	validator.Field("profitPercentage", settings.ProfitPercentage, common.NonNegative)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	settings.CompanyID = strings.TrimSpace(settings.CompanyID)
	settings.UpdatedAt = s.now()
	settings.UpdatedBy = userID
	if err := s.companyRepo.Put(ctx, settings); err != nil {
		return nil, err
	}

	rules := settings.Resolved()
	s.logger.Info("company settings updated", "company_id", settings.CompanyID,
		"hourly_rate", rules.HourlyRate, "overhead_pct", rules.OverheadPercentage, "profit_pct", rules.ProfitPercentage)
	return settings, nil
}

// GetCompanySettings returns a company's stored pricing rules.
func (s *Service) GetCompanySettings(ctx context.Context, companyID string) (*entity.CompanySettings, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, common.InvalidInput("companyId is required")
	}
	return s.companyRepo.Get(ctx, companyID)
}

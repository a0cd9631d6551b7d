package pricebook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/repository"
	"github.com/joseph-ayodele/blueprint-estimator/internal/schema"
)

// Service maintains the assembly and material catalog.
type Service struct {
	catalogRepo repository.CatalogRepository
	logger      *slog.Logger
	newID       func() string
}

// NewService creates a new catalog admin service. Pass the cached catalog so
// writes invalidate cached lookups.
func NewService(catalog repository.CatalogRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalogRepo: catalog, logger: logger, newID: uuid.NewString}
}

// UpsertAssembly creates or replaces the assembly stored under code.
func (s *Service) UpsertAssembly(ctx context.Context, code string, a *entity.Assembly) (*entity.Assembly, error) {
	if a == nil {
		return nil, common.InvalidInput("assembly is required")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, common.InvalidInput("assembly code is required")
	}
	if a.Code != "" && a.Code != code {
		return nil, common.InvalidInput(fmt.Sprintf("assembly code %q does not match path code %q", a.Code, code))
	}
	a.Code = code
	if a.ID == "" {
		a.ID = s.newID()
	}

	if err := schema.Assembly.ValidateStruct(a); err != nil {
		return nil, err
	}
	validator := common.NewValidator()
	for i, m := range a.Materials {
		validator.Field(fmt.Sprintf("materials[%d].materialId", i), m.MaterialID, common.Required)
		validator.Field(fmt.Sprintf("materials[%d].quantity", i), m.Quantity, common.NonNegative)
	}
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	if _, known := constants.ParsePhase(a.Phase); !known {
		s.logger.Warn("assembly phase not in the estimate phase set; its items will not roll up",
			"code", a.Code, "phase", a.Phase)
	}

	if err := s.catalogRepo.UpsertAssembly(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpsertMaterial creates or replaces the material stored under id.
func (s *Service) UpsertMaterial(ctx context.Context, id string, m *entity.Material) (*entity.Material, error) {
	if m == nil {
		return nil, common.InvalidInput("material is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.InvalidInput("material id is required")
	}
	if m.ID != "" && m.ID != id {
		return nil, common.InvalidInput(fmt.Sprintf("material id %q does not match path id %q", m.ID, id))
	}
	m.ID = id

	validator := common.NewValidator()
	validator.Field("name", m.Name, common.Required)
	validator.Field("currentCost", m.CurrentCost, common.NonNegative)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	if err := s.catalogRepo.UpsertMaterial(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListAssemblies returns the catalog assemblies ordered by code.
func (s *Service) ListAssemblies(ctx context.Context) ([]entity.Assembly, error) {
	return s.catalogRepo.ListAssemblies(ctx)
}

// ListMaterials returns the catalog materials ordered by id.
func (s *Service) ListMaterials(ctx context.Context) ([]entity.Material, error) {
	return s.catalogRepo.ListMaterials(ctx)
}

// SeedResult counts the records a seed wrote.
type SeedResult struct {
	Materials  int `json:"materials"`
	Assemblies int `json:"assemblies"`
}

// Seed upserts materials first, then assemblies, stopping at the first failure.
func (s *Service) Seed(ctx context.Context, seed entity.CatalogSeed) (SeedResult, error) {
	var res SeedResult
	for i := range seed.Materials {
		m := seed.Materials[i]
		if _, err := s.UpsertMaterial(ctx, m.ID, &m); err != nil {
			return res, common.WrapError(err, fmt.Sprintf("seed material %q", m.ID))
		}
		res.Materials++
	}
	for i := range seed.Assemblies {
		a := seed.Assemblies[i]
		if _, err := s.UpsertAssembly(ctx, a.Code, &a); err != nil {
			return res, common.WrapError(err, fmt.Sprintf("seed assembly %q", a.Code))
		}
		res.Assemblies++
	}
	s.logger.Info("catalog seeded", "materials", res.Materials, "assemblies", res.Assemblies)
	return res, nil
}

// ParseSeed decodes a YAML catalog seed file.
func ParseSeed(r io.Reader) (entity.CatalogSeed, error) {
	var seed entity.CatalogSeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return seed, common.InvalidInput("catalog seed is empty")
		}
		return seed, common.InvalidInput(fmt.Sprintf("catalog seed yaml: %v", err))
	}
	return seed, nil
}

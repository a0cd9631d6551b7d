// Package estimate prices extracted blueprints and manages the estimate
// lifecycle.
package estimate

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// ServiceRoomName is the synthesized room holding the service panel line.
const ServiceRoomName = "Electrical Service"

type BlueprintReader interface {
	Get(ctx context.Context, projectID, blueprintID string) (*entity.Blueprint, error)
}

type CompanyReader interface {
	Get(ctx context.Context, companyID string) (*entity.CompanySettings, error)
}

// Catalog resolves assemblies by code and materials by id. Absent records
// are reported as common.ErrNotFound.
type Catalog interface {
	GetAssembly(ctx context.Context, code string) (*entity.Assembly, error)
	GetMaterial(ctx context.Context, id string) (*entity.Material, error)
}

type EstimateStore interface {
	Create(ctx context.Context, e *entity.Estimate) error
	Put(ctx context.Context, e *entity.Estimate) error
	Get(ctx context.Context, projectID, estimateID string) (*entity.Estimate, error)
	List(ctx context.Context, projectID string) ([]entity.Estimate, error)
	LatestVersion(ctx context.Context, projectID string) (int, error)
}

// GenerateRequest identifies the blueprint to price and the company whose
// rates apply.
type GenerateRequest struct {
	ProjectID   string
	BlueprintID string
	CompanyID   string
	UserID      string
}

// Engine turns blueprints into priced draft estimates.
type Engine struct {
	blueprints BlueprintReader
	companies  CompanyReader
	catalog    Catalog
	estimates  EstimateStore
	log        *slog.Logger
	opts       options
}

func NewEngine(blueprints BlueprintReader, companies CompanyReader, catalog Catalog, estimates EstimateStore, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		blueprints: blueprints,
		companies:  companies,
		catalog:    catalog,
		estimates:  estimates,
		log:        logger,
		opts:       o,
	}
}

// Generate prices the blueprint with the company's rates and persists the
// result as a draft, version 1.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*entity.Estimate, error) {
	v := common.NewValidator().
		Field("projectId", req.ProjectID, common.Required).
		Field("blueprintId", req.BlueprintID, common.Required).
		Field("companyId", req.CompanyID, common.Required)
	if err := common.ValidateInput(v); err != nil {
		return nil, err
	}

	log := e.log.With("project_id", req.ProjectID, "blueprint_id", req.BlueprintID)
	log.Info("estimate.generate.start", "company_id", req.CompanyID)

	bp, err := e.blueprints.Get(ctx, req.ProjectID, req.BlueprintID)
	if err != nil {
		return nil, err
	}
	company, err := e.companies.Get(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	pricing := company.Resolved()

	book, err := e.loadPriceBook(ctx, bp)
	if err != nil {
		log.Error("estimate.generate.catalog_failed", "error", err)
		return nil, err
	}

	now := e.opts.now()
	est := &entity.Estimate{
		EstimateID:  e.opts.newID(),
		ProjectID:   req.ProjectID,
		BlueprintID: req.BlueprintID,
		CompanyID:   req.CompanyID,
		Status:      constants.EstimateStatusDraft,
		Version:     1,
		Rooms:       e.priceRooms(log, bp, book),
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   req.UserID,
		UpdatedBy:   req.UserID,
	}
	Rollup(est, pricing, e.opts.newID)

	if err := e.estimates.Create(ctx, est); err != nil {
		log.Error("estimate.generate.persist_failed", "error", err)
		return nil, err
	}
	log.Info("estimate.generate.ok",
		"estimate_id", est.EstimateID,
		"rooms", len(est.Rooms),
		"total_cost", est.Financials.TotalCost,
	)
	return est, nil
}

// priceBook is the catalog snapshot one generation run prices against.
type priceBook struct {
	assemblies map[string]*entity.Assembly
	materials  map[string]*entity.Material
}

// loadPriceBook fetches every assembly the blueprint can reference, then
// every material those assemblies use. Lookups run concurrently; absent
// records are left out of the book.
func (e *Engine) loadPriceBook(ctx context.Context, bp *entity.Blueprint) (*priceBook, error) {
	codes := map[string]struct{}{
		constants.AssemblyMiscStandard: {},
		constants.AssemblyServicePanel: {},
	}
	for _, room := range bp.Rooms {
		for _, d := range room.Devices {
			codes[constants.AssemblyCodeFor(d.Type)] = struct{}{}
		}
	}

	book := &priceBook{}
	var err error
	book.assemblies, err = fetchAll(ctx, e.opts.fanout, sortedKeys(codes), e.catalog.GetAssembly)
	if err != nil {
		return nil, err
	}

	ids := map[string]struct{}{}
	for _, a := range book.assemblies {
		for _, m := range a.Materials {
			ids[m.MaterialID] = struct{}{}
		}
	}
	book.materials, err = fetchAll(ctx, e.opts.fanout, sortedKeys(ids), e.catalog.GetMaterial)
	if err != nil {
		return nil, err
	}
	return book, nil
}

func fetchAll[T any](ctx context.Context, limit int, keys []string, get func(context.Context, string) (*T, error)) (map[string]*T, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]*T, len(keys))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			v, err := get(gctx, key)
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) priceRooms(log *slog.Logger, bp *entity.Blueprint, book *priceBook) []entity.EstimateRoom {
	rooms := make([]entity.EstimateRoom, 0, len(bp.Rooms)+1)
	for _, room := range bp.Rooms {
		er := entity.EstimateRoom{
			RoomID: room.RoomID,
			Name:   room.Name,
			Floor:  room.Floor,
			Items:  make([]entity.EstimateItem, 0, len(room.Devices)),
		}
		for _, d := range room.Devices {
			code := constants.AssemblyCodeFor(d.Type)
			a, ok := book.assemblies[code]
			notes := d.Notes
			if !ok {
				a, ok = book.assemblies[constants.AssemblyMiscStandard]
				if !ok {
					log.Warn("estimate.device.skipped", "room", room.Name, "device_type", d.Type, "assembly_code", code)
					continue
				}
				log.Warn("estimate.assembly.fallback", "device_type", d.Type, "assembly_code", code)
				notes = code + " not in catalog; priced as " + constants.AssemblyMiscStandard
			}
			item := e.priceItem(log, a, d.Type, d.Count, book)
			item.Notes = notes
			er.Items = append(er.Items, item)
		}
		rooms = append(rooms, er)
	}

	if panel, ok := book.assemblies[constants.AssemblyServicePanel]; ok {
		item := e.priceItem(log, panel, constants.DeviceCustom, 1, book)
		item.Phase = constants.PhaseService
		item.Notes = "service entrance and panel"
		rooms = append(rooms, entity.EstimateRoom{
			RoomID: e.opts.newID(),
			Name:   ServiceRoomName,
			Floor:  1,
			Items:  []entity.EstimateItem{item},
		})
	} else {
		log.Debug("estimate.service_panel.absent")
	}
	return rooms
}

// priceItem builds the line for quantity units of a. TotalCost is filled in
// by Rollup.
func (e *Engine) priceItem(log *slog.Logger, a *entity.Assembly, device constants.DeviceType, quantity int, book *priceBook) entity.EstimateItem {
	phase, known := constants.ParsePhase(a.Phase)
	if !known {
		log.Warn("estimate.assembly.unknown_phase", "assembly_code", a.Code, "phase", a.Phase)
	}
	return entity.EstimateItem{
		ItemID:       e.opts.newID(),
		AssemblyID:   a.ID,
		AssemblyCode: a.Code,
		AssemblyName: a.Name,
		DeviceType:   device,
		Quantity:     quantity,
		LaborHours:   a.LaborMinutes / 60 * float64(quantity),
		MaterialCost: unitMaterialCost(log, a, book) * float64(quantity),
		Phase:        phase,
	}
}

// unitMaterialCost is the material cost of one unit of a: its bill of
// materials at current cost, or its default cost when it has no bill.
func unitMaterialCost(log *slog.Logger, a *entity.Assembly, book *priceBook) float64 {
	if len(a.Materials) == 0 {
		if a.DefaultMaterialCost == nil {
			return 0
		}
		return *a.DefaultMaterialCost
	}
	var sum float64
	for _, line := range a.Materials {
		m, ok := book.materials[line.MaterialID]
		if !ok {
			log.Warn("estimate.material.missing", "assembly_code", a.Code, "material_id", line.MaterialID)
			continue
		}
		sum += m.CurrentCost * line.Quantity
	}
	return sum
}

package estimate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type fakeBlueprints map[string]*entity.Blueprint

func (f fakeBlueprints) Get(_ context.Context, projectID, blueprintID string) (*entity.Blueprint, error) {
	bp, ok := f[blueprintID]
	if !ok || bp.ProjectID != projectID {
		return nil, common.NotFound("blueprint", blueprintID)
	}
	return bp, nil
}

type fakeCompanies map[string]*entity.CompanySettings

func (f fakeCompanies) Get(_ context.Context, id string) (*entity.CompanySettings, error) {
	c, ok := f[id]
	if !ok {
		return nil, common.NotFound("company", id)
	}
	return c, nil
}

type fakeCatalog struct {
	mu         sync.Mutex
	assemblies map[string]entity.Assembly
	materials  map[string]entity.Material
	err        error
	lookups    int
}

func (f *fakeCatalog) GetAssembly(_ context.Context, code string) (*entity.Assembly, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.assemblies[code]
	if !ok {
		return nil, common.NotFound("assembly", code)
	}
	return &a, nil
}

func (f *fakeCatalog) GetMaterial(_ context.Context, id string) (*entity.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	m, ok := f.materials[id]
	if !ok {
		return nil, common.NotFound("material", id)
	}
	return &m, nil
}

type fakeEstimates struct {
	items     map[string]entity.Estimate
	createErr error
	puts      int
}

func newFakeEstimates(seed ...entity.Estimate) *fakeEstimates {
	f := &fakeEstimates{items: map[string]entity.Estimate{}}
	for _, e := range seed {
		f.items[e.EstimateID] = e
	}
	return f
}

func (f *fakeEstimates) Create(_ context.Context, e *entity.Estimate) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.items[e.EstimateID]; exists {
		return fmt.Errorf("estimate %s exists", e.EstimateID)
	}
	f.items[e.EstimateID] = *e
	return nil
}

func (f *fakeEstimates) Put(_ context.Context, e *entity.Estimate) error {
	f.puts++
	f.items[e.EstimateID] = *e
	return nil
}

func (f *fakeEstimates) Get(_ context.Context, projectID, estimateID string) (*entity.Estimate, error) {
	e, ok := f.items[estimateID]
	if !ok || e.ProjectID != projectID {
		return nil, common.NotFound("estimate", estimateID)
	}
	e.Rooms = cloneRooms(e.Rooms)
	return &e, nil
}

func (f *fakeEstimates) List(_ context.Context, projectID string) ([]entity.Estimate, error) {
	var out []entity.Estimate
	for _, e := range f.items {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (f *fakeEstimates) LatestVersion(ctx context.Context, projectID string) (int, error) {
	all, _ := f.List(ctx, projectID)
	latest := 0
	for _, e := range all {
		latest = max(latest, e.Version)
	}
	return latest, nil
}

var fixedNow = time.Date(2026, 4, 6, 15, 0, 0, 0, time.UTC)

func testOptions() []Option {
	n := 0
	return []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		}),
	}
}

// testCatalog prices the kitchen bundle:
//
//	REC-GFCI  30 min, trim,  bill 18 + 2
//	SW-SP     15 min, trim,  default 5
//	LT-REC    45 min, rough, bill 25 + a missing material
//	LT-UC     absent, falls back to MISC-STD (60 min, rough, default 10)
//	SVC-PNL   480 min, service, default 1200
func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		assemblies: map[string]entity.Assembly{
			"REC-GFCI": {ID: "a-gfci", Code: "REC-GFCI", Name: "GFCI receptacle", Phase: "trim", LaborMinutes: 30,
				Materials: []entity.AssemblyMaterial{{MaterialID: "m-gfci", Quantity: 1}, {MaterialID: "m-box", Quantity: 1}}},
			"SW-SP": {ID: "a-sw", Code: "SW-SP", Name: "Single pole switch", Phase: "trim", LaborMinutes: 15,
				DefaultMaterialCost: entity.Float64(5)},
			"LT-REC": {ID: "a-rec", Code: "LT-REC", Name: "Recessed light", Phase: "rough", LaborMinutes: 45,
				Materials: []entity.AssemblyMaterial{{MaterialID: "m-can", Quantity: 1}, {MaterialID: "m-gone", Quantity: 2}}},
			"MISC-STD": {ID: "a-misc", Code: "MISC-STD", Name: "Miscellaneous device", Phase: "rough", LaborMinutes: 60,
				DefaultMaterialCost: entity.Float64(10)},
			"SVC-PNL": {ID: "a-pnl", Code: "SVC-PNL", Name: "Service panel", Phase: "service", LaborMinutes: 480,
				DefaultMaterialCost: entity.Float64(1200)},
		},
		materials: map[string]entity.Material{
			"m-gfci": {ID: "m-gfci", Name: "GFCI device", CurrentCost: 18},
			"m-box":  {ID: "m-box", Name: "Old work box", CurrentCost: 2},
			"m-can":  {ID: "m-can", Name: "6in can", CurrentCost: 25},
		},
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/app"
	"github.com/joseph-ayodele/blueprint-estimator/internal/async"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/docextract"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type stubExtractor struct {
	lines []string
}

func (s stubExtractor) Extract(context.Context, []byte, docextract.Options) ([]docextract.Page, error) {
	p := docextract.Page{Number: 1, Width: 612, Height: 792}
	for i, l := range s.lines {
		p.Content = append(p.Content, docextract.Token{Page: 1, Str: l, X: 72, Y: float64(70 + 20*i), Width: 200, Height: 12})
	}
	return []docextract.Page{p}, nil
}

var kitchenPlan = stubExtractor{lines: []string{
	"Project: Oak Street",
	"Address: 12 Elm St",
	"Total Area: 1,200 sq ft",
	"Kitchen",
}}

type testEnv struct {
	app     *app.App
	handler http.Handler
}

func newTestEnv(t *testing.T, opts ...app.Option) *testEnv {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", ":memory:")
	t.Setenv("BLOB_DIR", t.TempDir())
	t.Setenv("ARTIFACT_CACHE_DIR", t.TempDir())
	t.Setenv("REDIS_ADDR", "")
	cfg := common.LoadConfig()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, nil, append([]app.Option{app.WithExtractor(kitchenPlan)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(ctx) })

	return &testEnv{app: a, handler: NewRouter(DepsFromApp(a, 0))}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderUserID, "u-test")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) seedCatalog(t *testing.T) {
	t.Helper()
	for id, m := range map[string]map[string]any{
		"m-gfci": {"name": "GFCI receptacle", "currentCost": 18},
		"m-box":  {"name": "Device box", "currentCost": 2},
	} {
		rec := e.do(t, http.MethodPut, "/api/v1/catalog/materials/"+id, m)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	for code, a := range map[string]map[string]any{
		"REC-GFCI": {"name": "GFCI receptacle", "phase": "trim", "laborMinutes": 30,
			"materials": []map[string]any{{"materialId": "m-gfci", "quantity": 1}, {"materialId": "m-box", "quantity": 1}}},
		"SW-SP":    {"name": "Single pole switch", "phase": "trim", "laborMinutes": 15, "defaultMaterialCost": 5},
		"LT-REC":   {"name": "Recessed light", "phase": "rough", "laborMinutes": 45, "defaultMaterialCost": 25},
		"MISC-STD": {"name": "Miscellaneous device", "phase": "rough", "laborMinutes": 60, "defaultMaterialCost": 10},
	} {
		rec := e.do(t, http.MethodPut, "/api/v1/catalog/assemblies/"+code, a)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

// setupBlueprint creates a project, company settings, the catalog and one
// extracted kitchen blueprint.
func (e *testEnv) setupBlueprint(t *testing.T) (projectID, blueprintID string) {
	t.Helper()
	ctx := context.Background()

	rec := e.do(t, http.MethodPost, "/api/v1/projects", map[string]any{"name": "Oak Street", "companyId": "c1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	projectID = decodeAs[entity.Project](t, rec).ProjectID

	rec = e.do(t, http.MethodPut, "/api/v1/companies/c1/settings", map[string]any{
		"hourlyRate": 100, "overheadPercentage": 10, "profitPercentage": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	e.seedCatalog(t)
	require.NoError(t, e.app.Files.Put(ctx, "plans/oak.pdf", []byte("%PDF-1.7"), "application/pdf"))

	rec = e.do(t, http.MethodPost, "/api/v1/projects/"+projectID+"/blueprints", map[string]any{"fileKey": "plans/oak.pdf"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bp := decodeAs[entity.Blueprint](t, rec)
	require.Equal(t, constants.BlueprintStatusCompleted, bp.Status)
	return projectID, bp.BlueprintID
}

func TestBlueprintRoutes(t *testing.T) {
	e := newTestEnv(t, app.WithoutQueue())
	projectID, blueprintID := e.setupBlueprint(t)
	base := "/api/v1/projects/" + projectID

	rec := e.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeAs[entity.Project](t, rec)
	assert.Equal(t, constants.BlueprintStatusCompleted, p.Blueprint.ProcessingStatus)
	assert.Equal(t, blueprintID, p.Blueprint.BlueprintID)

	rec = e.do(t, http.MethodGet, base+"/blueprints/"+blueprintID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bp := decodeAs[entity.Blueprint](t, rec)
	assert.Equal(t, "Oak Street", bp.JobName)
	assert.Equal(t, "12 Elm St", bp.JobAddress)
	assert.Equal(t, 1200.0, bp.SquareFootage)
	require.Len(t, bp.Rooms, 1)
	assert.Equal(t, "Kitchen", bp.Rooms[0].Name)

	rec = e.do(t, http.MethodGet, base+"/blueprints", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeAs[map[string][]entity.Blueprint](t, rec)
	assert.Len(t, list["blueprints"], 1)

	rec = e.do(t, http.MethodGet, base+"/blueprints/"+blueprintID+"/permit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	permit := decodeAs[entity.ElectricalPermit](t, rec)
	assert.Equal(t, 4, permit.Devices.GFCIReceptacles)
	assert.Equal(t, 3, permit.Devices.Switches)
	assert.Equal(t, 6, permit.Devices.LightingFixtures)
	assert.Equal(t, 13, permit.TotalDevices)

	rec = e.do(t, http.MethodGet, base+"/blueprints/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPost, base+"/blueprints", map[string]any{"fileKey": "plans/none.pdf"})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestEstimateLifecycle(t *testing.T) {
	e := newTestEnv(t, app.WithoutQueue())
	projectID, blueprintID := e.setupBlueprint(t)
	base := "/api/v1/projects/" + projectID + "/estimates"

	rec := e.do(t, http.MethodPost, base, map[string]any{"blueprintId": blueprintID, "companyId": "c1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	est := decodeAs[entity.Estimate](t, rec)
	assert.Equal(t, constants.EstimateStatusDraft, est.Status)
	assert.Equal(t, 1, est.Version)
	assert.Equal(t, "u-test", est.CreatedBy)

	// REC-GFCI 4 (2h, 80), SW-SP 3 (0.75h, 15), LT-REC 4 (3h, 100), LT-UC 2 priced as MISC-STD (2h, 20)
	f := est.Financials
	assert.InDelta(t, 7.75, f.TotalLaborHours, 1e-9)
	assert.InDelta(t, 775, f.TotalLaborCost, 1e-9)
	assert.InDelta(t, 215, f.TotalMaterialCost, 1e-9)
	assert.InDelta(t, 990, f.Subtotal, 1e-9)
	assert.InDelta(t, 99, f.OverheadAmount, 1e-9)
	assert.InDelta(t, 108.9, f.ProfitAmount, 1e-9)
	assert.InDelta(t, 1197.9, f.TotalCost, 1e-9)
	require.Len(t, est.Phases, 3)

	estURL := base + "/" + est.EstimateID

	rec = e.do(t, http.MethodPatch, estURL, map[string]any{"laborRate": 50, "notes": "owner supplies fixtures"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeAs[entity.Estimate](t, rec)
	assert.True(t, patched.Revised)
	assert.Equal(t, "owner supplies fixtures", patched.Notes)
	assert.InDelta(t, 387.5+215, patched.Financials.Subtotal, 1e-9)

	rec = e.do(t, http.MethodPatch, estURL, map[string]any{"bogus": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodPut, estURL+"/status", map[string]any{"status": "pending"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, constants.EstimateStatusPending, decodeAs[entity.Estimate](t, rec).Status)

	rec = e.do(t, http.MethodPatch, estURL, map[string]any{"notes": "too late"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := decodeAs[errorResponse](t, rec)
	assert.Equal(t, common.CodeValidation, errBody.Error)

	rec = e.do(t, http.MethodPut, estURL+"/status", map[string]any{"status": "draft"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodPut, estURL+"/status", map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodPost, estURL+"/revisions", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rev := decodeAs[entity.Estimate](t, rec)
	assert.Equal(t, 2, rev.Version)
	assert.Equal(t, est.EstimateID, rev.PreviousVersionID)
	assert.Equal(t, constants.EstimateStatusDraft, rev.Status)

	rec = e.do(t, http.MethodPost, base+"/manual", map[string]any{
		"companyId": "c1",
		"rooms": []map[string]any{{
			"name": "Garage",
			"items": []map[string]any{{"quantity": 2, "laborHours": 1, "materialCost": 30, "phase": "rough"}},
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	manual := decodeAs[entity.Estimate](t, rec)
	assert.Equal(t, 3, manual.Version)
	assert.InDelta(t, 130, manual.Financials.Subtotal, 1e-9)

	rec = e.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeAs[map[string][]entity.Estimate](t, rec)
	require.Len(t, list["estimates"], 3)
	assert.Equal(t, 1, list["estimates"][0].Version)

	rec = e.do(t, http.MethodGet, estURL+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rec = e.do(t, http.MethodPost, estURL+"/timeline", map[string]any{"startDate": "2026-06-01", "crewSize": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tl := decodeAs[entity.Timeline](t, rec)
	assert.Equal(t, entity.TimelineBasisSynthetic, tl.Basis)
	assert.Len(t, tl.Phases, 3)
	assert.Equal(t, "2026-06-01", tl.StartDate.Format(time.DateOnly))

	rec = e.do(t, http.MethodPost, estURL+"/timeline", map[string]any{"startDate": "June 1st"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, base+"/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, common.CodeNotFound, decodeAs[errorResponse](t, rec).Error)
}

func TestGenerateEstimateErrors(t *testing.T) {
	e := newTestEnv(t, app.WithoutQueue())
	projectID, blueprintID := e.setupBlueprint(t)
	base := "/api/v1/projects/" + projectID + "/estimates"

	rec := e.do(t, http.MethodPost, base, map[string]any{"blueprintId": "nope", "companyId": "c1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPost, base, map[string]any{"blueprintId": blueprintID, "companyId": "unknown"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPost, base, map[string]any{"companyId": "c1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, base, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, base, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateAndSettingsRoutes(t *testing.T) {
	e := newTestEnv(t, app.WithoutQueue())

	rec := e.do(t, http.MethodPost, "/api/v1/templates", map[string]any{
		"name": "Title block",
		"patterns": []map[string]any{
			{"dataType": "jobName", "patternType": "regex", "pattern": `TITLE:\s*(.+)`},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tpl := decodeAs[entity.Template](t, rec)

	rec = e.do(t, http.MethodGet, "/api/v1/templates/"+tpl.TemplateID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Title block", decodeAs[entity.Template](t, rec).Name)

	rec = e.do(t, http.MethodPost, "/api/v1/templates", map[string]any{
		"name":     "Bad",
		"patterns": []map[string]any{{"dataType": "ownerName", "patternType": "regex", "pattern": "x"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/companies/c9/settings", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/v1/companies/c9/settings", map[string]any{"hourlyRate": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/companies/c9/history", map[string]any{
		"projectId": "old-1", "squareFootage": 1800, "floors": 1, "laborHours": 40,
		"phaseDays": map[string]int{"rough": 3, "trim": 2, "service": 1},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "c9", decodeAs[entity.HistoricalProject](t, rec).CompanyID)
}

func TestAsyncBlueprintProcessing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	rec := e.do(t, http.MethodPost, "/api/v1/projects", map[string]any{"name": "Async", "companyId": "c1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	projectID := decodeAs[entity.Project](t, rec).ProjectID
	require.NoError(t, e.app.Files.Put(ctx, "plans/a.pdf", []byte("%PDF-1.7"), "application/pdf"))

	rec = e.do(t, http.MethodPost, "/api/v1/projects/"+projectID+"/blueprints?async=true", map[string]any{"fileKey": "plans/a.pdf"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, constants.BlueprintStatusProcessing, decodeAs[acceptedResponse](t, rec).Status)

	require.Eventually(t, func() bool {
		p, err := e.app.Projects.GetProject(ctx, projectID)
		return err == nil && p.Blueprint.ProcessingStatus == constants.BlueprintStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	rec = e.do(t, http.MethodPost, "/api/v1/projects/missing/blueprints?async=true", map[string]any{"fileKey": "plans/a.pdf"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsyncWithoutQueueIsUnavailable(t *testing.T) {
	e := newTestEnv(t, app.WithoutQueue())
	rec := e.do(t, http.MethodPost, "/api/v1/projects/p1/blueprints?async=true", map[string]any{"fileKey": "plans/a.pdf"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	e := newTestEnv(t, app.WithoutQueue())

	rec := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewRouter(Deps{Ready: func(context.Context) error { return errors.New("db down") }})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{common.NotFound("estimate", "e1"), http.StatusNotFound},
		{common.InvalidInput("bad"), http.StatusBadRequest},
		{common.Validation("not draft"), http.StatusUnprocessableEntity},
		{common.Extraction("not a pdf", nil), http.StatusUnprocessableEntity},
		{common.NotImplemented("room patterns"), http.StatusNotImplemented},
		{async.ErrQueueFull, http.StatusServiceUnavailable},
		{common.Persistence("put", errors.New("disk")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}

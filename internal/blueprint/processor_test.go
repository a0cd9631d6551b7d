package blueprint

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/docextract"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type fakeProjects struct {
	projects  map[string]*entity.Project
	states    []constants.BlueprintStatus
	updateErr map[constants.BlueprintStatus]error
}

func newFakeProjects(ids ...string) *fakeProjects {
	f := &fakeProjects{projects: map[string]*entity.Project{}, updateErr: map[constants.BlueprintStatus]error{}}
	for _, id := range ids {
		f.projects[id] = &entity.Project{ProjectID: id}
	}
	return f
}

func (f *fakeProjects) Get(_ context.Context, id string) (*entity.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, common.NotFound("project", id)
	}
	return p, nil
}

func (f *fakeProjects) UpdateBlueprintState(_ context.Context, id string, st entity.BlueprintState, _ string) error {
	f.states = append(f.states, st.ProcessingStatus)
	if err := f.updateErr[st.ProcessingStatus]; err != nil {
		return err
	}
	f.projects[id].Blueprint = st
	return nil
}

type fakeBlueprints struct {
	saved []entity.Blueprint
	err   error
}

func (f *fakeBlueprints) Put(_ context.Context, bp *entity.Blueprint) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *bp)
	return nil
}

type fakeTemplates map[string]*entity.Template

func (f fakeTemplates) Get(_ context.Context, id string) (*entity.Template, error) {
	t, ok := f[id]
	if !ok {
		return nil, common.NotFound("template", id)
	}
	return t, nil
}

type fakeFiles map[string][]byte

func (f fakeFiles) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := f[key]
	if !ok {
		return nil, common.NotFound("file", key)
	}
	return b, nil
}

type stubExtractor struct {
	pages []docextract.Page
	err   error
	calls int
	opts  docextract.Options
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte, opts docextract.Options) ([]docextract.Page, error) {
	s.calls++
	s.opts = opts
	return s.pages, s.err
}

func page(lines ...string) []docextract.Page {
	p := docextract.Page{Number: 1, Width: 612, Height: 792}
	for i, l := range lines {
		p.Content = append(p.Content, docextract.Token{Page: 1, Str: l, X: 72, Y: float64(70 + 20*i), Width: 200, Height: 12})
	}
	return []docextract.Page{p}
}

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestProcessor(projects *fakeProjects, bps *fakeBlueprints, tpls fakeTemplates, files fakeFiles, ex docextract.Extractor) *Processor {
	return NewProcessor(projects, bps, tpls, files, ex, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(seqIDs()),
	)
}

func build(t *testing.T, tpl *entity.Template, lines ...string) *Extraction {
	t.Helper()
	p := newTestProcessor(newFakeProjects(), &fakeBlueprints{}, nil, nil, nil)
	return p.Build(page(lines...), tpl)
}

func TestBuildDefaultsWhenNothingMatches(t *testing.T) {
	ext := build(t, nil, "GENERAL NOTES", "ALL WORK PER NEC 2023")

	assert.Equal(t, constants.DefaultJobName, ext.JobName)
	assert.Equal(t, constants.DefaultJobAddress, ext.JobAddress)
	assert.Equal(t, constants.DefaultClassificationCode, ext.ClassificationCode)
	assert.Equal(t, 0.0, ext.SquareFootage)
	assert.Equal(t, fmt.Sprintf("JOB-%d", fixedNow.UnixMilli()), ext.JobNumber)
	assert.Equal(t, 1, ext.Floors)

	require.Len(t, ext.Rooms, 1)
	room := ext.Rooms[0]
	assert.Equal(t, "Main Room", room.Name)
	assert.Equal(t, constants.RoomLiving, room.Type)
	assert.Equal(t, 1, room.Floor)
	assert.Equal(t, 0.0, room.Area)
	assert.Equal(t, []constants.DeviceType{constants.DeviceReceptacle, constants.DeviceSwitch, constants.DeviceCeilingLight}, deviceTypes(room))
	assert.Equal(t, []int{6, 2, 1}, deviceCounts(room))
}

func TestBuildLabelHeuristics(t *testing.T) {
	ext := build(t, nil,
		"PROJECT: Smith Residence",
		"Site: 12 Elm St, Springfield",
		"Job No: 24-118",
		"Occupancy: R-3.1",
		"Total Area: 2,450 sq ft",
	)
	assert.Equal(t, "Smith Residence", ext.JobName)
	assert.Equal(t, "12 Elm St, Springfield", ext.JobAddress)
	assert.Equal(t, "24-118", ext.JobNumber)
	assert.Equal(t, "R-3.1", ext.ClassificationCode)
	assert.Equal(t, 2450.0, ext.SquareFootage)
}

func TestBuildTemplatePatternsTakePrecedence(t *testing.T) {
	tpl := &entity.Template{
		TemplateID: "t1",
		Patterns: []entity.Pattern{
			{DataType: constants.FieldJobName, PatternType: constants.PatternRegex, Expression: `(?i)^title\s*-\s*(.+)$`},
			{DataType: constants.FieldJobAddress, PatternType: constants.PatternCoordinates, Coordinates: &entity.BoundingBox{X1: 60, Y1: 85, X2: 300, Y2: 105}},
			{DataType: constants.FieldJobNumber, PatternType: constants.PatternRegex, Expression: `JN\d+`},
			{DataType: constants.FieldClassificationCode, PatternType: constants.PatternRegex, Expression: `([unclosed`},
		},
	}
	ext := build(t, tpl,
		"TITLE - Oak Street Duplex",
		"1400 Oak St",
		"Project: ignored by regex",
		"REF JN2231",
		"Classification: B",
	)
	assert.Equal(t, "Oak Street Duplex", ext.JobName)
	assert.Equal(t, "1400 Oak St", ext.JobAddress)
	assert.Equal(t, "JN2231", ext.JobNumber, "whole match when the expression has no group")
	assert.Equal(t, "B", ext.ClassificationCode, "a broken pattern falls back to the label heuristic")
}

func TestBuildFieldFailureDegradesToDefault(t *testing.T) {
	ext := build(t, nil, "Square Footage: TBD")
	assert.Equal(t, 0.0, ext.SquareFootage)
	assert.Equal(t, constants.DefaultJobName, ext.JobName)
}

func TestBuildRoomsDeduplicatedCaseInsensitively(t *testing.T) {
	ext := build(t, nil,
		"KITCHEN",
		"kitchen 12'x14'",
		"Master Bedroom",
		"Bedroom 2",
		"ROOM LEGEND: Garage / Office",
		"First Floor 1",
		"Floor 2 plan",
	)

	names := make([]string, 0, len(ext.Rooms))
	for _, r := range ext.Rooms {
		names = append(names, r.Name)
		assert.Equal(t, 1, r.Floor)
	}
	assert.Equal(t, []string{"Kitchen", "Master Bedroom", "Bedroom"}, names)
	assert.Equal(t, 2, ext.Floors)
}

func TestKitchenBundle(t *testing.T) {
	ext := build(t, nil, "Kitchen")
	require.Len(t, ext.Rooms, 1)

	got := map[constants.DeviceType]int{}
	for _, d := range ext.Rooms[0].Devices {
		got[d.Type] += d.Count
	}
	assert.Equal(t, map[constants.DeviceType]int{
		constants.DeviceGFCIReceptacle:    4,
		constants.DeviceSwitch:            3,
		constants.DeviceRecessedLight:     4,
		constants.DeviceUnderCabinetLight: 2,
	}, got)
}

func TestBuildRoomPatternsDoNotFabricateRooms(t *testing.T) {
	tpl := &entity.Template{TemplateID: "t1", RoomPatterns: []entity.RoomPattern{{Name: "Suite", Expression: `SUITE \d+`}}}
	ext := build(t, tpl, "SUITE 100", "Office")
	require.Len(t, ext.Rooms, 1)
	assert.Equal(t, "Office", ext.Rooms[0].Name)

	_, err := matchRoomPatterns(tpl, nil)
	assert.ErrorIs(t, err, common.ErrNotImplemented)
}

func TestProcessBlueprintSuccess(t *testing.T) {
	projects := newFakeProjects("p1")
	bps := &fakeBlueprints{}
	ex := &stubExtractor{pages: page("Project: Elm", "Kitchen", "Bathroom")}
	tplID := "t1"
	p := newTestProcessor(projects, bps, fakeTemplates{"t1": {TemplateID: "t1"}}, fakeFiles{"p1/plan.pdf": []byte("%PDF-1.7")}, ex)

	bp, err := p.ProcessBlueprint(context.Background(), Request{ProjectID: "p1", FileKey: "p1/plan.pdf", TemplateID: &tplID, UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, constants.BlueprintStatusCompleted, bp.Status)
	assert.Equal(t, "Elm", bp.JobName)
	assert.Equal(t, "p1/plan.pdf", bp.S3Key)
	assert.Equal(t, &tplID, bp.TemplateID)
	assert.Equal(t, "u1", bp.CreatedBy)
	assert.Len(t, bp.Rooms, 2)

	require.Len(t, bps.saved, 1, "exactly one blueprint write")
	assert.Equal(t, bp.BlueprintID, bps.saved[0].BlueprintID)
	assert.Equal(t, []constants.BlueprintStatus{constants.BlueprintStatusProcessing, constants.BlueprintStatusCompleted}, projects.states)
	assert.Equal(t, bp.BlueprintID, projects.projects["p1"].Blueprint.BlueprintID)
}

func TestProcessBlueprintPassesPageLimit(t *testing.T) {
	ex := &stubExtractor{pages: page("Kitchen")}
	files := fakeFiles{"p1/plan.pdf": []byte("%PDF-1.7")}

	p := NewProcessor(newFakeProjects("p1"), &fakeBlueprints{}, nil, files, ex, nil, WithMaxPages(2))
	_, err := p.ProcessBlueprint(context.Background(), Request{ProjectID: "p1", FileKey: "p1/plan.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 2, ex.opts.MaxPages)

	p = newTestProcessor(newFakeProjects("p1"), &fakeBlueprints{}, nil, files, ex)
	_, err = p.ProcessBlueprint(context.Background(), Request{ProjectID: "p1", FileKey: "p1/plan.pdf"})
	require.NoError(t, err)
	assert.Zero(t, ex.opts.MaxPages)
}

func TestProcessBlueprintFailures(t *testing.T) {
	ctx := context.Background()
	good := fakeFiles{"p1/plan.pdf": []byte("%PDF-1.7")}
	okPages := page("Kitchen")

	t.Run("missing project", func(t *testing.T) {
		projects := newFakeProjects()
		p := newTestProcessor(projects, &fakeBlueprints{}, nil, good, &stubExtractor{pages: okPages})
		_, err := p.ProcessBlueprint(ctx, Request{ProjectID: "p1", FileKey: "p1/plan.pdf"})
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Empty(t, projects.states)
	})

	t.Run("missing file", func(t *testing.T) {
		projects := newFakeProjects("p1")
		bps := &fakeBlueprints{}
		p := newTestProcessor(projects, bps, nil, fakeFiles{}, &stubExtractor{pages: okPages})
		_, err := p.ProcessBlueprint(ctx, Request{ProjectID: "p1", FileKey: "p1/plan.pdf"})
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Empty(t, bps.saved)
		assert.Equal(t, constants.BlueprintStatusError, projects.projects["p1"].Blueprint.ProcessingStatus)
	})

	t.Run("missing template", func(t *testing.T) {
		projects := newFakeProjects("p1")
		ex := &stubExtractor{pages: okPages}
		missing := "nope"
		p := newTestProcessor(projects, &fakeBlueprints{}, fakeTemplates{}, good, ex)
		_, err := p.ProcessBlueprint(ctx, Request{ProjectID: "p1", FileKey: "p1/plan.pdf", TemplateID: &missing})
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Zero(t, ex.calls)
		assert.Equal(t, constants.BlueprintStatusError, projects.projects["p1"].Blueprint.ProcessingStatus)
	})

	t.Run("empty pdf", func(t *testing.T) {
		projects := newFakeProjects("p1")
		ex := docextract.NewPopplerExtractor(docextract.PopplerConfig{}, nil, nil)
		p := newTestProcessor(projects, &fakeBlueprints{}, nil, fakeFiles{"p1/plan.pdf": {}}, ex)
		_, err := p.ProcessBlueprint(ctx, Request{ProjectID: "p1", FileKey: "p1/plan.pdf"})
		assert.ErrorIs(t, err, common.ErrExtraction)
		assert.Equal(t, constants.BlueprintStatusError, projects.projects["p1"].Blueprint.ProcessingStatus)
	})

	t.Run("raw extractor error is wrapped", func(t *testing.T) {
		cause := errors.New("mupdf: cannot recognize xref")
		p := newTestProcessor(newFakeProjects("p1"), &fakeBlueprints{}, nil, good, &stubExtractor{err: cause})
		_, err := p.ProcessBlueprint(ctx, Request{ProjectID: "p1", FileKey: "p1/plan.pdf"})
		assert.ErrorIs(t, err, common.ErrExtraction)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("persistence failure survives failed status write", func(t *testing.T) {
		projects := newFakeProjects("p1")
		projects.updateErr[constants.BlueprintStatusError] = errors.New("store down")
		putErr := common.Persistence("put item", errors.New("store down"))
		p := newTestProcessor(projects, &fakeBlueprints{err: putErr}, nil, good, &stubExtractor{pages: okPages})
		_, err := p.ProcessBlueprint(ctx, Request{ProjectID: "p1", FileKey: "p1/plan.pdf"})
		assert.ErrorIs(t, err, common.ErrPersistence)
		assert.Equal(t, []constants.BlueprintStatus{constants.BlueprintStatusProcessing, constants.BlueprintStatusError}, projects.states)
	})

	t.Run("invalid request", func(t *testing.T) {
		p := newTestProcessor(newFakeProjects("p1"), &fakeBlueprints{}, nil, good, &stubExtractor{})
		_, err := p.ProcessBlueprint(ctx, Request{ProjectID: "p1"})
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestProcessBlueprintCompletedStatusWriteIsBestEffort(t *testing.T) {
	projects := newFakeProjects("p1")
	projects.updateErr[constants.BlueprintStatusCompleted] = errors.New("throttled")
	bps := &fakeBlueprints{}
	p := newTestProcessor(projects, bps, nil, fakeFiles{"k": []byte("%PDF")}, &stubExtractor{pages: page("Den")})

	bp, err := p.ProcessBlueprint(context.Background(), Request{ProjectID: "p1", FileKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, constants.BlueprintStatusCompleted, bp.Status)
	assert.Len(t, bps.saved, 1)
}

func deviceTypes(r entity.ExtractedRoom) []constants.DeviceType {
	out := make([]constants.DeviceType, 0, len(r.Devices))
	for _, d := range r.Devices {
		out = append(out, d.Type)
	}
	return out
}

func deviceCounts(r entity.ExtractedRoom) []int {
	out := make([]int, 0, len(r.Devices))
	for _, d := range r.Devices {
		out = append(out, d.Count)
	}
	return out
}

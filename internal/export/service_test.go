package export

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type estimates map[string]*entity.Estimate

func (e estimates) Get(_ context.Context, projectID, id string) (*entity.Estimate, error) {
	est, ok := e[id]
	if !ok || est.ProjectID != projectID {
		return nil, common.NotFound("estimate", id)
	}
	return est, nil
}

func testEstimate() *entity.Estimate {
	return &entity.Estimate{
		EstimateID: "e1",
		ProjectID:  "p1",
		Status:     constants.EstimateStatusDraft,
		Version:    2,
		Rooms: []entity.EstimateRoom{
			{Name: "Kitchen", Floor: 1, Items: []entity.EstimateItem{
				{AssemblyCode: "REC-GFCI", AssemblyName: "GFCI receptacle", DeviceType: constants.DeviceGFCIReceptacle, Phase: constants.PhaseTrim, Quantity: 4, LaborHours: 2, MaterialCost: 80, TotalCost: 250},
				{AssemblyCode: "SW-SP", AssemblyName: "Switch", DeviceType: constants.DeviceSwitch, Phase: constants.PhaseTrim, Quantity: 3, LaborHours: 0.75, MaterialCost: 15, TotalCost: 78.75, Notes: strings.Repeat("n", 200)},
			}},
			{Name: "Electrical Service", Floor: 1, Items: []entity.EstimateItem{
				{AssemblyCode: "SVC-PNL", AssemblyName: "Service panel", Phase: constants.PhaseService, Quantity: 1, LaborHours: 8, MaterialCost: 1200, TotalCost: 1880},
			}},
		},
		Phases: []entity.EstimatePhase{
			{Phase: constants.PhaseRough, Name: "Rough"},
			{Phase: constants.PhaseTrim, Name: "Trim", LaborHours: 2.75, MaterialCost: 95, TotalCost: 328.75},
			{Phase: constants.PhaseService, Name: "Service", LaborHours: 8, MaterialCost: 1200, TotalCost: 1880},
		},
		Financials: entity.Financials{LaborRate: 85, OverheadPercentage: 15, ProfitPercentage: 10, TotalCost: 2500},
	}
}

func TestExportEstimateXLSX(t *testing.T) {
	svc := NewService(estimates{"e1": testEstimate()}, nil)

	data, err := svc.ExportEstimateXLSX(context.Background(), "p1", "e1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetLineItems, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetLineItems)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Room", rows[0][0])
	assert.Equal(t, []string{"Kitchen", "1", "REC-GFCI", "GFCI receptacle", "gfci-receptacle", "trim", "4", "2", "80", "250"}, rows[1][:10])
	assert.Len(t, []rune(rows[2][10]), 140)
	assert.Equal(t, "Electrical Service", rows[3][0])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	var labels []string
	for _, r := range summary {
		if len(r) > 0 {
			labels = append(labels, r[0])
		}
	}
	assert.Contains(t, labels, "Trim")
	assert.Contains(t, labels, "Overhead (15%)")
	total, err := f.GetCellValue(SheetSummary, "B"+strconv.Itoa(len(summary)))
	require.NoError(t, err)
	assert.Equal(t, "2500", total)
}

func TestExportMissingEstimate(t *testing.T) {
	_, err := NewService(estimates{}, nil).ExportEstimateXLSX(context.Background(), "p1", "e1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

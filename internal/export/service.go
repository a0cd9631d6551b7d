package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

const (
	SheetLineItems = "Line Items"
	SheetSummary   = "Summary"
)

type EstimateReader interface {
	Get(ctx context.Context, projectID, estimateID string) (*entity.Estimate, error)
}

// Service produces XLSX bytes for estimates.
type Service struct {
	estimates EstimateReader
	logger    *slog.Logger
}

func NewService(estimates EstimateReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{estimates: estimates, logger: logger}
}

// ExportEstimateXLSX returns a workbook with one row per estimate item and a
// summary sheet of phase totals and the financial roll-up.
func (s *Service) ExportEstimateXLSX(ctx context.Context, projectID, estimateID string) ([]byte, error) {
	start := time.Now()

	est, err := s.estimates.Get(ctx, projectID, estimateID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// rename the default sheet so no empty "Sheet1" is left behind
	if err := f.SetSheetName(f.GetSheetName(0), SheetLineItems); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}

	rows, err := writeLineItems(f, est)
	if err != nil {
		return nil, err
	}
	if err := writeSummary(f, est); err != nil {
		return nil, err
	}
	idx, _ := f.GetSheetIndex(SheetLineItems)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"project_id", projectID,
		"estimate_id", estimateID,
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeLineItems(f *excelize.File, est *entity.Estimate) (int, error) {
	const sheet = SheetLineItems
	headers := []any{
		"Room",
		"Floor",
		"Assembly",
		"Description",
		"Device",
		"Phase",
		"Quantity",
		"Labor Hours",
		"Material Cost",
		"Total Cost",
		"Notes",
	}
	if err := writeRow(f, sheet, 1, headers...); err != nil {
		return 0, err
	}

	row := 2
	for _, room := range est.Rooms {
		for _, it := range room.Items {
			if err := writeRow(f, sheet, row,
				room.Name,
				room.Floor,
				it.AssemblyCode,
				it.AssemblyName,
				string(it.DeviceType),
				string(it.Phase),
				it.Quantity,
				it.LaborHours,
				it.MaterialCost,
				it.TotalCost,
				truncate(it.Notes, 140),
			); err != nil {
				return 0, err
			}
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 22) // room
	_ = f.SetColWidth(sheet, "C", "C", 12) // assembly
	_ = f.SetColWidth(sheet, "D", "D", 28) // description
	_ = f.SetColWidth(sheet, "E", "F", 18)
	_ = f.SetColWidth(sheet, "H", "J", 14) // amounts
	_ = f.SetColWidth(sheet, "K", "K", 48) // notes
	return row - 2, nil
}

func writeSummary(f *excelize.File, est *entity.Estimate) error {
	const sheet = SheetSummary
	lines := [][]any{
		{"Estimate", est.EstimateID},
		{"Project", est.ProjectID},
		{"Version", est.Version},
		{"Status", string(est.Status)},
		{},
		{"Phase", "Labor Hours", "Material Cost", "Total Cost"},
	}
	for _, p := range est.Phases {
		lines = append(lines, []any{p.Name, p.LaborHours, p.MaterialCost, p.TotalCost})
	}
	fin := est.Financials
	lines = append(lines,
		[]any{},
		[]any{"Labor Rate", fin.LaborRate},
		[]any{"Total Labor Hours", fin.TotalLaborHours},
		[]any{"Total Labor Cost", fin.TotalLaborCost},
		[]any{"Total Material Cost", fin.TotalMaterialCost},
		[]any{"Subtotal", fin.Subtotal},
		[]any{fmt.Sprintf("Overhead (%g%%)", fin.OverheadPercentage), fin.OverheadAmount},
		[]any{fmt.Sprintf("Profit (%g%%)", fin.ProfitPercentage), fin.ProfitAmount},
		[]any{"Total", fin.TotalCost},
	)
	for i, l := range lines {
		if len(l) == 0 {
			continue
		}
		if err := writeRow(f, sheet, i+1, l...); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "D", 16)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

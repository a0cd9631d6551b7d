package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/blueprint-estimator/internal/estimate"
)

var (
	estimateProjectID   string
	estimateBlueprintID string
	estimateCompanyID   string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Generate a draft estimate from an extracted blueprint",
	RunE:  runEstimate,
}

var (
	exportProjectID  string
	exportEstimateID string
	exportOutput     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an estimate as an XLSX workbook",
	RunE:  runExport,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateProjectID, "project", "", "project id (required)")
	estimateCmd.Flags().StringVar(&estimateBlueprintID, "blueprint", "", "blueprint id (required)")
	estimateCmd.Flags().StringVar(&estimateCompanyID, "company", "", "company id for pricing (required)")
	_ = estimateCmd.MarkFlagRequired("project")
	_ = estimateCmd.MarkFlagRequired("blueprint")
	_ = estimateCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(estimateCmd)

	exportCmd.Flags().StringVar(&exportProjectID, "project", "", "project id (required)")
	exportCmd.Flags().StringVar(&exportEstimateID, "estimate", "", "estimate id (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (defaults to estimate-<id>.xlsx)")
	_ = exportCmd.MarkFlagRequired("project")
	_ = exportCmd.MarkFlagRequired("estimate")
	rootCmd.AddCommand(exportCmd)
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	est, err := a.Engine.Generate(ctx, estimate.GenerateRequest{
		ProjectID:   estimateProjectID,
		BlueprintID: estimateBlueprintID,
		CompanyID:   estimateCompanyID,
		UserID:      userID,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), est)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	data, err := a.Export.ExportEstimateXLSX(ctx, exportProjectID, exportEstimateID)
	if err != nil {
		return err
	}
	out := exportOutput
	if out == "" {
		out = fmt.Sprintf("estimate-%s.xlsx", exportEstimateID)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
	return nil
}

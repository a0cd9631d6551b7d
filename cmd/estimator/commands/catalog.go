package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/blueprint-estimator/internal/services/pricebook"
)

var seedCmd = &cobra.Command{
	Use:   "seed <catalog.yaml>",
	Short: "Load materials and assemblies from a YAML catalog file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage extraction templates",
}

var templatesImportCmd = &cobra.Command{
	Use:   "import <templates.yaml>",
	Short: "Import extraction templates from a multi-document YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesImport,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	templatesCmd.AddCommand(templatesImportCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	seed, err := pricebook.ParseSeed(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	res, err := a.PriceBook.Seed(ctx, seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d materials, %d assemblies\n", res.Materials, res.Assemblies)
	return nil
}

func runTemplatesImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	saved, err := a.Templates.ImportYAML(ctx, data, userID)
	if err != nil {
		return err
	}
	for _, t := range saved {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.TemplateID, t.Name)
	}
	return nil
}

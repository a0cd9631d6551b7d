package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/blueprint"
	"github.com/joseph-ayodele/blueprint-estimator/internal/services/project"
)

var (
	extractPDFPath    string
	extractProjectID  string
	extractNewProject string
	extractCompanyID  string
	extractFileKey    string
	extractTemplateID string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a blueprint from a PDF",
	Long: `Upload a PDF to the blob store and run blueprint extraction for a project.
Use --new-project to create the project first.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractPDFPath, "pdf", "p", "", "path to the blueprint PDF (required)")
	extractCmd.Flags().StringVar(&extractProjectID, "project", "", "existing project id")
	extractCmd.Flags().StringVar(&extractNewProject, "new-project", "", "create a project with this name")
	extractCmd.Flags().StringVar(&extractCompanyID, "company", "", "company id for --new-project")
	extractCmd.Flags().StringVar(&extractFileKey, "key", "", "blob key (defaults to uploads/<file name>)")
	extractCmd.Flags().StringVar(&extractTemplateID, "template", "", "extraction template id")
	_ = extractCmd.MarkFlagRequired("pdf")
	extractCmd.MarkFlagsMutuallyExclusive("project", "new-project")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	if extractProjectID == "" && extractNewProject == "" {
		return fmt.Errorf("one of --project or --new-project is required")
	}
	data, err := os.ReadFile(extractPDFPath)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	projectID := extractProjectID
	if extractNewProject != "" {
		p, err := a.Projects.CreateProject(ctx, project.CreateProjectRequest{
			Name:      extractNewProject,
			CompanyID: extractCompanyID,
			UserID:    userID,
		})
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		projectID = p.ProjectID
	}

	key := extractFileKey
	if key == "" {
		key = "uploads/" + filepath.Base(extractPDFPath)
	}
	if err := a.Files.Put(ctx, key, data, constants.ContentTypePDF); err != nil {
		return fmt.Errorf("store pdf: %w", err)
	}

	req := blueprint.Request{ProjectID: projectID, FileKey: key, UserID: userID}
	if extractTemplateID != "" {
		req.TemplateID = &extractTemplateID
	}
	bp, err := a.Processor.ProcessBlueprint(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), bp)
}

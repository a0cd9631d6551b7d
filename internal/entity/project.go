package entity

import (
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
)

// BlueprintState tracks the latest extraction run of a project.
type BlueprintState struct {
	ProcessingStatus constants.BlueprintStatus `json:"processingStatus,omitempty"`
	BlueprintID      string                    `json:"blueprintId,omitempty"`
	FileKey          string                    `json:"fileKey,omitempty"`
	Error            string                    `json:"error,omitempty"`
	UpdatedAt        *time.Time                `json:"updatedAt,omitempty"`
}

// Project owns blueprints and estimates.
type Project struct {
	ProjectID string         `json:"projectId"`
	CompanyID string         `json:"companyId"`
	Name      string         `json:"name"`
	Address   string         `json:"address,omitempty"`
	Blueprint BlueprintState `json:"blueprint"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	CreatedBy string         `json:"createdBy,omitempty"`
	UpdatedBy string         `json:"updatedBy,omitempty"`
}

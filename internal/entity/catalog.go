package entity

import "time"

// AssemblyMaterial is one bill-of-materials line, per unit of assembly.
type AssemblyMaterial struct {
	MaterialID string  `json:"materialId" yaml:"materialId"`
	Quantity   float64 `json:"quantity" yaml:"quantity"`
}

// Assembly is a catalog-defined installable unit: labor plus materials.
type Assembly struct {
	ID                  string             `json:"id" yaml:"id"`
	Code                string             `json:"code" yaml:"code"`
	Name                string             `json:"name" yaml:"name"`
	Phase               string             `json:"phase" yaml:"phase"`
	LaborMinutes        float64            `json:"laborMinutes" yaml:"laborMinutes"`
	Materials           []AssemblyMaterial `json:"materials,omitempty" yaml:"materials,omitempty"`
	DefaultMaterialCost *float64           `json:"defaultMaterialCost,omitempty" yaml:"defaultMaterialCost,omitempty"`
	UpdatedAt           time.Time          `json:"updatedAt" yaml:"-"`
}

// Material is a priced catalog material.
type Material struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Unit        string    `json:"unit,omitempty" yaml:"unit,omitempty"`
	CurrentCost float64   `json:"currentCost" yaml:"currentCost"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"-"`
}

// CatalogSeed is the file shape accepted by catalog imports.
type CatalogSeed struct {
	Materials  []Material `json:"materials" yaml:"materials"`
	Assemblies []Assembly `json:"assemblies" yaml:"assemblies"`
}

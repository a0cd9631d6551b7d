package entity

import (
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
)

// BoundingBox is a rectangle in page coordinates (points, origin top-left).
type BoundingBox struct {
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
	X2 float64 `json:"x2" yaml:"x2"`
	Y2 float64 `json:"y2" yaml:"y2"`
}

// Contains reports whether inner lies fully inside b. Corners may be given in
// any order.
func (b BoundingBox) Contains(inner BoundingBox) bool {
	n := b.Normalized()
	in := inner.Normalized()
	return in.X1 >= n.X1 && in.Y1 >= n.Y1 && in.X2 <= n.X2 && in.Y2 <= n.Y2
}

// Normalized returns b with X1<=X2 and Y1<=Y2.
func (b BoundingBox) Normalized() BoundingBox {
	if b.X1 > b.X2 {
		b.X1, b.X2 = b.X2, b.X1
	}
	if b.Y1 > b.Y2 {
		b.Y1, b.Y2 = b.Y2, b.Y1
	}
	return b
}

// Pattern extracts one scalar field. Regex patterns use Expression; coordinate
// patterns use Coordinates.
type Pattern struct {
	DataType    constants.BlueprintField `json:"dataType" yaml:"dataType"`
	PatternType constants.PatternType    `json:"patternType" yaml:"patternType"`
	Expression  string                   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Coordinates *BoundingBox             `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
}

// RoomPattern is a template-supplied room matcher. Matching on room patterns is
// not supported yet; templates may carry them for forward compatibility.
type RoomPattern struct {
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"pattern" yaml:"pattern"`
	RoomType   string `json:"roomType,omitempty" yaml:"roomType,omitempty"`
}

// Template is a named set of extraction patterns tuned to one drawing layout.
type Template struct {
	TemplateID   string        `json:"templateId" yaml:"templateId,omitempty"`
	Name         string        `json:"name" yaml:"name"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	Patterns     []Pattern     `json:"patterns" yaml:"patterns"`
	RoomPatterns []RoomPattern `json:"roomPatterns,omitempty" yaml:"roomPatterns,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time     `json:"updatedAt" yaml:"-"`
	CreatedBy    string        `json:"createdBy,omitempty" yaml:"-"`
}

// PatternsFor returns the template patterns targeting field, in declaration order.
func (t *Template) PatternsFor(field constants.BlueprintField) []Pattern {
	if t == nil {
		return nil
	}
	var out []Pattern
	for _, p := range t.Patterns {
		if p.DataType == field {
			out = append(out, p)
		}
	}
	return out
}

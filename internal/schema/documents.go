package schema

import "github.com/joseph-ayodele/blueprint-estimator/constants"

var (
	Template        = mustCompile("template.json", TemplateSchema())
	EstimatePatch   = mustCompile("estimate-patch.json", EstimatePatchSchema())
	EstimateRooms   = mustCompile("estimate-rooms.json", roomsDocSchema())
	EstimateStatus  = mustCompile("estimate-status.json", EstimateStatusSchema())
	CompanySettings = mustCompile("company-settings.json", CompanySettingsSchema())
	Assembly        = mustCompile("assembly.json", AssemblySchema())
)

func nonNegative() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

func percentage() map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 1000}
}

func boxSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"x1", "y1", "x2", "y2"},
		"properties": map[string]any{
			"x1": map[string]any{"type": "number"},
			"y1": map[string]any{"type": "number"},
			"x2": map[string]any{"type": "number"},
			"y2": map[string]any{"type": "number"},
		},
	}
}

// TemplateSchema describes an extraction template document.
func TemplateSchema() map[string]any {
	pattern := map[string]any{
		"type":     "object",
		"required": []string{"dataType", "patternType"},
		"properties": map[string]any{
			"dataType":    map[string]any{"type": "string", "enum": constants.BlueprintFieldsAsStrings()},
			"patternType": map[string]any{"type": "string", "enum": []string{string(constants.PatternRegex), string(constants.PatternCoordinates)}},
			"pattern":     map[string]any{"type": "string"},
			"coordinates": boxSchema(),
		},
		"allOf": []any{
			map[string]any{
				"if":   map[string]any{"properties": map[string]any{"patternType": map[string]any{"const": string(constants.PatternRegex)}}},
				"then": map[string]any{"required": []string{"pattern"}, "properties": map[string]any{"pattern": map[string]any{"minLength": 1}}},
			},
			map[string]any{
				"if":   map[string]any{"properties": map[string]any{"patternType": map[string]any{"const": string(constants.PatternCoordinates)}}},
				"then": map[string]any{"required": []string{"coordinates"}},
			},
		},
	}
	roomPattern := map[string]any{
		"type":     "object",
		"required": []string{"name", "pattern"},
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "minLength": 1},
			"pattern":  map[string]any{"type": "string", "minLength": 1},
			"roomType": map[string]any{"type": "string"},
		},
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"name", "patterns"},
		"properties": map[string]any{
			"templateId":   map[string]any{"type": "string"},
			"name":         map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
			"description":  map[string]any{"type": "string"},
			"patterns":     map[string]any{"type": "array", "items": pattern},
			"roomPatterns": map[string]any{"type": "array", "items": roomPattern},
		},
	}
}

func estimateItemSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"quantity"},
		"properties": map[string]any{
			"itemId":       map[string]any{"type": "string"},
			"assemblyId":   map[string]any{"type": "string"},
			"assemblyCode": map[string]any{"type": "string"},
			"assemblyName": map[string]any{"type": "string"},
			"deviceType":   map[string]any{"type": "string"},
			"quantity":     map[string]any{"type": "integer", "minimum": 0},
			"laborHours":   nonNegative(),
			"materialCost": nonNegative(),
			"totalCost":    map[string]any{"type": "number"},
			"phase":        map[string]any{"type": "string"},
			"notes":        map[string]any{"type": "string"},
		},
	}
}

func estimateRoomsSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"name", "items"},
			"properties": map[string]any{
				"roomId": map[string]any{"type": "string"},
				"name":   map[string]any{"type": "string", "minLength": 1},
				"floor":  map[string]any{"type": "integer", "minimum": 1},
				"items":  map[string]any{"type": "array", "items": estimateItemSchema()},
			},
		},
	}
}

// EstimatePatchSchema describes a partial update of a draft estimate.
func EstimatePatchSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"minProperties":        1,
		"properties": map[string]any{
			"rooms":              estimateRoomsSchema(),
			"laborRate":          nonNegative(),
			"overheadPercentage": percentage(),
			"profitPercentage":   percentage(),
			"notes":              map[string]any{"type": "string"},
		},
	}
}

// roomsDocSchema describes the body of a manual estimate creation.
func roomsDocSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"companyId", "rooms"},
		"properties": map[string]any{
			"companyId":   map[string]any{"type": "string", "minLength": 1},
			"blueprintId": map[string]any{"type": "string"},
			"rooms":       estimateRoomsSchema(),
			"notes":       map[string]any{"type": "string"},
		},
	}
}

func estimateStatuses() []string {
	return []string{
		string(constants.EstimateStatusDraft),
		string(constants.EstimateStatusPending),
		string(constants.EstimateStatusApproved),
		string(constants.EstimateStatusRejected),
		string(constants.EstimateStatusSent),
		string(constants.EstimateStatusAccepted),
	}
}

// EstimateStatusSchema describes a status change request.
func EstimateStatusSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"status"},
		"properties": map[string]any{
			"status": map[string]any{"type": "string", "enum": estimateStatuses()},
		},
	}
}

// CompanySettingsSchema describes a company pricing document.
func CompanySettingsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"companyId":          map[string]any{"type": "string"},
			"name":               map[string]any{"type": "string"},
			"hourlyRate":         nonNegative(),
			"overheadPercentage": percentage(),
			"profitPercentage":   percentage(),
		},
	}
}

// AssemblySchema describes a catalog assembly document.
func AssemblySchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"name", "phase", "laborMinutes"},
		"properties": map[string]any{
			"id":                  map[string]any{"type": "string"},
			"code":                map[string]any{"type": "string"},
			"name":                map[string]any{"type": "string", "minLength": 1},
			"phase":               map[string]any{"type": "string", "minLength": 1},
			"laborMinutes":        nonNegative(),
			"defaultMaterialCost": nonNegative(),
			"materials": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"materialId", "quantity"},
					"properties": map[string]any{
						"materialId": map[string]any{"type": "string", "minLength": 1},
						"quantity":   nonNegative(),
					},
				},
			},
		},
	}
}

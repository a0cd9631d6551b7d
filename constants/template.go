package constants

// PatternType selects how a template pattern body is interpreted.
type PatternType string

const (
	PatternRegex       PatternType = "regex"
	PatternCoordinates PatternType = "coordinates"
)

// BlueprintField names the scalar job fields a template pattern can target.
type BlueprintField string

const (
	FieldJobName            BlueprintField = "jobName"
	FieldJobAddress         BlueprintField = "jobAddress"
	FieldJobNumber          BlueprintField = "jobNumber"
	FieldClassificationCode BlueprintField = "classificationCode"
	FieldSquareFootage      BlueprintField = "squareFootage"
)

// BlueprintFields is the extraction order of scalar fields.
var BlueprintFields = []BlueprintField{
	FieldJobName,
	FieldJobAddress,
	FieldJobNumber,
	FieldClassificationCode,
	FieldSquareFootage,
}

// Field defaults used when neither a template nor a label heuristic matches.
const (
	DefaultJobName            = "Untitled Project"
	DefaultJobAddress         = "Address not found"
	DefaultClassificationCode = "R-3"
	DefaultRoomName           = "Main Room"
	JobNumberPrefix           = "JOB-"
)

// FieldLabels are the lower-case label substrings tried for each field when no
// template pattern matched, in priority order.
var FieldLabels = map[BlueprintField][]string{
	FieldJobName:            {"project:", "job name:", "project name:"},
	FieldJobAddress:         {"address:", "location:", "site:"},
	FieldJobNumber:          {"job number:", "job no:", "job #:", "project number:"},
	FieldClassificationCode: {"classification:", "occupancy:", "occupancy class:"},
	FieldSquareFootage:      {"square footage:", "sq ft:", "sqft:", "area:", "total area:"},
}

func BlueprintFieldsAsStrings() []string {
	out := make([]string, len(BlueprintFields))
	for i, f := range BlueprintFields {
		out[i] = string(f)
	}
	return out
}

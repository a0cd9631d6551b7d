package blueprint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/docextract"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// JobFields are the scalar job metadata read from a drawing.
type JobFields struct {
	JobName            string
	JobAddress         string
	JobNumber          string
	ClassificationCode string
	SquareFootage      float64
}

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// extractFields resolves every scalar field. A failure on one field only
// costs that field its default.
func (p *Processor) extractFields(tokens []docextract.Token, tpl *entity.Template) JobFields {
	f := JobFields{
		JobName:            constants.DefaultJobName,
		JobAddress:         constants.DefaultJobAddress,
		JobNumber:          fmt.Sprintf("%s%d", constants.JobNumberPrefix, p.now().UnixMilli()),
		ClassificationCode: constants.DefaultClassificationCode,
	}

	for _, field := range constants.BlueprintFields {
		raw, ok, err := findField(field, tokens, tpl)
		if err != nil {
			p.log.Warn("blueprint.field.failed", "field", field, "error", err)
			continue
		}
		if !ok {
			p.log.Debug("blueprint.field.default", "field", field)
			continue
		}

		switch field {
		case constants.FieldJobName:
			f.JobName = raw
		case constants.FieldJobAddress:
			f.JobAddress = raw
		case constants.FieldJobNumber:
			f.JobNumber = raw
		case constants.FieldClassificationCode:
			f.ClassificationCode = raw
		case constants.FieldSquareFootage:
			sqft, err := parseSquareFootage(raw)
			if err != nil {
				p.log.Warn("blueprint.field.failed", "field", field, "value", raw, "error", err)
				continue
			}
			f.SquareFootage = sqft
		}
	}
	return f
}

// findField tries the template's patterns for field first, then the label
// heuristic.
func findField(field constants.BlueprintField, tokens []docextract.Token, tpl *entity.Template) (string, bool, error) {
	var firstErr error
	for _, pat := range tpl.PatternsFor(field) {
		v, ok, err := applyPattern(pat, tokens)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return v, true, nil
		}
	}
	if v, ok := matchLabel(field, tokens); ok {
		return v, true, nil
	}
	return "", false, firstErr
}

func applyPattern(pat entity.Pattern, tokens []docextract.Token) (string, bool, error) {
	switch pat.PatternType {
	case constants.PatternRegex:
		re, err := regexp.Compile(pat.Expression)
		if err != nil {
			return "", false, fmt.Errorf("compile %s pattern: %w", pat.DataType, err)
		}
		v, ok := matchRegex(re, tokens)
		return v, ok, nil
	case constants.PatternCoordinates:
		if pat.Coordinates == nil {
			return "", false, fmt.Errorf("%s coordinates pattern has no box", pat.DataType)
		}
		v, ok := matchCoordinates(*pat.Coordinates, tokens)
		return v, ok, nil
	default:
		return "", false, fmt.Errorf("unknown pattern type %q", pat.PatternType)
	}
}

// matchRegex returns the first capture group (or the whole match when the
// expression has no groups) of the first token that matches.
func matchRegex(re *regexp.Regexp, tokens []docextract.Token) (string, bool) {
	for _, t := range tokens {
		m := re.FindStringSubmatch(t.Str)
		if m == nil {
			continue
		}
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// matchCoordinates returns the first token lying fully inside box.
func matchCoordinates(box entity.BoundingBox, tokens []docextract.Token) (string, bool) {
	for _, t := range tokens {
		if !box.Contains(t.Box()) {
			continue
		}
		if v := strings.TrimSpace(t.Str); v != "" {
			return v, true
		}
	}
	return "", false
}

// matchLabel finds the first token carrying one of the field's labels and
// returns the text after its first colon.
func matchLabel(field constants.BlueprintField, tokens []docextract.Token) (string, bool) {
	labels := constants.FieldLabels[field]
	for _, t := range tokens {
		lower := strings.ToLower(t.Str)
		for _, label := range labels {
			if !strings.Contains(lower, label) {
				continue
			}
			_, after, ok := strings.Cut(t.Str, ":")
			if !ok {
				continue
			}
			if v := strings.TrimSpace(after); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func parseSquareFootage(s string) (float64, error) {
	num := numberPattern.FindString(s)
	if num == "" {
		return 0, fmt.Errorf("no number in %q", s)
	}
	return strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
}

package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/repository"
	"github.com/joseph-ayodele/blueprint-estimator/internal/schema"
)

// Service handles extraction template business logic.
type Service struct {
	templateRepo repository.TemplateRepository
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// NewService creates a new template service.
func NewService(templates repository.TemplateRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		templateRepo: templates,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// SaveTemplate validates and stores a template. A template without an id gets
// a new one; saving over an existing id keeps its creation stamp.
func (s *Service) SaveTemplate(ctx context.Context, t *entity.Template, userID string) (*entity.Template, error) {
	if t == nil {
		return nil, common.InvalidInput("template is required")
	}
	if t.Patterns == nil {
		t.Patterns = []entity.Pattern{}
	}
	t.Name = strings.TrimSpace(t.Name)
	if err := schema.Template.ValidateStruct(t); err != nil {
		return nil, err
	}
	if err := checkPatterns(t); err != nil {
		return nil, err
	}

	now := s.now()
	t.UpdatedAt = now
	t.CreatedAt = now
	t.CreatedBy = userID
	if t.TemplateID == "" {
		t.TemplateID = s.newID()
	} else {
		prev, err := s.templateRepo.Get(ctx, t.TemplateID)
		switch {
		case err == nil:
			t.CreatedAt = prev.CreatedAt
			t.CreatedBy = prev.CreatedBy
		case !errors.Is(err, common.ErrNotFound):
			return nil, err
		}
	}

	if err := s.templateRepo.Put(ctx, t); err != nil {
		return nil, err
	}
	if len(t.RoomPatterns) > 0 {
		s.logger.Warn("template room patterns stored but not matched; rooms use the keyword scan",
			"template_id", t.TemplateID, "room_patterns", len(t.RoomPatterns))
	}
	s.logger.Info("template saved successfully", "template_id", t.TemplateID, "name", t.Name)
	return t, nil
}

// checkPatterns enforces what the JSON Schema cannot: regex bodies compile and
// coordinate boxes have area.
func checkPatterns(t *entity.Template) error {
	validator := common.NewValidator()
	for i, p := range t.Patterns {
		field := fmt.Sprintf("patterns[%d]", i)
		switch p.PatternType {
		case constants.PatternRegex:
			if _, err := regexp.Compile(p.Expression); err != nil {
				validator.Field(field+".pattern", p.Expression, invalid("does not compile: "+err.Error()))
			}
		case constants.PatternCoordinates:
			if p.Coordinates == nil {
				validator.Field(field+".coordinates", nil, common.Required)
				continue
			}
			b := p.Coordinates.Normalized()
			if b.X1 == b.X2 || b.Y1 == b.Y2 {
				validator.Field(field+".coordinates", *p.Coordinates, invalid("must enclose an area"))
			}
		}
	}
	return common.ValidateAndReturnError(validator)
}

func invalid(msg string) common.ValidationRule {
	return func(fieldName string, value interface{}) *common.ValidationError {
		return &common.ValidationError{Field: fieldName, Value: value, Message: msg}
	}
}

// GetTemplate returns one template.
func (s *Service) GetTemplate(ctx context.Context, templateID string) (*entity.Template, error) {
	if strings.TrimSpace(templateID) == "" {
		return nil, common.InvalidInput("templateId is required")
	}
	return s.templateRepo.Get(ctx, templateID)
}

// ParseYAML reads one or more templates from a YAML stream. Documents are
// separated by "---".
func ParseYAML(r io.Reader) ([]entity.Template, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []entity.Template
	for {
		var t entity.Template
		err := dec.Decode(&t)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.InvalidInput(fmt.Sprintf("template yaml document %d: %v", len(out)+1, err))
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, common.InvalidInput("template yaml contains no documents")
	}
	return out, nil
}

// ImportYAML parses and saves every template in data. It stops at the first
// template that fails validation.
func (s *Service) ImportYAML(ctx context.Context, data []byte, userID string) ([]*entity.Template, error) {
	parsed, err := ParseYAML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	saved := make([]*entity.Template, 0, len(parsed))
	for i := range parsed {
		t, err := s.SaveTemplate(ctx, &parsed[i], userID)
		if err != nil {
			return saved, common.WrapError(err, fmt.Sprintf("import template %q", parsed[i].Name))
		}
		saved = append(saved, t)
	}
	s.logger.Info("templates imported", "count", len(saved))
	return saved, nil
}

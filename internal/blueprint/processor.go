// Package blueprint turns blueprint PDFs into structured rooms, devices and
// job metadata.
package blueprint

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/docextract"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// ProjectStore is the project access the processor needs.
type ProjectStore interface {
	Get(ctx context.Context, projectID string) (*entity.Project, error)
	UpdateBlueprintState(ctx context.Context, projectID string, state entity.BlueprintState, userID string) error
}

type BlueprintStore interface {
	Put(ctx context.Context, bp *entity.Blueprint) error
}

type TemplateStore interface {
	Get(ctx context.Context, templateID string) (*entity.Template, error)
}

// FileStore fetches source documents.
type FileStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Request identifies one extraction run.
type Request struct {
	ProjectID  string
	FileKey    string
	TemplateID *string
	UserID     string
}

// Extraction is the structured content read from one document.
type Extraction struct {
	JobFields
	Floors    int
	Rooms     []entity.ExtractedRoom
	PageCount int
}

// Processor runs the blueprint extraction pipeline.
type Processor struct {
	projects   ProjectStore
	blueprints BlueprintStore
	templates  TemplateStore
	files      FileStore
	extractor  docextract.Extractor
	log        *slog.Logger

	now      func() time.Time
	newID    func() string
	maxPages int
}

type Option func(*Processor)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(gen func() string) Option {
	return func(p *Processor) { p.newID = gen }
}

// WithMaxPages limits how many pages are read per document.
func WithMaxPages(n int) Option {
	return func(p *Processor) { p.maxPages = n }
}

func NewProcessor(
	projects ProjectStore,
	blueprints BlueprintStore,
	templates TemplateStore,
	files FileStore,
	extractor docextract.Extractor,
	logger *slog.Logger,
	opts ...Option,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		projects:   projects,
		blueprints: blueprints,
		templates:  templates,
		files:      files,
		extractor:  extractor,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessBlueprint extracts the project's PDF at req.FileKey and persists the
// resulting blueprint. The project's blueprint status moves to PROCESSING and
// then to COMPLETED or ERROR.
func (p *Processor) ProcessBlueprint(ctx context.Context, req Request) (*entity.Blueprint, error) {
	v := common.NewValidator().
		Field("projectId", req.ProjectID, common.Required).
		Field("fileKey", req.FileKey, common.Required)
	if err := common.ValidateInput(v); err != nil {
		return nil, err
	}

	if _, err := p.projects.Get(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	start := p.now()
	bp := &entity.Blueprint{
		BlueprintID: p.newID(),
		ProjectID:   req.ProjectID,
		S3Key:       req.FileKey,
		TemplateID:  req.TemplateID,
		Status:      constants.BlueprintStatusProcessing,
		CreatedAt:   start,
		UpdatedAt:   start,
		CreatedBy:   req.UserID,
		UpdatedBy:   req.UserID,
	}
	log := p.log.With("project_id", req.ProjectID, "blueprint_id", bp.BlueprintID)
	log.Info("blueprint.process.start", "file_key", req.FileKey)

	state := entity.BlueprintState{
		ProcessingStatus: constants.BlueprintStatusProcessing,
		BlueprintID:      bp.BlueprintID,
		FileKey:          req.FileKey,
	}
	if err := p.projects.UpdateBlueprintState(ctx, req.ProjectID, state, req.UserID); err != nil {
		return nil, p.fail(ctx, log, req, state, err)
	}

	if err := p.run(ctx, log, req, bp); err != nil {
		return nil, p.fail(ctx, log, req, state, err)
	}

	state.ProcessingStatus = constants.BlueprintStatusCompleted
	if err := p.projects.UpdateBlueprintState(ctx, req.ProjectID, state, req.UserID); err != nil {
		log.Warn("blueprint.process.status_update_failed", "status", state.ProcessingStatus, "error", err)
	}
	log.Info("blueprint.process.ok",
		"rooms", len(bp.Rooms),
		"devices", bp.DeviceCount(),
		"floors", bp.Floors,
		"duration_ms", p.now().Sub(start).Milliseconds(),
	)
	return bp, nil
}

func (p *Processor) run(ctx context.Context, log *slog.Logger, req Request, bp *entity.Blueprint) error {
	var tpl *entity.Template
	if req.TemplateID != nil && *req.TemplateID != "" {
		t, err := p.templates.Get(ctx, *req.TemplateID)
		if err != nil {
			return err
		}
		tpl = t
	}

	data, err := p.files.Get(ctx, req.FileKey)
	if err != nil {
		return err
	}

	ext, err := p.Extract(ctx, data, tpl)
	if err != nil {
		return err
	}

	bp.JobName = ext.JobName
	bp.JobAddress = ext.JobAddress
	bp.JobNumber = ext.JobNumber
	bp.ClassificationCode = ext.ClassificationCode
	bp.SquareFootage = ext.SquareFootage
	bp.Floors = ext.Floors
	bp.Rooms = ext.Rooms
	bp.PageCount = ext.PageCount
	bp.Status = constants.BlueprintStatusCompleted
	bp.UpdatedAt = p.now()

	if err := p.blueprints.Put(ctx, bp); err != nil {
		return err
	}
	log.Debug("blueprint.persisted")
	return nil
}

// fail records ERROR on the project and returns the original error. The
// status write is best-effort.
func (p *Processor) fail(ctx context.Context, log *slog.Logger, req Request, state entity.BlueprintState, cause error) error {
	log.Error("blueprint.process.failed", "error", cause)
	state.ProcessingStatus = constants.BlueprintStatusError
	state.Error = cause.Error()
	// the caller's context may be the reason we failed
	statusCtx := context.WithoutCancel(ctx)
	if err := p.projects.UpdateBlueprintState(statusCtx, req.ProjectID, state, req.UserID); err != nil {
		log.Warn("blueprint.process.status_update_failed", "status", state.ProcessingStatus, "error", err)
	}
	return cause
}

// Extract reads a PDF and derives its blueprint content without persisting
// anything.
func (p *Processor) Extract(ctx context.Context, data []byte, tpl *entity.Template) (*Extraction, error) {
	pages, err := p.extractor.Extract(ctx, data, docextract.Options{MaxPages: p.maxPages})
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, common.Extraction("extract document text", err)
	}
	return p.Build(pages, tpl), nil
}

// Build derives blueprint content from already extracted pages.
func (p *Processor) Build(pages []docextract.Page, tpl *entity.Template) *Extraction {
	tokens := docextract.Flatten(pages)

	ext := &Extraction{
		JobFields: p.extractFields(tokens, tpl),
		Floors:    detectFloors(tokens),
		PageCount: len(pages),
	}

	if tpl != nil && len(tpl.RoomPatterns) > 0 {
		if _, err := matchRoomPatterns(tpl, tokens); err != nil {
			p.log.Warn("blueprint.room_patterns.skipped", "template_id", tpl.TemplateID, "error", err)
		}
	}
	ext.Rooms = p.detectRooms(tokens)
	p.attachDevices(ext.Rooms)

	if mentions := deviceMentions(tokens); len(mentions) > 0 {
		p.log.Debug("blueprint.device_mentions", "mentions", mentions)
	}
	return ext
}

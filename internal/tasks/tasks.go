// package tasks implements catalog operations on top of the REST API.
//
// The core abstraction is CatalogEngine, which saves edit sessions, deletes entities and reloads the affected list.
// Operations emit notices via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shopx/internal/forms"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/services"
	"github.com/desertthunder/shopx/internal/shared"
)

const (
	videoEntity    = "video"
	categoryEntity = "category"
)

// Recorder stores an audit entry for each write sent to the API.
type Recorder interface {
	Record(entity string, entityID int64, op models.Operation, fields []string, multipart bool, err error) error
}

// SaveResult describes a completed save.
type SaveResult struct {
	Entity    string
	ID        int64
	Operation models.Operation
	Fields    []string
	Multipart bool
	Skipped   bool // update had no changes and nothing was sent
}

// EngineOpts configures a [CatalogEngine]. Every field is optional.
type EngineOpts struct {
	Recorder  Recorder
	Notices   chan<- Notice
	Logger    *log.Logger
	PageSize  int
	PageDelta int
	Workers   int
	RateLimit float64
}

// CatalogEngine saves and deletes catalog entities and keeps the video and category lists in step with the
// server. Every successful write reloads the affected list.
type CatalogEngine struct {
	catalog    services.Catalog
	Videos     *VideoList
	Categories *CategoryList

	recorder  Recorder
	notices   chan<- Notice
	logger    *log.Logger
	workers   int
	rateLimit float64
}

// NewCatalogEngine creates a new CatalogEngine for catalog.
func NewCatalogEngine(catalog services.Catalog, opts EngineOpts) *CatalogEngine {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.PageDelta <= 0 {
		opts.PageDelta = 2
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &CatalogEngine{
		catalog:    catalog,
		Videos:     NewVideoList(catalog, opts.PageSize, opts.PageDelta),
		Categories: NewCategoryList(catalog),
		recorder:   opts.Recorder,
		notices:    opts.Notices,
		logger:     shared.WithLogger(opts.Logger, "component", "engine"),
		workers:    opts.Workers,
		rateLimit:  opts.RateLimit,
	}
}

// SetLogger replaces the engine's logger.
func (e *CatalogEngine) SetLogger(l *log.Logger) {
	e.logger = shared.WithLogger(l, "component", "engine")
}

// sendNotice sends a notice through the channel without blocking.
func (e *CatalogEngine) sendNotice(n Notice) {
	if e.notices == nil {
		return
	}
	select {
	case e.notices <- n:
	default:
	}
}

// SaveVideo submits a video edit session and reloads the video list.
//
// Create sessions failing the required-field gate return a [*forms.ValidationError] without any request. Edit
// sessions with no changes skip the request and only reload. On a failed write the session is left untouched so
// it can be retried.
func (e *CatalogEngine) SaveVideo(ctx context.Context, s *forms.Session) (*SaveResult, error) {
	payload, err := e.payload(s, videoEntity)
	if err != nil {
		return nil, err
	}
	return e.SubmitVideo(ctx, payload)
}

// SaveCategory submits a category edit session and reloads the category list.
func (e *CatalogEngine) SaveCategory(ctx context.Context, s *forms.Session) (*SaveResult, error) {
	payload, err := e.payload(s, categoryEntity)
	if err != nil {
		return nil, err
	}
	return e.SubmitCategory(ctx, payload)
}

// SubmitVideo sends a payload already taken from a video session. Callers that keep editing the session while the
// request runs submit through here so the request never reads the session.
func (e *CatalogEngine) SubmitVideo(ctx context.Context, p *forms.Payload) (*SaveResult, error) {
	return e.submit(ctx, p, videoEntity, e.catalog.CreateVideo, e.catalog.UpdateVideo, e.Videos.Load)
}

// SubmitCategory sends a payload already taken from a category session.
func (e *CatalogEngine) SubmitCategory(ctx context.Context, p *forms.Payload) (*SaveResult, error) {
	return e.submit(ctx, p, categoryEntity, e.catalog.CreateCategory, e.catalog.UpdateCategory, e.Categories.Load)
}

func (e *CatalogEngine) payload(s *forms.Session, entity string) (*forms.Payload, error) {
	if s.Schema().Entity != entity {
		return nil, fmt.Errorf("%w: %s session cannot be saved as %s", shared.ErrInvalidInput, s.Schema().Entity, entity)
	}
	payload, err := s.Payload()
	if err != nil {
		e.sendNotice(errorNotice(err))
		return nil, err
	}
	return payload, nil
}

func (e *CatalogEngine) submit(
	ctx context.Context,
	payload *forms.Payload,
	entity string,
	create func(context.Context, *forms.Payload) error,
	update func(context.Context, int64, *forms.Payload) error,
	reload func(context.Context) error,
) (*SaveResult, error) {
	if payload.Entity() != entity {
		return nil, fmt.Errorf("%w: %s payload cannot be saved as %s", shared.ErrInvalidInput, payload.Entity(), entity)
	}

	res := &SaveResult{
		Entity:    entity,
		ID:        payload.ID(),
		Fields:    payload.Names(),
		Multipart: payload.Multipart(),
	}

	var err error
	if payload.Mode() == forms.EditMode {
		res.Operation = models.OpUpdate
		if payload.Empty() {
			res.Skipped = true
			e.logger.Debug("no changes, skipping update", "entity", entity, "id", payload.ID())
			e.sendNotice(unchangedNotice())
			e.reload(ctx, reload)
			return res, nil
		}
		err = update(ctx, payload.ID(), payload)
	} else {
		res.Operation = models.OpCreate
		err = create(ctx, payload)
	}

	e.record(entity, res.ID, res.Operation, res.Fields, res.Multipart, err)
	if err != nil {
		e.logger.Error("save failed", "entity", entity, "id", res.ID, "op", res.Operation, "error", err)
		e.sendNotice(errorNotice(err))
		return nil, err
	}

	e.logger.Info("saved", "entity", entity, "id", res.ID, "op", res.Operation, "fields", res.Fields)
	if res.Operation == models.OpCreate {
		e.sendNotice(createdNotice(entity))
	} else {
		e.sendNotice(updatedNotice(entity))
	}
	e.reload(ctx, reload)
	return res, nil
}

// DeleteVideo removes video id and reloads the video list.
func (e *CatalogEngine) DeleteVideo(ctx context.Context, id int64) error {
	return e.remove(ctx, videoEntity, id, e.catalog.DeleteVideo, e.Videos.Load)
}

// DeleteCategory removes category id and reloads the category list.
func (e *CatalogEngine) DeleteCategory(ctx context.Context, id int64) error {
	return e.remove(ctx, categoryEntity, id, e.catalog.DeleteCategory, e.Categories.Load)
}

func (e *CatalogEngine) remove(
	ctx context.Context,
	entity string,
	id int64,
	del func(context.Context, int64) error,
	reload func(context.Context) error,
) error {
	err := del(ctx, id)
	e.record(entity, id, models.OpDelete, nil, false, err)
	if err != nil {
		e.logger.Error("delete failed", "entity", entity, "id", id, "error", err)
		e.sendNotice(errorNotice(err))
		return err
	}

	e.logger.Info("deleted", "entity", entity, "id", id)
	e.sendNotice(deletedNotice(entity))
	e.reload(ctx, reload)
	return nil
}

// reload refreshes a list after a write. A failed reload keeps the previous items and is reported as a notice.
func (e *CatalogEngine) reload(ctx context.Context, reload func(context.Context) error) {
	if err := reload(ctx); err != nil {
		e.logger.Warn("reload failed", "error", err)
		e.sendNotice(errorNotice(err))
	}
}

func (e *CatalogEngine) record(entity string, id int64, op models.Operation, fields []string, multipart bool, err error) {
	if e.recorder == nil {
		return
	}
	if rerr := e.recorder.Record(entity, id, op, fields, multipart, err); rerr != nil {
		e.logger.Warn("failed to record submission", "error", rerr)
	}
}

// FindVideo returns video id, looking at the loaded page first and then scanning every page.
func (e *CatalogEngine) FindVideo(ctx context.Context, id int64) (*models.Video, error) {
	if v, ok := e.Videos.Find(id); ok {
		return &v, nil
	}

	scan, err := e.FetchAll(ctx, nil, FetchOpts{})
	if err != nil {
		return nil, err
	}
	for _, v := range scan.Videos {
		if v.ID == id {
			return &v, nil
		}
	}
	if len(scan.Failed) > 0 {
		return nil, fmt.Errorf("%w: %d (%d pages could not be fetched)", shared.ErrVideoNotFound, id, len(scan.Failed))
	}
	return nil, fmt.Errorf("%w: %d", shared.ErrVideoNotFound, id)
}

// FindCategory returns category id, loading the category list first if it has not been loaded.
func (e *CatalogEngine) FindCategory(ctx context.Context, id int64) (*models.Category, error) {
	if !e.Categories.Loaded() {
		if err := e.Categories.Load(ctx); err != nil {
			return nil, err
		}
	}
	c, err := e.Categories.Find(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// IsValidation reports whether err was raised by the local required-field gate.
func IsValidation(err error) bool {
	var verr *forms.ValidationError
	return errors.As(err, &verr)
}

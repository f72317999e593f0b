// Package marklens is the client-side controller for a marksheet extraction
// service. It validates user-selected documents, drives the single/batch
// upload session, issues extraction requests, and turns the service's
// confidence-annotated results into view models and export artifacts. It
// performs no extraction itself; the remote service and the presentation
// layer are external collaborators.
package marklens

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marklens/internal/client"
	"marklens/internal/config"
	"marklens/internal/domain"
	"marklens/internal/export"
	"marklens/internal/presenter"
	"marklens/internal/session"
	"marklens/internal/validate"
)

// Aliases so callers work with the root package only.
type (
	File       = domain.File
	Result     = domain.Result
	Mode       = domain.Mode
	Phase      = domain.Phase
	ViewMode   = domain.ViewMode
	State      = session.State
	Banner     = session.Banner
	Sink       = session.Sink
	Artifact   = export.Artifact
	SingleView = presenter.SingleView
	BatchView  = presenter.BatchView
)

const (
	ModeSingle = domain.ModeSingle
	ModeBatch  = domain.ModeBatch

	ViewFormatted = domain.ViewFormatted
	ViewRaw       = domain.ViewRaw

	PhaseIdle       = domain.PhaseIdle
	PhaseSelecting  = domain.PhaseSelecting
	PhaseValidated  = domain.PhaseValidated
	PhaseSubmitting = domain.PhaseSubmitting
	PhaseDisplaying = domain.PhaseDisplaying
)

// Views bundles both renderings of the current result; the presentation
// layer picks one by the session's view mode.
type Views struct {
	Single *SingleView
	Batch  *BatchView
	Raw    string
}

type options struct {
	cfg    *config.Config
	log    *zap.Logger
	sink   Sink
	client client.Client
}

// Option customizes controller construction.
type Option func(*options)

// WithConfig supplies configuration instead of reading the environment.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger supplies a logger instead of building one from config.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithSink registers the presentation layer's update receiver.
func WithSink(sink Sink) Option {
	return func(o *options) { o.sink = sink }
}

// WithClient overrides the extraction client.
func WithClient(c client.Client) Option {
	return func(o *options) { o.client = c }
}

// Controller wires config, validation, session, client, presenter, and
// exporter behind the intent methods the presentation layer calls.
type Controller struct {
	cfg     *config.Config
	log     *zap.Logger
	session *session.Session
}

// New builds a controller. Without WithConfig, configuration comes from
// MARKLENS_-prefixed environment variables (and a .env file when present).
func New(opts ...Option) (*Controller, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		o.cfg = cfg
	}
	if o.log == nil {
		log, err := config.NewLogger(&o.cfg.Log)
		if err != nil {
			return nil, err
		}
		o.log = log
	}
	if o.client == nil {
		o.client = client.New(&o.cfg.API, o.log)
	}

	v := validate.NewValidator(&o.cfg.Upload, o.log)
	return &Controller{
		cfg:     o.cfg,
		log:     o.log,
		session: session.New(o.cfg, v, o.client, o.log, o.sink),
	}, nil
}

// SelectFile is the single-surface selection intent.
func (c *Controller) SelectFile(f File) {
	c.session.SelectSingle(f)
}

// SelectBatch is the batch-surface selection intent.
func (c *Controller) SelectBatch(files []File) {
	c.session.SelectBatch(files)
}

// Submit fires the active mode's extraction request.
func (c *Controller) Submit(ctx context.Context) error {
	return c.session.Submit(ctx)
}

// Reset clears the session back to idle.
func (c *Controller) Reset() {
	c.session.Reset()
}

// SwitchView toggles between formatted and raw renderings.
func (c *Controller) SwitchView(v ViewMode) {
	c.session.SwitchView(v)
}

// SubmitEnabled reports whether a surface's submit control is enabled.
func (c *Controller) SubmitEnabled(mode Mode) bool {
	return c.session.SubmitEnabled(mode)
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	return c.session.State()
}

// Result returns the last-received result, or nil.
func (c *Controller) Result() *Result {
	return c.session.Result()
}

// Views builds the formatted and raw renderings of the current result.
// Returns domain.ErrNoResult when nothing has been extracted yet.
func (c *Controller) Views() (*Views, error) {
	result := c.session.Result()
	if result == nil {
		return nil, domain.ErrNoResult
	}

	raw, err := presenter.Raw(result)
	if err != nil {
		return nil, err
	}

	views := &Views{Raw: raw}
	if result.IsBatch() {
		bv := presenter.Batch(result.Batch)
		views.Batch = &bv
	} else {
		sv := presenter.Single(result.Single)
		views.Single = &sv
	}
	return views, nil
}

// Export serializes the current result to the date-named JSON artifact.
func (c *Controller) Export() (*Artifact, error) {
	return export.JSON(c.session.Result(), time.Now())
}

// ExportWorkbook serializes the current result to the date-named XLSX
// artifact.
func (c *Controller) ExportWorkbook() (*Artifact, error) {
	return export.Workbook(c.session.Result(), time.Now())
}

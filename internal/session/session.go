// Package session tracks selection state, in-flight extraction, and results
// for the single and batch upload workflows. The presentation layer emits
// intents (select, submit, reset, switch view) and receives view-model
// updates through a Sink; it never owns session data.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marklens/internal/client"
	"marklens/internal/config"
	"marklens/internal/domain"
	"marklens/internal/validate"
)

// Banner is a transient error notice for one upload surface. DismissAfter is
// advisory: the presentation layer schedules the auto-clear, the core owns no
// timers.
type Banner struct {
	Mode         domain.Mode
	Message      string
	DismissAfter time.Duration
}

// State is an immutable snapshot of the session for rendering controls.
type State struct {
	Phase       domain.Phase
	ActiveMode  domain.Mode
	ViewMode    domain.ViewMode
	SingleFile  string
	BatchCount  int
	SingleValid bool
	BatchValid  bool
	HasResult   bool
	LastError   string
}

// Sink receives pushed updates. Implementations belong to the presentation
// layer and are invoked on the goroutine that triggered the change.
type Sink interface {
	StateChanged(s State)
	BannerRaised(b Banner)
	ResultUpdated(result *domain.Result)
}

type noopSink struct{}

func (noopSink) StateChanged(State)           {}
func (noopSink) BannerRaised(Banner)          {}
func (noopSink) ResultUpdated(*domain.Result) {}

// Session is the upload/extraction state machine. All state is process-local
// and single-owner; the stored result is replaced wholesale or cleared,
// never partially mutated.
type Session struct {
	id        uuid.UUID
	bannerTTL time.Duration
	validator *validate.Validator
	client    client.Client
	log       *zap.Logger
	sink      Sink

	mu          sync.Mutex
	phase       domain.Phase
	activeMode  domain.Mode
	viewMode    domain.ViewMode
	single      *domain.File
	batch       []domain.File
	singleValid bool
	batchValid  bool
	lastError   string
	result      *domain.Result
}

// New creates an idle session. A nil sink discards updates.
func New(cfg *config.Config, v *validate.Validator, c client.Client, log *zap.Logger, sink Sink) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = noopSink{}
	}
	return &Session{
		id:        uuid.New(),
		bannerTTL: cfg.Banner.DismissAfter(),
		validator: v,
		client:    c,
		log:       log,
		sink:      sink,
		phase:     domain.PhaseIdle,
		viewMode:  domain.ViewFormatted,
	}
}

// ID returns the session's correlation ID.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// SelectSingle buffers a file on the single-upload surface and validates it.
// An invalid selection stays in Selecting and raises a banner; the buffered
// file is left in place for correction. The batch surface's buffer is not
// touched.
func (s *Session) SelectSingle(f domain.File) {
	err := s.validateOne(f)

	s.mu.Lock()
	s.activeMode = domain.ModeSingle
	s.single = &f
	if err != nil {
		s.phase = domain.PhaseSelecting
		s.singleValid = false
		s.lastError = err.Error()
	} else {
		s.phase = domain.PhaseValidated
		s.singleValid = true
		s.lastError = ""
	}
	state := s.snapshot()
	s.mu.Unlock()

	if err != nil {
		s.log.Info("session.SelectSingle: selection rejected",
			zap.String("session", s.id.String()), zap.String("file", f.Name), zap.Error(err))
		s.sink.BannerRaised(Banner{Mode: domain.ModeSingle, Message: err.Error(), DismissAfter: s.bannerTTL})
	}
	s.sink.StateChanged(state)
}

// SelectBatch buffers files on the batch-upload surface and validates the
// batch: cardinality first, then each file in order, failing on the first
// invalid one with that file's reason.
func (s *Session) SelectBatch(files []domain.File) {
	err := s.validator.Batch(files)
	if err == nil {
		for _, f := range files {
			if err = s.validator.Deep(f); err != nil {
				break
			}
		}
	}

	s.mu.Lock()
	s.activeMode = domain.ModeBatch
	s.batch = files
	if err != nil {
		s.phase = domain.PhaseSelecting
		s.batchValid = false
		s.lastError = err.Error()
	} else {
		s.phase = domain.PhaseValidated
		s.batchValid = true
		s.lastError = ""
	}
	state := s.snapshot()
	s.mu.Unlock()

	if err != nil {
		s.log.Info("session.SelectBatch: selection rejected",
			zap.String("session", s.id.String()), zap.Int("files", len(files)), zap.Error(err))
		s.sink.BannerRaised(Banner{Mode: domain.ModeBatch, Message: err.Error(), DismissAfter: s.bannerTTL})
	}
	s.sink.StateChanged(state)
}

// SubmitEnabled reports whether the given mode's submit control is enabled:
// only the active surface, and only with a validated selection.
func (s *Session) SubmitEnabled(mode domain.Mode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode != s.activeMode {
		return false
	}
	switch mode {
	case domain.ModeSingle:
		return s.singleValid && s.single != nil
	case domain.ModeBatch:
		return s.batchValid && len(s.batch) > 0
	default:
		return false
	}
}

// Submit fires the active mode's extraction request. A no-op when nothing
// validated is selected. The request itself runs without the lock held, so a
// second Submit before the first resolves leaves both in flight and the last
// completion wins; callers wanting stricter behavior gate on Phase.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	mode := s.activeMode
	var single *domain.File
	var batch []domain.File
	switch mode {
	case domain.ModeSingle:
		if s.single == nil || !s.singleValid {
			s.mu.Unlock()
			return nil
		}
		single = s.single
	case domain.ModeBatch:
		if len(s.batch) == 0 || !s.batchValid {
			s.mu.Unlock()
			return nil
		}
		batch = s.batch
	default:
		s.mu.Unlock()
		return nil
	}
	s.phase = domain.PhaseSubmitting
	s.lastError = ""
	state := s.snapshot()
	s.mu.Unlock()
	s.sink.StateChanged(state)

	s.log.Info("session.Submit: extraction started",
		zap.String("session", s.id.String()), zap.String("mode", string(mode)))

	var result *domain.Result
	var err error
	if single != nil {
		var res *domain.ExtractionResult
		res, err = s.client.SubmitSingle(ctx, *single)
		if err == nil {
			result = &domain.Result{Single: res, Raw: res.Raw()}
		}
	} else {
		var br domain.BatchResult
		br, err = s.client.SubmitBatch(ctx, batch)
		if err == nil {
			result = &domain.Result{Batch: br}
		}
	}

	if err != nil {
		s.mu.Lock()
		s.phase = domain.PhaseValidated
		s.lastError = err.Error()
		state = s.snapshot()
		s.mu.Unlock()

		s.log.Warn("session.Submit: extraction failed",
			zap.String("session", s.id.String()), zap.Error(err))
		s.sink.BannerRaised(Banner{Mode: mode, Message: err.Error(), DismissAfter: s.bannerTTL})
		s.sink.StateChanged(state)
		return err
	}

	s.mu.Lock()
	s.result = result
	s.phase = domain.PhaseDisplaying
	state = s.snapshot()
	s.mu.Unlock()

	s.log.Info("session.Submit: extraction completed",
		zap.String("session", s.id.String()), zap.String("mode", string(mode)))
	s.sink.ResultUpdated(result)
	s.sink.StateChanged(state)
	return nil
}

// Reset returns the session to Idle: selections, result, and error flags
// cleared, view mode back to formatted.
func (s *Session) Reset() {
	s.mu.Lock()
	s.phase = domain.PhaseIdle
	s.viewMode = domain.ViewFormatted
	s.single = nil
	s.batch = nil
	s.singleValid = false
	s.batchValid = false
	s.lastError = ""
	s.result = nil
	state := s.snapshot()
	s.mu.Unlock()

	s.log.Info("session.Reset: session cleared", zap.String("session", s.id.String()))
	s.sink.ResultUpdated(nil)
	s.sink.StateChanged(state)
}

// SwitchView toggles between the formatted and raw renderings.
func (s *Session) SwitchView(v domain.ViewMode) {
	s.mu.Lock()
	s.viewMode = v
	state := s.snapshot()
	s.mu.Unlock()
	s.sink.StateChanged(state)
}

// Result returns the last-received result, or nil.
func (s *Session) Result() *domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) validateOne(f domain.File) error {
	if err := s.validator.File(f); err != nil {
		return err
	}
	return s.validator.Deep(f)
}

// snapshot must be called with mu held.
func (s *Session) snapshot() State {
	st := State{
		Phase:       s.phase,
		ActiveMode:  s.activeMode,
		ViewMode:    s.viewMode,
		BatchCount:  len(s.batch),
		SingleValid: s.singleValid,
		BatchValid:  s.batchValid,
		HasResult:   s.result != nil,
		LastError:   s.lastError,
	}
	if s.single != nil {
		st.SingleFile = s.single.Name
	}
	return st
}

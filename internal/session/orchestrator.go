// Package session drives one outfit analysis from submission to a rendered look.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robalyx/stylist/internal/ai"
	"github.com/robalyx/stylist/internal/color"
	"github.com/robalyx/stylist/internal/photo"
	"github.com/robalyx/stylist/internal/style"
	"github.com/robalyx/stylist/pkg/utils"
	"go.uber.org/zap"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithID sets the session id instead of a random one.
func WithID(id string) Option {
	return func(o *Orchestrator) { o.id = id }
}

// WithExtractor replaces the color extractor.
func WithExtractor(extract color.Extractor) Option {
	return func(o *Orchestrator) { o.extract = extract }
}

// WithRecorder records every completed look.
func WithRecorder(recorder Recorder) Option {
	return func(o *Orchestrator) { o.recorder = recorder }
}

// WithUploadMaxDimension downscales photos before they are sent to the model.
func WithUploadMaxDimension(maxDim int) Option {
	return func(o *Orchestrator) { o.uploadMaxDim = maxDim }
}

// Orchestrator is the state machine of a single session.
// Snapshots may be taken concurrently with a running step.
type Orchestrator struct {
	id           string
	advisor      Advisor
	renderer     Renderer
	extract      color.Extractor
	recorder     Recorder
	normalizer   *utils.FieldNormalizer
	uploadMaxDim int
	logger       *zap.Logger

	mu            sync.Mutex
	phase         Phase
	weather       string
	photo         *photo.Photo
	signals       *color.Signals
	request       *style.AnalysisRequest
	result        *style.AnalysisResult
	image         *style.ImageRef
	err           error
	regenerations int
}

// NewOrchestrator creates an idle session.
func NewOrchestrator(advisor Advisor, renderer Renderer, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		id:         uuid.NewString(),
		advisor:    advisor,
		renderer:   renderer,
		extract:    color.Extract,
		normalizer: utils.NewFieldNormalizer(),
		phase:      PhaseIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logger.Named("session").With(zap.String("sessionID", o.id))

	return o
}

// ID returns the session id.
func (o *Orchestrator) ID() string {
	return o.id
}

// SetWeather stores the weather summary that gates submission.
func (o *Orchestrator) SetWeather(summary string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.weather = summary
}

// Submit validates the form and runs the full pipeline.
// Rejected submissions leave the session untouched. A failed attempt moves
// the session to PhaseFailed and returns the cause.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) error {
	o.mu.Lock()

	if o.phase != PhaseIdle {
		defer o.mu.Unlock()
		return o.transitionError("submit")
	}

	form := style.Form{
		Occasion:  o.normalizer.Normalize(sub.Occasion),
		Genre:     o.normalizer.Normalize(sub.Genre),
		Gender:    sub.Gender,
		PhotoSize: sub.PhotoSize,
	}
	if form.PhotoSize == 0 && sub.Photo != nil {
		form.PhotoSize = len(sub.Photo.Data)
	}

	if err := form.Validate(); err != nil {
		o.mu.Unlock()
		return err
	}

	if o.weather == "" {
		o.mu.Unlock()
		return ErrWeatherUnavailable
	}

	if sub.Photo == nil {
		o.mu.Unlock()
		return ErrNoPhoto
	}

	gender, err := style.ParseGender(form.Gender)
	if err != nil {
		o.mu.Unlock()
		return err
	}

	weather := o.weather
	o.setPhase(PhaseExtractingColors)
	o.mu.Unlock()

	signals := o.extract(sub.Photo.Pixels())
	upload := o.compact(sub.Photo)

	req := &style.AnalysisRequest{
		PhotoMIME:   upload.MIMEType,
		PhotoData:   upload.Data,
		Occasion:    form.Occasion,
		Genre:       form.Genre,
		Gender:      gender,
		Weather:     weather,
		SkinTone:    signals.SkinTone,
		DressColors: signals.DressColorsLabel(),
	}

	o.mu.Lock()
	o.photo = sub.Photo
	o.signals = &signals
	o.request = req
	o.setPhase(PhaseRecommending)
	o.mu.Unlock()

	return o.run(ctx, req, 0)
}

// Regenerate asks for distinctly different recommendations for the same photo.
// The cached request is reused so colors are not extracted again.
func (o *Orchestrator) Regenerate(ctx context.Context) error {
	o.mu.Lock()

	if o.phase != PhaseReady {
		defer o.mu.Unlock()
		return o.transitionError("regenerate")
	}

	previous, err := o.result.Marshal()
	if err != nil {
		o.mu.Unlock()
		return fmt.Errorf("failed to serialize previous recommendation: %w", err)
	}

	req := o.request.WithPrevious(previous)
	o.regenerations++
	regeneration := o.regenerations
	o.setPhase(PhaseRecommending)
	o.mu.Unlock()

	return o.run(ctx, req, regeneration)
}

// Reset returns a finished or failed session to PhaseIdle.
// The weather summary is kept.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseReady && o.phase != PhaseFailed {
		return o.transitionError("reset")
	}

	o.photo = nil
	o.signals = nil
	o.request = nil
	o.result = nil
	o.image = nil
	o.err = nil
	o.regenerations = 0
	o.setPhase(PhaseIdle)

	return nil
}

// Snapshot returns a consistent view of the session.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		ID:            o.id,
		Phase:         o.phase,
		Weather:       o.weather,
		Regenerations: o.regenerations,
	}

	if o.signals != nil {
		snap.SkinTone = o.signals.SkinTone
		snap.DressColors = o.signals.DressColorsLabel()
	}

	switch o.phase {
	case PhaseReady:
		snap.Result = o.result
		snap.Image = o.image
		snap.ImageURI = o.image.DataURI()
	case PhaseFailed:
		snap.Message = UserFacingError
		snap.Err = o.err
	default:
	}

	return snap
}

// run performs the recommendation and image steps of one attempt.
func (o *Orchestrator) run(ctx context.Context, req *style.AnalysisRequest, regeneration int) error {
	result, err := o.advisor.Analyze(ctx, req)
	if err != nil {
		return o.fail(err)
	}
	if result == nil {
		return o.fail(&ai.ModelError{Err: ai.ErrModelResponse})
	}

	o.mu.Lock()
	o.setPhase(PhaseSynthesizingImage)
	o.mu.Unlock()

	image, err := o.renderer.Render(ctx, result.ImagePrompt)
	if err != nil {
		return o.fail(err)
	}
	if image == nil {
		return o.fail(&ai.ImageGenerationError{Err: ai.ErrNoImage})
	}

	o.mu.Lock()
	original := o.photo
	o.result = result
	o.image = image
	o.err = nil
	o.setPhase(PhaseReady)
	o.mu.Unlock()

	o.record(ctx, &Look{
		SessionID:    o.id,
		CreatedAt:    time.Now(),
		Regeneration: regeneration,
		Photo:        original,
		Request:      req,
		Result:       result,
		Image:        image,
	})
	return nil
}

// fail moves the session to PhaseFailed and returns the cause.
func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	level := zap.ErrorLevel
	if ai.IsSchemaViolation(err) {
		level = zap.WarnLevel
	}
	o.logger.Log(level, "Analysis attempt failed",
		zap.Stringer("phase", o.phase),
		zap.Error(err))

	o.result = nil
	o.image = nil
	o.err = err
	o.setPhase(PhaseFailed)

	return err
}

// transitionError explains why an operation is not allowed. Callers hold the lock.
func (o *Orchestrator) transitionError(op string) error {
	if o.phase.Busy() {
		return fmt.Errorf("%w: cannot %s while %s: %w", ErrInvalidTransition, op, o.phase, ErrBusy)
	}
	return fmt.Errorf("%w: cannot %s in phase %s", ErrInvalidTransition, op, o.phase)
}

// setPhase changes the phase. Callers hold the lock.
func (o *Orchestrator) setPhase(next Phase) {
	o.logger.Debug("Session phase changed",
		zap.Stringer("from", o.phase),
		zap.Stringer("to", next))
	o.phase = next
}

// compact shrinks the upload sent to the model, keeping the original on failure.
func (o *Orchestrator) compact(p *photo.Photo) *photo.Photo {
	if o.uploadMaxDim <= 0 {
		return p
	}

	compacted, err := p.Compact(o.uploadMaxDim)
	if err != nil {
		o.logger.Warn("Failed to compact photo, sending original", zap.Error(err))
		return p
	}

	return compacted
}

// record hands a completed look to the recorder.
func (o *Orchestrator) record(ctx context.Context, look *Look) {
	if o.recorder == nil {
		return
	}

	if err := o.recorder.RecordLook(ctx, look); err != nil {
		o.logger.Warn("Failed to record look", zap.Error(err))
	}
}

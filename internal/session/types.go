package session

import (
	"context"
	"errors"
	"time"

	"github.com/robalyx/stylist/internal/photo"
	"github.com/robalyx/stylist/internal/style"
)

// UserFacingError is the only failure text shown to users.
const UserFacingError = "An unexpected error occurred. Please try again later."

var (
	// ErrInvalidTransition indicates an operation not allowed in the current phase.
	ErrInvalidTransition = errors.New("operation not allowed in current phase")
	// ErrBusy indicates an operation attempted while a pipeline step is running.
	ErrBusy = errors.New("an analysis step is in flight")
	// ErrWeatherUnavailable indicates a submission before the weather summary is known.
	ErrWeatherUnavailable = errors.New("weather summary is not available yet")
	// ErrNoPhoto indicates a submission without a decoded photo.
	ErrNoPhoto = errors.New("no photo was provided")
)

// Advisor produces style recommendations.
type Advisor interface {
	Analyze(ctx context.Context, req *style.AnalysisRequest) (*style.AnalysisResult, error)
}

// Renderer synthesizes an outfit image from a description.
type Renderer interface {
	Render(ctx context.Context, description string) (*style.ImageRef, error)
}

// Recorder persists completed looks.
type Recorder interface {
	RecordLook(ctx context.Context, look *Look) error
}

// Submission is one filled-in form.
type Submission struct {
	Photo    *photo.Photo
	Occasion string
	Genre    string
	Gender   string
	// PhotoSize is the uploaded size in bytes, defaulting to the decoded photo's size.
	PhotoSize int
}

// Look is a completed attempt handed to the Recorder.
type Look struct {
	SessionID    string
	CreatedAt    time.Time
	Regeneration int
	// Photo is the original upload. Request carries the compacted copy sent to the model.
	Photo        *photo.Photo
	Request      *style.AnalysisRequest
	Result       *style.AnalysisResult
	Image        *style.ImageRef
}

// Snapshot is a consistent view of a session.
// Result and Image are only set in PhaseReady.
type Snapshot struct {
	ID            string                `json:"id"`
	Phase         Phase                 `json:"phase"`
	Weather       string                `json:"weather,omitempty"`
	SkinTone      string                `json:"skinTone,omitempty"`
	DressColors   string                `json:"dressColors,omitempty"`
	Regenerations int                   `json:"regenerations"`
	Result        *style.AnalysisResult `json:"result,omitempty"`
	Image         *style.ImageRef       `json:"-"`
	ImageURI      string                `json:"image,omitempty"`
	Message       string                `json:"message,omitempty"`
	Err           error                 `json:"-"`
}

package ai

import (
	"errors"
	"fmt"
)

// ApplicationJSON is the MIME type for structured model responses.
const ApplicationJSON = "application/json"

// DefaultImageMIME is assumed when an image part does not declare its type.
const DefaultImageMIME = "image/png"

var (
	// ErrModelResponse indicates the model returned no usable response.
	ErrModelResponse = errors.New("model response error")
	// ErrJSONProcessing indicates a JSON processing error.
	ErrJSONProcessing = errors.New("JSON processing error")
	// ErrSignalsMissing indicates a request without skin tone or dress colors.
	ErrSignalsMissing = errors.New("color signals missing from request")
	// ErrNoImage indicates the image model returned no inline image.
	ErrNoImage = errors.New("image generation failed to produce an image")
	// ErrEmptyPrompt indicates an empty image description.
	ErrEmptyPrompt = errors.New("image description is empty")
)

// ModelError is returned when a recommendation attempt fails.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("recommendation failed: %v", e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ImageGenerationError is returned when an image synthesis attempt fails.
type ImageGenerationError struct {
	Err error
}

func (e *ImageGenerationError) Error() string {
	return fmt.Sprintf("image generation failed: %v", e.Err)
}

func (e *ImageGenerationError) Unwrap() error {
	return e.Err
}

// Package style holds the outfit analysis domain model and its validation rules.
package style

import (
	"encoding/base64"

	"github.com/bytedance/sonic"
)

// MaxPhotoBytes is the largest accepted photo upload.
const MaxPhotoBytes = 10_000_000

// AnalysisRequest is everything the recommendation model receives for one attempt.
type AnalysisRequest struct {
	PhotoMIME              string `json:"-"`
	PhotoData              []byte `json:"-"`
	Occasion               string `json:"occasion"`
	Genre                  string `json:"genre"`
	Gender                 Gender `json:"gender"`
	Weather                string `json:"weather"`
	SkinTone               string `json:"skinTone"`
	DressColors            string `json:"dressColors"`
	PreviousRecommendation string `json:"previousRecommendation,omitempty"`
}

// Photo returns the request photo as a self-describing data URI.
func (r *AnalysisRequest) Photo() string {
	return DataURI(r.PhotoMIME, r.PhotoData)
}

// WithPrevious returns a copy of the request carrying a serialized prior result.
func (r *AnalysisRequest) WithPrevious(previous string) *AnalysisRequest {
	next := *r
	next.PreviousRecommendation = previous
	return &next
}

// ColorSuggestion is a complementary color with its reasoning.
type ColorSuggestion struct {
	Name   string `json:"name"   validate:"required,notblank"`
	Hex    string `json:"hex"    validate:"required,rrggbb"`
	Reason string `json:"reason" validate:"required,notblank"`
}

// OutfitRecommendation is one complete alternative outfit.
type OutfitRecommendation struct {
	Title string   `json:"title" validate:"required,notblank"`
	Items []string `json:"items" validate:"min=2,max=4,dive,required,notblank"`
}

// AnalysisResult is the structured style feedback returned by the model.
type AnalysisResult struct {
	Feedback              string                 `json:"feedback"              validate:"required,notblank"`
	Highlights            []string               `json:"highlights"            validate:"min=2,max=3,dive,required,notblank"`
	ColorSuggestions      []ColorSuggestion      `json:"colorSuggestions"      validate:"min=3,max=4,dive"`
	OutfitRecommendations []OutfitRecommendation `json:"outfitRecommendations" validate:"min=2,max=3,dive"`
	Notes                 string                 `json:"notes"                 validate:"required,notblank"`
	ImagePrompt           string                 `json:"imagePrompt"           validate:"required,notblank"`
}

// Marshal serializes the result in its wire form.
func (r *AnalysisResult) Marshal() (string, error) {
	return sonic.MarshalString(r)
}

// ImageRef is a rendered image payload.
type ImageRef struct {
	MIMEType string
	Data     []byte
}

// DataURI returns the image as a self-describing data URI.
func (i *ImageRef) DataURI() string {
	return DataURI(i.MIMEType, i.Data)
}

// DataURI encodes a payload as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

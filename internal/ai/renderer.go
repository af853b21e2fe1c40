package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/robalyx/stylist/internal/ai/client"
	"github.com/robalyx/stylist/internal/style"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ImageModel generates multimodal content.
// *genai.Models satisfies it.
type ImageModel interface {
	GenerateContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Renderer synthesizes a lookbook image for an outfit description.
type Renderer struct {
	models    ImageModel
	modelName string
	gateway   *client.Gateway
	logger    *zap.Logger
}

// NewRenderer creates a Renderer backed by the given image model.
func NewRenderer(models ImageModel, modelName string, gateway *client.Gateway, logger *zap.Logger) *Renderer {
	return &Renderer{
		models:    models,
		modelName: modelName,
		gateway:   gateway,
		logger:    logger.Named("ai_renderer"),
	}
}

// Render generates an image of the described outfit on a mannequin.
// Every failure is returned as an *ImageGenerationError.
func (r *Renderer) Render(ctx context.Context, description string) (*style.ImageRef, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &ImageGenerationError{Err: ErrEmptyPrompt}
	}

	contents := genai.Text(fmt.Sprintf(ImagePromptTemplate, description))
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	image, err := client.Call(ctx, r.gateway, "ai.render", r.modelName,
		func(ctx context.Context) (*style.ImageRef, error) {
			resp, err := r.models.GenerateContent(ctx, r.modelName, contents, cfg)
			if err != nil {
				return nil, fmt.Errorf("gemini API error: %w", err)
			}
			return firstImage(resp)
		})
	if err != nil {
		return nil, &ImageGenerationError{Err: err}
	}

	r.logger.Debug("Rendered outfit image",
		zap.String("mimeType", image.MIMEType),
		zap.Int("size", len(image.Data)))

	return image, nil
}

// firstImage returns the first inline image payload of the response.
func firstImage(resp *genai.GenerateContentResponse) (*style.ImageRef, error) {
	if resp == nil {
		return nil, ErrNoImage
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}

			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = DefaultImageMIME
			}

			return &style.ImageRef{MIMEType: mimeType, Data: part.InlineData.Data}, nil
		}
	}

	return nil, ErrNoImage
}

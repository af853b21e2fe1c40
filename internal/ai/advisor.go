// Package ai talks to the generative models that review outfits and render recommendations.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/generative-ai-go/genai"
	"github.com/robalyx/stylist/internal/ai/client"
	"github.com/robalyx/stylist/internal/setup/config"
	"github.com/robalyx/stylist/internal/style"
	"github.com/robalyx/stylist/pkg/utils"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/json"
	"go.uber.org/zap"
)

// TextModel generates content from a list of parts.
// *genai.GenerativeModel satisfies it.
type TextModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// RequestContext is the user context embedded in the recommendation prompt.
type RequestContext struct {
	Occasion    string `json:"occasion"`
	Genre       string `json:"genre"`
	Gender      string `json:"gender"`
	Weather     string `json:"weather"`
	SkinTone    string `json:"skinTone"`
	DressColors string `json:"dressColors"`
}

// Advisor produces structured style recommendations for a photo.
type Advisor struct {
	model     TextModel
	modelName string
	gateway   *client.Gateway
	minify    *minify.M
	logger    *zap.Logger
}

// NewAdvisor creates an Advisor backed by the given model.
func NewAdvisor(model TextModel, modelName string, gateway *client.Gateway, logger *zap.Logger) *Advisor {
	m := minify.New()
	m.AddFunc(ApplicationJSON, json.Minify)

	return &Advisor{
		model:     model,
		modelName: modelName,
		gateway:   gateway,
		minify:    m,
		logger:    logger.Named("ai_advisor"),
	}
}

// ConfigureTextModel creates the recommendation model with its schema and instructions.
func ConfigureTextModel(genAIClient *genai.Client, cfg *config.Gemini) *genai.GenerativeModel {
	model := genAIClient.GenerativeModel(cfg.TextModel)
	model.SystemInstruction = genai.NewUserContent(genai.Text(StyleSystemPrompt))
	model.ResponseMIMEType = ApplicationJSON
	model.ResponseSchema = AnalysisSchema()
	model.Temperature = utils.Ptr(cfg.Temperature)
	model.TopP = utils.Ptr(float32(0.95))
	return model
}

// AnalysisSchema mirrors style.AnalysisResult for structured output.
func AnalysisSchema() *genai.Schema {
	str := func(description string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: description}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"feedback": str("A paragraph of general feedback on the user's current outfit"),
			"highlights": {
				Type:        genai.TypeArray,
				Items:       str("A short positive highlight or actionable style tip"),
				Description: "2-3 key positive highlights or actionable style tips",
			},
			"colorSuggestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":   str(`The name of the color (e.g., "Dusty Rose")`),
						"hex":    str(`The hex code for the color in #RRGGBB form (e.g., "#D8A0A7")`),
						"reason": str("A short sentence on why this color is recommended"),
					},
					Required: []string{"name", "hex", "reason"},
				},
				Description: "3-4 recommended colors with their hex codes and reasons",
			},
			"outfitRecommendations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": str(`A catchy title for the outfit (e.g., "Chic Casual Look")`),
						"items": {
							Type:        genai.TypeArray,
							Items:       str("A specific clothing item"),
							Description: "2-4 clothing items for this outfit",
						},
					},
					Required: []string{"title", "items"},
				},
				Description: "2-3 complete outfit recommendations",
			},
			"notes":       str("A concluding pro tip or gentle style note in a single sentence"),
			"imagePrompt": str("A concise prompt describing the top recommended outfit on a mannequin"),
		},
		Required: []string{"feedback", "highlights", "colorSuggestions", "outfitRecommendations", "notes", "imagePrompt"},
	}
}

// Analyze asks the model for feedback and recommendations on the request photo.
// Every failure is returned as a *ModelError.
func (a *Advisor) Analyze(ctx context.Context, req *style.AnalysisRequest) (*style.AnalysisResult, error) {
	if req.SkinTone == "" || req.DressColors == "" {
		return nil, &ModelError{Err: ErrSignalsMissing}
	}

	prompt, err := a.BuildPrompt(req)
	if err != nil {
		return nil, &ModelError{Err: err}
	}

	parts := []genai.Part{genai.Text(prompt)}
	if len(req.PhotoData) > 0 {
		parts = append(parts, genai.Blob{MIMEType: req.PhotoMIME, Data: req.PhotoData})
	}

	text, err := client.Call(ctx, a.gateway, "ai.analyze", a.modelName,
		func(ctx context.Context) (string, error) {
			resp, err := a.model.GenerateContent(ctx, parts...)
			if err != nil {
				return "", fmt.Errorf("gemini API error: %w", err)
			}
			return responseText(resp)
		})
	if err != nil {
		return nil, &ModelError{Err: err}
	}

	// Decoding and validation run outside the breaker so malformed output is not counted as an outage
	var result style.AnalysisResult
	if err := sonic.Unmarshal([]byte(text), &result); err != nil {
		a.logger.Warn("Model response is not valid JSON", zap.Error(err))
		return nil, &ModelError{Err: fmt.Errorf("%w: %w", ErrJSONProcessing, err)}
	}

	if err := result.Validate(); err != nil {
		a.logger.Warn("Model response failed validation", zap.Error(err))
		return nil, &ModelError{Err: err}
	}

	a.logger.Debug("Received style analysis",
		zap.Int("colors", len(result.ColorSuggestions)),
		zap.Int("outfits", len(result.OutfitRecommendations)),
		zap.Bool("regeneration", req.PreviousRecommendation != ""))

	return &result, nil
}

// BuildPrompt renders the user prompt for a request.
func (a *Advisor) BuildPrompt(req *style.AnalysisRequest) (string, error) {
	contextJSON, err := sonic.Marshal(RequestContext{
		Occasion:    req.Occasion,
		Genre:       req.Genre,
		Gender:      req.Gender.Label(),
		Weather:     req.Weather,
		SkinTone:    req.SkinTone,
		DressColors: req.DressColors,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrJSONProcessing, err)
	}

	contextJSON, err = a.minify.Bytes(ApplicationJSON, contextJSON)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrJSONProcessing, err)
	}

	prompt := fmt.Sprintf(StyleRequestPrompt, contextJSON)
	if req.PreviousRecommendation != "" {
		prompt += fmt.Sprintf(RegenerationPrompt, req.PreviousRecommendation)
	}

	return prompt, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: no response from Gemini", ErrModelResponse)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: prompt blocked: %v", ErrModelResponse, resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no response from Gemini", ErrModelResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: empty response text", ErrModelResponse)
	}

	return sb.String(), nil
}

// IsSchemaViolation reports whether an analysis failed on an invalid response shape.
func IsSchemaViolation(err error) bool {
	return errors.Is(err, style.ErrSchemaViolation) || errors.Is(err, ErrJSONProcessing)
}

package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/robalyx/stylist/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// fakeImageModel records the request and replays a canned response.
type fakeImageModel struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeImageModel) GenerateContent(
	_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func partsResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromParts(parts, genai.RoleModel)}},
	}
}

func TestRendererRender(t *testing.T) {
	t.Parallel()

	model := &fakeImageModel{resp: partsResponse(
		genai.NewPartFromText("Here is your outfit."),
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}},
	)}
	renderer := ai.NewRenderer(model, "image-model", newGateway(), zap.NewNop())

	image, err := renderer.Render(context.Background(), "Navy blazer over a white tee")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", image.MIMEType)
	assert.Equal(t, []byte{0xff, 0xd8}, image.Data)
	assert.Equal(t, "data:image/jpeg;base64,/9g=", image.DataURI())

	assert.Equal(t, "image-model", model.model)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, model.config.ResponseModalities)
	require.Len(t, model.contents, 1)
	require.Len(t, model.contents[0].Parts, 1)
	assert.Equal(t,
		"A high-resolution, photorealistic image of a complete outfit on a mannequin, suitable for a high-end fashion lookbook. "+
			"The background should be a neutral gray studio setting.\n\nOutfit details: Navy blazer over a white tee",
		model.contents[0].Parts[0].Text)
}

func TestRendererDefaultsMIMEType(t *testing.T) {
	t.Parallel()

	model := &fakeImageModel{resp: partsResponse(
		&genai.Part{InlineData: &genai.Blob{Data: []byte{1, 2, 3}}},
	)}
	renderer := ai.NewRenderer(model, "image-model", newGateway(), zap.NewNop())

	image, err := renderer.Render(context.Background(), "Linen suit")
	require.NoError(t, err)
	assert.Equal(t, ai.DefaultImageMIME, image.MIMEType)
}

func TestRendererFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		model       *fakeImageModel
		description string
		wantErr     error
	}{
		{
			name:        "text only response",
			model:       &fakeImageModel{resp: partsResponse(genai.NewPartFromText("I cannot draw that."))},
			description: "Linen suit",
			wantErr:     ai.ErrNoImage,
		},
		{
			name: "empty inline payload",
			model: &fakeImageModel{resp: partsResponse(
				&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png"}},
			)},
			description: "Linen suit",
			wantErr:     ai.ErrNoImage,
		},
		{
			name:        "no candidates",
			model:       &fakeImageModel{resp: &genai.GenerateContentResponse{}},
			description: "Linen suit",
			wantErr:     ai.ErrNoImage,
		},
		{
			name:        "upstream error",
			model:       &fakeImageModel{err: errors.New("unavailable")},
			description: "Linen suit",
		},
		{
			name:        "blank description",
			model:       &fakeImageModel{},
			description: "  ",
			wantErr:     ai.ErrEmptyPrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			renderer := ai.NewRenderer(tt.model, "image-model", newGateway(), zap.NewNop())

			image, err := renderer.Render(context.Background(), tt.description)
			require.Error(t, err)
			assert.Nil(t, image)

			var imageErr *ai.ImageGenerationError
			require.ErrorAs(t, err, &imageErr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

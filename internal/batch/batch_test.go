package batch_test

import (
	"context"
	"errors"
	"image"
	stdcolor "image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/robalyx/stylist/internal/batch"
	"github.com/robalyx/stylist/internal/session"
	"github.com/robalyx/stylist/internal/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAdvisor counts calls and always returns the same valid result.
type stubAdvisor struct {
	calls atomic.Int32
}

func (s *stubAdvisor) Analyze(_ context.Context, _ *style.AnalysisRequest) (*style.AnalysisResult, error) {
	s.calls.Add(1)
	return &style.AnalysisResult{
		Feedback:   "Clean lines.",
		Highlights: []string{"Fit", "Contrast"},
		ColorSuggestions: []style.ColorSuggestion{
			{Name: "Navy", Hex: "#1F2A44", Reason: "Grounding."},
			{Name: "Sage", Hex: "#9CAF88", Reason: "Soft."},
			{Name: "Ivory", Hex: "#FFFFF0", Reason: "Bright."},
		},
		OutfitRecommendations: []style.OutfitRecommendation{
			{Title: "Office", Items: []string{"Blazer", "Chinos"}},
			{Title: "Evening", Items: []string{"Shirt", "Loafers"}},
		},
		Notes:       "Keep it simple.",
		ImagePrompt: "Navy blazer with chinos",
	}, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, _ string) (*style.ImageRef, error) {
	return &style.ImageRef{MIMEType: "image/png", Data: []byte{1}}, nil
}

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.SetNRGBA(x, y, stdcolor.NRGBA{R: 20, G: 20, B: 20, A: 255})
		}
	}

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func newRunner(advisor session.Advisor, concurrency int) *batch.Runner {
	logger := zap.NewNop()
	factory := func(opts ...session.Option) *session.Orchestrator {
		return session.NewOrchestrator(advisor, stubRenderer{}, logger, opts...)
	}
	return batch.NewRunner(factory, concurrency, logger)
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"))
	writePNG(t, filepath.Join(dir, "a.PNG"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	paths, err := batch.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.PNG"), filepath.Join(dir, "b.png")}, paths)
}

func TestDiscoverEmpty(t *testing.T) {
	t.Parallel()

	_, err := batch.Discover(t.TempDir())
	require.ErrorIs(t, err, batch.ErrNoPhotos)

	_, err = batch.Discover(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := []string{filepath.Join(dir, "one.png"), filepath.Join(dir, "two.png")}
	for _, path := range good {
		writePNG(t, path)
	}
	broken := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0o600))

	advisor := &stubAdvisor{}
	runner := newRunner(advisor, 2)

	paths := []string{good[0], broken, good[1]}
	outcomes := runner.Run(context.Background(), paths, batch.Form{
		Occasion: "Dinner date",
		Genre:    "Casual",
		Gender:   "female",
		Weather:  "Clear skies, around 25°C",
	})

	require.Len(t, outcomes, 3)
	for i, outcome := range outcomes {
		assert.Equal(t, paths[i], outcome.Path)
	}

	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, session.PhaseReady, outcomes[0].Snapshot.Phase)
	assert.Equal(t, "black", outcomes[0].Snapshot.DressColors)
	assert.NotNil(t, outcomes[0].Snapshot.Image)

	require.Error(t, outcomes[1].Err)
	assert.Equal(t, session.PhaseIdle, outcomes[1].Snapshot.Phase)

	assert.NoError(t, outcomes[2].Err)
	assert.Equal(t, int32(2), advisor.calls.Load())
}

func TestRunValidationFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "look.png")
	writePNG(t, path)

	advisor := &stubAdvisor{}
	outcomes := newRunner(advisor, 0).Run(context.Background(), []string{path}, batch.Form{
		Occasion: "ab",
		Genre:    "Casual",
		Gender:   "male",
		Weather:  "Clear skies, around 25°C",
	})

	require.Len(t, outcomes, 1)

	var verrs style.ValidationErrors
	require.True(t, errors.As(outcomes[0].Err, &verrs))
	assert.True(t, strings.Contains(verrs.Error(), "occasion"))
	assert.Zero(t, advisor.calls.Load())
}

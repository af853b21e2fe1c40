// Package palette draws the suggested colors as a bar chart.
package palette

import (
	"errors"
	"fmt"
	"io"

	"github.com/robalyx/stylist/internal/style"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart dimensions and styling constants.
const (
	// chartWidth is the width of the rendered image.
	chartWidth = 640
	// chartHeight is the height of the rendered image.
	chartHeight = 360
	// barWidth is the width of each color bar.
	barWidth = 90
	// barSpacing is the gap between bars.
	barSpacing = 40
	// titleFontSize sets the size of the chart title text.
	titleFontSize = 12.0
	// minLightness keeps very dark colors visible.
	minLightness = 0.05
	// paddingTop adds space above the chart.
	paddingTop = 40
)

// ErrNoSuggestions is returned when there is nothing to draw.
var ErrNoSuggestions = errors.New("no color suggestions to render")

// Render writes a PNG bar chart with one bar per suggestion. Each bar is
// filled with its color and its height is the color's perceived lightness.
func Render(w io.Writer, suggestions []style.ColorSuggestion) error {
	if len(suggestions) == 0 {
		return ErrNoSuggestions
	}

	bars := make([]chart.Value, 0, len(suggestions))
	for _, suggestion := range suggestions {
		c, err := suggestion.Color()
		if err != nil {
			return fmt.Errorf("invalid color %q for %s: %w", suggestion.Hex, suggestion.Name, err)
		}

		r, g, b := c.Clamped().RGB255()
		fill := drawing.Color{R: r, G: g, B: b, A: 255}
		lightness, _, _ := c.Lab()

		bars = append(bars, chart.Value{
			Label: suggestion.Name,
			Value: max(lightness, minLightness),
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: chart.ColorBlack,
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.BarChart{
		Title: "Suggested Palette",
		TitleStyle: chart.Style{
			FontSize: titleFontSize,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: paddingTop},
		},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render palette chart: %w", err)
	}

	return nil
}

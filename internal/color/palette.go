package color

import (
	"cmp"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// binWidth is the width of each per-channel histogram bucket.
	binWidth = 32
	// anchorThreshold is the maximum RGB distance to snap onto a named anchor.
	anchorThreshold = 80
	// dominantChannel is the minimum value of the dominant channel.
	dominantChannel = 150
	// recessiveChannel is the exclusive ceiling of the other two channels.
	recessiveChannel = 100
)

// anchor is a named reference color.
type anchor struct {
	name  string
	color colorful.Color
}

// anchors are checked in order; the first match within the threshold wins.
var anchors = []anchor{
	{name: NameBlack, color: colorful.Color{R: 0, G: 0, B: 0}},
	{name: NameWhite, color: colorful.Color{R: 1, G: 1, B: 1}},
	{name: NameGray, color: colorful.Color{R: 128.0 / 255, G: 128.0 / 255, B: 128.0 / 255}},
}

// Bin is a quantized RGB histogram key.
type Bin struct {
	R, G, B uint8
}

// BinOf quantizes a pixel to its histogram bin.
func BinOf(r, g, b uint8) Bin {
	return Bin{R: r / binWidth * binWidth, G: g / binWidth * binWidth, B: b / binWidth * binWidth}
}

// Name maps a bin to its coarse color name.
func (b Bin) Name() string {
	c := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	for _, a := range anchors {
		if c.DistanceRgb(a.color)*255 < anchorThreshold {
			return a.name
		}
	}

	switch {
	case b.R > dominantChannel && b.G < recessiveChannel && b.B < recessiveChannel:
		return NameRed
	case b.G > dominantChannel && b.R < recessiveChannel && b.B < recessiveChannel:
		return NameGreen
	case b.B > dominantChannel && b.R < recessiveChannel && b.G < recessiveChannel:
		return NameBlue
	default:
		return NameNeutral
	}
}

// histogram counts garment pixels per bin and remembers first-seen order.
type histogram struct {
	counts map[Bin]int
	order  []Bin
}

func newHistogram() *histogram {
	return &histogram{counts: make(map[Bin]int)}
}

func (h *histogram) add(r, g, b uint8) {
	bin := BinOf(r, g, b)
	if _, ok := h.counts[bin]; !ok {
		h.order = append(h.order, bin)
	}
	h.counts[bin]++
}

// top returns up to n bins by descending count, ties kept in first-seen order.
func (h *histogram) top(n int) []Bin {
	bins := slices.Clone(h.order)
	slices.SortStableFunc(bins, func(a, b Bin) int {
		return cmp.Compare(h.counts[b], h.counts[a])
	})
	return bins[:min(n, len(bins))]
}

// names returns the deduplicated color names of the dominant bins.
func (h *histogram) names() []string {
	names := make([]string, 0, MaxDressColors)
	for _, bin := range h.top(MaxDressColors) {
		if name := bin.Name(); !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

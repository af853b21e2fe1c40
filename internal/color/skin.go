package color

// Skin region bounds as fractions of the image dimensions.
const (
	skinRegionBottom = 0.25
	skinRegionLeft   = 0.25
	skinRegionRight  = 0.75
)

// Luminance thresholds for skin tone classification.
const (
	darkLuminance  = 80
	oliveLuminance = 160
)

// IsSkin reports whether an RGB triple passes the skin-locus heuristic.
func IsSkin(r, g, b uint8) bool {
	if r <= 95 || g <= 40 || b <= 20 {
		return false
	}
	if r <= g || r <= b {
		return false
	}

	hi := max(r, g, b)
	lo := min(r, g, b)
	if int(hi)-int(lo) <= 15 {
		return false
	}

	diff := int(r) - int(g)
	if diff < 0 {
		diff = -diff
	}
	return diff > 15
}

// inSkinRegion reports whether a pixel lies in the face/neck search band.
func inSkinRegion(x, y, width, height int) bool {
	return float64(y) < float64(height)*skinRegionBottom &&
		float64(x) > float64(width)*skinRegionLeft &&
		float64(x) < float64(width)*skinRegionRight
}

// Luminance returns the perceptual luminance of an RGB value.
func Luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// ClassifyLuminance maps a mean skin luminance onto a skin tone category.
func ClassifyLuminance(l float64) string {
	switch {
	case l < darkLuminance:
		return SkinToneDark
	case l < oliveLuminance:
		return SkinToneOlive
	default:
		return SkinToneFair
	}
}

// skinAccumulator sums skin pixel channels for the mean color.
type skinAccumulator struct {
	r, g, b uint64
	count   uint64
}

func (a *skinAccumulator) add(r, g, b uint8) {
	a.r += uint64(r)
	a.g += uint64(g)
	a.b += uint64(b)
	a.count++
}

// tone returns the skin tone, defaulting to fair when nothing was sampled.
func (a *skinAccumulator) tone() string {
	if a.count == 0 {
		return SkinToneFair
	}

	n := float64(a.count)
	return ClassifyLuminance(Luminance(float64(a.r)/n, float64(a.g)/n, float64(a.b)/n))
}

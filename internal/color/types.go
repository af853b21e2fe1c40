package color

import "strings"

// Skin tone categories.
const (
	SkinToneFair  = "fair"
	SkinToneOlive = "olive"
	SkinToneDark  = "dark"
)

// NotDetected is reported when a signal could not be derived from the pixels.
const NotDetected = "not detected"

// Garment color names.
const (
	NameBlack   = "black"
	NameWhite   = "white"
	NameGray    = "gray"
	NameRed     = "red"
	NameGreen   = "green"
	NameBlue    = "blue"
	NameNeutral = "neutral"
)

// MaxDressColors is the number of dominant garment colors reported.
const MaxDressColors = 3

// Signals holds the coarse color signals derived from a photo.
type Signals struct {
	SkinTone    string   `json:"skinTone"`
	DressColors []string `json:"dressColors"`
}

// DressColorsLabel returns the dress colors as a comma-joined label.
func (s Signals) DressColorsLabel() string {
	if len(s.DressColors) == 0 {
		return NotDetected
	}
	return strings.Join(s.DressColors, ", ")
}

// PixelBuffer is a non-premultiplied RGBA raster with a stride of Width*4.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// valid reports whether the buffer holds every pixel its dimensions claim.
func (b PixelBuffer) valid() bool {
	return b.Width >= 0 && b.Height >= 0 && len(b.Pix) >= b.Width*b.Height*4
}

// Extractor derives color signals from a pixel buffer.
type Extractor func(PixelBuffer) Signals

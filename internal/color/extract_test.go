package color_test

import (
	"image"
	stdcolor "image/color"
	"testing"

	"github.com/robalyx/stylist/internal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fill builds a buffer where each pixel is colored by the given function.
func fill(width, height int, pick func(x, y int) [3]uint8) color.PixelBuffer {
	pix := make([]uint8, width*height*4)
	for y := range height {
		for x := range width {
			c := pick(x, y)
			i := (y*width + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c[0], c[1], c[2], 255
		}
	}
	return color.PixelBuffer{Width: width, Height: height, Pix: pix}
}

func solid(c [3]uint8) func(x, y int) [3]uint8 {
	return func(int, int) [3]uint8 { return c }
}

func TestIsSkin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{name: "typical skin", r: 200, g: 150, b: 130, want: true},
		{name: "just above minimums", r: 96, g: 41, b: 21, want: true},
		{name: "red at limit", r: 95, g: 41, b: 21, want: false},
		{name: "green at limit", r: 200, g: 40, b: 30, want: false},
		{name: "blue at limit", r: 200, g: 150, b: 20, want: false},
		{name: "green dominates", r: 150, g: 200, b: 100, want: false},
		{name: "blue dominates", r: 150, g: 100, b: 200, want: false},
		{name: "low spread", r: 120, g: 110, b: 106, want: false},
		{name: "red green too close", r: 120, g: 110, b: 60, want: false},
		{name: "near black", r: 20, g: 20, b: 20, want: false},
		{name: "white", r: 255, g: 255, b: 255, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, color.IsSkin(tt.r, tt.g, tt.b))
		})
	}
}

func TestClassifyLuminance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		luminance float64
		want      string
	}{
		{luminance: 0, want: color.SkinToneDark},
		{luminance: 79.9, want: color.SkinToneDark},
		{luminance: 80.0, want: color.SkinToneOlive},
		{luminance: 159.9, want: color.SkinToneOlive},
		{luminance: 160.0, want: color.SkinToneFair},
		{luminance: 255, want: color.SkinToneFair},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, color.ClassifyLuminance(tt.luminance), "luminance %v", tt.luminance)
	}
}

func TestBinName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bin  color.Bin
		want string
	}{
		{name: "near black", bin: color.Bin{R: 10, G: 10, B: 10}, want: color.NameBlack},
		{name: "quantized dark", bin: color.BinOf(40, 40, 40), want: color.NameBlack},
		{name: "white", bin: color.Bin{R: 224, G: 224, B: 224}, want: color.NameWhite},
		{name: "gray", bin: color.Bin{R: 128, G: 128, B: 128}, want: color.NameGray},
		{name: "red", bin: color.Bin{R: 224, G: 0, B: 0}, want: color.NameRed},
		{name: "orange reads red", bin: color.Bin{R: 160, G: 96, B: 32}, want: color.NameRed},
		{name: "green", bin: color.Bin{R: 0, G: 192, B: 0}, want: color.NameGreen},
		{name: "blue", bin: color.Bin{R: 0, G: 0, B: 224}, want: color.NameBlue},
		{name: "tan", bin: color.Bin{R: 192, G: 128, B: 64}, want: color.NameNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.bin.Name())
		})
	}
}

func TestBinOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, color.Bin{R: 0, G: 32, B: 224}, color.BinOf(31, 32, 255))
	assert.Equal(t, color.Bin{R: 192, G: 128, B: 128}, color.BinOf(200, 150, 130))
}

func TestExtract(t *testing.T) {
	t.Parallel()

	skinTone := [3]uint8{200, 150, 130}
	dark := [3]uint8{20, 20, 20}

	tests := []struct {
		name      string
		buf       color.PixelBuffer
		wantSkin  string
		wantDress string
	}{
		{
			name: "portrait with dark garment",
			buf: fill(100, 100, func(_, y int) [3]uint8 {
				if y < 25 {
					return skinTone
				}
				return dark
			}),
			wantSkin:  color.SkinToneFair,
			wantDress: "black",
		},
		{
			name:      "no skin defaults to fair",
			buf:       fill(10, 10, solid(dark)),
			wantSkin:  color.SkinToneFair,
			wantDress: "black",
		},
		{
			name:      "all skin has no garment",
			buf:       fill(4, 4, solid(skinTone)),
			wantSkin:  color.SkinToneFair,
			wantDress: color.NotDetected,
		},
		{
			name: "dark skin",
			buf: fill(8, 8, func(x, y int) [3]uint8 {
				if y < 2 && x > 2 && x < 6 {
					return [3]uint8{110, 60, 40}
				}
				return [3]uint8{250, 250, 250}
			}),
			wantSkin:  color.SkinToneDark,
			wantDress: "white",
		},
		{
			name: "olive skin",
			buf: fill(8, 8, func(x, y int) [3]uint8 {
				if y < 2 && x > 2 && x < 6 {
					return [3]uint8{170, 120, 90}
				}
				return [3]uint8{0, 0, 230}
			}),
			wantSkin:  color.SkinToneOlive,
			wantDress: "blue",
		},
		{
			name:      "empty image",
			buf:       color.PixelBuffer{},
			wantSkin:  color.SkinToneFair,
			wantDress: color.NotDetected,
		},
		{
			name:      "truncated buffer",
			buf:       color.PixelBuffer{Width: 10, Height: 10, Pix: make([]uint8, 12)},
			wantSkin:  color.NotDetected,
			wantDress: color.NotDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			signals := color.Extract(tt.buf)
			assert.Equal(t, tt.wantSkin, signals.SkinTone)
			assert.Equal(t, tt.wantDress, signals.DressColorsLabel())
		})
	}
}

func TestExtractSkinOutsideRegionIgnored(t *testing.T) {
	t.Parallel()

	// Skin only in the bottom rows never reaches the tone average or the histogram.
	buf := fill(8, 8, func(_, y int) [3]uint8 {
		if y >= 6 {
			return [3]uint8{110, 60, 40}
		}
		return [3]uint8{128, 128, 128}
	})

	signals := color.Extract(buf)
	assert.Equal(t, color.SkinToneFair, signals.SkinTone)
	assert.Equal(t, []string{color.NameGray}, signals.DressColors)
}

func TestExtractDominantOrderAndDedup(t *testing.T) {
	t.Parallel()

	// 40% near-black, 30% dark gray (also black), 20% red, 10% blue.
	buf := fill(10, 1, func(x, _ int) [3]uint8 {
		switch {
		case x < 4:
			return [3]uint8{5, 5, 5}
		case x < 7:
			return [3]uint8{40, 40, 40}
		case x < 9:
			return [3]uint8{230, 10, 10}
		default:
			return [3]uint8{10, 10, 230}
		}
	})

	signals := color.Extract(buf)
	assert.Equal(t, []string{color.NameBlack, color.NameRed}, signals.DressColors)
	assert.Equal(t, "black, red", signals.DressColorsLabel())
}

func TestExtractTiesKeepScanOrder(t *testing.T) {
	t.Parallel()

	buf := fill(4, 1, func(x, _ int) [3]uint8 {
		switch x {
		case 0:
			return [3]uint8{0, 0, 230}
		case 1:
			return [3]uint8{230, 10, 10}
		case 2:
			return [3]uint8{10, 230, 10}
		default:
			return [3]uint8{250, 250, 250}
		}
	})

	signals := color.Extract(buf)
	assert.Equal(t, []string{color.NameBlue, color.NameRed, color.NameGreen}, signals.DressColors)
}

func TestFromImage(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(5, 5, 9, 9))
	for y := 5; y < 9; y++ {
		for x := 5; x < 9; x++ {
			img.Set(x, y, stdcolor.RGBA{R: 20, G: 20, B: 20, A: 255})
		}
	}

	buf := color.FromImage(img)
	require.Equal(t, 4, buf.Width)
	require.Equal(t, 4, buf.Height)
	require.Len(t, buf.Pix, 4*4*4)
	assert.Equal(t, []uint8{20, 20, 20, 255}, buf.Pix[:4])
	assert.Equal(t, "black", color.Extract(buf).DressColorsLabel())
}

// Package color derives coarse skin-tone and garment-color signals from raw pixels.
package color

import (
	"image"
	"image/draw"
)

// Extract classifies every pixel of the buffer and reduces the result to
// a skin tone and up to three dominant garment colors.
func Extract(buf PixelBuffer) Signals {
	if !buf.valid() {
		return Signals{SkinTone: NotDetected}
	}

	var skin skinAccumulator
	hist := newHistogram()

	for y := range buf.Height {
		row := buf.Pix[y*buf.Width*4:]
		for x := range buf.Width {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]

			if IsSkin(r, g, b) {
				if inSkinRegion(x, y, buf.Width, buf.Height) {
					skin.add(r, g, b)
				}
				continue
			}

			hist.add(r, g, b)
		}
	}

	return Signals{
		SkinTone:    skin.tone(),
		DressColors: hist.names(),
	}
}

// FromImage converts a decoded image into a non-premultiplied pixel buffer.
func FromImage(img image.Image) PixelBuffer {
	bounds := img.Bounds()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return PixelBuffer{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    nrgba.Pix,
	}
}

// Package photo loads uploaded outfit photos and prepares them for analysis.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"slices"
	"strings"

	// Registered decoders for accepted upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gabriel-vasile/mimetype"
	"github.com/robalyx/stylist/internal/color"
	"github.com/robalyx/stylist/internal/style"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MIMEWebP is the MIME type of compacted photos.
	MIMEWebP = "image/webp"
)

var (
	ErrTooLarge    = errors.New("photo exceeds the 10MB limit")
	ErrEmpty       = errors.New("photo is empty")
	ErrUnsupported = errors.New("unsupported photo format")
	ErrDecode      = errors.New("failed to decode photo")
	ErrDataURI     = errors.New("malformed data URI")
)

// accepted lists the MIME types an upload may have.
var accepted = []string{"image/jpeg", "image/png", "image/gif", MIMEWebP}

// Photo is a decoded upload together with its original encoding.
type Photo struct {
	MIMEType string
	Data     []byte
	Image    image.Image
}

// Load reads, sniffs and decodes a photo of at most style.MaxPhotoBytes.
func Load(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, style.MaxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}

	return Decode(data)
}

// Decode validates and decodes an in-memory photo.
func Decode(data []byte) (*Photo, error) {
	switch {
	case len(data) == 0:
		return nil, ErrEmpty
	case len(data) > style.MaxPhotoBytes:
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !slices.ContainsFunc(accepted, mtype.Is) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mtype.String())
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return &Photo{
		MIMEType: mtype.String(),
		Data:     data,
		Image:    img,
	}, nil
}

// Pixels returns the decoded image as a pixel buffer for color extraction.
func (p *Photo) Pixels() color.PixelBuffer {
	return color.FromImage(p.Image)
}

// Compact downscales the photo so its longest side is at most maxDim and
// re-encodes it as WebP. A non-positive maxDim or an already small photo
// only re-encodes.
func (p *Photo) Compact(maxDim int) (*Photo, error) {
	img := p.Image
	bounds := img.Bounds()

	if longest := max(bounds.Dx(), bounds.Dy()); maxDim > 0 && longest > maxDim {
		scale := float64(maxDim) / float64(longest)
		width := max(1, int(float64(bounds.Dx())*scale))
		height := max(1, int(float64(bounds.Dy())*scale))

		resized := image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Src, nil)
		img = resized
	}

	buf := new(bytes.Buffer)
	if err := nativewebp.Encode(buf, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}

	// Keep whichever encoding is smaller
	if buf.Len() >= len(p.Data) && img == p.Image {
		return p, nil
	}

	return &Photo{
		MIMEType: MIMEWebP,
		Data:     buf.Bytes(),
		Image:    img,
	}, nil
}

// ParseDataURI splits a base64 data URI into its MIME type and payload.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrDataURI
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrDataURI
	}

	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mimeType == "" {
		return "", nil, ErrDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrDataURI, err)
	}

	return mimeType, data, nil
}

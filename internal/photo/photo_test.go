package photo_test

import (
	"bytes"
	"image"
	stdcolor "image/color"
	"image/png"
	"testing"

	"github.com/robalyx/stylist/internal/photo"
	"github.com/robalyx/stylist/internal/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int, c stdcolor.Color) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, c)
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, 8, 6, stdcolor.NRGBA{R: 20, G: 20, B: 20, A: 255})

	p, err := photo.Load(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.MIMEType)
	assert.Equal(t, data, p.Data)

	buf := p.Pixels()
	assert.Equal(t, 8, buf.Width)
	assert.Equal(t, 6, buf.Height)
	assert.Len(t, buf.Pix, 8*6*4)
}

func TestLoadRejects(t *testing.T) {
	t.Parallel()

	pngHeader := []byte("\x89PNG\r\n\x1a\n")

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty", data: nil, wantErr: photo.ErrEmpty},
		{name: "text file", data: []byte("just some notes about my outfit"), wantErr: photo.ErrUnsupported},
		{name: "truncated png", data: append(pngHeader, 0, 0, 0, 13), wantErr: photo.ErrDecode},
		{name: "over the limit", data: make([]byte, style.MaxPhotoBytes+1), wantErr: photo.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := photo.Load(bytes.NewReader(tt.data))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompact(t *testing.T) {
	t.Parallel()

	p, err := photo.Decode(encodePNG(t, 200, 100, stdcolor.NRGBA{R: 200, G: 150, B: 130, A: 255}))
	require.NoError(t, err)

	compacted, err := p.Compact(50)
	require.NoError(t, err)
	assert.Equal(t, photo.MIMEWebP, compacted.MIMEType)
	assert.Equal(t, image.Rect(0, 0, 50, 25), compacted.Image.Bounds())

	// The compact encoding must itself be a loadable upload
	reloaded, err := photo.Decode(compacted.Data)
	require.NoError(t, err)
	assert.Equal(t, photo.MIMEWebP, reloaded.MIMEType)
	assert.Equal(t, 50, reloaded.Pixels().Width)
}

func TestParseDataURI(t *testing.T) {
	t.Parallel()

	mimeType, data, err := photo.ParseDataURI(style.DataURI("image/jpeg", []byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)
	assert.Equal(t, []byte("abc"), data)

	for _, bad := range []string{"", "image/png;base64,AA==", "data:image/png,AA==", "data:;base64,AA==", "data:image/png;base64,!!"} {
		_, _, err := photo.ParseDataURI(bad)
		assert.ErrorIs(t, err, photo.ErrDataURI, bad)
	}
}

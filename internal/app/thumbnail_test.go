package app

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

func TestContentBounds(t *testing.T) {
	tests := []struct {
		name  string
		frame image.Image
		want  image.Rectangle
	}{
		{
			name:  "opaque frame",
			frame: solidFrame(10, 8),
			want:  image.Rect(0, 0, 10, 8),
		},
		{
			name:  "letterboxed",
			frame: letterboxed(40, 30, image.Rect(10, 5, 30, 20)),
			want:  image.Rect(10, 5, 30, 20),
		},
		{
			name:  "single pixel",
			frame: letterboxed(4, 4, image.Rect(3, 3, 4, 4)),
			want:  image.Rect(3, 3, 4, 4),
		},
		{
			name:  "transparent",
			frame: image.NewNRGBA(image.Rect(0, 0, 4, 4)),
			want:  image.Rectangle{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, contentBounds(tt.frame))
		})
	}
}

func TestEncodeThumbnail(t *testing.T) {
	tests := []struct {
		name   string
		frame  image.Image
		native image.Point
		want   image.Point
	}{
		{"scaled to native", letterboxed(40, 30, image.Rect(10, 5, 30, 20)), image.Pt(8, 6), image.Pt(8, 6)},
		{"already native", solidFrame(16, 12), image.Pt(16, 12), image.Pt(16, 12)},
		{"unknown native keeps crop", letterboxed(40, 30, image.Rect(10, 5, 30, 20)), image.Point{}, image.Pt(20, 15)},
		{"upscaled", solidFrame(4, 3), image.Pt(16, 12), image.Pt(16, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := encodeThumbnail(tt.frame, tt.native)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, tt.want, img.Bounds().Size())
		})
	}
}

func TestEncodeThumbnail_Failures(t *testing.T) {
	_, err := encodeThumbnail(nil, image.Pt(8, 6))
	require.ErrorIs(t, err, domain.ErrCaptureFailed)

	_, err = encodeThumbnail(image.NewNRGBA(image.Rect(0, 0, 8, 6)), image.Pt(8, 6))
	require.ErrorIs(t, err, domain.ErrCaptureFailed)

	_, err = encodeThumbnail(image.NewNRGBA(image.Rectangle{}), image.Pt(8, 6))
	require.ErrorIs(t, err, domain.ErrCaptureFailed)
}

// cropToContent must work for images without SubImage.
func TestCropToContent_Fallback(t *testing.T) {
	src := plainImage{letterboxed(10, 10, image.Rect(2, 3, 7, 9))}

	out, err := cropToContent(src)
	require.NoError(t, err)
	require.Equal(t, image.Pt(5, 6), out.Bounds().Size())
	require.Equal(t, image.Point{}, out.Bounds().Min)
}

// plainImage hides the SubImage method of the wrapped image.
type plainImage struct{ image.Image }

package app

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/nfnt/resize"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

// contentBounds returns the smallest rectangle holding every pixel with a
// non-zero alpha. The result is empty when the frame is fully transparent.
func contentBounds(img image.Image) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// cropToContent strips letterboxing and padding around the visible frame.
func cropToContent(img image.Image) (image.Image, error) {
	r := contentBounds(img)
	if r.Empty() {
		return nil, fmt.Errorf("%w: frame has no visible pixels", domain.ErrCaptureFailed)
	}
	if r == img.Bounds() {
		return img, nil
	}
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r), nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}

// encodeThumbnail crops a raw capture, scales it to the native resolution
// and returns PNG bytes. A zero native size keeps the cropped size.
func encodeThumbnail(frame image.Image, native image.Point) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: no frame", domain.ErrCaptureFailed)
	}
	cropped, err := cropToContent(frame)
	if err != nil {
		return nil, err
	}

	out := cropped
	if native.X > 0 && native.Y > 0 && cropped.Bounds().Size() != native {
		out = resize.Resize(uint(native.X), uint(native.Y), cropped, resize.Bilinear)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", domain.ErrCaptureFailed, err)
	}
	return buf.Bytes(), nil
}

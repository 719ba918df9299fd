// Package logo prepares user supplied images for embedding at the centre of
// a QR code.
package logo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	// Decoders for formats users commonly upload.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

const (
	// MaxShare is the largest part of the QR side a logo may take.
	MaxShare = 0.2
	// DefaultQRSize is used when the caller has no usable size.
	DefaultQRSize = 300
)

var (
	ErrEmptySource = errors.New("logo source is empty")
	ErrTooSmall    = errors.New("qr is too small to hold a logo")
)

// Composited is a logo resized for one rendering pass.
type Composited struct {
	Image image.Image
	PNG   []byte
	// TargetDim is the side of the square canvas.
	TargetDim int
	// Width and Height are the dimensions of the scaled logo inside it.
	Width, Height int
	OffsetX       int
	OffsetY       int
}

// Decode reads an uploaded image in any registered format.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptySource
	}
	return img, nil
}

// TargetDim returns the side of the logo canvas for a QR of qrSize pixels
// rendered at scale.
func TargetDim(qrSize, scale int) int {
	if qrSize <= 0 {
		qrSize = DefaultQRSize
	}
	if scale <= 0 {
		scale = 1
	}
	return int(math.Round(float64(qrSize) * float64(scale) * MaxShare))
}

// Composite shrinks src to fit TargetDim(qrSize, scale) without changing its
// aspect ratio and centres it on a transparent square canvas of that side.
// Images that already fit are never enlarged.
func Composite(src image.Image, qrSize, scale int) (*Composited, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptySource
	}
	target := TargetDim(qrSize, scale)
	if target <= 0 {
		return nil, ErrTooSmall
	}

	b := src.Bounds()
	ratio := math.Min(1, float64(target)/float64(max(b.Dx(), b.Dy())))
	dw := max(1, int(math.Round(float64(b.Dx())*ratio)))
	dh := max(1, int(math.Round(float64(b.Dy())*ratio)))
	dx := int(math.Round(float64(target-dw) / 2))
	dy := int(math.Round(float64(target-dh) / 2))

	scaled := src
	if dw != b.Dx() || dh != b.Dy() {
		scaled = resize.Resize(uint(dw), uint(dh), src, resize.Lanczos3)
	}

	dc := gg.NewContext(target, target)
	dc.DrawImage(scaled, dx, dy)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}

	return &Composited{
		Image:     dc.Image(),
		PNG:       buf.Bytes(),
		TargetDim: target,
		Width:     dw,
		Height:    dh,
		OffsetX:   dx,
		OffsetY:   dy,
	}, nil
}

// CompositeBytes decodes raw upload bytes and composites them in one pass.
func CompositeBytes(data []byte, qrSize, scale int) (*Composited, error) {
	if len(data) == 0 {
		return nil, ErrEmptySource
	}
	src, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return Composite(src, qrSize, scale)
}

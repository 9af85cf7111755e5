package texture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Format is a raster file format bitmaps can be written in.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatTGA  Format = "tga"
	FormatBMP  Format = "bmp"
)

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(s), "."))
	switch f {
	case FormatPNG, FormatWebP, FormatTGA, FormatBMP:
		return f, nil
	}
	return "", fmt.Errorf("texture: unknown image format %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// MimeType returns the media type of the format.
func (f Format) MimeType() string {
	switch f {
	case FormatWebP:
		return "image/webp"
	case FormatTGA:
		return "image/x-tga"
	case FormatBMP:
		return "image/bmp"
	}
	return "image/png"
}

// Encode writes img to w in the given format. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatTGA:
		err = tga.Encode(w, img)
	case FormatBMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("texture: unknown image format %q", f)
	}
	if err != nil {
		return fmt.Errorf("texture: encode %s: %w", f, err)
	}
	return nil
}

// Upscale enlarges img by an integer factor with nearest-neighbour sampling,
// keeping hard pixel edges and the exact palette colours.
func Upscale(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

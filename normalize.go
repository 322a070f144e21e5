package slidedeck

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/gift"
)

// NormalizeImage makes a capture safe to embed: it is flattened onto the
// spec background (no transparent pixels), resized to the exact device
// pixel size of spec, and encoded as format.
func NormalizeImage(img Image, spec RasterSpec, format ImageFormat) (Image, error) {
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: decoding capture: %v", ErrCapture, err)
	}

	bg, err := ParseHexColor(spec.Background)
	if err != nil {
		return Image{}, err
	}

	b := src.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), src, b.Min, draw.Over)

	w, h := spec.PixelSize()
	var out image.Image = flat
	if b.Dx() != w || b.Dy() != h {
		g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
		dst := image.NewRGBA(g.Bounds(flat.Bounds()))
		g.Draw(dst, flat)
		out = dst
	}

	var buf bytes.Buffer
	switch format {
	case ImageJPEG:
		quality := spec.Quality
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality})
	case ImagePNG:
		err = png.Encode(&buf, out)
	default:
		return Image{}, fmt.Errorf("%w: unsupported image format %q", ErrCapture, format)
	}
	if err != nil {
		return Image{}, fmt.Errorf("%w: encoding %s: %v", ErrCapture, format, err)
	}

	ob := out.Bounds()
	return Image{Data: buf.Bytes(), Format: format, Width: ob.Dx(), Height: ob.Dy()}, nil
}
